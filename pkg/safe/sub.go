// Package safe provides saturating arithmetic helpers.
package safe

import "math/big"

// SubUint64 returns a-b, floored at zero.
func SubUint64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// SubBig returns a-b as a new big.Int, floored at zero. Nil operands are
// treated as zero.
func SubBig(a, b *big.Int) *big.Int {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}
