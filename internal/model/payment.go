package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PaymentType labels the on-chain mechanism that carried the proposer payment.
type PaymentType string

var (
	PaymentLastTxDirect   PaymentType = "last_tx_direct"
	PaymentLastTxContract PaymentType = "last_tx_contract"
	PaymentCoinbase       PaymentType = "coinbase"
	PaymentUnknown        PaymentType = "unknown"
)

// ParsePaymentType validates a serialized payment type label.
func ParsePaymentType(s string) (PaymentType, error) {
	switch t := PaymentType(s); t {
	case PaymentLastTxDirect, PaymentLastTxContract, PaymentCoinbase, PaymentUnknown:
		return t, nil
	default:
		return "", fmt.Errorf("unknown payment type %q", s)
	}
}

// ProposerPayment is the classification outcome for one block. Exactly one
// concrete variant holds per block.
type ProposerPayment interface {
	Type() PaymentType
}

// LastTxDirectPayment is a payment sent by the block's final transaction
// straight to the fee recipient. Value comes from the transaction itself and
// may be zero.
type LastTxDirectPayment struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

func (LastTxDirectPayment) Type() PaymentType { return PaymentLastTxDirect }

// LastTxContractPayment is a payment routed through a contract called by the
// block's final transaction; the value is taken from the internal transfer
// that reached the recipient.
type LastTxContractPayment struct {
	From     common.Address
	Contract common.Address
	Value    *big.Int
}

func (LastTxContractPayment) Type() PaymentType { return PaymentLastTxContract }

// CoinbasePayment means the block's coinbase is the fee recipient; payment is
// implicit via fee routing and never counted again through transfers.
type CoinbasePayment struct {
	Address common.Address
}

func (CoinbasePayment) Type() PaymentType { return PaymentCoinbase }

// UnknownPayment means no supported payment pattern matched.
type UnknownPayment struct{}

func (UnknownPayment) Type() PaymentType { return PaymentUnknown }

// IsLastTxPayment reports whether the payment was carried by the block's
// final transaction, directly or through a contract.
func IsLastTxPayment(p ProposerPayment) bool {
	switch p.(type) {
	case LastTxDirectPayment, LastTxContractPayment:
		return true
	default:
		return false
	}
}

// Transfer is one direct value transfer extracted from a block's call traces.
// Value is strictly positive by construction.
type Transfer struct {
	BlockNumber uint64
	TxHash      common.Hash
	From        common.Address
	To          common.Address
	Value       *big.Int
}

// Withdrawal is a protocol-level balance credit to a validator address,
// distinct from a transaction-level transfer. Amount is denominated in gwei.
type Withdrawal struct {
	Index          uint64
	ValidatorIndex uint64
	Address        common.Address
	Amount         uint64
}

// BlockPaymentData is everything gathered about one block's proposer payment.
// It lives only for the duration of one audit task.
type BlockPaymentData struct {
	BlockNumber             uint64
	FeeRecipient            common.Address
	BidValue                *big.Int
	FeeRecipientTransfers   []Transfer
	FeeRecipientWithdrawals []Withdrawal
	Payment                 ProposerPayment
	BalanceDiff             *big.Int
}
