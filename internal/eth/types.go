// Package eth implements the execution node JSON-RPC collaborator.
package eth

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TraceResult is the callTracer output for one transaction: the root frame of
// that transaction's call tree. Results arrive in block execution order.
type TraceResult struct {
	TxHash common.Hash `json:"txHash"`
	Result *CallFrame  `json:"result"`
}

// CallFrame is a single call in the callTracer output, with nested calls in
// execution order.
type CallFrame struct {
	Type  string          `json:"type"`
	From  common.Address  `json:"from"`
	To    common.Address  `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
	Calls []CallFrame     `json:"calls,omitempty"`
	Input hexutil.Bytes   `json:"input,omitempty"`
}

// Block is an execution block fetched with full transaction bodies. Only the
// fields the auditor consults are decoded.
type Block struct {
	Number       hexutil.Uint64 `json:"number"`
	Miner        common.Address `json:"miner"`
	Transactions []Transaction  `json:"transactions"`
	Withdrawals  []Withdrawal   `json:"withdrawals"`
}

// Transaction is one transaction body within a fetched block.
type Transaction struct {
	Hash  common.Hash     `json:"hash"`
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
}

// Withdrawal is a protocol withdrawal credited in a fetched block.
type Withdrawal struct {
	Index          hexutil.Uint64 `json:"index"`
	ValidatorIndex hexutil.Uint64 `json:"validatorIndex"`
	Address        common.Address `json:"address"`
	Amount         hexutil.Uint64 `json:"amount"`
}
