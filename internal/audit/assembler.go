package audit

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/relaywatch/relaywatch-backend/internal/eth"
	"github.com/relaywatch/relaywatch-backend/internal/model"
	"github.com/relaywatch/relaywatch-backend/pkg/safe"
)

// Auditor gathers per-block payment data from an execution node and
// classifies how the proposer was paid.
type Auditor struct {
	chain ChainClient
}

func NewAuditor(chain ChainClient) *Auditor {
	return &Auditor{chain: chain}
}

// PaymentData assembles everything needed to audit one block's proposer
// payment. Any collaborator failure aborts this block only; the caller
// decides whether that is fatal.
func (a *Auditor) PaymentData(ctx context.Context, blockNumber uint64, feeRecipient common.Address, bidValue *big.Int) (*model.BlockPaymentData, error) {
	traces, err := a.chain.BlockTraces(ctx, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch traces: %w", err)
	}
	transfers := recipientTransfers(ExtractTransfers(blockNumber, traces), feeRecipient)

	block, err := a.chain.BlockByNumber(ctx, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch block: %w", err)
	}
	withdrawals := recipientWithdrawals(block.Withdrawals, feeRecipient)
	payment := ClassifyPayment(block.Miner, block.Transactions, transfers, feeRecipient)

	balanceDiff, err := a.balanceDiff(ctx, feeRecipient, blockNumber)
	if err != nil {
		return nil, err
	}

	return &model.BlockPaymentData{
		BlockNumber:             blockNumber,
		FeeRecipient:            feeRecipient,
		BidValue:                bidValue,
		FeeRecipientTransfers:   transfers,
		FeeRecipientWithdrawals: withdrawals,
		Payment:                 payment,
		BalanceDiff:             balanceDiff,
	}, nil
}

// Process audits one relay bid end to end.
func (a *Auditor) Process(ctx context.Context, bid model.RelayBid) (model.AuditResult, error) {
	data, err := a.PaymentData(ctx, bid.BlockNumber, bid.ProposerFeeRecipient, bid.Value)
	if err != nil {
		return model.AuditResult{}, fmt.Errorf("block %d: %w", bid.BlockNumber, err)
	}
	return BuildAuditResult(bid, data), nil
}

// balanceDiff is the recipient's balance gain across the block, floored at
// zero. Block 0 has no parent, so its before-balance is read at block 0.
func (a *Auditor) balanceDiff(ctx context.Context, account common.Address, blockNumber uint64) (*big.Int, error) {
	before, err := a.chain.BalanceAt(ctx, account, safe.SubUint64(blockNumber, 1))
	if err != nil {
		return nil, fmt.Errorf("fetch balance before: %w", err)
	}
	after, err := a.chain.BalanceAt(ctx, account, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch balance after: %w", err)
	}
	return safe.SubBig(after, before), nil
}

func recipientTransfers(transfers []model.Transfer, recipient common.Address) []model.Transfer {
	filtered := transfers[:0]
	for _, t := range transfers {
		if t.To == recipient || t.From == recipient {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func recipientWithdrawals(withdrawals []eth.Withdrawal, recipient common.Address) []model.Withdrawal {
	var filtered []model.Withdrawal
	for _, w := range withdrawals {
		if w.Address == recipient {
			filtered = append(filtered, model.Withdrawal{
				Index:          uint64(w.Index),
				ValidatorIndex: uint64(w.ValidatorIndex),
				Address:        w.Address,
				Amount:         uint64(w.Amount),
			})
		}
	}
	return filtered
}
