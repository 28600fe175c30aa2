package audit

import (
	"github.com/relaywatch/relaywatch-backend/internal/model"
	"github.com/relaywatch/relaywatch-backend/pkg/safe"
)

// BuildAuditResult maps one relay bid plus its assembled payment data onto
// the persisted output record.
//
// When the payment rode the block's last transaction, that transfer is
// already accounted for by the classification, so it is excluded from the
// transfers and transfers_in tallies. The decrement saturates: a last-tx
// classification with an empty transfer list (direct payments produce no
// trace transfer entry on some nodes) must not underflow. transfers_out is
// never adjusted.
func BuildAuditResult(bid model.RelayBid, data *model.BlockPaymentData) model.AuditResult {
	var transfersIn, transfersOut uint64
	for _, t := range data.FeeRecipientTransfers {
		if t.To == data.FeeRecipient {
			transfersIn++
		}
		if t.From == data.FeeRecipient {
			transfersOut++
		}
	}

	transfers := uint64(len(data.FeeRecipientTransfers))
	if model.IsLastTxPayment(data.Payment) {
		transfers = safe.SubUint64(transfers, 1)
		transfersIn = safe.SubUint64(transfersIn, 1)
	}

	return model.AuditResult{
		Slot:         bid.Slot,
		BlockNumber:  data.BlockNumber,
		BidValue:     data.BidValue,
		BalanceDiff:  data.BalanceDiff,
		PaymentType:  data.Payment.Type(),
		Withdrawals:  uint64(len(data.FeeRecipientWithdrawals)),
		Transfers:    transfers,
		TransfersIn:  transfersIn,
		TransfersOut: transfersOut,
	}
}
