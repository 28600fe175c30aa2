// Package audit implements proposer payment analysis for auction-built blocks.
package audit

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/relaywatch/relaywatch-backend/internal/eth"
	"github.com/relaywatch/relaywatch-backend/internal/model"
)

// ExtractTransfers flattens a block's call trace forest into the ordered list
// of direct value transfers. A call qualifies when it is a plain CALL, ran
// without error, belongs to a known transaction and moved a strictly positive
// amount; everything else is dropped. Order follows block execution order.
func ExtractTransfers(blockNumber uint64, traces []eth.TraceResult) []model.Transfer {
	var transfers []model.Transfer
	for _, trace := range traces {
		if trace.TxHash == (common.Hash{}) || trace.Result == nil {
			continue
		}
		transfers = appendFrameTransfers(transfers, blockNumber, trace.TxHash, *trace.Result)
	}
	return transfers
}

func appendFrameTransfers(transfers []model.Transfer, blockNumber uint64, txHash common.Hash, frame eth.CallFrame) []model.Transfer {
	if frame.Type == "CALL" && frame.Error == "" && frame.Value != nil && frame.Value.ToInt().Sign() > 0 {
		transfers = append(transfers, model.Transfer{
			BlockNumber: blockNumber,
			TxHash:      txHash,
			From:        frame.From,
			To:          frame.To,
			Value:       frame.Value.ToInt(),
		})
	}
	for _, call := range frame.Calls {
		transfers = appendFrameTransfers(transfers, blockNumber, txHash, call)
	}
	return transfers
}
