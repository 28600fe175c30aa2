package audit

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/relaywatch/relaywatch-backend/internal/eth"
	"github.com/relaywatch/relaywatch-backend/internal/model"
)

// ClassifyPayment decides which on-chain mechanism carried the proposer
// payment for one block. First match wins:
//
//  1. coinbase is the fee recipient;
//  2. the block's last transaction pays the recipient directly;
//  3. the block's last transaction calls a contract, and the last
//     recipient-touching trace transfer inside that same transaction
//     targets the recipient;
//  4. nothing matched.
//
// Builders route the proposer payment as the final action of the payment
// transaction, so only the last matching transfer counts for rule 3; earlier
// transfers in the same transaction are internal accounting.
//
// recipientTransfers must already be filtered to transfers touching the
// recipient, in block execution order. The function is pure and classifies
// each block independently.
func ClassifyPayment(coinbase common.Address, txs []eth.Transaction, recipientTransfers []model.Transfer, feeRecipient common.Address) model.ProposerPayment {
	if coinbase == feeRecipient {
		return model.CoinbasePayment{Address: coinbase}
	}

	if len(txs) == 0 {
		return model.UnknownPayment{}
	}
	lastTx := txs[len(txs)-1]

	if lastTx.To != nil && *lastTx.To == feeRecipient {
		return model.LastTxDirectPayment{
			From:  lastTx.From,
			To:    *lastTx.To,
			Value: txValue(lastTx),
		}
	}

	if len(recipientTransfers) > 0 {
		lastTransfer := recipientTransfers[len(recipientTransfers)-1]
		if lastTransfer.TxHash == lastTx.Hash && lastTransfer.To == feeRecipient {
			contract := common.Address{}
			if lastTx.To != nil {
				contract = *lastTx.To
			}
			return model.LastTxContractPayment{
				From:     lastTx.From,
				Contract: contract,
				Value:    lastTransfer.Value,
			}
		}
	}

	return model.UnknownPayment{}
}

func txValue(tx eth.Transaction) *big.Int {
	if tx.Value == nil {
		return new(big.Int)
	}
	return tx.Value.ToInt()
}
