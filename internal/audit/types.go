package audit

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/relaywatch/relaywatch-backend/internal/eth"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// ChainClient is the execution node surface the auditor needs.
	ChainClient interface {
		BlockTraces(ctx context.Context, blockNumber uint64) ([]eth.TraceResult, error)
		BlockByNumber(ctx context.Context, blockNumber uint64) (*eth.Block, error)
		BalanceAt(ctx context.Context, account common.Address, blockNumber uint64) (*big.Int, error)
	}
)
