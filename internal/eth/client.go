package eth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/ratelimit"

	"github.com/relaywatch/relaywatch-backend/internal/clock"
)

// ErrBlockNotFound is returned when the node reports no block at the
// requested number.
var ErrBlockNotFound = errors.New("block not found")

type (
	// RPCMetrics records metrics for RPC calls.
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// callTracerConfig selects the callTracer for debug_traceBlockByNumber.
type callTracerConfig struct {
	Tracer string `json:"tracer"`
}

// Client wraps a JSON-RPC connection to an execution node with rate limiting,
// bounded retry and metrics instrumentation.
type Client struct {
	rpcClient    *rpc.Client
	rl           ratelimit.Limiter
	rpcMetrics   RPCMetrics
	attempts     int
	retryBackoff time.Duration
	backoff      func(context.Context, int, time.Duration) error
}

// NewClient dials the execution node. rps bounds the request rate across all
// concurrent callers; attempts is the total number of tries per call.
func NewClient(ctx context.Context, rawURL string, rps int, attempts int, rpcMetrics RPCMetrics) (*Client, error) {
	if rps <= 0 {
		return nil, errors.New("rps must be positive")
	}
	if attempts <= 0 {
		attempts = 1
	}
	rpcClient, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("dial execution node %s: %w", rawURL, err)
	}
	return &Client{
		rpcClient:    rpcClient,
		rl:           ratelimit.New(rps),
		rpcMetrics:   rpcMetrics,
		attempts:     attempts,
		retryBackoff: 500 * time.Millisecond,
		backoff:      clock.BackoffLinear,
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpcClient.Close()
}

// BlockTraces returns the callTracer call trees for every transaction in the
// block, in execution order.
func (c *Client) BlockTraces(ctx context.Context, blockNumber uint64) (res []TraceResult, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe("block_traces", err, started)
	}()

	var raw json.RawMessage
	err = c.call(ctx, &raw, "debug_traceBlockByNumber", hexutil.EncodeUint64(blockNumber), callTracerConfig{Tracer: "callTracer"})
	if err != nil {
		return nil, fmt.Errorf("debug_traceBlockByNumber %d: %w", blockNumber, err)
	}
	if err = json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode traces for block %d: %w", blockNumber, err)
	}
	return res, nil
}

// BlockByNumber fetches the block with full transaction bodies. Returns
// ErrBlockNotFound when the node has no block at that number.
func (c *Client) BlockByNumber(ctx context.Context, blockNumber uint64) (block *Block, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe("block_by_number", err, started)
	}()

	var raw json.RawMessage
	err = c.call(ctx, &raw, "eth_getBlockByNumber", hexutil.EncodeUint64(blockNumber), true)
	if err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber %d: %w", blockNumber, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("block %d: %w", blockNumber, ErrBlockNotFound)
	}
	block = new(Block)
	if err = json.Unmarshal(raw, block); err != nil {
		return nil, fmt.Errorf("decode block %d: %w", blockNumber, err)
	}
	return block, nil
}

// BalanceAt returns the account balance at the given block number.
func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber uint64) (balance *big.Int, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe("balance_at", err, started)
	}()

	var result hexutil.Big
	err = c.call(ctx, &result, "eth_getBalance", account, hexutil.EncodeUint64(blockNumber))
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance %s at %d: %w", account.Hex(), blockNumber, err)
	}
	return (*big.Int)(&result), nil
}

// call issues one JSON-RPC request, taking a rate limiter token per attempt.
func (c *Client) call(ctx context.Context, result any, method string, args ...any) error {
	var err error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if serr := c.backoff(ctx, attempt, c.retryBackoff); serr != nil {
			return serr
		}
		c.rl.Take()
		if err = c.rpcClient.CallContext(ctx, result, method, args...); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
