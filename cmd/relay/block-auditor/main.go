package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/relaywatch/relaywatch-backend/internal/audit"
	"github.com/relaywatch/relaywatch-backend/internal/eth"
	"github.com/relaywatch/relaywatch-backend/internal/metrics"
	"github.com/relaywatch/relaywatch-backend/internal/model"
)

type config struct {
	BlockNumber  uint64        `long:"block-number" env:"RELAY_AUDIT_BLOCK_NUMBER" description:"block number to audit" required:"true"`
	FeeRecipient string        `long:"fee-recipient" env:"RELAY_AUDIT_FEE_RECIPIENT" description:"proposer fee recipient address" required:"true"`
	BidValue     string        `long:"bid-value" env:"RELAY_AUDIT_BID_VALUE" description:"relay bid value in wei" default:"0"`
	Network      model.Network `long:"network" env:"RELAY_AUDIT_NETWORK" description:"network name" default:"mainnet"`
	RPCURL       string        `long:"rpc-url" env:"RELAY_AUDIT_RPC_URL" description:"execution node RPC URL" default:"http://127.0.0.1:8545"`
	RPCAttempts  int           `long:"rpc-attempts" env:"RELAY_AUDIT_RPC_ATTEMPTS" description:"attempts per RPC call" default:"3"`
	RPCRate      int           `long:"rpc-rate" env:"RELAY_AUDIT_RPC_RATE" description:"RPC requests per second" default:"10"`
}

// report is the stdout shape of one audited block.
type report struct {
	BlockNumber  uint64             `json:"block_number"`
	FeeRecipient common.Address     `json:"fee_recipient"`
	PaymentType  model.PaymentType  `json:"payment_type"`
	Payment      any                `json:"payment,omitempty"`
	BidValue     string             `json:"bid_value"`
	BalanceDiff  string             `json:"balance_diff"`
	Transfers    []model.Transfer   `json:"fee_recipient_transfers,omitempty"`
	Withdrawals  []model.Withdrawal `json:"fee_recipient_withdrawals,omitempty"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("relay block auditor failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	if !common.IsHexAddress(cfg.FeeRecipient) {
		return fmt.Errorf("invalid fee recipient address %q", cfg.FeeRecipient)
	}
	feeRecipient := common.HexToAddress(cfg.FeeRecipient)

	bidValue, ok := new(big.Int).SetString(cfg.BidValue, 10)
	if !ok || bidValue.Sign() < 0 {
		return fmt.Errorf("invalid bid value %q", cfg.BidValue)
	}

	client, err := eth.NewClient(ctx, cfg.RPCURL, cfg.RPCRate, cfg.RPCAttempts, metrics.NewRPCClient(cfg.Network))
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer client.Close()

	data, err := audit.NewAuditor(client).PaymentData(ctx, cfg.BlockNumber, feeRecipient, bidValue)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report{
		BlockNumber:  data.BlockNumber,
		FeeRecipient: data.FeeRecipient,
		PaymentType:  data.Payment.Type(),
		Payment:      data.Payment,
		BidValue:     data.BidValue.String(),
		BalanceDiff:  data.BalanceDiff.String(),
		Transfers:    data.FeeRecipientTransfers,
		Withdrawals:  data.FeeRecipientWithdrawals,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
