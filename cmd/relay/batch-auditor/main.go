package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relaywatch/relaywatch-backend/internal/audit"
	"github.com/relaywatch/relaywatch-backend/internal/eth"
	"github.com/relaywatch/relaywatch-backend/internal/metrics"
	"github.com/relaywatch/relaywatch-backend/internal/model"
	"github.com/relaywatch/relaywatch-backend/internal/repository/clickhouse"
	"github.com/relaywatch/relaywatch-backend/internal/service/auditor"
	"github.com/relaywatch/relaywatch-backend/internal/store/csvfile"
)

type config struct {
	Input         string        `long:"input" env:"RELAY_AUDIT_INPUT" description:"path to the relay bids CSV file" required:"true"`
	Output        string        `long:"output" env:"RELAY_AUDIT_OUTPUT" description:"path to the audit results CSV file" required:"true"`
	Network       model.Network `long:"network" env:"RELAY_AUDIT_NETWORK" description:"network name" default:"mainnet"`
	RPCURL        string        `long:"rpc-url" env:"RELAY_AUDIT_RPC_URL" description:"execution node RPC URL" default:"http://127.0.0.1:8545"`
	RPCAttempts   int           `long:"rpc-attempts" env:"RELAY_AUDIT_RPC_ATTEMPTS" description:"attempts per RPC call" default:"3"`
	RPCRate       int           `long:"rpc-rate" env:"RELAY_AUDIT_RPC_RATE" description:"RPC requests per second" default:"10"`
	RPCParallel   int           `long:"rpc-parallel" env:"RELAY_AUDIT_RPC_PARALLEL" description:"concurrent audits per chunk; also the chunk size" default:"10"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"RELAY_AUDIT_CLICKHOUSE_DSN" description:"optional ClickHouse DSN for mirroring results"`
	MetricsAddr   string        `long:"metrics-addr" env:"RELAY_AUDIT_METRICS_ADDR" description:"address for metrics server" default:":2112"`
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
		logger.Fatal("relay batch auditor failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	client, err := eth.NewClient(ctx, cfg.RPCURL, cfg.RPCRate, cfg.RPCAttempts, metrics.NewRPCClient(cfg.Network))
	if err != nil {
		return fmt.Errorf("init rpc client: %w", err)
	}
	defer client.Close()

	var sink auditor.ResultSink
	if cfg.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, cfg.Network, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init clickhouse repository: %w", err)
		}
		sink = repo
	}

	svc, err := auditor.NewBatchAuditorService(
		csvStore{csvfile.NewStore(cfg.Input, cfg.Output)},
		audit.NewAuditor(client),
		metrics.NewBatchAuditor(cfg.Network),
		cfg.Network,
		cfg.RPCParallel,
		sink,
		logger,
	)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

// csvStore narrows *csvfile.Store to the pipeline's writer interface.
type csvStore struct {
	*csvfile.Store
}

func (s csvStore) BeginWrite() (auditor.ResultWriter, error) {
	return s.Store.BeginWrite()
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
