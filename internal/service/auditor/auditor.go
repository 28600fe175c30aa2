package auditor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relaywatch/relaywatch-backend/internal/model"
)

const defaultChunkSize = 10

// BatchAuditorService audits every unprocessed bid of an input file in
// fixed-size chunks, checkpointing the output file after each chunk so a
// rerun resumes where the last run stopped.
type BatchAuditorService struct {
	logger         *zap.Logger
	network        model.Network
	metrics        AuditorMetrics
	store          Store
	chunkProcessor ChunkProcessor
	sink           ResultSink
	chunkSize      int
}

func NewBatchAuditorService(
	store Store,
	processor BidProcessor,
	metrics AuditorMetrics,
	network model.Network,
	chunkSize int,
	sink ResultSink,
	logger *zap.Logger,
) (*BatchAuditorService, error) {
	logger = logger.With(zap.String("network", string(network)))
	if store == nil {
		return nil, errors.New("store is required")
	}
	if processor == nil {
		return nil, errors.New("bid processor is required")
	}
	if metrics == nil {
		return nil, errors.New("batch auditor metrics is required")
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	return &BatchAuditorService{
		logger:    logger,
		network:   network,
		metrics:   metrics,
		store:     store,
		sink:      sink,
		chunkSize: chunkSize,
		chunkProcessor: &chunkProcessor{
			workerCount: chunkSize,
			processor:   processor,
			metrics:     metrics,
			logger:      logger.Named("chunkProcessor"),
		},
	}, nil
}

// Run executes one full pass over the input file. Slots already present in
// the output file are replayed untouched and skipped; everything else is
// audited. A per-bid failure is a warning and the rerun is the retry; store
// failures are fatal.
func (s *BatchAuditorService) Run(ctx context.Context) error {
	processed, err := s.store.ReadResults()
	if err != nil {
		return fmt.Errorf("read prior results: %w", err)
	}
	processedSlots := make(map[uint64]struct{}, len(processed))
	for _, res := range processed {
		processedSlots[res.Slot] = struct{}{}
	}

	bids, err := s.store.ReadBids()
	if err != nil {
		return fmt.Errorf("read bids: %w", err)
	}
	queue := make([]model.RelayBid, 0, len(bids))
	for _, bid := range bids {
		if _, done := processedSlots[bid.Slot]; done {
			continue
		}
		queue = append(queue, bid)
	}

	s.logger.Info("starting batch audit",
		zap.Int("bids", len(bids)),
		zap.Int("already_processed", len(processed)),
		zap.Int("queued", len(queue)),
	)

	writer, err := s.store.BeginWrite()
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			s.logger.Error("close output failed", zap.Error(cerr))
		}
	}()

	if err := writer.Append(processed); err != nil {
		return fmt.Errorf("replay prior results: %w", err)
	}

	done := 0
	s.metrics.SetProgress(done, len(queue))
	for start := 0; start < len(queue); start += s.chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + s.chunkSize
		if end > len(queue) {
			end = len(queue)
		}
		chunk := queue[start:end]

		started := time.Now()
		results := s.chunkProcessor.Process(ctx, chunk)
		err := writer.Append(results)
		s.metrics.ObserveChunk(err, started)
		if err != nil {
			return fmt.Errorf("flush chunk: %w", err)
		}
		s.mirror(ctx, results)

		done += len(chunk)
		s.metrics.SetProgress(done, len(queue))
		s.logger.Info("chunk flushed",
			zap.Int("written", len(results)),
			zap.Int("failed", len(chunk)-len(results)),
			zap.Int("done", done),
			zap.Int("queued", len(queue)),
		)
	}

	s.logger.Info("batch audit finished", zap.Int("audited", done))
	return nil
}

// mirror forwards a flushed chunk to the optional analytical sink. The
// output file is the source of truth, so mirror failures are warnings.
func (s *BatchAuditorService) mirror(ctx context.Context, results []model.AuditResult) {
	if s.sink == nil || len(results) == 0 {
		return
	}
	if err := s.sink.InsertAuditResults(ctx, results); err != nil {
		s.logger.Warn("mirror chunk failed", zap.Int("results", len(results)), zap.Error(err))
	}
}
