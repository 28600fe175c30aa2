package auditor

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/relaywatch/relaywatch-backend/internal/model"
	"github.com/relaywatch/relaywatch-backend/pkg/workerpool"
)

type chunkProcessor struct {
	workerCount int
	processor   BidProcessor
	metrics     AuditorMetrics
	logger      *zap.Logger
}

// Process audits every bid of one chunk concurrently and returns the
// successful results sorted by slot. Failed bids are logged and dropped;
// dedup-by-slot makes the next full run their retry.
func (p *chunkProcessor) Process(ctx context.Context, bids []model.RelayBid) []model.AuditResult {
	outcomes := workerpool.Collect(ctx, p.workerCount, bids, func(ctx context.Context, bid model.RelayBid) (model.AuditResult, error) {
		started := time.Now()
		res, err := p.processor.Process(ctx, bid)
		p.metrics.ObserveEntry(err, started)
		return res, err
	})

	results := make([]model.AuditResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			p.logger.Warn("bid audit failed; slot stays unprocessed",
				zap.Uint64("slot", outcome.Item.Slot),
				zap.Uint64("block_number", outcome.Item.BlockNumber),
				zap.Error(outcome.Err),
			)
			continue
		}
		results = append(results, outcome.Value)
	}

	// completion order is arbitrary; restore input order before persisting
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Slot < results[j].Slot
	})
	return results
}
