package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/relaywatch/relaywatch-backend/internal/model"
)

// InsertAuditResults stores audit rows in ClickHouse.
func (r *Repository) InsertAuditResults(ctx context.Context, results []model.AuditResult) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_audit_results", err, start)
	}()

	if len(results) == 0 {
		return nil
	}

	const query = `
INSERT INTO relay_audit_results (
	network,
	slot,
	block_number,
	bid_value,
	balance_diff,
	payment_type,
	withdrawals,
	transfers,
	transfers_in,
	transfers_out
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare audit results batch: %w", err)
	}

	for _, result := range results {
		if err = batch.Append(
			string(r.network),
			result.Slot,
			result.BlockNumber,
			result.BidValue,
			result.BalanceDiff,
			string(result.PaymentType),
			result.Withdrawals,
			result.Transfers,
			result.TransfersIn,
			result.TransfersOut,
		); err != nil {
			return fmt.Errorf("append audit result: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert audit results: %w", err)
	}
	return nil
}
