// Package auditor runs the resumable batch audit pipeline over a relay bid
// input file.
package auditor

import (
	"context"
	"time"

	"github.com/relaywatch/relaywatch-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store is the input/output file pair the pipeline operates on.
	Store interface {
		ReadBids() ([]model.RelayBid, error)
		ReadResults() ([]model.AuditResult, error)
		BeginWrite() (ResultWriter, error)
	}

	// ResultWriter appends audit rows and flushes them durably.
	ResultWriter interface {
		Append(results []model.AuditResult) error
		Close() error
	}

	// BidProcessor audits one relay bid end to end.
	BidProcessor interface {
		Process(ctx context.Context, bid model.RelayBid) (model.AuditResult, error)
	}

	// ChunkProcessor audits one chunk of bids concurrently and returns the
	// successful results sorted by slot.
	ChunkProcessor interface {
		Process(ctx context.Context, bids []model.RelayBid) []model.AuditResult
	}

	// ResultSink optionally mirrors flushed chunks to an analytical store.
	ResultSink interface {
		InsertAuditResults(ctx context.Context, results []model.AuditResult) error
	}

	AuditorMetrics interface {
		ObserveChunk(err error, started time.Time)
		ObserveEntry(err error, started time.Time)
		SetProgress(done, total int)
	}
)
