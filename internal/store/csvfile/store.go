// Package csvfile reads relay bid input files and writes audit output files.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/relaywatch/relaywatch-backend/internal/model"
)

// Store is the delimited-file pair the batch pipeline operates on. The output
// file, when present, is authoritative prior progress.
type Store struct {
	inputPath  string
	outputPath string
}

func NewStore(inputPath, outputPath string) *Store {
	return &Store{inputPath: inputPath, outputPath: outputPath}
}

// ReadBids reads every input record. A malformed row fails the whole read: a
// corrupt input file cannot be safely partially processed.
func (s *Store) ReadBids() ([]model.RelayBid, error) {
	f, err := os.Open(s.inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read input header: %w", err)
	}
	if err := checkHeader(header, model.BidCSVHeader()); err != nil {
		return nil, fmt.Errorf("input file %s: %w", s.inputPath, err)
	}

	var bids []model.RelayBid
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input row %d: %w", row, err)
		}
		bid, err := model.ParseRelayBid(record)
		if err != nil {
			return nil, fmt.Errorf("input row %d: %w", row, err)
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

// ReadResults reads previously persisted audit rows in their original order.
// A missing output file means no prior progress.
func (s *Store) ReadResults() ([]model.AuditResult, error) {
	f, err := os.Open(s.outputPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output header: %w", err)
	}
	if err := checkHeader(header, model.AuditResultCSVHeader()); err != nil {
		return nil, fmt.Errorf("output file %s: %w", s.outputPath, err)
	}

	var results []model.AuditResult
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read output row %d: %w", row, err)
		}
		res, err := model.ParseAuditResult(record)
		if err != nil {
			return nil, fmt.Errorf("output row %d: %w", row, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// BeginWrite truncates the output file and writes the header. The caller
// replays prior rows before appending new ones; nothing is lost because the
// prior rows were read first.
func (s *Store) BeginWrite() (*Writer, error) {
	f, err := os.Create(s.outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(model.AuditResultCSVHeader()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write output header: %w", err)
	}
	return &Writer{f: f, w: w}, nil
}

// Writer appends audit rows to the output file, flushing after every append
// so a completed chunk survives a crash.
type Writer struct {
	f *os.File
	w *csv.Writer
}

// Append persists the given rows and flushes.
func (w *Writer) Append(results []model.AuditResult) error {
	for _, res := range results {
		if err := w.w.Write(res.ToCSVRecord()); err != nil {
			return fmt.Errorf("write output row for slot %d: %w", res.Slot, err)
		}
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Close flushes and closes the output file.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return w.f.Close()
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("unexpected header %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("unexpected header %v, want %v", got, want)
		}
	}
	return nil
}
