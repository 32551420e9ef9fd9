package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"nychealth/internal"
	"nychealth/internal/connectors"
)

// DateProcessor yields the merged records of every report for one date.
// An empty result means nothing was published for the date.
type DateProcessor interface {
	ProcessDate(ctx context.Context, date time.Time) ([]internal.Record, error)
}

// RunRecorder persists one bookkeeping row per processed date.
type RunRecorder interface {
	InsertRun(traceID string, date time.Time, reports map[string]int, records int) error
}

type ProcessingService struct {
	fetcher connectors.Fetcher
	runs    RunRecorder
	logger  *log.Logger
}

// NewProcessingService wires a fetcher into the normalization pipeline.
// runs may be nil.
func NewProcessingService(fetcher connectors.Fetcher, runs RunRecorder, logger *log.Logger) *ProcessingService {
	if logger == nil {
		logger = log.Default()
	}
	return &ProcessingService{fetcher: fetcher, runs: runs, logger: logger}
}

// ProcessDate fetches, formats and merges all report types for date. A
// report that is absent or unreadable contributes nothing; the only error
// returned is cancellation of ctx.
func (s *ProcessingService) ProcessDate(ctx context.Context, date time.Time) ([]internal.Record, error) {
	date = internal.Day(date)

	var all []internal.Record
	counts := make(map[string]int, len(internal.ReportTypes))
	for _, report := range internal.ReportTypes {
		records, err := s.ProcessReport(ctx, report, date)
		if err != nil {
			return nil, err
		}
		counts[string(report)] = len(records)
		all = append(all, records...)
	}

	merged := Merge(all)
	if s.runs != nil {
		if err := s.runs.InsertRun(traceID(), date, counts, len(merged)); err != nil {
			s.logger.Printf("record run failed date=%s err=%v", date.Format(internal.DateLayout), err)
		}
	}
	return merged, nil
}

func (s *ProcessingService) ProcessReport(ctx context.Context, report internal.ReportType, date time.Time) ([]internal.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.fetcher.Fetch(ctx, report, date)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, connectors.ErrAbsent) {
			s.logger.Printf("fetch failed report=%s date=%s err=%v", report, date.Format(internal.DateLayout), err)
		}
		return nil, nil
	}
	return NormalizeTable(report, raw, date, s.logger), nil
}

// NormalizeTable runs one extracted table through preprocessing and the
// formatter for its report type.
func NormalizeTable(report internal.ReportType, raw internal.RawTable, date time.Time, logger *log.Logger) []internal.Record {
	if logger == nil {
		logger = log.Default()
	}
	table, ok := Preprocess(raw)
	if !ok {
		logger.Printf("no anchor row report=%s date=%s rows=%d", report, date.Format(internal.DateLayout), len(raw))
		return nil
	}
	return FormatReport(report, table, date, logger)
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
