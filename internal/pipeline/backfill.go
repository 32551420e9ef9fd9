package pipeline

import (
	"context"
	"log"
	"time"

	"nychealth/internal"
)

type backfillState int

const (
	backfillActive backfillState = iota
	backfillStopped
)

// Backfill walks dates backwards from a start date. The publisher's archive
// is contiguous, so the first date without records ends the walk.
type Backfill struct {
	processor DateProcessor
	minDate   *time.Time
	logger    *log.Logger
}

type BackfillResult struct {
	// Records are ordered oldest date first.
	Records []internal.Record
	// Dates counts the dates that produced records.
	Dates int
	// Oldest is the earliest date that produced records.
	Oldest time.Time
}

// NewBackfill builds a driver. minDate, when set, stops the walk before
// dates earlier than it.
func NewBackfill(processor DateProcessor, minDate *time.Time, logger *log.Logger) *Backfill {
	if logger == nil {
		logger = log.Default()
	}
	return &Backfill{processor: processor, minDate: minDate, logger: logger}
}

// Run processes start and, with backfill set, every earlier date until one
// yields nothing. On cancellation the records gathered so far are returned
// with the context error.
func (b *Backfill) Run(ctx context.Context, start time.Time, backfill bool) (BackfillResult, error) {
	date := internal.Day(start)
	var chunks [][]internal.Record

	state := backfillActive
	for state == backfillActive {
		if b.minDate != nil && date.Before(internal.Day(*b.minDate)) {
			state = backfillStopped
			continue
		}

		records, err := b.processor.ProcessDate(ctx, date)
		if err != nil {
			return assemble(chunks, date.AddDate(0, 0, 1)), err
		}
		b.logger.Printf("processed date=%s records=%d", date.Format(internal.DateLayout), len(records))

		if len(records) == 0 {
			state = backfillStopped
			continue
		}
		chunks = append(chunks, records)
		date = date.AddDate(0, 0, -1)
		if !backfill {
			state = backfillStopped
		}
	}

	return assemble(chunks, date.AddDate(0, 0, 1)), nil
}

// assemble reverses newest-first chunks into one oldest-first sequence.
func assemble(chunks [][]internal.Record, oldest time.Time) BackfillResult {
	res := BackfillResult{Dates: len(chunks)}
	if len(chunks) == 0 {
		return res
	}
	res.Oldest = oldest
	for i := len(chunks) - 1; i >= 0; i-- {
		res.Records = append(res.Records, chunks[i]...)
	}
	return res
}
