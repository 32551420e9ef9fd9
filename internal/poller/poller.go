package poller

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"nychealth/internal"
	"nychealth/internal/config"
	"nychealth/internal/pipeline"
	"nychealth/internal/storage"
)

// LastDateKey is the metadata key holding the newest date already stored.
const LastDateKey = "scrape.last_date"

type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor pipeline.DateProcessor
	logger    *log.Logger
	now       func() time.Time
}

func NewService(db *storage.DB, cfg config.Config, processor pipeline.DateProcessor, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{db: db, cfg: cfg, processor: processor, logger: logger, now: time.Now}
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.PollIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}
	for {
		if err := s.runCycle(ctx); err != nil && ctx.Err() == nil {
			s.logger.Printf("poller cycle error: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// runCycle processes every date after the last stored one up to today. It
// stops at the first date the publisher has not released yet.
func (s *Service) runCycle(ctx context.Context) error {
	from, err := s.nextDate()
	if err != nil {
		return err
	}
	today := internal.Day(s.now())

	stored := 0
	for date := from; !date.After(today); date = date.AddDate(0, 0, 1) {
		records, err := s.processor.ProcessDate(ctx, date)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			s.logger.Printf("poller waiting date=%s", date.Format(internal.DateLayout))
			break
		}

		if err := s.db.SaveRecords(records); err != nil {
			return err
		}
		if err := s.db.SetMetadata(LastDateKey, date.Format(internal.DateLayout)); err != nil {
			return err
		}
		if s.cfg.PollAutoExport {
			if err := s.export(date, records); err != nil {
				return err
			}
		}
		stored += len(records)
	}

	s.logger.Printf("poller cycle done from=%s to=%s records=%d", from.Format(internal.DateLayout), today.Format(internal.DateLayout), stored)
	return nil
}

func (s *Service) nextDate() (time.Time, error) {
	last, err := s.db.GetMetadata(LastDateKey)
	if err != nil {
		return time.Time{}, err
	}
	if last != nil {
		date, err := internal.ParseDate(*last)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid %s metadata: %w", LastDateKey, err)
		}
		return date.AddDate(0, 0, 1), nil
	}
	if s.cfg.PollStartDate != nil {
		return internal.Day(*s.cfg.PollStartDate), nil
	}
	return internal.Day(s.now()), nil
}

func (s *Service) export(date time.Time, records []internal.Record) error {
	filename := fmt.Sprintf("nyc_daily_health_%s.xlsx", date.Format(internal.DateLayout))
	return pipeline.ExportRecordsToXLSX(records, filepath.Join(s.cfg.OutputDir, "poller", filename))
}
