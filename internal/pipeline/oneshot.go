package pipeline

import (
	"log"
	"time"

	"nychealth/internal"
	"nychealth/internal/extract"
)

// NormalizeFile normalizes a single report document from disk.
func NormalizeFile(path string, report internal.ReportType, date time.Time, logger *log.Logger) ([]internal.Record, error) {
	raw, err := extract.FromFile(path)
	if err != nil {
		return nil, err
	}
	return NormalizeTable(report, raw, date, logger), nil
}
