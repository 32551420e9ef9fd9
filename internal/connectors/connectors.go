package connectors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nychealth/internal"
)

// ErrAbsent reports that no document was published for a report and date.
var ErrAbsent = errors.New("report not published")

// Fetcher returns the raw table of one report for one date.
type Fetcher interface {
	Fetch(ctx context.Context, report internal.ReportType, date time.Time) (internal.RawTable, error)
}

// DocumentName is the file name a report document is archived under.
func DocumentName(report internal.ReportType, date time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", report, date.Format(internal.DateLayout), ext)
}
