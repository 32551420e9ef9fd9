// Package local serves report tables from documents already on disk, laid
// out the way connectors.DocumentArchive writes them.
package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"nychealth/internal"
	"nychealth/internal/connectors"
	"nychealth/internal/extract"
)

type Fetcher struct {
	dir string
}

func NewFetcher(dir string) *Fetcher {
	return &Fetcher{dir: dir}
}

func (f *Fetcher) Fetch(ctx context.Context, report internal.ReportType, date time.Time) (internal.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, kind := range extract.Kinds {
		path := filepath.Join(f.dir, connectors.DocumentName(report, date, string(kind)))
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		return extract.FromFile(path)
	}
	return nil, connectors.ErrAbsent
}
