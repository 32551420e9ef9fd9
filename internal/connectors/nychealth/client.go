// Package nychealth downloads the NYC Health daily report PDFs.
package nychealth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"nychealth/internal"
	"nychealth/internal/config"
	"nychealth/internal/connectors"
	"nychealth/internal/extract"
)

// Client fetches report tables. A report is republished under increasing
// version numbers, so the newest version is tried first.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
	archive    *connectors.DocumentArchive
	extract    func([]byte) (internal.RawTable, error)
	logger     *log.Logger
}

// statusError is a non-2xx response.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("nyc health status %d", e.status)
}

func NewClient(cfg config.Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.FetchRateLimitRPS),
		extract: func(body []byte) (internal.RawTable, error) {
			return extract.FromBytes(extract.KindPDF, body)
		},
		logger: logger,
	}
	if strings.TrimSpace(cfg.ArchiveDir) != "" {
		c.archive = connectors.NewDocumentArchive(cfg.ArchiveDir)
	}
	return c
}

// ReportURL builds the document URL, e.g. for deaths on 2020-04-14 version 1:
// <base>deaths-04142020-1.pdf. The summary report has no name segment.
func (c *Client) ReportURL(report internal.ReportType, date time.Time, version int) string {
	name := ""
	if report != internal.ReportSummary {
		name = string(report) + "-"
	}
	return fmt.Sprintf("%s%s%s-%d.pdf", c.cfg.ReportBaseURL, name, date.Format("01022006"), version)
}

func (c *Client) Fetch(ctx context.Context, report internal.ReportType, date time.Time) (internal.RawTable, error) {
	body, url, err := c.Download(ctx, report, date)
	if err != nil {
		return nil, err
	}
	table, err := c.extract(body)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
	return table, nil
}

// Download returns the newest published version of a report document. It
// returns connectors.ErrAbsent when no version could be retrieved.
func (c *Client) Download(ctx context.Context, report internal.ReportType, date time.Time) ([]byte, string, error) {
	for version := c.cfg.ReportMaxVersion; version >= 1; version-- {
		url := c.ReportURL(report, date, version)
		body, err := c.get(ctx, url)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, "", ctxErr
			}
			c.logger.Printf("report unavailable url=%s err=%v", url, err)
			continue
		}

		if c.archive != nil {
			doc, err := c.archive.Store(report, date, string(extract.KindPDF), body)
			if err != nil {
				return nil, "", fmt.Errorf("archive %s: %w", url, err)
			}
			c.logger.Printf("archived report url=%s path=%s sha256=%s", url, doc.Path, doc.Hash)
		}
		return body, url, nil
	}
	return nil, "", connectors.ErrAbsent
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	attempts := c.cfg.FetchMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/pdf")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}
		lastErr = &statusError{status: resp.StatusCode}
		if !isRetryableStatus(resp.StatusCode) || attempt == attempts {
			break
		}
		backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
		if err := sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = errors.New("nyc health request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
