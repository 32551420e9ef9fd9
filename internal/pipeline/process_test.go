package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"nychealth/internal"
	"nychealth/internal/connectors"
)

type stubFetcher struct {
	tables map[internal.ReportType]internal.RawTable
	errs   map[internal.ReportType]error
	calls  []internal.ReportType
}

func (f *stubFetcher) Fetch(_ context.Context, report internal.ReportType, _ time.Time) (internal.RawTable, error) {
	f.calls = append(f.calls, report)
	if err, ok := f.errs[report]; ok {
		return nil, err
	}
	if table, ok := f.tables[report]; ok {
		return table, nil
	}
	return nil, connectors.ErrAbsent
}

type runLog struct {
	traceID string
	date    time.Time
	reports map[string]int
	records int
}

type stubRuns struct{ runs []runLog }

func (s *stubRuns) InsertRun(traceID string, date time.Time, reports map[string]int, records int) error {
	s.runs = append(s.runs, runLog{traceID: traceID, date: date, reports: reports, records: records})
	return nil
}

func TestProcessDateMergesReports(t *testing.T) {
	fetcher := &stubFetcher{
		tables: map[internal.ReportType]internal.RawTable{
			internal.ReportSummary: {
				{"Total", "1,000"},
				{"Sex", ""},
				{"Female", "400"},
			},
			internal.ReportHospitalizations: {
				{"Total", "200", "1,000"},
			},
		},
		errs: map[internal.ReportType]error{
			internal.ReportDeaths: errors.New("connection reset"),
		},
	}
	runs := &stubRuns{}

	svc := NewProcessingService(fetcher, runs, quietLogger())
	records, err := svc.ProcessDate(context.Background(), april1.Add(15*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if len(fetcher.calls) != len(internal.ReportTypes) {
		t.Fatalf("expected every report to be fetched, got %v", fetcher.calls)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 merged records, got %d", len(records))
	}
	total := records[0]
	if countOf(total.ConfirmedTot) != 1000 || countOf(total.HospitalizedTot) != 200 {
		t.Fatalf("unexpected total: confirmed=%d hosp=%d", countOf(total.ConfirmedTot), countOf(total.HospitalizedTot))
	}
	if !total.Date.Equal(april1) {
		t.Fatalf("expected date truncated to %s, got %s", april1, total.Date)
	}

	if len(runs.runs) != 1 {
		t.Fatalf("expected one run row, got %d", len(runs.runs))
	}
	run := runs.runs[0]
	if run.traceID == "" || run.records != 2 {
		t.Fatalf("unexpected run row: %+v", run)
	}
	if run.reports["summary"] != 2 || run.reports["hospitalizations"] != 1 || run.reports["deaths"] != 0 {
		t.Fatalf("unexpected per-report counts: %v", run.reports)
	}
}

func TestProcessDateNothingPublished(t *testing.T) {
	svc := NewProcessingService(&stubFetcher{}, nil, quietLogger())
	records, err := svc.ProcessDate(context.Background(), april1)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestProcessDateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &stubFetcher{}
	svc := NewProcessingService(fetcher, nil, quietLogger())
	if _, err := svc.ProcessDate(ctx, april1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("expected no fetches after cancellation, got %v", fetcher.calls)
	}
}

func TestNormalizeTableWithoutAnchor(t *testing.T) {
	raw := internal.RawTable{{"Queens", "12"}}
	if records := NormalizeTable(internal.ReportSummary, raw, april1, quietLogger()); len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
