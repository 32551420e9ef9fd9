package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"nychealth/internal"
)

type stubProcessor struct {
	published map[string]int
	calls     []string
	failOn    string
	failWith  error
}

func (p *stubProcessor) ProcessDate(_ context.Context, date time.Time) ([]internal.Record, error) {
	day := date.Format(internal.DateLayout)
	p.calls = append(p.calls, day)
	if day == p.failOn {
		return nil, p.failWith
	}
	n, ok := p.published[day]
	if !ok {
		return nil, nil
	}
	rec := internal.NewRecord(date)
	rec.ConfirmedTot = intp(n)
	return []internal.Record{rec}, nil
}

func publishedThrough(start time.Time, days int) map[string]int {
	out := map[string]int{}
	for i := 0; i < days; i++ {
		out[start.AddDate(0, 0, -i).Format(internal.DateLayout)] = 100 - i
	}
	return out
}

func TestBackfillStopsAtFirstEmptyDate(t *testing.T) {
	start := time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC)
	proc := &stubProcessor{published: publishedThrough(start, 3)}

	res, err := NewBackfill(proc, nil, quietLogger()).Run(context.Background(), start, true)
	if err != nil {
		t.Fatal(err)
	}

	wantCalls := []string{"2020-04-10", "2020-04-09", "2020-04-08", "2020-04-07"}
	if len(proc.calls) != len(wantCalls) {
		t.Fatalf("calls = %v, want %v", proc.calls, wantCalls)
	}
	for i := range wantCalls {
		if proc.calls[i] != wantCalls[i] {
			t.Fatalf("calls = %v, want %v", proc.calls, wantCalls)
		}
	}

	if res.Dates != 3 || len(res.Records) != 3 {
		t.Fatalf("expected 3 dates of records, got dates=%d records=%d", res.Dates, len(res.Records))
	}
	if got := res.Records[0].Date.Format(internal.DateLayout); got != "2020-04-08" {
		t.Fatalf("records should be oldest first, got %s first", got)
	}
	if got := res.Oldest.Format(internal.DateLayout); got != "2020-04-08" {
		t.Fatalf("oldest = %s", got)
	}
}

func TestBackfillDisabledProcessesOnlyStart(t *testing.T) {
	start := time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC)
	proc := &stubProcessor{published: publishedThrough(start, 5)}

	res, err := NewBackfill(proc, nil, quietLogger()).Run(context.Background(), start, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(proc.calls) != 1 || res.Dates != 1 {
		t.Fatalf("expected a single date, calls=%v dates=%d", proc.calls, res.Dates)
	}
	if !res.Oldest.Equal(start) {
		t.Fatalf("oldest = %s, want %s", res.Oldest, start)
	}
}

func TestBackfillEmptyStartDate(t *testing.T) {
	start := time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC)
	proc := &stubProcessor{published: publishedThrough(start.AddDate(0, 0, -1), 5)}

	res, err := NewBackfill(proc, nil, quietLogger()).Run(context.Background(), start, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(proc.calls) != 1 || res.Dates != 0 || len(res.Records) != 0 {
		t.Fatalf("expected immediate stop, calls=%v dates=%d", proc.calls, res.Dates)
	}
	if !res.Oldest.IsZero() {
		t.Fatalf("expected zero oldest date, got %s", res.Oldest)
	}
}

func TestBackfillRespectsMinDate(t *testing.T) {
	start := time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC)
	minDate := time.Date(2020, 4, 9, 0, 0, 0, 0, time.UTC)
	proc := &stubProcessor{published: publishedThrough(start, 10)}

	res, err := NewBackfill(proc, &minDate, quietLogger()).Run(context.Background(), start, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(proc.calls) != 2 || res.Dates != 2 {
		t.Fatalf("expected walk to stop at min date, calls=%v", proc.calls)
	}
}

func TestBackfillReturnsPartialResultOnCancel(t *testing.T) {
	start := time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC)
	proc := &stubProcessor{
		published: publishedThrough(start, 10),
		failOn:    "2020-04-08",
		failWith:  context.Canceled,
	}

	res, err := NewBackfill(proc, nil, quietLogger()).Run(context.Background(), start, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Dates != 2 || len(res.Records) != 2 {
		t.Fatalf("expected the two processed dates, got %d", res.Dates)
	}
	if got := res.Oldest.Format(internal.DateLayout); got != "2020-04-09" {
		t.Fatalf("oldest = %s", got)
	}
}
