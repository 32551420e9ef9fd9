package pipeline

import (
	"io"
	"log"
	"time"

	"nychealth/internal"
)

var april1 = time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

func countOf(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

func findRecord(records []internal.Record, match func(internal.Record) bool) (internal.Record, bool) {
	for _, r := range records {
		if match(r) {
			return r, true
		}
	}
	return internal.Record{}, false
}
