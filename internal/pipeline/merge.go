package pipeline

import "nychealth/internal"

// Merge reconciles the records every report produced for a date. Records
// sharing a stratification key are collapsed into the first one seen, with
// counts from later records written over it. Output keeps first-seen order
// and the input slice is left untouched.
func Merge(records []internal.Record) []internal.Record {
	out := make([]internal.Record, 0, len(records))
	index := make(map[internal.Key]int, len(records))
	for _, rec := range records {
		key := rec.Key()
		if i, ok := index[key]; ok {
			out[i].Union(rec)
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}
