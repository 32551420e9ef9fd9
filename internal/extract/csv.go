package extract

import (
	"bytes"
	"encoding/csv"

	"nychealth/internal"
)

func parseCSV(content []byte) (internal.RawTable, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return internal.RawTable(rows), nil
}
