package extract

import (
	"bytes"
	"errors"

	"github.com/xuri/excelize/v2"

	"nychealth/internal"
	"nychealth/internal/util"
)

// parseXLSX reads the sheet with the most rows.
func parseXLSX(content []byte) (internal.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var best internal.RawTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) <= len(best) {
			continue
		}
		table := make(internal.RawTable, 0, len(rows))
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				cells = append(cells, util.NormalizeSpaces(c))
			}
			table = append(table, cells)
		}
		best = table
	}

	if best == nil {
		return nil, errors.New("no rows in xlsx workbook")
	}
	return best, nil
}
