package pipeline

import (
	"nychealth/internal"
	"nychealth/internal/util"
)

// Cells the extraction layer is known to truncate by one leading glyph.
var truncatedCells = map[string]string{
	"ge Group":                 "Age Group",
	"umber of Confirmed Cases": "Number of Confirmed Cases",
	"eaths":                    "Deaths",
}

var anchorLabels = map[string]struct{}{
	"Age Group":                 {},
	"Number of Confirmed Cases": {},
	"Total":                     {},
}

const medianAgeLabel = "Median Age (Range)"

// Preprocess cleans an extracted table. It reports false when no anchor row
// is present, meaning the table shape was not recognized.
func Preprocess(raw internal.RawTable) (internal.CleanTable, bool) {
	width := 0
	for _, row := range raw {
		if len(row) > width {
			width = len(row)
		}
	}

	keep := make([]int, 0, width)
	for col := 0; col < width; col++ {
		for _, row := range raw {
			if col < len(row) && util.NormalizeSpaces(row[col]) != "" {
				keep = append(keep, col)
				break
			}
		}
	}
	if len(keep) == 0 {
		return internal.CleanTable{}, false
	}

	rows := make([][]string, 0, len(raw))
	for _, row := range raw {
		cells := make([]string, len(keep))
		for i, col := range keep {
			if col < len(row) {
				cells[i] = fixTruncated(util.NormalizeSpaces(row[col]))
			}
		}
		rows = append(rows, cells)
	}

	first := -1
	for i, row := range rows {
		if _, ok := anchorLabels[row[0]]; ok {
			first = i
			break
		}
	}
	if first < 0 {
		return internal.CleanTable{}, false
	}

	out := make([][]string, 0, len(rows)-first)
	for _, row := range rows[first:] {
		if row[0] == medianAgeLabel || blankRow(row) {
			continue
		}
		out = append(out, row)
	}

	return internal.CleanTable{Columns: len(keep), Rows: out}, true
}

func fixTruncated(cell string) string {
	if fixed, ok := truncatedCells[cell]; ok {
		return fixed
	}
	return cell
}

func blankRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
