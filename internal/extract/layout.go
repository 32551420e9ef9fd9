package extract

import (
	"sort"
	"strings"

	"nychealth/internal"
	"nychealth/internal/util"
)

const (
	// Runs closer than wordGap belong to the same word.
	wordGap = 1.0
	// Runs further apart than cellGap start a new cell.
	cellGap = 12.0
	// Right edges within columnTolerance share a column.
	columnTolerance = 18.0
)

// span is one positioned text run on a line.
type span struct {
	X float64
	W float64
	S string
}

type layoutCell struct {
	left  float64
	right float64
	text  string
}

// layoutLines rebuilds table columns from positioned runs. The leftmost
// cell of a line starting at the page's label margin is column 0; every
// other cell is assigned to a column by its right edge, since counts are
// right aligned.
func layoutLines(lines [][]span) internal.RawTable {
	cells := make([][]layoutCell, 0, len(lines))
	margin := -1.0
	for _, line := range lines {
		row := splitCells(line)
		if len(row) == 0 {
			continue
		}
		if margin < 0 || row[0].left < margin {
			margin = row[0].left
		}
		cells = append(cells, row)
	}

	edges := make([]float64, 0)
	for _, row := range cells {
		for i, c := range row {
			if i == 0 && c.left-margin <= columnTolerance {
				continue
			}
			edges = append(edges, c.right)
		}
	}
	columns := clusterEdges(edges)

	table := make(internal.RawTable, 0, len(cells))
	for _, row := range cells {
		out := make([]string, len(columns)+1)
		for i, c := range row {
			if i == 0 && c.left-margin <= columnTolerance {
				out[0] = c.text
				continue
			}
			col := nearestColumn(columns, c.right) + 1
			if out[col] != "" {
				out[col] += " " + c.text
			} else {
				out[col] = c.text
			}
		}
		table = append(table, out)
	}
	return table
}

func splitCells(line []span) []layoutCell {
	sorted := append([]span(nil), line...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	out := make([]layoutCell, 0, len(sorted))
	var b strings.Builder
	var cur *layoutCell
	flush := func() {
		if cur == nil {
			return
		}
		cur.text = util.NormalizeSpaces(b.String())
		if cur.text != "" {
			out = append(out, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, s := range sorted {
		if cur != nil {
			gap := s.X - cur.right
			if gap > cellGap {
				flush()
			} else if gap > wordGap {
				b.WriteByte(' ')
			}
		}
		if cur == nil {
			cur = &layoutCell{left: s.X, right: s.X}
		}
		b.WriteString(s.S)
		if end := s.X + s.W; end > cur.right {
			cur.right = end
		}
	}
	flush()
	return out
}

// clusterEdges groups right edges into column positions, left to right.
func clusterEdges(edges []float64) []float64 {
	if len(edges) == 0 {
		return nil
	}
	sorted := append([]float64(nil), edges...)
	sort.Float64s(sorted)

	columns := []float64{}
	start, sum, n := sorted[0], 0.0, 0
	for _, e := range sorted {
		if e-start > columnTolerance {
			columns = append(columns, sum/float64(n))
			start, sum, n = e, 0, 0
		}
		sum += e
		n++
	}
	return append(columns, sum/float64(n))
}

func nearestColumn(columns []float64, edge float64) int {
	best, bestDist := 0, -1.0
	for i, c := range columns {
		d := c - edge
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
