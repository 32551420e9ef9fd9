package extract

import (
	"bytes"
	"errors"
	"sort"

	pdf "github.com/ledongthuc/pdf"

	"nychealth/internal"
)

// parsePDF lays out the first page, which carries the report table.
func parsePDF(content []byte) (internal.RawTable, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	if r.NumPage() < 1 {
		return nil, errors.New("pdf has no pages")
	}

	p := r.Page(1)
	if p.V.IsNull() {
		return nil, errors.New("pdf page 1 is empty")
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}

	// Larger positions are higher on the page.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	lines := make([][]span, 0, len(rows))
	for _, row := range rows {
		line := make([]span, 0, len(row.Content))
		for _, t := range row.Content {
			if t.S == "" {
				continue
			}
			line = append(line, span{X: t.X, W: t.W, S: t.S})
		}
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return layoutLines(lines), nil
}
