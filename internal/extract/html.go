package extract

import (
	"bytes"
	"errors"

	"github.com/PuerkitoBio/goquery"

	"nychealth/internal"
	"nychealth/internal/util"
)

// parseHTML reads the table with the most rows, matching how a PDF report
// carries one dominant table.
func parseHTML(content []byte) (internal.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var best internal.RawTable
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := internal.RawTable{}
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := []string{}
			tr.Find("th,td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(td.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) > len(best) {
			best = rows
		}
	})

	if best == nil {
		return nil, errors.New("no table in html document")
	}
	return best, nil
}
