package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Deaths", nil},
		{"Age Group", nil},
		{"0 to 17", 1},
		{"75 and over", 1204},
	})
	table, err := FromBytes(KindXLSX, blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != 4 {
		t.Fatalf("len=%d", len(table))
	}
	if table[3][0] != "75 and over" || table[3][1] != "1204" {
		t.Fatalf("row=%q", table[3])
	}
}

func TestParseHTMLPicksLargestTable(t *testing.T) {
	html := `<html><body>
<table><tr><td>Updated</td><td>April 1</td></tr></table>
<table>
<tr><th>Age Group</th><th></th></tr>
<tr><td>0 to 17</td><td>1,204 (2%)</td></tr>
<tr><td>Sex</td><td></td></tr>
<tr><td>Female</td><td> 3 </td></tr>
</table></body></html>`
	table, err := FromBytes(KindHTML, []byte(html))
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != 4 {
		t.Fatalf("len=%d", len(table))
	}
	if table[1][1] != "1,204 (2%)" || table[3][1] != "3" || table[2][1] != "" {
		t.Fatalf("table=%q", table)
	}
}

func TestFromFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deaths-2020-04-01.csv")
	if err := os.WriteFile(path, []byte("Total,12\nSex,\nMale,7,extra\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(table) != 3 || len(table[2]) != 3 || table[1][1] != "" {
		t.Fatalf("table=%q", table)
	}
}

func TestFromFileUnsupported(t *testing.T) {
	if _, err := FromFile("report.docx"); err == nil {
		t.Fatal("expected error")
	}
}
