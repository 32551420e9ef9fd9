package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nychealth/internal"
)

func ExportRecordsToXLSX(records []internal.Record, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"date", "country_id", "region_id", "subregion", "sex", "age_min", "age_max",
		"underlying_conditions", "confirmed_tot", "deaths_tot", "hospitalized_tot",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		k := rec.Key()
		set(1, k.Date)
		set(2, k.CountryID)
		set(3, k.RegionID)
		set(4, k.Subregion)
		set(5, k.Sex)
		set(6, bound(rec.AgeMin))
		set(7, bound(rec.AgeMax))
		set(8, k.UnderlyingConditions.String())
		set(9, derefInt(rec.ConfirmedTot))
		set(10, derefInt(rec.DeathsTot))
		set(11, derefInt(rec.HospitalizedTot))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// bound writes numeric ages as numbers so spreadsheets can sort them.
func bound(b *internal.Bound) any {
	if b == nil {
		return ""
	}
	if b.Unknown {
		return internal.Unknown
	}
	return b.Years
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
