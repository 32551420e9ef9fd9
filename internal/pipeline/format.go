package pipeline

import (
	"log"
	"strings"
	"time"

	"nychealth/internal"
	"nychealth/internal/util"
)

// HeaderState carries the active section header across a table scan.
type HeaderState struct {
	Header string
}

// Next advances the state over one row. A row whose primary column is
// missing is a section header: its label becomes the active header and the
// row yields no data.
func (s HeaderState) Next(row []string, primary int) (HeaderState, bool) {
	if cell(row, primary) == "" {
		return HeaderState{Header: cell(row, 0)}, false
	}
	return s, true
}

// DataRow is a data row paired with the header active when it was read.
type DataRow struct {
	Header string
	Cells  []string
}

func (r DataRow) Label() string { return cell(r.Cells, 0) }

func ScanRows(rows [][]string, primary int) ([]DataRow, HeaderState) {
	state := HeaderState{}
	out := make([]DataRow, 0, len(rows))
	for _, row := range rows {
		next, isData := state.Next(row, primary)
		if isData {
			out = append(out, DataRow{Header: state.Header, Cells: row})
		}
		state = next
	}
	return out, state
}

// Deaths v2 columns, in table order, and the condition each one reports.
var deathsV2Columns = []internal.Condition{
	internal.ConditionYes,
	internal.ConditionNo,
	internal.ConditionUnknown,
	internal.ConditionAbsent,
}

// FormatReport turns a cleaned table of one report type into records.
// Unrecognized shapes yield no records.
func FormatReport(report internal.ReportType, table internal.CleanTable, date time.Time, logger *log.Logger) []internal.Record {
	if logger == nil {
		logger = log.Default()
	}
	f := formatter{report: report, date: internal.Day(date), logger: logger}

	shape := DetectShape(report, table)
	switch shape {
	case ShapeSummary:
		return f.summary(table.Rows)
	case ShapeHospitalization:
		return f.hospitalization(table.Rows)
	case ShapeDeathsV1:
		return f.deathsV1(table.Rows)
	case ShapeDeathsV2:
		return f.deathsV2(table.Rows)
	default:
		logger.Printf("unrecognized table shape report=%s date=%s columns=%d", report, f.day(), table.Columns)
		return nil
	}
}

type formatter struct {
	report internal.ReportType
	date   time.Time
	logger *log.Logger
}

func (f formatter) summary(rows [][]string) []internal.Record {
	data, _ := ScanRows(rows, 1)
	out := make([]internal.Record, 0, len(data))
	for _, row := range data {
		rec := f.seed(row)
		// Some summaries fold the death total in as a data row.
		if strings.EqualFold(util.NormalizeSpaces(row.Label()), labelDeaths) {
			rec.DeathsTot = f.count(row, 1)
		} else {
			rec.ConfirmedTot = f.count(row, 1)
		}
		out = f.appendRecord(out, row, rec)
	}
	return out
}

func (f formatter) hospitalization(rows [][]string) []internal.Record {
	data, _ := ScanRows(rows, 2)
	out := make([]internal.Record, 0, len(data))
	for _, row := range data {
		rec := f.seed(row)
		rec.HospitalizedTot = f.count(row, 1)
		rec.ConfirmedTot = f.count(row, 2)
		out = f.appendRecord(out, row, rec)
	}
	return out
}

func (f formatter) deathsV1(rows [][]string) []internal.Record {
	data, _ := ScanRows(rows, 1)
	out := make([]internal.Record, 0, len(data))
	for _, row := range data {
		rec := f.seed(row)
		rec.DeathsTot = f.count(row, 1)
		out = f.appendRecord(out, row, rec)
	}
	return out
}

func (f formatter) deathsV2(rows [][]string) []internal.Record {
	data, _ := ScanRows(rows, 4)
	out := make([]internal.Record, 0, len(data)*len(deathsV2Columns))
	for _, row := range data {
		base := f.seed(row)
		for i, condition := range deathsV2Columns {
			col := i + 1
			if cell(row.Cells, col) == "" {
				continue
			}
			rec := base
			rec.UnderlyingConditions = condition
			rec.DeathsTot = f.count(row, col)
			out = f.appendRecord(out, row, rec)
		}
	}
	return out
}

func (f formatter) seed(row DataRow) internal.Record {
	rec := internal.NewRecord(f.date)
	strata, ok := Classify(row.Header, row.Label())
	if !ok {
		f.logger.Printf("unclassified stratum report=%s date=%s header=%q label=%q", f.report, f.day(), row.Header, row.Label())
	}
	rec.ApplyStrata(strata)
	return rec
}

func (f formatter) count(row DataRow, col int) *int {
	value := cell(row.Cells, col)
	if value == "" {
		return nil
	}
	n, ok := util.LeadingCount(value)
	if !ok {
		f.logger.Printf("unparseable count report=%s date=%s label=%q column=%d value=%q", f.report, f.day(), row.Label(), col, value)
		return nil
	}
	return util.IntPtr(n)
}

func (f formatter) appendRecord(out []internal.Record, row DataRow, rec internal.Record) []internal.Record {
	if !rec.HasCounts() {
		f.logger.Printf("dropped row without counts report=%s date=%s label=%q", f.report, f.day(), row.Label())
		return out
	}
	return append(out, rec)
}

func (f formatter) day() string { return f.date.Format(internal.DateLayout) }

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
