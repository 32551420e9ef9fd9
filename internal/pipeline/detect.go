package pipeline

import "nychealth/internal"

// Shape is a known table layout. Each shape has exactly one formatter.
type Shape int

const (
	ShapeUnrecognized Shape = iota
	ShapeSummary
	ShapeHospitalization
	ShapeDeathsV1
	ShapeDeathsV2
)

func (s Shape) String() string {
	switch s {
	case ShapeSummary:
		return "summary"
	case ShapeHospitalization:
		return "hospitalization"
	case ShapeDeathsV1:
		return "deaths_v1"
	case ShapeDeathsV2:
		return "deaths_v2"
	default:
		return "unrecognized"
	}
}

// DetectShape picks the layout of a cleaned table. Deaths tables changed
// layout when underlying-condition columns were added, so they are told
// apart by column count.
func DetectShape(report internal.ReportType, table internal.CleanTable) Shape {
	switch report {
	case internal.ReportSummary:
		if table.Columns >= 2 {
			return ShapeSummary
		}
	case internal.ReportHospitalizations:
		if table.Columns >= 3 {
			return ShapeHospitalization
		}
	case internal.ReportDeaths:
		switch table.Columns {
		case 2:
			return ShapeDeathsV1
		case 5:
			return ShapeDeathsV2
		}
	}
	return ShapeUnrecognized
}
