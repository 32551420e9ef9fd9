package internal

import (
	"strconv"
	"time"

	"nychealth/internal/util"
)

const (
	CountryID = "US"
	RegionID  = "NY"

	// MaxAge closes open-ended "N and over" bands.
	MaxAge = 110

	Unknown = "Unknown"

	DateLayout = "2006-01-02"
)

type ReportType string

const (
	ReportSummary          ReportType = "summary"
	ReportHospitalizations ReportType = "hospitalizations"
	ReportDeaths           ReportType = "deaths"
)

// ReportTypes lists the published reports in processing order.
var ReportTypes = []ReportType{ReportSummary, ReportHospitalizations, ReportDeaths}

func ParseReportType(value string) (ReportType, bool) {
	for _, r := range ReportTypes {
		if string(r) == value {
			return r, true
		}
	}
	return "", false
}

// RawTable is a table as the extraction layer yields it. Column 0 carries
// section headers or stratum labels; an empty cell is a missing value.
type RawTable [][]string

// CleanTable is a preprocessed table in which every row is Columns wide.
type CleanTable struct {
	Columns int
	Rows    [][]string
}

type Bound struct {
	Years   int
	Unknown bool
}

func Years(n int) *Bound { return &Bound{Years: n} }

func UnknownBound() *Bound { return &Bound{Unknown: true} }

func (b *Bound) String() string {
	if b == nil {
		return ""
	}
	if b.Unknown {
		return Unknown
	}
	return strconv.Itoa(b.Years)
}

// ParseBound is the inverse of Bound.String.
func ParseBound(value string) (*Bound, bool) {
	switch value {
	case "":
		return nil, true
	case Unknown:
		return UnknownBound(), true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, false
	}
	return Years(n), true
}

type Condition int

const (
	ConditionAbsent Condition = iota
	ConditionYes
	ConditionNo
	ConditionUnknown
)

func (c Condition) String() string {
	switch c {
	case ConditionYes:
		return "True"
	case ConditionNo:
		return "False"
	case ConditionUnknown:
		return Unknown
	default:
		return ""
	}
}

func ParseCondition(value string) (Condition, bool) {
	switch value {
	case "":
		return ConditionAbsent, true
	case "True", "true":
		return ConditionYes, true
	case "False", "false":
		return ConditionNo, true
	case Unknown:
		return ConditionUnknown, true
	default:
		return ConditionAbsent, false
	}
}

// Strata is the set of stratification fields a header/label pair denotes.
type Strata struct {
	Subregion            *string
	Sex                  *string
	AgeMin               *Bound
	AgeMax               *Bound
	UnderlyingConditions Condition
}

func (s Strata) Empty() bool {
	return s.Subregion == nil && s.Sex == nil && s.AgeMin == nil && s.AgeMax == nil && s.UnderlyingConditions == ConditionAbsent
}

type Record struct {
	Date                 time.Time
	CountryID            string
	RegionID             string
	Subregion            *string
	Sex                  *string
	AgeMin               *Bound
	AgeMax               *Bound
	UnderlyingConditions Condition

	ConfirmedTot    *int
	DeathsTot       *int
	HospitalizedTot *int
}

func NewRecord(date time.Time) Record {
	return Record{Date: Day(date), CountryID: CountryID, RegionID: RegionID}
}

// Key identifies a stratum on a date. Absent fields are "".
type Key struct {
	Date                 string
	CountryID            string
	RegionID             string
	Subregion            string
	Sex                  string
	AgeMin               string
	AgeMax               string
	UnderlyingConditions Condition
}

func (r Record) Key() Key {
	return Key{
		Date:                 r.Date.Format(DateLayout),
		CountryID:            r.CountryID,
		RegionID:             r.RegionID,
		Subregion:            util.Deref(r.Subregion),
		Sex:                  util.Deref(r.Sex),
		AgeMin:               r.AgeMin.String(),
		AgeMax:               r.AgeMax.String(),
		UnderlyingConditions: r.UnderlyingConditions,
	}
}

func (r *Record) ApplyStrata(s Strata) {
	if s.Subregion != nil {
		r.Subregion = s.Subregion
	}
	if s.Sex != nil {
		r.Sex = s.Sex
	}
	if s.AgeMin != nil {
		r.AgeMin = s.AgeMin
	}
	if s.AgeMax != nil {
		r.AgeMax = s.AgeMax
	}
	if s.UnderlyingConditions != ConditionAbsent {
		r.UnderlyingConditions = s.UnderlyingConditions
	}
}

// Union copies every count populated on other onto r.
func (r *Record) Union(other Record) {
	if other.ConfirmedTot != nil {
		r.ConfirmedTot = other.ConfirmedTot
	}
	if other.DeathsTot != nil {
		r.DeathsTot = other.DeathsTot
	}
	if other.HospitalizedTot != nil {
		r.HospitalizedTot = other.HospitalizedTot
	}
}

func (r Record) HasCounts() bool {
	return r.ConfirmedTot != nil || r.DeathsTot != nil || r.HospitalizedTot != nil
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

type RunRow struct {
	ID        int
	TraceID   string
	Date      string
	Reports   map[string]int
	Records   int
	CreatedAt string
}
