package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"nychealth/internal"
	"nychealth/internal/util"
)

const (
	headerAgeGroup    = "Age Group"
	headerAgeOver50   = "Age 50 and over"
	headerSex         = "Sex"
	headerBorough     = "Borough"
	headerUnderlying  = "Underlying Illness"
	labelTotal        = "Total"
	labelConfirmed    = "Number of Confirmed Cases"
	labelDeaths       = "Deaths"
	labelPendingCheck = "Pending Investigation"
)

var (
	ageRangePattern = regexp.MustCompile(`^(\d+) to (\d+)`)
	ageOverPattern  = regexp.MustCompile(`^(\d+) and over`)
)

// Classify maps the active section header and a row label to the
// stratification fields they denote. The boolean is false when no rule
// recognized the pair; the strata are then empty.
func Classify(header, label string) (internal.Strata, bool) {
	header = util.TrimDecoration(header)
	label = util.NormalizeSpaces(strings.ReplaceAll(label, "-", ""))

	if isGrandTotal(label) {
		return internal.Strata{}, true
	}
	if label == "" {
		return internal.Strata{}, false
	}

	// Rules are tried in order; a header matching several targets falls
	// through to the next rule when a label is not in a rule's vocabulary.
	if headerMatches(header, headerAgeGroup) {
		if m := ageRangePattern.FindStringSubmatch(label); m != nil {
			return ages(atoi(m[1]), atoi(m[2])), true
		}
		if m := ageOverPattern.FindStringSubmatch(label); m != nil {
			return ages(atoi(m[1]), internal.MaxAge), true
		}
		if strings.EqualFold(label, internal.Unknown) {
			return internal.Strata{AgeMin: internal.UnknownBound(), AgeMax: internal.UnknownBound()}, true
		}
	}
	if headerMatches(header, headerAgeOver50) {
		switch {
		case strings.EqualFold(label, "Yes"):
			return ages(50, internal.MaxAge), true
		case strings.EqualFold(label, "No"):
			return ages(0, 50), true
		}
	}
	if headerMatches(header, headerSex) {
		return internal.Strata{Sex: util.StringPtr(label)}, true
	}
	if headerMatches(header, headerBorough) {
		return internal.Strata{Subregion: util.StringPtr(label)}, true
	}
	if headerMatches(header, headerUnderlying) {
		switch {
		case strings.EqualFold(label, "Yes"):
			return internal.Strata{UnderlyingConditions: internal.ConditionYes}, true
		case strings.EqualFold(label, "No"):
			return internal.Strata{UnderlyingConditions: internal.ConditionNo}, true
		case strings.EqualFold(label, labelPendingCheck):
			return internal.Strata{UnderlyingConditions: internal.ConditionUnknown}, true
		}
	}

	return internal.Strata{}, false
}

func isGrandTotal(label string) bool {
	return strings.EqualFold(label, labelTotal) ||
		strings.EqualFold(label, labelConfirmed) ||
		strings.EqualFold(label, labelDeaths)
}

// headerMatches tolerates truncated and extended headers, such as "Age" for
// "Age Group" or "Borough of residence" for "Borough".
func headerMatches(header, target string) bool {
	if header == "" {
		return false
	}
	h := strings.ToLower(header)
	t := strings.ToLower(target)
	return strings.Contains(t, h) || strings.Contains(h, t)
}

func ages(lo, hi int) internal.Strata {
	return internal.Strata{AgeMin: internal.Years(lo), AgeMax: internal.Years(hi)}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
