package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	countPattern      = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*$|^\d+$`)
	wholeFloatPattern = regexp.MustCompile(`^(\d+)\.0+$`)
	trailingJunk      = regexp.MustCompile(`[^A-Za-z]+$`)
)

// LeadingCount parses the integer a count cell starts with, e.g. "1,204 (23%)"
// yields 1204. A fractional value such as "12.0" is accepted when it is whole.
// A first token that is not a well-formed count, such as "1,2345", is rejected.
func LeadingCount(cell string) (int, bool) {
	token := strings.TrimSpace(strings.ReplaceAll(cell, "\u00A0", " "))
	if token == "" {
		return 0, false
	}
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	token = strings.TrimRight(token, "*%)")
	if m := wholeFloatPattern.FindStringSubmatch(token); m != nil {
		token = m[1]
	}
	if !countPattern.MatchString(token) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// TrimDecoration drops footnote markers and other non-alphabetic runes the
// extraction layer leaves at the end of a header.
func TrimDecoration(input string) string {
	return strings.TrimSpace(trailingJunk.ReplaceAllString(NormalizeSpaces(input), ""))
}
