package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func NormalizeSpaces(input string) string {
	s := strings.ReplaceAll(input, "\u00A0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
