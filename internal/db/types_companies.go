package db

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeName creates a normalized version of a company or skill name for
// matching: lowercase with every non-alphanumeric character removed.
func NormalizeName(name string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(name), "")
}
