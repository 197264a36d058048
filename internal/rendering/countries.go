package rendering

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// CountryLookup resolves a country code to its reference data.
type CountryLookup interface {
	Country(code string) (types.Country, bool)
}

// CountryMap is an in-memory CountryLookup keyed by upper-case code.
type CountryMap map[string]types.Country

// NewCountryMap indexes countries by code.
func NewCountryMap(countries []types.Country) CountryMap {
	m := make(CountryMap, len(countries))
	for _, c := range countries {
		m[strings.ToUpper(strings.TrimSpace(c.Code))] = c
	}
	return m
}

// Country implements CountryLookup.
func (m CountryMap) Country(code string) (types.Country, bool) {
	c, ok := m[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// countryName returns the display name for a code, or the value itself for
// legacy free-text rows.
func countryName(lookup CountryLookup, value string) string {
	if lookup != nil {
		if c, ok := lookup.Country(value); ok && c.Name != "" {
			return c.Name
		}
	}
	return strings.TrimSpace(value)
}

// nationalityLabel returns the nationality adjective for a code, or the value itself.
func nationalityLabel(lookup CountryLookup, value string) string {
	if lookup != nil {
		if c, ok := lookup.Country(value); ok && c.Nationality != "" {
			return c.Nationality
		}
	}
	return strings.TrimSpace(value)
}
