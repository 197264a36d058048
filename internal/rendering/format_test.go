package rendering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-builder/internal/types"
)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "May 2020", FormatDate(types.NewDate(2020, time.May, 1)))
	assert.Equal(t, "", FormatDate(types.Date{}))
	assert.Equal(t, "", FormatDate(types.ParseDate("garbage")))
	assert.Equal(t, "12 April 1990", FormatDay(types.NewDate(1990, time.April, 12)))
}

func TestDateRange(t *testing.T) {
	start := types.NewDate(2019, time.January, 1)
	end := types.NewDate(2020, time.May, 1)

	tests := []struct {
		name   string
		period types.Period
		want   string
	}{
		{"finished", types.Period{StartDate: start, EndDate: end}, "January 2019 – May 2020"},
		{"current", types.Period{StartDate: start, Current: true}, "January 2019 – Present"},
		{"current ignores stored end", types.Period{StartDate: start, EndDate: end, Current: true}, "January 2019 – Present"},
		{"missing end", types.Period{StartDate: start}, "January 2019 –"},
		{"missing start", types.Period{EndDate: end}, "– May 2020"},
		{"nothing", types.Period{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateRange(tt.period))
		})
	}
}

func TestIndustries(t *testing.T) {
	work := []types.WorkExperience{
		{Sector: "Finance"},
		{Sector: "Tech"},
		{Sector: "Finance"},
		{Sector: " "},
		{Sector: "Health"},
	}
	assert.Equal(t, []string{"Finance", "Tech", "Health"}, Industries(work))
	assert.Empty(t, Industries(nil))
}

func TestCountryMap(t *testing.T) {
	m := NewCountryMap([]types.Country{{Code: "de", Name: "Germany", Nationality: "German"}})

	c, ok := m.Country("DE")
	assert.True(t, ok)
	assert.Equal(t, "Germany", c.Name)

	assert.Equal(t, "Germany", countryName(m, "de"))
	assert.Equal(t, "German", nationalityLabel(m, "DE"))
	assert.Equal(t, "Atlantis", countryName(m, "Atlantis"))
	assert.Equal(t, "Atlantean", nationalityLabel(nil, "Atlantean"))
}

func TestStylesheet(t *testing.T) {
	css, err := Stylesheet(DefaultOptions())
	assert.NoError(t, err)
	assert.Contains(t, css, "@page { size: A4 portrait; margin: 10mm; }")
	assert.Contains(t, css, ".avoid-break { break-inside: avoid;")

	css, err = Stylesheet(Options{PageSize: "Letter", Landscape: true, MarginMM: 12.5})
	assert.NoError(t, err)
	assert.Contains(t, css, "@page { size: Letter landscape; margin: 12.5mm; }")
}
