package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-builder/internal/types"
)

func TestFullName(t *testing.T) {
	pi := types.PersonalInfo{FirstName: "Jane", MiddleName: "Q", LastName: "Doe"}

	flags := Defaults()
	assert.Equal(t, "Jane Doe", FullName(pi, flags))

	flags.ShowMiddleName = true
	assert.Equal(t, "Jane Q Doe", FullName(pi, flags))

	assert.Equal(t, "Doe", FullName(types.PersonalInfo{MiddleName: "Q", LastName: "Doe"}, Defaults()))
	assert.Equal(t, "Jane Doe", FullName(types.PersonalInfo{FirstName: "Jane", LastName: "Doe"}, flags))
	assert.Equal(t, "", FullName(types.PersonalInfo{}, flags))
}

func TestAddress(t *testing.T) {
	full := types.PersonalInfo{
		Street:       "Hauptstraße",
		StreetNumber: "12",
		PostalCode:   "10115",
		City:         "Berlin",
	}

	tests := []struct {
		name    string
		info    types.PersonalInfo
		street  bool
		country string
		want    string
	}{
		{"full address", full, true, "Germany", "Hauptstraße 12, 10115 Berlin, Germany"},
		{"street hidden", full, false, "Germany", "Berlin, Germany"},
		{"street hidden without country", full, false, "", "Berlin"},
		{"street hidden without city", types.PersonalInfo{}, false, "Germany", "Germany"},
		{"incomplete street address", types.PersonalInfo{Street: "Hauptstraße", City: "Berlin"}, true, "Germany", ""},
		{"nothing", types.PersonalInfo{}, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := Defaults()
			flags.ShowStreetAddress = tt.street
			assert.Equal(t, tt.want, Address(tt.info, flags, tt.country))
		})
	}
}

func TestGates(t *testing.T) {
	pi := types.PersonalInfo{
		Email:              "jane@example.org",
		Phone:              "+49 30 1234",
		Birthdate:          types.NewDate(1990, time.April, 12),
		Nationality:        "DE",
		RelationshipStatus: "Married",
	}
	we := types.WorkExperience{CompanyDescription: "Makes anvils"}

	shown := Defaults()
	assert.Equal(t, pi.Email, shown.Email(pi))
	assert.Equal(t, pi.Phone, shown.Phone(pi))
	assert.Equal(t, pi.Birthdate, shown.Birthdate(pi))
	assert.Equal(t, "DE", shown.Nationality(pi))
	assert.Equal(t, "Married", shown.RelationshipStatus(pi))
	assert.Equal(t, "Makes anvils", shown.CompanyDescription(we))
	assert.Equal(t, "text", shown.WorkDescription(" text "))

	hidden := Flags{}
	assert.Empty(t, hidden.Email(pi))
	assert.Empty(t, hidden.Phone(pi))
	assert.True(t, hidden.Birthdate(pi).IsZero())
	assert.Empty(t, hidden.Nationality(pi))
	assert.Empty(t, hidden.RelationshipStatus(pi))
	assert.Empty(t, hidden.CompanyDescription(we))
	assert.Empty(t, hidden.WorkDescription("text"))
	assert.Empty(t, hidden.ProjectDescription("text"))
	assert.Empty(t, hidden.EducationDescription("text"))
	assert.Empty(t, hidden.TrainingDescription("text"))

	assert.Equal(t, "jane@example.org", pi.Email, "gating never changes the document")
}
