package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/types"
)

const cvID = "5f0c7a4e-1f7b-4a8e-9f10-2b9c6b1f0a11"

func s(v string) *string { return &v }
func b(v bool) *bool     { return &v }
func f(v float64) *float64 {
	return &v
}

func fullBundle() *records.Bundle {
	score := records.Scalar("82")
	return &records.Bundle{
		CV: records.CV{ID: cvID, CreatedAt: s("2024-03-01T10:00:00Z")},
		PersonalInfo: &records.PersonalInfo{
			FirstName:       s("Jane"),
			MiddleName:      s("Q"),
			LastName:        s("Doe"),
			Email:           s("jane@example.org"),
			CountryCode:     s("DE"),
			Country:         s("Germany"),
			NationalityCode: s("DE"),
			Birthdate:       s("1990-04-12"),
			ProfileSummaries: []records.Content{
				{Content: s("First paragraph")},
				{Content: s("Second paragraph")},
			},
		},
		WorkExperience: []records.WorkExperience{{
			ID:          s("0b9f3a52-6a57-4d0e-bb59-1a0c3b1a7c01"),
			Description: s("Platform team"),
			Companies: &records.Company{
				ID:          s("9d1e0b7a-2f3c-4c5d-8e6f-7a8b9c0d1e2f"),
				Name:        s("Acme"),
				Industry:    s("Finance"),
				City:        s("Berlin"),
				Description: s("Makes anvils"),
				Website:     s("https://acme.example"),
			},
			Positions: []records.Position{{
				Period:           records.Period{StartDate: s("2019-01-01"), EndDate: s("2020-05-01"), Current: b(true)},
				Title:            s("Engineer"),
				Responsibilities: []records.Content{{Content: s("Led migrations")}, {Content: s("")}, {Content: s("Hired team")}},
				Projects: []records.PositionProject{{
					Name: s("Atlas"),
					Skills: []records.ProjectSkill{
						{Name: s("Go"), Score: f(79.6), Type: s(records.SkillTechnical)},
						{Name: s("Mentoring"), Score: f(60), Type: s(records.SkillNonTechnical)},
						{Name: s("Mystery"), Type: s("other")},
					},
				}},
			}},
		}},
		Education: []records.Education{{
			Degree: s("BSc"),
			EducationSkills: []records.SkillLink{
				{Skills: &records.Skill{Name: s("Statistics"), Domain: s("Math")}},
				{Skills: nil},
				{Skills: &records.Skill{Name: s("Econometrics")}},
			},
		}},
		Certifications: []records.Certification{
			{Name: s("CKA"), IssueDate: s("2021-02-03"), IssuingOrganization: s("CNCF")},
			{Name: s("AWS SA"), Companies: &records.Company{Name: s("Amazon")}, IssuingOrganization: s("ignored")},
		},
		Trainings: []records.Training{{Title: s("Workshop"), Provider: s("Local Guild")}},
		Languages: []records.Language{
			{Name: s("German"), Proficiency: s("c1")},
			{Name: s("Klingon"), Proficiency: s("Warrior")},
		},
		PersonalityTests: []records.PersonalityTest{
			{Type: s("Big Five"), Trait: s("Openness"), Score: &score},
			{Type: s("DISC"), Results: []records.PersonalityResult{{Trait: s("Dominance"), Score: &score}}},
		},
		Projects: []records.Project{{
			Title:  s("Side project"),
			Skills: []records.ProjectSkill{{Name: s("Rust"), Score: f(40), Type: s(records.SkillTechnical)}},
		}},
	}
}

func TestCV_FieldMapping(t *testing.T) {
	cv, err := CV(fullBundle())
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse(cvID), cv.ID)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), cv.CreatedAt)
	assert.True(t, cv.UpdatedAt.IsZero())

	pi := cv.PersonalInfo
	assert.Equal(t, "Jane", pi.FirstName)
	assert.Equal(t, "Q", pi.MiddleName)
	assert.Equal(t, "DE", pi.Country, "the country code wins over the legacy text column")
	assert.Equal(t, "DE", pi.Nationality)
	assert.Equal(t, types.NewDate(1990, time.April, 12), pi.Birthdate)
	require.Len(t, pi.ProfileSummaries, 2)
	assert.Equal(t, "Second paragraph", pi.ProfileSummaries[1].Content)

	require.Len(t, cv.WorkExperience, 1)
	we := cv.WorkExperience[0]
	assert.Equal(t, "Acme", we.Company)
	assert.Equal(t, "Berlin", we.Location)
	assert.Equal(t, "Finance", we.Sector)
	assert.Equal(t, "Makes anvils", we.CompanyDescription)
	assert.Equal(t, "Platform team", we.Description)
	assert.Equal(t, "https://acme.example", we.URL)
	assert.Equal(t, uuid.MustParse("9d1e0b7a-2f3c-4c5d-8e6f-7a8b9c0d1e2f"), we.CompanyID)

	pos := we.Positions[0]
	assert.True(t, pos.Current)
	assert.True(t, pos.EndDate.IsZero(), "current positions never keep an end date")
	assert.Equal(t, types.ListPopulated, pos.Responsibilities.State)
	assert.Equal(t, []string{"Led migrations", "Hired team"}, pos.Responsibilities.Values())
	assert.Equal(t, types.ListNotStarted, pos.Achievements.State)

	proj := pos.Projects[0]
	assert.Equal(t, []types.SkillScore{{Name: "Go", Score: 80}}, proj.TechnicalSkills)
	assert.Equal(t, []types.SkillScore{{Name: "Mentoring", Score: 60}}, proj.NonTechnicalSkills)
}

func TestCV_UnwrapsSkillLinks(t *testing.T) {
	cv, err := CV(fullBundle())
	require.NoError(t, err)

	skills := cv.Education[0].Skills
	require.Len(t, skills, 2)
	assert.Equal(t, "Statistics", skills[0].Name)
	assert.Equal(t, "Math", skills[0].Domain)
	assert.Equal(t, "Econometrics", skills[1].Name)
}

func TestCV_ShapeAdapters(t *testing.T) {
	cv, err := CV(fullBundle())
	require.NoError(t, err)

	assert.Equal(t, "CNCF", cv.Certifications[0].Issuer.Name, "legacy issuer text becomes a company")
	assert.Equal(t, "Amazon", cv.Certifications[1].Issuer.Name, "structured company wins")
	assert.Equal(t, "Local Guild", cv.Trainings[0].Provider.Name)

	legacy := cv.Personality[0]
	require.Len(t, legacy.Results, 1)
	assert.Equal(t, types.PersonalityResult{Trait: "Openness", Score: "82"}, legacy.Results[0])

	current := cv.Personality[1]
	require.Len(t, current.Results, 1)
	assert.Equal(t, "Dominance", current.Results[0].Trait)
}

func TestCV_Proficiency(t *testing.T) {
	cv, err := CV(fullBundle())
	require.NoError(t, err)

	assert.Equal(t, types.AdvancedC1, cv.Languages[0].Proficiency)
	assert.Equal(t, types.Proficiency("Warrior"), cv.Languages[1].Proficiency)
	assert.False(t, cv.Languages[1].Proficiency.Valid())
}

func TestCV_MissingPersonalInfo(t *testing.T) {
	cv, err := CV(&records.Bundle{CV: records.CV{ID: cvID}})
	require.NoError(t, err)

	assert.Equal(t, types.PersonalInfo{ProfileSummaries: []types.ProfileSummary{}}, cv.PersonalInfo)
	assert.NotNil(t, cv.WorkExperience)
	assert.NotNil(t, cv.Education)
	assert.NotNil(t, cv.Certifications)
	assert.NotNil(t, cv.Trainings)
	assert.NotNil(t, cv.Languages)
	assert.NotNil(t, cv.Awards)
	assert.NotNil(t, cv.Testimonials)
	assert.NotNil(t, cv.Personality)
	assert.NotNil(t, cv.Projects)
	assert.True(t, cv.IsEmpty())
}

func TestCV_ToleratesGarbageOptionals(t *testing.T) {
	bundle := &records.Bundle{
		CV: records.CV{ID: cvID, UpdatedAt: s("yesterday")},
		Awards: []records.Award{{
			ID:    s("not-a-uuid"),
			Title: s("Prize"),
			Date:  s("sometime"),
		}},
		Education: []records.Education{{Period: records.Period{EndDate: s("2020-13-40")}}},
	}

	cv, err := CV(bundle)
	require.NoError(t, err)
	assert.True(t, cv.UpdatedAt.IsZero())
	assert.Equal(t, uuid.Nil, cv.Awards[0].ID)
	assert.True(t, cv.Awards[0].Date.IsZero())
	assert.True(t, cv.Education[0].EndDate.IsZero())
	assert.False(t, cv.Education[0].Current)
}

func TestCV_MalformedRoot(t *testing.T) {
	tests := []struct {
		name   string
		bundle *records.Bundle
	}{
		{"nil bundle", nil},
		{"missing id", &records.Bundle{}},
		{"blank id", &records.Bundle{CV: records.CV{ID: "   "}}},
		{"not a uuid", &records.Bundle{CV: records.CV{ID: "cv-1"}}},
		{"nil uuid", &records.Bundle{CV: records.CV{ID: uuid.Nil.String()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CV(tt.bundle)
			var nerr *NormalizationError
			require.ErrorAs(t, err, &nerr)
		})
	}
}

func TestCV_Idempotent(t *testing.T) {
	first, err := CV(fullBundle())
	require.NoError(t, err)
	second, err := CV(fullBundle())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCV_DoesNotMutateInput(t *testing.T) {
	bundle := fullBundle()
	before, err := json.Marshal(bundle)
	require.NoError(t, err)

	_, err = CV(bundle)
	require.NoError(t, err)

	after, err := json.Marshal(bundle)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	require.NotNil(t, bundle.WorkExperience[0].Positions[0].EndDate, "records keep the stored end date")
}

func TestCV_CompletionMatchesCollections(t *testing.T) {
	cv, err := CV(fullBundle())
	require.NoError(t, err)

	for _, st := range cv.Completion() {
		assert.Equal(t, cv.Len(st.Section) > 0, st.Complete, st.Section)
	}
	byName := map[types.Section]bool{}
	for _, st := range cv.Completion() {
		byName[st.Section] = st.Complete
	}
	assert.True(t, byName[types.SectionWorkExperience])
	assert.False(t, byName[types.SectionAwards])
	assert.False(t, byName[types.SectionTestimonials])
}
