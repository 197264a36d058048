// Package normalize converts persistence records into the canonical CV document.
//
// Normalization is a pure transform: it never talks to storage, never mutates
// its input and resolves every missing optional value to its zero value. The
// only failure is a malformed root record.
package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/types"
)

// NormalizationError reports a malformed root record.
type NormalizationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *NormalizationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed CV record: %s %s: %v", e.Field, e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed CV record: %s %s", e.Field, e.Reason)
}

func (e *NormalizationError) Unwrap() error {
	return e.Cause
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
}

// CV normalizes a record bundle into a canonical document.
func CV(b *records.Bundle) (*types.CV, error) {
	if b == nil {
		return nil, &NormalizationError{Field: "cv", Reason: "is missing"}
	}
	id, err := RootID(b.CV)
	if err != nil {
		return nil, err
	}

	cv := &types.CV{
		ID:             id,
		CreatedAt:      timestamp(b.CV.CreatedAt),
		UpdatedAt:      timestamp(b.CV.UpdatedAt),
		PersonalInfo:   PersonalInfo(b.PersonalInfo),
		WorkExperience: make([]types.WorkExperience, 0, len(b.WorkExperience)),
		Education:      make([]types.Education, 0, len(b.Education)),
		Certifications: make([]types.Certification, 0, len(b.Certifications)),
		Trainings:      make([]types.Training, 0, len(b.Trainings)),
		Languages:      make([]types.Language, 0, len(b.Languages)),
		Awards:         make([]types.Award, 0, len(b.Awards)),
		Testimonials:   make([]types.Testimonial, 0, len(b.Testimonials)),
		Personality:    make([]types.PersonalityTest, 0, len(b.PersonalityTests)),
		Projects:       make([]types.Project, 0, len(b.Projects)),
	}

	for _, r := range b.WorkExperience {
		cv.WorkExperience = append(cv.WorkExperience, workExperience(r))
	}
	for _, r := range b.Education {
		cv.Education = append(cv.Education, education(r))
	}
	for _, r := range b.Certifications {
		cv.Certifications = append(cv.Certifications, certification(r))
	}
	for _, r := range b.Trainings {
		cv.Trainings = append(cv.Trainings, training(r))
	}
	for _, r := range b.Languages {
		cv.Languages = append(cv.Languages, language(r))
	}
	for _, r := range b.Awards {
		cv.Awards = append(cv.Awards, award(r))
	}
	for _, r := range b.Testimonials {
		cv.Testimonials = append(cv.Testimonials, testimonial(r))
	}
	for _, r := range b.PersonalityTests {
		cv.Personality = append(cv.Personality, personalityTest(r))
	}
	for _, r := range b.Projects {
		cv.Projects = append(cv.Projects, project(r))
	}

	cv.EnsureCollections()
	return cv, nil
}

// RootID validates and parses the root record identity.
func RootID(r records.CV) (uuid.UUID, error) {
	if strings.TrimSpace(r.ID) == "" {
		return uuid.Nil, &NormalizationError{Field: "cv.id", Reason: "is missing"}
	}
	id, err := uuid.Parse(strings.TrimSpace(r.ID))
	if err != nil {
		return uuid.Nil, &NormalizationError{Field: "cv.id", Reason: "is not a UUID", Cause: err}
	}
	if id == uuid.Nil {
		return uuid.Nil, &NormalizationError{Field: "cv.id", Reason: "is the nil UUID"}
	}
	return id, nil
}

// PersonalInfo maps the personal_info row. A nil record yields the zero
// value with an empty summary list.
func PersonalInfo(r *records.PersonalInfo) types.PersonalInfo {
	if r == nil {
		return types.PersonalInfo{ProfileSummaries: []types.ProfileSummary{}}
	}

	country := str(r.CountryCode)
	if country == "" {
		country = str(r.Country)
	}
	nationality := str(r.NationalityCode)
	if nationality == "" {
		nationality = str(r.Nationality)
	}
	if nationality == "" && r.Countries != nil {
		nationality = str(r.Countries.Code)
	}

	info := types.PersonalInfo{
		FirstName:          str(r.FirstName),
		MiddleName:         str(r.MiddleName),
		LastName:           str(r.LastName),
		Title:              str(r.Title),
		Email:              str(r.Email),
		Phone:              str(r.Phone),
		Street:             str(r.Street),
		StreetNumber:       str(r.StreetNumber),
		PostalCode:         str(r.PostalCode),
		City:               str(r.City),
		State:              str(r.State),
		Country:            country,
		Website:            str(r.Website),
		LinkedIn:           str(r.LinkedIn),
		GitHub:             str(r.GitHub),
		Birthdate:          date(r.Birthdate),
		Nationality:        nationality,
		RelationshipStatus: str(r.RelationshipStatus),
		ProfileSummaries:   make([]types.ProfileSummary, 0, len(r.ProfileSummaries)),
	}
	for _, s := range r.ProfileSummaries {
		info.ProfileSummaries = append(info.ProfileSummaries, types.ProfileSummary{
			ID:      id(s.ID),
			Content: str(s.Content),
		})
	}
	return info
}

func workExperience(r records.WorkExperience) types.WorkExperience {
	company := Company(r.Companies)
	out := types.WorkExperience{
		ID:                 id(r.ID),
		CompanyID:          id(r.CompanyID),
		Company:            company.Name,
		Location:           company.City,
		Sector:             company.Industry,
		CompanyDescription: company.Description,
		Description:        str(r.Description),
		URL:                company.Website,
		Positions:          make([]types.Position, 0, len(r.Positions)),
	}
	if out.CompanyID == uuid.Nil {
		out.CompanyID = company.ID
	}
	for _, p := range r.Positions {
		out.Positions = append(out.Positions, position(p))
	}
	return out
}

func position(r records.Position) types.Position {
	out := types.Position{
		ID:               id(r.ID),
		Period:           period(r.Period),
		Title:            str(r.Title),
		Description:      str(r.Description),
		Responsibilities: types.FromPlaceholderList(contents(r.Responsibilities)),
		Achievements:     types.FromPlaceholderList(contents(r.Achievements)),
		Projects:         make([]types.PositionProject, 0, len(r.Projects)),
	}
	for _, p := range r.Projects {
		out.Projects = append(out.Projects, positionProject(p))
	}
	return out
}

func positionProject(r records.PositionProject) types.PositionProject {
	technical, nonTechnical := skillScores(r.Skills)
	return types.PositionProject{
		ID:                 id(r.ID),
		Period:             period(r.Period),
		Name:               str(r.Name),
		Role:               str(r.Role),
		Description:        str(r.Description),
		Link:               str(r.Link),
		Company:            Company(r.Companies),
		TechnicalSkills:    technical,
		NonTechnicalSkills: nonTechnical,
	}
}

func education(r records.Education) types.Education {
	return types.Education{
		ID:           id(r.ID),
		Period:       period(r.Period),
		Degree:       str(r.Degree),
		FieldOfStudy: str(r.FieldOfStudy),
		Description:  str(r.Description),
		Institution:  Company(r.Companies),
		Skills:       skills(r.EducationSkills),
	}
}

func certification(r records.Certification) types.Certification {
	return types.Certification{
		ID:             id(r.ID),
		Name:           str(r.Name),
		IssueDate:      date(r.IssueDate),
		ExpirationDate: date(r.ExpirationDate),
		CredentialID:   str(r.CredentialID),
		CredentialURL:  str(r.CredentialURL),
		Issuer:         companyOrLegacy(r.Companies, r.IssuingOrganization),
		Skills:         skills(r.CertificationSkills),
	}
}

func training(r records.Training) types.Training {
	return types.Training{
		ID:             id(r.ID),
		Title:          str(r.Title),
		CompletionDate: date(r.CompletionDate),
		Description:    str(r.Description),
		Provider:       companyOrLegacy(r.Companies, r.Provider),
		Skills:         skills(r.TrainingSkills),
	}
}

func language(r records.Language) types.Language {
	return types.Language{
		ID:              id(r.ID),
		Name:            str(r.Name),
		Proficiency:     types.ParseProficiency(str(r.Proficiency)),
		Certificate:     str(r.Certificate),
		CertificateDate: date(r.CertificateDate),
		CertificateURL:  str(r.CertificateURL),
		Notes:           str(r.Notes),
	}
}

func award(r records.Award) types.Award {
	return types.Award{
		ID:          id(r.ID),
		Title:       str(r.Title),
		Issuer:      str(r.Issuer),
		Date:        date(r.Date),
		Description: str(r.Description),
		URL:         str(r.URL),
		Category:    str(r.Category),
		Level:       str(r.Level),
	}
}

func testimonial(r records.Testimonial) types.Testimonial {
	return types.Testimonial{
		ID:           id(r.ID),
		Author:       str(r.Author),
		Role:         str(r.Role),
		Company:      str(r.Company),
		Relationship: str(r.Relationship),
		Date:         date(r.Date),
		Content:      str(r.Content),
		ContactInfo:  str(r.ContactInfo),
		LinkedInURL:  str(r.LinkedInProfile),
	}
}

// personalityTest adapts both stored shapes: per-trait result rows, or the
// legacy flat trait/score columns, which become a single result.
func personalityTest(r records.PersonalityTest) types.PersonalityTest {
	out := types.PersonalityTest{
		ID:             id(r.ID),
		Type:           str(r.Type),
		CompletionDate: date(r.CompletionDate),
		Provider:       str(r.Provider),
		Description:    str(r.Description),
		ReportURL:      str(r.ReportURL),
		Results:        make([]types.PersonalityResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, types.PersonalityResult{
			Trait:       str(res.Trait),
			Score:       scalar(res.Score),
			Description: str(res.Description),
		})
	}
	if len(out.Results) == 0 && (str(r.Trait) != "" || scalar(r.Score) != "") {
		out.Results = append(out.Results, types.PersonalityResult{
			Trait: str(r.Trait),
			Score: scalar(r.Score),
		})
	}
	return out
}

func project(r records.Project) types.Project {
	technical, nonTechnical := skillScores(r.Skills)
	return types.Project{
		ID:                 id(r.ID),
		Period:             period(r.Period),
		Title:              str(r.Title),
		Description:        str(r.Description),
		Company:            str(r.Company),
		Location:           str(r.Location),
		Link:               str(r.Link),
		TechnicalSkills:    technical,
		NonTechnicalSkills: nonTechnical,
	}
}

// Company maps a joined companies row. A nil row is the zero Company.
func Company(r *records.Company) types.Company {
	if r == nil {
		return types.Company{}
	}
	return types.Company{
		ID:          id(r.ID),
		Name:        str(r.Name),
		Description: str(r.Description),
		Industry:    str(r.Industry),
		Website:     str(r.Website),
		City:        str(r.City),
		CountryCode: str(r.CountryCode),
		Type:        str(r.Type),
	}
}

// Skill maps a skills library row.
func Skill(r records.Skill) types.Skill {
	return types.Skill{
		ID:          id(r.ID),
		Domain:      str(r.Domain),
		Subdomain:   str(r.Subdomain),
		Name:        str(r.Name),
		Description: str(r.Description),
	}
}

// companyOrLegacy prefers the structured company reference and falls back to
// a company carrying only the legacy free-text name.
func companyOrLegacy(ref *records.Company, legacy *string) types.Company {
	if ref != nil {
		if c := Company(ref); !c.IsZero() {
			return c
		}
	}
	return types.Company{Name: str(legacy)}
}

func skills(links []records.SkillLink) []types.Skill {
	out := make([]types.Skill, 0, len(links))
	for _, l := range links {
		if l.Skills == nil {
			continue
		}
		out = append(out, Skill(*l.Skills))
	}
	return out
}

func skillScores(rows []records.ProjectSkill) (technical, nonTechnical []types.SkillScore) {
	technical = []types.SkillScore{}
	nonTechnical = []types.SkillScore{}
	for _, r := range rows {
		s := types.SkillScore{Name: str(r.Name)}
		if r.Score != nil {
			s.Score = int(math.Round(*r.Score))
		}
		switch str(r.Type) {
		case records.SkillTechnical:
			technical = append(technical, s)
		case records.SkillNonTechnical:
			nonTechnical = append(nonTechnical, s)
		}
	}
	return technical, nonTechnical
}

func contents(rows []records.Content) []string {
	if rows == nil {
		return nil
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, str(r.Content))
	}
	return out
}

func period(r records.Period) types.Period {
	p := types.Period{
		StartDate: date(r.StartDate),
		EndDate:   date(r.EndDate),
		Current:   r.Current != nil && *r.Current,
	}
	p.Clean()
	return p
}

func str(p *string) string {
	return strings.TrimSpace(records.Str(p))
}

func scalar(s *records.Scalar) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(string(*s))
}

func date(p *string) types.Date {
	return types.ParseDate(records.Str(p))
}

func id(p *string) uuid.UUID {
	parsed, err := uuid.Parse(str(p))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}

func timestamp(p *string) time.Time {
	s := str(p)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
