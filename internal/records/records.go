// Package records defines the persistence-layer record shapes of a CV.
//
// Records mirror the relational rows (snake_case, nullable columns as pointers,
// nested relations as embedded slices) and are the only input the normalizer
// accepts. They are produced by the database loaders and by DecodeBundle.
package records

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CV is the root record. ID is the only required field.
type CV struct {
	ID        string  `json:"id"`
	CreatedAt *string `json:"created_at,omitempty"`
	UpdatedAt *string `json:"updated_at,omitempty"`
}

// CountryRef is the joined countries row used to label nationality.
type CountryRef struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Nationality *string `json:"nationality,omitempty"`
}

// Content is a single ordered free-text child row.
type Content struct {
	ID      *string `json:"id,omitempty"`
	Content *string `json:"content"`
}

// PersonalInfo is the personal_info row. Country and Nationality are the
// legacy free-text columns; CountryCode and NationalityCode reference countries.
type PersonalInfo struct {
	ID                 *string     `json:"id,omitempty"`
	FirstName          *string     `json:"first_name"`
	MiddleName         *string     `json:"middle_name"`
	LastName           *string     `json:"last_name"`
	Title              *string     `json:"title"`
	Email              *string     `json:"email"`
	Phone              *string     `json:"phone"`
	Street             *string     `json:"street"`
	StreetNumber       *string     `json:"street_number"`
	PostalCode         *string     `json:"postal_code"`
	City               *string     `json:"city"`
	State              *string     `json:"state"`
	Country            *string     `json:"country"`
	CountryCode        *string     `json:"country_code,omitempty"`
	Website            *string     `json:"website"`
	LinkedIn           *string     `json:"linkedin"`
	GitHub             *string     `json:"github"`
	Birthdate          *string     `json:"birthdate"`
	Nationality        *string     `json:"nationality"`
	NationalityCode    *string     `json:"nationality_code,omitempty"`
	RelationshipStatus *string     `json:"relationship_status"`
	Countries          *CountryRef `json:"countries,omitempty"`
	ProfileSummaries   []Content   `json:"profile_summaries"`
}

// Company is a companies row, joined wherever an entry references one.
type Company struct {
	ID          *string `json:"id,omitempty"`
	Name        *string `json:"name"`
	Description *string `json:"description,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	Website     *string `json:"website,omitempty"`
	City        *string `json:"city,omitempty"`
	CountryCode *string `json:"country_code,omitempty"`
	Type        *string `json:"type,omitempty"`
}

// Skill is a skills library row.
type Skill struct {
	ID          *string `json:"id,omitempty"`
	Domain      *string `json:"domain,omitempty"`
	Subdomain   *string `json:"subdomain,omitempty"`
	Name        *string `json:"name"`
	Description *string `json:"description,omitempty"`
}

// SkillLink is a join-table row wrapping the referenced skill.
type SkillLink struct {
	Skills *Skill `json:"skills"`
}

// Skill types stored on project_skills rows.
const (
	SkillTechnical    = "technical"
	SkillNonTechnical = "non_technical"
)

// ProjectSkill is a project_skills row.
type ProjectSkill struct {
	Name  *string  `json:"name"`
	Score *float64 `json:"score"`
	Type  *string  `json:"type"`
}

// Period holds the shared date columns of dated rows.
type Period struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Current   *bool   `json:"current"`
}

// WorkExperience is a work_experience row with its company and positions.
type WorkExperience struct {
	ID          *string    `json:"id,omitempty"`
	CompanyID   *string    `json:"company_id,omitempty"`
	Description *string    `json:"description"`
	Companies   *Company   `json:"companies"`
	Positions   []Position `json:"positions"`
}

// Position is a positions row. Nil child slices mean the relation was never loaded.
type Position struct {
	ID *string `json:"id,omitempty"`
	Period
	Title            *string           `json:"title"`
	Description      *string           `json:"description"`
	Responsibilities []Content         `json:"position_responsibilities"`
	Achievements     []Content         `json:"position_achievements"`
	Projects         []PositionProject `json:"position_projects"`
}

// PositionProject is a position_projects row.
type PositionProject struct {
	ID *string `json:"id,omitempty"`
	Period
	Name        *string        `json:"name"`
	Role        *string        `json:"role"`
	Description *string        `json:"description"`
	Link        *string        `json:"link"`
	CompanyID   *string        `json:"company_id,omitempty"`
	Companies   *Company       `json:"companies"`
	Skills      []ProjectSkill `json:"project_skills"`
}

// Education is an education row.
type Education struct {
	ID *string `json:"id,omitempty"`
	Period
	Degree          *string     `json:"degree"`
	FieldOfStudy    *string     `json:"field_of_study"`
	Description     *string     `json:"description"`
	CompanyID       *string     `json:"company_id,omitempty"`
	Companies       *Company    `json:"companies"`
	EducationSkills []SkillLink `json:"education_skills"`
}

// Certification is a certifications row. IssuingOrganization is the legacy
// free-text issuer column that predates the companies reference.
type Certification struct {
	ID                  *string     `json:"id,omitempty"`
	Name                *string     `json:"name"`
	IssueDate           *string     `json:"issue_date"`
	ExpirationDate      *string     `json:"expiration_date"`
	CredentialID        *string     `json:"credential_id"`
	CredentialURL       *string     `json:"credential_url"`
	IssuingOrganization *string     `json:"issuing_organization,omitempty"`
	CompanyID           *string     `json:"company_id,omitempty"`
	Companies           *Company    `json:"companies"`
	CertificationSkills []SkillLink `json:"certification_skills"`
}

// Training is a trainings row. Provider is the legacy free-text column.
type Training struct {
	ID             *string     `json:"id,omitempty"`
	Title          *string     `json:"title"`
	CompletionDate *string     `json:"completion_date"`
	Description    *string     `json:"description"`
	Provider       *string     `json:"provider,omitempty"`
	CompanyID      *string     `json:"company_id,omitempty"`
	Companies      *Company    `json:"companies"`
	TrainingSkills []SkillLink `json:"training_skills"`
}

// Language is a languages row.
type Language struct {
	ID              *string `json:"id,omitempty"`
	Name            *string `json:"name"`
	Proficiency     *string `json:"proficiency"`
	Certificate     *string `json:"certificate"`
	CertificateDate *string `json:"certificate_date"`
	CertificateURL  *string `json:"certificate_url"`
	Notes           *string `json:"notes"`
}

// Award is an awards row.
type Award struct {
	ID          *string `json:"id,omitempty"`
	Title       *string `json:"title"`
	Issuer      *string `json:"issuer"`
	Date        *string `json:"date"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Category    *string `json:"category"`
	Level       *string `json:"level"`
}

// Testimonial is a testimonials row.
type Testimonial struct {
	ID              *string `json:"id,omitempty"`
	Author          *string `json:"author"`
	Role            *string `json:"role"`
	Company         *string `json:"company"`
	Relationship    *string `json:"relationship"`
	Date            *string `json:"date"`
	Content         *string `json:"content"`
	ContactInfo     *string `json:"contact_info"`
	LinkedInProfile *string `json:"linkedin_profile"`
}

// PersonalityTest is a personality_tests row. Trait and Score are the legacy
// flat columns; Results holds the per-trait rows of the current shape.
type PersonalityTest struct {
	ID             *string             `json:"id,omitempty"`
	Type           *string             `json:"type"`
	CompletionDate *string             `json:"completion_date"`
	Provider       *string             `json:"provider"`
	Description    *string             `json:"description"`
	ReportURL      *string             `json:"report_url"`
	Trait          *string             `json:"trait,omitempty"`
	Score          *Scalar             `json:"score,omitempty"`
	Results        []PersonalityResult `json:"results"`
}

// PersonalityResult is a personality_results row.
type PersonalityResult struct {
	ID          *string `json:"id,omitempty"`
	Trait       *string `json:"trait"`
	Score       *Scalar `json:"score"`
	Description *string `json:"description"`
}

// Project is a projects row (the stand-alone projects section).
type Project struct {
	ID *string `json:"id,omitempty"`
	Period
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Company     *string        `json:"company"`
	Location    *string        `json:"location"`
	Link        *string        `json:"link"`
	Skills      []ProjectSkill `json:"project_skills"`
}

// Scalar is a column that older rows stored as a number and newer rows as text.
type Scalar string

// UnmarshalJSON accepts a JSON string or number.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("score must be a string or number, got %s", raw)
	}
	*s = Scalar(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Bundle is a CV root record with every section's record set.
// A nil section slice means the section was not loaded.
type Bundle struct {
	CV               CV                `json:"cv"`
	PersonalInfo     *PersonalInfo     `json:"personal_info"`
	WorkExperience   []WorkExperience  `json:"work_experience"`
	Education        []Education       `json:"education"`
	Certifications   []Certification   `json:"certifications"`
	Trainings        []Training        `json:"trainings"`
	Languages        []Language        `json:"languages"`
	Awards           []Award           `json:"awards"`
	Testimonials     []Testimonial     `json:"testimonials"`
	PersonalityTests []PersonalityTest `json:"personality_tests"`
	Projects         []Project         `json:"projects"`
}

// Str returns the value of a nullable text column, or "" when it is NULL.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr returns a pointer to s, or nil for the empty string.
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
