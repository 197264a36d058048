package types

import "github.com/google/uuid"

// Education is a degree or course of study at an institution.
type Education struct {
	ID uuid.UUID `json:"id"`
	Period
	Degree       string  `json:"degree" validate:"required"`
	FieldOfStudy string  `json:"fieldOfStudy"`
	Description  string  `json:"description"`
	Institution  Company `json:"institution"`
	Skills       []Skill `json:"skills" validate:"dive"`
}

// Certification is a credential issued by an organization.
type Certification struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name" validate:"required"`
	IssueDate      Date      `json:"issueDate" validate:"required"`
	ExpirationDate Date      `json:"expirationDate"`
	CredentialID   string    `json:"credentialId"`
	CredentialURL  string    `json:"credentialURL" validate:"omitempty,url"`
	Issuer         Company   `json:"issuer"`
	Skills         []Skill   `json:"skills" validate:"dive"`
}

// Training is a completed course or workshop.
type Training struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title" validate:"required"`
	CompletionDate Date      `json:"completionDate"`
	Description    string    `json:"description"`
	Provider       Company   `json:"provider"`
	Skills         []Skill   `json:"skills" validate:"dive"`
}

// Project is a stand-alone project listed in its own CV section.
type Project struct {
	ID uuid.UUID `json:"id"`
	Period
	Title              string       `json:"title" validate:"required"`
	Description        string       `json:"description"`
	Company            string       `json:"company"`
	Location           string       `json:"location"`
	Link               string       `json:"link" validate:"omitempty,url"`
	TechnicalSkills    []SkillScore `json:"technicalSkills" validate:"dive"`
	NonTechnicalSkills []SkillScore `json:"nonTechnicalSkills" validate:"dive"`
}
