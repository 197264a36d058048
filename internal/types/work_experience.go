package types

import "github.com/google/uuid"

// Company is a shared library entity used as employer, institution, issuer or provider.
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Industry    string    `json:"industry"`
	Website     string    `json:"website"`
	City        string    `json:"city"`
	CountryCode string    `json:"countryCode"`
	Type        string    `json:"type"`
}

// IsZero reports whether no company is associated.
func (c Company) IsZero() bool {
	return c.ID == uuid.Nil && c.Name == ""
}

// WorkExperience is one employer context with the positions held there.
type WorkExperience struct {
	ID                 uuid.UUID  `json:"id"`
	CompanyID          uuid.UUID  `json:"companyId"`
	Company            string     `json:"company"`
	Location           string     `json:"location"`
	Sector             string     `json:"sector"`
	CompanyDescription string     `json:"companyDescription"`
	Description        string     `json:"description"`
	URL                string     `json:"url"`
	Positions          []Position `json:"positions" validate:"dive"`
}

func (w *WorkExperience) ensureCollections() {
	if w.Positions == nil {
		w.Positions = []Position{}
	}
	for i := range w.Positions {
		p := &w.Positions[i]
		p.Responsibilities.Items = p.Responsibilities.Values()
		p.Achievements.Items = p.Achievements.Values()
		if p.Projects == nil {
			p.Projects = []PositionProject{}
		}
		for j := range p.Projects {
			p.Projects[j].TechnicalSkills = nonNilScores(p.Projects[j].TechnicalSkills)
			p.Projects[j].NonTechnicalSkills = nonNilScores(p.Projects[j].NonTechnicalSkills)
		}
	}
}

// Position is a role held within a WorkExperience.
type Position struct {
	ID uuid.UUID `json:"id"`
	Period
	Title            string            `json:"title" validate:"required"`
	Description      string            `json:"description"`
	Responsibilities ItemList          `json:"responsibilities"`
	Achievements     ItemList          `json:"achievements"`
	Projects         []PositionProject `json:"projects" validate:"dive"`
}

// PositionProject is a project carried out within a position.
type PositionProject struct {
	ID uuid.UUID `json:"id"`
	Period
	Name               string       `json:"name" validate:"required"`
	Role               string       `json:"role"`
	Description        string       `json:"description"`
	Link               string       `json:"link" validate:"omitempty,url"`
	Company            Company      `json:"company"`
	TechnicalSkills    []SkillScore `json:"technicalSkills" validate:"dive"`
	NonTechnicalSkills []SkillScore `json:"nonTechnicalSkills" validate:"dive"`
}

// SkillScore is a named skill with a self-assessed score.
type SkillScore struct {
	Name  string `json:"name" validate:"required"`
	Score int    `json:"score" validate:"gte=0,lte=100"`
}

// Skill is a deduplicated library entity referenced by CV entries.
type Skill struct {
	ID          uuid.UUID `json:"id"`
	Domain      string    `json:"domain"`
	Subdomain   string    `json:"subdomain"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
}
