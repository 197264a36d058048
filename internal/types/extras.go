package types

import (
	"strings"

	"github.com/google/uuid"
)

// Proficiency is a language level drawn from a fixed ordered scale.
type Proficiency string

// Proficiency levels, highest first.
const (
	Native              Proficiency = "Native"
	FluentC2            Proficiency = "Fluent (C2)"
	AdvancedC1          Proficiency = "Advanced (C1)"
	UpperIntermediateB2 Proficiency = "Upper Intermediate (B2)"
	IntermediateB1      Proficiency = "Intermediate (B1)"
	ElementaryA2        Proficiency = "Elementary (A2)"
	BeginnerA1          Proficiency = "Beginner (A1)"
)

var proficiencyScale = []Proficiency{
	Native,
	FluentC2,
	AdvancedC1,
	UpperIntermediateB2,
	IntermediateB1,
	ElementaryA2,
	BeginnerA1,
}

var proficiencyAliases = map[string]Proficiency{
	"native":             Native,
	"mother tongue":      Native,
	"fluent":             FluentC2,
	"c2":                 FluentC2,
	"advanced":           AdvancedC1,
	"c1":                 AdvancedC1,
	"upper intermediate": UpperIntermediateB2,
	"upper-intermediate": UpperIntermediateB2,
	"b2":                 UpperIntermediateB2,
	"intermediate":       IntermediateB1,
	"b1":                 IntermediateB1,
	"elementary":         ElementaryA2,
	"a2":                 ElementaryA2,
	"beginner":           BeginnerA1,
	"a1":                 BeginnerA1,
}

// Proficiencies returns the scale, highest level first.
func Proficiencies() []Proficiency {
	out := make([]Proficiency, len(proficiencyScale))
	copy(out, proficiencyScale)
	return out
}

// ParseProficiency resolves canonical labels and common aliases.
// Unrecognized input is returned trimmed but otherwise verbatim.
func ParseProficiency(s string) Proficiency {
	s = strings.TrimSpace(s)
	for _, p := range proficiencyScale {
		if strings.EqualFold(s, string(p)) {
			return p
		}
	}
	if p, ok := proficiencyAliases[strings.ToLower(s)]; ok {
		return p
	}
	return Proficiency(s)
}

// Rank returns the position on the scale (0 is Native), or -1 for unknown levels.
func (p Proficiency) Rank() int {
	for i, level := range proficiencyScale {
		if level == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the known levels.
func (p Proficiency) Valid() bool {
	return p.Rank() >= 0
}

// Language is a spoken language with an optional certificate.
type Language struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name" validate:"required"`
	Proficiency     Proficiency `json:"proficiency" validate:"required,proficiency"`
	Certificate     string      `json:"certificate"`
	CertificateDate Date        `json:"certificateDate"`
	CertificateURL  string      `json:"certificateUrl" validate:"omitempty,url"`
	Notes           string      `json:"notes"`
}

// Award is a prize or recognition.
type Award struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Issuer      string    `json:"issuer"`
	Date        Date      `json:"date"`
	Description string    `json:"description"`
	URL         string    `json:"url" validate:"omitempty,url"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
}

// Testimonial is a quote from a colleague or client.
type Testimonial struct {
	ID           uuid.UUID `json:"id"`
	Author       string    `json:"author" validate:"required"`
	Role         string    `json:"role"`
	Company      string    `json:"company"`
	Relationship string    `json:"relationship"`
	Date         Date      `json:"date"`
	Content      string    `json:"content" validate:"required"`
	ContactInfo  string    `json:"contactInfo"`
	LinkedInURL  string    `json:"linkedinProfile" validate:"omitempty,url"`
}

// PersonalityTest is a completed assessment and its per-trait results.
type PersonalityTest struct {
	ID             uuid.UUID           `json:"id"`
	Type           string              `json:"type" validate:"required"`
	CompletionDate Date                `json:"completionDate"`
	Provider       string              `json:"provider"`
	Description    string              `json:"description"`
	ReportURL      string              `json:"reportUrl" validate:"omitempty,url"`
	Results        []PersonalityResult `json:"results" validate:"dive"`
}

// PersonalityResult is the score for one trait.
type PersonalityResult struct {
	Trait       string `json:"trait"`
	Score       string `json:"score"`
	Description string `json:"description"`
}
