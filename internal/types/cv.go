// Package types provides the canonical CV document model shared by the normalizer,
// the renderer and the persistence layer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CV is the canonical, in-memory representation of one user's CV.
// Every collection is non-nil once the document has passed through the normalizer.
type CV struct {
	ID             uuid.UUID         `json:"id"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	PersonalInfo   PersonalInfo      `json:"personalInfo"`
	WorkExperience []WorkExperience  `json:"workExperience" validate:"dive"`
	Education      []Education       `json:"education" validate:"dive"`
	Certifications []Certification   `json:"certifications" validate:"dive"`
	Trainings      []Training        `json:"trainings" validate:"dive"`
	Languages      []Language        `json:"languages" validate:"dive"`
	Awards         []Award           `json:"awards" validate:"dive"`
	Testimonials   []Testimonial     `json:"testimonials" validate:"dive"`
	Personality    []PersonalityTest `json:"personality" validate:"dive"`
	Projects       []Project         `json:"projects" validate:"dive"`
}

// Section names one top-level CV category that is loaded and saved independently.
type Section string

// Known sections, in rendering order.
const (
	SectionPersonalInfo   Section = "personal_info"
	SectionPersonality    Section = "personality"
	SectionWorkExperience Section = "work_experience"
	SectionEducation      Section = "education"
	SectionCertifications Section = "certifications"
	SectionTrainings      Section = "trainings"
	SectionLanguages      Section = "languages"
	SectionAwards         Section = "awards"
	SectionTestimonials   Section = "testimonials"
	SectionProjects       Section = "projects"
)

var allSections = []Section{
	SectionPersonalInfo,
	SectionPersonality,
	SectionWorkExperience,
	SectionEducation,
	SectionCertifications,
	SectionTrainings,
	SectionLanguages,
	SectionAwards,
	SectionTestimonials,
	SectionProjects,
}

// Sections returns every known section in rendering order.
func Sections() []Section {
	out := make([]Section, len(allSections))
	copy(out, allSections)
	return out
}

// ParseSection resolves a section name as used in URLs and CLI flags.
func ParseSection(name string) (Section, error) {
	for _, s := range allSections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", name)
}

// Title returns the human-readable heading for a section.
func (s Section) Title() string {
	switch s {
	case SectionPersonalInfo:
		return "Personal Information"
	case SectionPersonality:
		return "Personality Tests"
	case SectionWorkExperience:
		return "Work Experience"
	case SectionEducation:
		return "Education"
	case SectionCertifications:
		return "Certifications"
	case SectionTrainings:
		return "Trainings"
	case SectionLanguages:
		return "Languages"
	case SectionAwards:
		return "Awards"
	case SectionTestimonials:
		return "Testimonials"
	case SectionProjects:
		return "Projects"
	default:
		return string(s)
	}
}

// Len returns the number of entries stored in a section.
// Personal info counts as one entry when a first or last name is present.
func (cv *CV) Len(s Section) int {
	switch s {
	case SectionPersonalInfo:
		if cv.PersonalInfo.HasName() {
			return 1
		}
		return 0
	case SectionPersonality:
		return len(cv.Personality)
	case SectionWorkExperience:
		return len(cv.WorkExperience)
	case SectionEducation:
		return len(cv.Education)
	case SectionCertifications:
		return len(cv.Certifications)
	case SectionTrainings:
		return len(cv.Trainings)
	case SectionLanguages:
		return len(cv.Languages)
	case SectionAwards:
		return len(cv.Awards)
	case SectionTestimonials:
		return len(cv.Testimonials)
	case SectionProjects:
		return len(cv.Projects)
	default:
		return 0
	}
}

// IsEmpty reports whether the document has no name and no entries in any section.
func (cv *CV) IsEmpty() bool {
	for _, s := range allSections {
		if cv.Len(s) > 0 {
			return false
		}
	}
	return true
}

// SectionStatus reports whether a section has any entries.
type SectionStatus struct {
	Section  Section `json:"section"`
	Title    string  `json:"title"`
	Count    int     `json:"count"`
	Complete bool    `json:"complete"`
}

// Completion returns the completion state of every section, in rendering order.
func (cv *CV) Completion() []SectionStatus {
	out := make([]SectionStatus, 0, len(allSections))
	for _, s := range allSections {
		n := cv.Len(s)
		out = append(out, SectionStatus{
			Section:  s,
			Title:    s.Title(),
			Count:    n,
			Complete: n > 0,
		})
	}
	return out
}

// EnsureCollections replaces nil collections with empty ones, recursively.
func (cv *CV) EnsureCollections() {
	if cv.PersonalInfo.ProfileSummaries == nil {
		cv.PersonalInfo.ProfileSummaries = []ProfileSummary{}
	}
	if cv.WorkExperience == nil {
		cv.WorkExperience = []WorkExperience{}
	}
	for i := range cv.WorkExperience {
		cv.WorkExperience[i].ensureCollections()
	}
	if cv.Education == nil {
		cv.Education = []Education{}
	}
	for i := range cv.Education {
		if cv.Education[i].Skills == nil {
			cv.Education[i].Skills = []Skill{}
		}
	}
	if cv.Certifications == nil {
		cv.Certifications = []Certification{}
	}
	for i := range cv.Certifications {
		if cv.Certifications[i].Skills == nil {
			cv.Certifications[i].Skills = []Skill{}
		}
	}
	if cv.Trainings == nil {
		cv.Trainings = []Training{}
	}
	for i := range cv.Trainings {
		if cv.Trainings[i].Skills == nil {
			cv.Trainings[i].Skills = []Skill{}
		}
	}
	if cv.Languages == nil {
		cv.Languages = []Language{}
	}
	if cv.Awards == nil {
		cv.Awards = []Award{}
	}
	if cv.Testimonials == nil {
		cv.Testimonials = []Testimonial{}
	}
	if cv.Personality == nil {
		cv.Personality = []PersonalityTest{}
	}
	for i := range cv.Personality {
		if cv.Personality[i].Results == nil {
			cv.Personality[i].Results = []PersonalityResult{}
		}
	}
	if cv.Projects == nil {
		cv.Projects = []Project{}
	}
	for i := range cv.Projects {
		cv.Projects[i].TechnicalSkills = nonNilScores(cv.Projects[i].TechnicalSkills)
		cv.Projects[i].NonTechnicalSkills = nonNilScores(cv.Projects[i].NonTechnicalSkills)
	}
}

// CleanPeriods enforces current => no end date on every dated entry.
func (cv *CV) CleanPeriods() {
	for i := range cv.WorkExperience {
		for j := range cv.WorkExperience[i].Positions {
			pos := &cv.WorkExperience[i].Positions[j]
			pos.Clean()
			for k := range pos.Projects {
				pos.Projects[k].Clean()
			}
		}
	}
	for i := range cv.Education {
		cv.Education[i].Clean()
	}
	for i := range cv.Projects {
		cv.Projects[i].Clean()
	}
}

func nonNilScores(in []SkillScore) []SkillScore {
	if in == nil {
		return []SkillScore{}
	}
	return in
}
