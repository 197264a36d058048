package builder

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/types"
)

// SaveSection persists one section of doc. Periods are cleaned in place and
// the section is validated before anything is written. A save of the same
// section of the same CV that is still running makes this call fail fast
// with ErrSaveInProgress.
func (s *Service) SaveSection(ctx context.Context, cvID uuid.UUID, section types.Section, doc *types.CV) error {
	if _, err := types.ParseSection(string(section)); err != nil {
		return &SectionError{Section: section, Op: OpSave, Err: err}
	}
	if doc == nil {
		doc = &types.CV{}
	}

	release, ok := s.guard.tryAcquire(guardKey(cvID, section))
	if !ok {
		return &SectionError{Section: section, Op: OpSave, Err: ErrSaveInProgress}
	}
	defer release()

	doc.CleanPeriods()
	part := SectionOf(doc, section)
	if err := types.Validate(part); err != nil {
		return &SectionError{Section: section, Op: OpSave, Err: err}
	}

	if err := s.store.SaveSection(ctx, cvID, section, part); err != nil {
		s.log.Error("section save failed", "cv_id", cvID.String(), "section", string(section), "error", err)
		return &SectionError{Section: section, Op: OpSave, Err: err}
	}

	s.log.Info("section saved", "cv_id", cvID.String(), "section", string(section), "entries", part.Len(section))
	return nil
}

// SectionOf returns a document holding only the given section of doc.
func SectionOf(doc *types.CV, section types.Section) *types.CV {
	out := &types.CV{ID: doc.ID}
	switch section {
	case types.SectionPersonalInfo:
		out.PersonalInfo = doc.PersonalInfo
	case types.SectionPersonality:
		out.Personality = doc.Personality
	case types.SectionWorkExperience:
		out.WorkExperience = doc.WorkExperience
	case types.SectionEducation:
		out.Education = doc.Education
	case types.SectionCertifications:
		out.Certifications = doc.Certifications
	case types.SectionTrainings:
		out.Trainings = doc.Trainings
	case types.SectionLanguages:
		out.Languages = doc.Languages
	case types.SectionAwards:
		out.Awards = doc.Awards
	case types.SectionTestimonials:
		out.Testimonials = doc.Testimonials
	case types.SectionProjects:
		out.Projects = doc.Projects
	}
	return out
}
