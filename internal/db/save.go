package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-builder/internal/types"
)

// sectionTables maps each list section to the table that owns its rows.
// Child tables cascade from these.
var sectionTables = map[types.Section]string{
	types.SectionPersonality:    "personality_tests",
	types.SectionWorkExperience: "work_experience",
	types.SectionEducation:      "education",
	types.SectionCertifications: "certifications",
	types.SectionTrainings:      "trainings",
	types.SectionLanguages:      "languages",
	types.SectionAwards:         "awards",
	types.SectionTestimonials:   "testimonials",
	types.SectionProjects:       "projects",
}

// SaveSection replaces one section of a stored CV with the contents of doc.
// Existing rows are deleted and the section is reinserted in one
// transaction; on any failure nothing is changed.
func (db *DB) SaveSection(ctx context.Context, cvID uuid.UUID, section types.Section, doc *types.CV) error {
	if doc == nil {
		return fmt.Errorf("failed to save %s: no document", section)
	}
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockCV(ctx, tx, cvID); err != nil {
			return err
		}
		if section == types.SectionPersonalInfo {
			if err := savePersonalInfo(ctx, tx, cvID, doc.PersonalInfo); err != nil {
				return err
			}
			return touchCV(ctx, tx, cvID)
		}

		table, ok := sectionTables[section]
		if !ok {
			return fmt.Errorf("unknown section %q", section)
		}
		if _, err := deleteByFK(ctx, tx, table, "cv_id", cvID); err != nil {
			return err
		}
		if err := insertSection(ctx, tx, cvID, section, doc); err != nil {
			return err
		}
		return touchCV(ctx, tx, cvID)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", section, err)
	}
	return nil
}

// SavePersonalInfo upserts the personal_info row and replaces the profile summaries.
func (db *DB) SavePersonalInfo(ctx context.Context, cvID uuid.UUID, info types.PersonalInfo) error {
	return db.SaveSection(ctx, cvID, types.SectionPersonalInfo, &types.CV{PersonalInfo: info})
}

func lockCV(ctx context.Context, q querier, cvID uuid.UUID) error {
	var id uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM cvs WHERE id = $1 FOR UPDATE`, cvID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("cv %s: %w", cvID, ErrNotFound)
	}
	return err
}

func insertSection(ctx context.Context, q querier, cvID uuid.UUID, section types.Section, doc *types.CV) error {
	switch section {
	case types.SectionPersonality:
		return insertPersonalityTests(ctx, q, cvID, doc.Personality)
	case types.SectionWorkExperience:
		return insertWorkExperience(ctx, q, cvID, doc.WorkExperience)
	case types.SectionEducation:
		return insertEducation(ctx, q, cvID, doc.Education)
	case types.SectionCertifications:
		return insertCertifications(ctx, q, cvID, doc.Certifications)
	case types.SectionTrainings:
		return insertTrainings(ctx, q, cvID, doc.Trainings)
	case types.SectionLanguages:
		return insertLanguages(ctx, q, cvID, doc.Languages)
	case types.SectionAwards:
		return insertAwards(ctx, q, cvID, doc.Awards)
	case types.SectionTestimonials:
		return insertTestimonials(ctx, q, cvID, doc.Testimonials)
	case types.SectionProjects:
		return insertProjects(ctx, q, cvID, doc.Projects)
	}
	return fmt.Errorf("unknown section %q", section)
}

var personalInfoColumns = []string{
	"cv_id", "first_name", "middle_name", "last_name", "title", "email", "phone",
	"street", "street_number", "postal_code", "city", "state", "country", "country_code",
	"website", "linkedin", "github", "birthdate", "nationality", "nationality_code",
	"relationship_status", "updated_at",
}

func savePersonalInfo(ctx context.Context, q querier, cvID uuid.UUID, p types.PersonalInfo) error {
	country, countryCode, err := splitCountry(ctx, q, p.Country)
	if err != nil {
		return err
	}
	nationality, nationalityCode, err := splitCountry(ctx, q, p.Nationality)
	if err != nil {
		return err
	}

	_, err = upsert(ctx, q, "personal_info", []string{"cv_id"}, personalInfoColumns,
		cvID, textArg(p.FirstName), textArg(p.MiddleName), textArg(p.LastName), textArg(p.Title),
		textArg(p.Email), textArg(p.Phone), textArg(p.Street), textArg(p.StreetNumber),
		textArg(p.PostalCode), textArg(p.City), textArg(p.State), country, countryCode,
		textArg(p.Website), textArg(p.LinkedIn), textArg(p.GitHub), dateArg(p.Birthdate),
		nationality, nationalityCode, textArg(p.RelationshipStatus), time.Now().UTC())
	if err != nil {
		return err
	}

	if _, err := deleteByFK(ctx, q, "profile_summaries", "cv_id", cvID); err != nil {
		return err
	}
	rows := make([][]any, 0, len(p.ProfileSummaries))
	for i, s := range p.ProfileSummaries {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		rows = append(rows, []any{newID(s.ID), cvID, i, s.Content})
	}
	return copyBatch(ctx, q, "profile_summaries", []string{"id", "cv_id", "ordinal", "content"}, rows)
}

// splitCountry stores a known country code in the reference column and
// anything else in the legacy free-text column.
func splitCountry(ctx context.Context, q querier, value string) (legacy, code any, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil, nil
	}
	var found string
	err = q.QueryRow(ctx, `SELECT code FROM countries WHERE code = $1`, strings.ToUpper(value)).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return value, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up country: %w", err)
	}
	return nil, found, nil
}

func insertWorkExperience(ctx context.Context, q querier, cvID uuid.UUID, exps []types.WorkExperience) error {
	var (
		responsibilities [][]any
		achievements     [][]any
		skills           [][]any
	)
	for i, exp := range exps {
		companyID, err := resolveCompany(ctx, q, types.Company{
			ID:          exp.CompanyID,
			Name:        exp.Company,
			Description: exp.CompanyDescription,
			Industry:    exp.Sector,
			Website:     exp.URL,
			City:        exp.Location,
		})
		if err != nil {
			return err
		}
		expID, err := insertReturningID(ctx, q, "work_experience",
			[]string{"id", "cv_id", "ordinal", "company_id", "description"},
			newID(exp.ID), cvID, i, uuidArg(companyID), textArg(exp.Description))
		if err != nil {
			return err
		}

		for j, pos := range exp.Positions {
			posID, err := insertReturningID(ctx, q, "positions",
				[]string{"id", "cv_id", "work_experience_id", "ordinal", "title", "description", "start_date", "end_date", "current"},
				newID(pos.ID), cvID, expID, j, textArg(pos.Title), textArg(pos.Description),
				dateArg(pos.StartDate), dateArg(pos.EndDate), pos.Current)
			if err != nil {
				return err
			}
			responsibilities = append(responsibilities, itemRows(cvID, posID, pos.Responsibilities)...)
			achievements = append(achievements, itemRows(cvID, posID, pos.Achievements)...)

			for k, proj := range pos.Projects {
				projCompany, err := resolveCompany(ctx, q, proj.Company)
				if err != nil {
					return err
				}
				projID, err := insertReturningID(ctx, q, "position_projects",
					[]string{"id", "cv_id", "position_id", "ordinal", "name", "role", "description", "link", "company_id", "start_date", "end_date", "current"},
					newID(proj.ID), cvID, posID, k, textArg(proj.Name), textArg(proj.Role), textArg(proj.Description),
					textArg(proj.Link), uuidArg(projCompany), dateArg(proj.StartDate), dateArg(proj.EndDate), proj.Current)
				if err != nil {
					return err
				}
				skills = append(skills, projectSkillRows(cvID, projID, nil, proj.TechnicalSkills, proj.NonTechnicalSkills)...)
			}
		}
	}

	contentColumns := []string{"cv_id", "position_id", "ordinal", "content"}
	if err := copyBatch(ctx, q, "position_responsibilities", contentColumns, responsibilities); err != nil {
		return err
	}
	if err := copyBatch(ctx, q, "position_achievements", contentColumns, achievements); err != nil {
		return err
	}
	return copyBatch(ctx, q, "project_skills", projectSkillColumns, skills)
}

// itemRows encodes a list's state: no rows when it was never started, one
// blank placeholder row when it was explicitly emptied, otherwise the items.
func itemRows(cvID, positionID uuid.UUID, list types.ItemList) [][]any {
	switch list.State {
	case types.ListNotStarted:
		return nil
	case types.ListEmpty:
		return [][]any{{cvID, positionID, 0, ""}}
	}
	items := list.Values()
	rows := make([][]any, 0, len(items))
	for i, item := range items {
		rows = append(rows, []any{cvID, positionID, i, item})
	}
	return rows
}

var projectSkillColumns = []string{"cv_id", "position_project_id", "project_id", "ordinal", "name", "score", "type"}

// projectSkillRows lists technical skills first, then non-technical ones.
func projectSkillRows(cvID uuid.UUID, positionProjectID, projectID any, technical, nonTechnical []types.SkillScore) [][]any {
	rows := make([][]any, 0, len(technical)+len(nonTechnical))
	ordinal := 0
	add := func(scores []types.SkillScore, kind string) {
		for _, s := range scores {
			if strings.TrimSpace(s.Name) == "" {
				continue
			}
			rows = append(rows, []any{cvID, positionProjectID, projectID, ordinal, s.Name, float64(s.Score), kind})
			ordinal++
		}
	}
	add(technical, "technical")
	add(nonTechnical, "non_technical")
	return rows
}

func insertEducation(ctx context.Context, q querier, cvID uuid.UUID, entries []types.Education) error {
	var links [][]any
	for i, e := range entries {
		companyID, err := resolveCompany(ctx, q, e.Institution)
		if err != nil {
			return err
		}
		id, err := insertReturningID(ctx, q, "education",
			[]string{"id", "cv_id", "ordinal", "company_id", "degree", "field_of_study", "description", "start_date", "end_date", "current"},
			newID(e.ID), cvID, i, uuidArg(companyID), textArg(e.Degree), textArg(e.FieldOfStudy),
			textArg(e.Description), dateArg(e.StartDate), dateArg(e.EndDate), e.Current)
		if err != nil {
			return err
		}
		rows, err := skillLinkRows(ctx, q, cvID, id, e.Skills)
		if err != nil {
			return err
		}
		links = append(links, rows...)
	}
	return copyBatch(ctx, q, "education_skills", []string{"cv_id", "education_id", "skill_id", "ordinal"}, links)
}

func insertCertifications(ctx context.Context, q querier, cvID uuid.UUID, entries []types.Certification) error {
	var links [][]any
	for i, c := range entries {
		companyID, err := resolveCompany(ctx, q, c.Issuer)
		if err != nil {
			return err
		}
		id, err := insertReturningID(ctx, q, "certifications",
			[]string{"id", "cv_id", "ordinal", "name", "issue_date", "expiration_date", "credential_id", "credential_url", "company_id"},
			newID(c.ID), cvID, i, textArg(c.Name), dateArg(c.IssueDate), dateArg(c.ExpirationDate),
			textArg(c.CredentialID), textArg(c.CredentialURL), uuidArg(companyID))
		if err != nil {
			return err
		}
		rows, err := skillLinkRows(ctx, q, cvID, id, c.Skills)
		if err != nil {
			return err
		}
		links = append(links, rows...)
	}
	return copyBatch(ctx, q, "certification_skills", []string{"cv_id", "certification_id", "skill_id", "ordinal"}, links)
}

func insertTrainings(ctx context.Context, q querier, cvID uuid.UUID, entries []types.Training) error {
	var links [][]any
	for i, t := range entries {
		companyID, err := resolveCompany(ctx, q, t.Provider)
		if err != nil {
			return err
		}
		id, err := insertReturningID(ctx, q, "trainings",
			[]string{"id", "cv_id", "ordinal", "title", "completion_date", "description", "company_id"},
			newID(t.ID), cvID, i, textArg(t.Title), dateArg(t.CompletionDate), textArg(t.Description),
			uuidArg(companyID))
		if err != nil {
			return err
		}
		rows, err := skillLinkRows(ctx, q, cvID, id, t.Skills)
		if err != nil {
			return err
		}
		links = append(links, rows...)
	}
	return copyBatch(ctx, q, "training_skills", []string{"cv_id", "training_id", "skill_id", "ordinal"}, links)
}

// skillLinkRows resolves each skill to a library row. Repeated skills are linked once.
func skillLinkRows(ctx context.Context, q querier, cvID, ownerID uuid.UUID, skills []types.Skill) ([][]any, error) {
	seen := make(map[uuid.UUID]bool, len(skills))
	rows := make([][]any, 0, len(skills))
	for _, s := range skills {
		id, err := resolveSkill(ctx, q, s)
		if err != nil {
			return nil, err
		}
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, []any{cvID, ownerID, id, len(rows)})
	}
	return rows, nil
}

func insertLanguages(ctx context.Context, q querier, cvID uuid.UUID, entries []types.Language) error {
	rows := make([][]any, 0, len(entries))
	for i, l := range entries {
		rows = append(rows, []any{newID(l.ID), cvID, i, textArg(l.Name), textArg(string(l.Proficiency)),
			textArg(l.Certificate), dateArg(l.CertificateDate), textArg(l.CertificateURL), textArg(l.Notes)})
	}
	return copyBatch(ctx, q, "languages",
		[]string{"id", "cv_id", "ordinal", "name", "proficiency", "certificate", "certificate_date", "certificate_url", "notes"},
		rows)
}

func insertAwards(ctx context.Context, q querier, cvID uuid.UUID, entries []types.Award) error {
	rows := make([][]any, 0, len(entries))
	for i, a := range entries {
		rows = append(rows, []any{newID(a.ID), cvID, i, textArg(a.Title), textArg(a.Issuer), dateArg(a.Date),
			textArg(a.Description), textArg(a.URL), textArg(a.Category), textArg(a.Level)})
	}
	return copyBatch(ctx, q, "awards",
		[]string{"id", "cv_id", "ordinal", "title", "issuer", "date", "description", "url", "category", "level"},
		rows)
}

func insertTestimonials(ctx context.Context, q querier, cvID uuid.UUID, entries []types.Testimonial) error {
	rows := make([][]any, 0, len(entries))
	for i, t := range entries {
		rows = append(rows, []any{newID(t.ID), cvID, i, textArg(t.Author), textArg(t.Role), textArg(t.Company),
			textArg(t.Relationship), dateArg(t.Date), textArg(t.Content), textArg(t.ContactInfo), textArg(t.LinkedInURL)})
	}
	return copyBatch(ctx, q, "testimonials",
		[]string{"id", "cv_id", "ordinal", "author", "role", "company", "relationship", "date", "content", "contact_info", "linkedin_profile"},
		rows)
}

func insertPersonalityTests(ctx context.Context, q querier, cvID uuid.UUID, entries []types.PersonalityTest) error {
	var results [][]any
	for i, t := range entries {
		id, err := insertReturningID(ctx, q, "personality_tests",
			[]string{"id", "cv_id", "ordinal", "type", "completion_date", "provider", "description", "report_url"},
			newID(t.ID), cvID, i, textArg(t.Type), dateArg(t.CompletionDate), textArg(t.Provider),
			textArg(t.Description), textArg(t.ReportURL))
		if err != nil {
			return err
		}
		for j, r := range t.Results {
			results = append(results, []any{cvID, id, j, textArg(r.Trait), textArg(r.Score), textArg(r.Description)})
		}
	}
	return copyBatch(ctx, q, "personality_results",
		[]string{"cv_id", "personality_test_id", "ordinal", "trait", "score", "description"}, results)
}

func insertProjects(ctx context.Context, q querier, cvID uuid.UUID, entries []types.Project) error {
	var skills [][]any
	for i, p := range entries {
		id, err := insertReturningID(ctx, q, "projects",
			[]string{"id", "cv_id", "ordinal", "title", "description", "company", "location", "link", "start_date", "end_date", "current"},
			newID(p.ID), cvID, i, textArg(p.Title), textArg(p.Description), textArg(p.Company),
			textArg(p.Location), textArg(p.Link), dateArg(p.StartDate), dateArg(p.EndDate), p.Current)
		if err != nil {
			return err
		}
		skills = append(skills, projectSkillRows(cvID, nil, id, p.TechnicalSkills, p.NonTechnicalSkills)...)
	}
	return copyBatch(ctx, q, "project_skills", projectSkillColumns, skills)
}

// newID keeps a client-supplied id so entries stay addressable across saves.
func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func dateArg(d types.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

