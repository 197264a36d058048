package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/types"
)

// LoadCV loads the root record and every section.
func (db *DB) LoadCV(ctx context.Context, cvID uuid.UUID) (*records.Bundle, error) {
	root, err := db.GetCV(ctx, cvID)
	if err != nil {
		return nil, err
	}
	bundle := &records.Bundle{CV: *root}
	for _, s := range types.Sections() {
		if err := db.LoadSection(ctx, cvID, s, bundle); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

// LoadSection loads one section into dst. Only the field backing that
// section is written, so distinct sections may be loaded concurrently into
// the same bundle.
func (db *DB) LoadSection(ctx context.Context, cvID uuid.UUID, section types.Section, dst *records.Bundle) error {
	var err error
	switch section {
	case types.SectionPersonalInfo:
		dst.PersonalInfo, err = loadPersonalInfo(ctx, db.pool, cvID)
	case types.SectionPersonality:
		dst.PersonalityTests, err = loadPersonalityTests(ctx, db.pool, cvID)
	case types.SectionWorkExperience:
		dst.WorkExperience, err = loadWorkExperience(ctx, db.pool, cvID)
	case types.SectionEducation:
		dst.Education, err = loadEducation(ctx, db.pool, cvID)
	case types.SectionCertifications:
		dst.Certifications, err = loadCertifications(ctx, db.pool, cvID)
	case types.SectionTrainings:
		dst.Trainings, err = loadTrainings(ctx, db.pool, cvID)
	case types.SectionLanguages:
		dst.Languages, err = loadLanguages(ctx, db.pool, cvID)
	case types.SectionAwards:
		dst.Awards, err = loadAwards(ctx, db.pool, cvID)
	case types.SectionTestimonials:
		dst.Testimonials, err = loadTestimonials(ctx, db.pool, cvID)
	case types.SectionProjects:
		dst.Projects, err = loadProjects(ctx, db.pool, cvID)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", section, err)
	}
	return nil
}

// child is a row tagged with the id of the row that owns it.
type child[T any] struct {
	parent string
	row    T
}

func group[T any](children []child[T]) map[string][]T {
	out := make(map[string][]T)
	for _, c := range children {
		out[c.parent] = append(out[c.parent], c.row)
	}
	return out
}

const companyColumns = `c.id::text, c.name, c.description, c.industry, c.website, c.city, c.country_code, c.type`

// companyCols receives the LEFT JOINed companies columns.
type companyCols struct {
	ID, Name, Description, Industry, Website, City, CountryCode, Type *string
}

func (c *companyCols) dest() []any {
	return []any{&c.ID, &c.Name, &c.Description, &c.Industry, &c.Website, &c.City, &c.CountryCode, &c.Type}
}

func (c companyCols) record() *records.Company {
	if c.ID == nil {
		return nil
	}
	return &records.Company{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Industry:    c.Industry,
		Website:     c.Website,
		City:        c.City,
		CountryCode: c.CountryCode,
		Type:        c.Type,
	}
}

func loadPersonalInfo(ctx context.Context, q querier, cvID uuid.UUID) (*records.PersonalInfo, error) {
	var (
		r       records.PersonalInfo
		country records.CountryRef
	)
	err := q.QueryRow(ctx,
		`SELECT p.id::text, p.first_name, p.middle_name, p.last_name, p.title, p.email, p.phone,
		        p.street, p.street_number, p.postal_code, p.city, p.state, p.country, p.country_code,
		        p.website, p.linkedin, p.github, p.birthdate::text, p.nationality, p.nationality_code,
		        p.relationship_status, n.code, n.name, n.nationality
		 FROM personal_info p LEFT JOIN countries n ON n.code = p.nationality_code
		 WHERE p.cv_id = $1`,
		cvID,
	).Scan(&r.ID, &r.FirstName, &r.MiddleName, &r.LastName, &r.Title, &r.Email, &r.Phone,
		&r.Street, &r.StreetNumber, &r.PostalCode, &r.City, &r.State, &r.Country, &r.CountryCode,
		&r.Website, &r.LinkedIn, &r.GitHub, &r.Birthdate, &r.Nationality, &r.NationalityCode,
		&r.RelationshipStatus, &country.Code, &country.Name, &country.Nationality)
	found := true
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		found = false
	}
	if country.Code != nil {
		r.Countries = &country
	}

	summaries, err := selectByFK(ctx, q,
		`SELECT id::text, content FROM profile_summaries WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, scanContent)
	if err != nil {
		return nil, err
	}
	if !found && len(summaries) == 0 {
		return nil, nil
	}
	r.ProfileSummaries = summaries
	if r.ProfileSummaries == nil {
		r.ProfileSummaries = []records.Content{}
	}
	return &r, nil
}

func scanContent(rows pgx.Rows) (records.Content, error) {
	var c records.Content
	err := rows.Scan(&c.ID, &c.Content)
	return c, err
}

func scanChildContent(rows pgx.Rows) (child[records.Content], error) {
	var c child[records.Content]
	err := rows.Scan(&c.parent, &c.row.ID, &c.row.Content)
	return c, err
}

func loadWorkExperience(ctx context.Context, q querier, cvID uuid.UUID) ([]records.WorkExperience, error) {
	exps, err := selectByFK(ctx, q,
		`SELECT w.id::text, w.company_id::text, w.description, `+companyColumns+`
		 FROM work_experience w LEFT JOIN companies c ON c.id = w.company_id
		 WHERE w.cv_id = $1 ORDER BY w.ordinal`,
		cvID, func(rows pgx.Rows) (records.WorkExperience, error) {
			var (
				r records.WorkExperience
				c companyCols
			)
			err := rows.Scan(append([]any{&r.ID, &r.CompanyID, &r.Description}, c.dest()...)...)
			r.Companies = c.record()
			return r, err
		})
	if err != nil {
		return nil, err
	}
	if len(exps) == 0 {
		return []records.WorkExperience{}, nil
	}

	positions, err := selectByFK(ctx, q,
		`SELECT work_experience_id::text, id::text, title, description,
		        start_date::text, end_date::text, current
		 FROM positions WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (child[records.Position], error) {
			var c child[records.Position]
			err := rows.Scan(&c.parent, &c.row.ID, &c.row.Title, &c.row.Description,
				&c.row.StartDate, &c.row.EndDate, &c.row.Current)
			return c, err
		})
	if err != nil {
		return nil, err
	}

	responsibilities, err := selectByFK(ctx, q,
		`SELECT position_id::text, id::text, content
		 FROM position_responsibilities WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, scanChildContent)
	if err != nil {
		return nil, err
	}
	achievements, err := selectByFK(ctx, q,
		`SELECT position_id::text, id::text, content
		 FROM position_achievements WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, scanChildContent)
	if err != nil {
		return nil, err
	}

	projects, err := selectByFK(ctx, q,
		`SELECT pp.position_id::text, pp.id::text, pp.name, pp.role, pp.description, pp.link,
		        pp.company_id::text, pp.start_date::text, pp.end_date::text, pp.current, `+companyColumns+`
		 FROM position_projects pp LEFT JOIN companies c ON c.id = pp.company_id
		 WHERE pp.cv_id = $1 ORDER BY pp.ordinal`,
		cvID, func(rows pgx.Rows) (child[records.PositionProject], error) {
			var (
				ch child[records.PositionProject]
				c  companyCols
			)
			r := &ch.row
			err := rows.Scan(append([]any{&ch.parent, &r.ID, &r.Name, &r.Role, &r.Description, &r.Link,
				&r.CompanyID, &r.StartDate, &r.EndDate, &r.Current}, c.dest()...)...)
			r.Companies = c.record()
			return ch, err
		})
	if err != nil {
		return nil, err
	}

	skillsByProject, _, err := loadProjectSkills(ctx, q, cvID)
	if err != nil {
		return nil, err
	}

	for i := range projects {
		p := &projects[i].row
		p.Skills = nonNilSkills(skillsByProject[records.Str(p.ID)])
	}
	respByPosition := group(responsibilities)
	achByPosition := group(achievements)
	projByPosition := group(projects)
	for i := range positions {
		p := &positions[i].row
		id := records.Str(p.ID)
		p.Responsibilities = respByPosition[id]
		p.Achievements = achByPosition[id]
		p.Projects = projByPosition[id]
		if p.Projects == nil {
			p.Projects = []records.PositionProject{}
		}
	}
	posByExperience := group(positions)
	for i := range exps {
		exps[i].Positions = posByExperience[records.Str(exps[i].ID)]
		if exps[i].Positions == nil {
			exps[i].Positions = []records.Position{}
		}
	}
	return exps, nil
}

// loadProjectSkills returns project_skills rows keyed by position project id
// and by stand-alone project id.
func loadProjectSkills(ctx context.Context, q querier, cvID uuid.UUID) (byPositionProject, byProject map[string][]records.ProjectSkill, err error) {
	type row struct {
		positionProjectID, projectID *string
		skill                        records.ProjectSkill
	}
	rows, err := selectByFK(ctx, q,
		`SELECT position_project_id::text, project_id::text, name, score::float8, type
		 FROM project_skills WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (row, error) {
			var r row
			err := rows.Scan(&r.positionProjectID, &r.projectID, &r.skill.Name, &r.skill.Score, &r.skill.Type)
			return r, err
		})
	if err != nil {
		return nil, nil, err
	}

	byPositionProject = make(map[string][]records.ProjectSkill)
	byProject = make(map[string][]records.ProjectSkill)
	for _, r := range rows {
		switch {
		case r.positionProjectID != nil:
			byPositionProject[*r.positionProjectID] = append(byPositionProject[*r.positionProjectID], r.skill)
		case r.projectID != nil:
			byProject[*r.projectID] = append(byProject[*r.projectID], r.skill)
		}
	}
	return byPositionProject, byProject, nil
}

func nonNilSkills(s []records.ProjectSkill) []records.ProjectSkill {
	if s == nil {
		return []records.ProjectSkill{}
	}
	return s
}

// loadSkillLinks reads a skill join table keyed by its owner column.
func loadSkillLinks(ctx context.Context, q querier, table, ownerColumn string, cvID uuid.UUID) (map[string][]records.SkillLink, error) {
	query := fmt.Sprintf(
		`SELECT l.%s::text, s.id::text, s.domain, s.subdomain, s.name, s.description
		 FROM %s l JOIN skills s ON s.id = l.skill_id
		 WHERE l.cv_id = $1 ORDER BY l.ordinal`,
		pgx.Identifier{ownerColumn}.Sanitize(), pgx.Identifier{table}.Sanitize())

	links, err := selectByFK(ctx, q, query, cvID, func(rows pgx.Rows) (child[records.SkillLink], error) {
		var (
			c child[records.SkillLink]
			s records.Skill
		)
		err := rows.Scan(&c.parent, &s.ID, &s.Domain, &s.Subdomain, &s.Name, &s.Description)
		c.row.Skills = &s
		return c, err
	})
	if err != nil {
		return nil, err
	}
	return group(links), nil
}

func nonNilLinks(l []records.SkillLink) []records.SkillLink {
	if l == nil {
		return []records.SkillLink{}
	}
	return l
}

func loadEducation(ctx context.Context, q querier, cvID uuid.UUID) ([]records.Education, error) {
	rows, err := selectByFK(ctx, q,
		`SELECT e.id::text, e.degree, e.field_of_study, e.description, e.company_id::text,
		        e.start_date::text, e.end_date::text, e.current, `+companyColumns+`
		 FROM education e LEFT JOIN companies c ON c.id = e.company_id
		 WHERE e.cv_id = $1 ORDER BY e.ordinal`,
		cvID, func(rows pgx.Rows) (records.Education, error) {
			var (
				r records.Education
				c companyCols
			)
			err := rows.Scan(append([]any{&r.ID, &r.Degree, &r.FieldOfStudy, &r.Description, &r.CompanyID,
				&r.StartDate, &r.EndDate, &r.Current}, c.dest()...)...)
			r.Companies = c.record()
			return r, err
		})
	if err != nil {
		return nil, err
	}
	links, err := loadSkillLinks(ctx, q, "education_skills", "education_id", cvID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].EducationSkills = nonNilLinks(links[records.Str(rows[i].ID)])
	}
	if rows == nil {
		rows = []records.Education{}
	}
	return rows, nil
}

func loadCertifications(ctx context.Context, q querier, cvID uuid.UUID) ([]records.Certification, error) {
	rows, err := selectByFK(ctx, q,
		`SELECT x.id::text, x.name, x.issue_date::text, x.expiration_date::text, x.credential_id,
		        x.credential_url, x.issuing_organization, x.company_id::text, `+companyColumns+`
		 FROM certifications x LEFT JOIN companies c ON c.id = x.company_id
		 WHERE x.cv_id = $1 ORDER BY x.ordinal`,
		cvID, func(rows pgx.Rows) (records.Certification, error) {
			var (
				r records.Certification
				c companyCols
			)
			err := rows.Scan(append([]any{&r.ID, &r.Name, &r.IssueDate, &r.ExpirationDate, &r.CredentialID,
				&r.CredentialURL, &r.IssuingOrganization, &r.CompanyID}, c.dest()...)...)
			r.Companies = c.record()
			return r, err
		})
	if err != nil {
		return nil, err
	}
	links, err := loadSkillLinks(ctx, q, "certification_skills", "certification_id", cvID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CertificationSkills = nonNilLinks(links[records.Str(rows[i].ID)])
	}
	if rows == nil {
		rows = []records.Certification{}
	}
	return rows, nil
}

func loadTrainings(ctx context.Context, q querier, cvID uuid.UUID) ([]records.Training, error) {
	rows, err := selectByFK(ctx, q,
		`SELECT t.id::text, t.title, t.completion_date::text, t.description, t.provider,
		        t.company_id::text, `+companyColumns+`
		 FROM trainings t LEFT JOIN companies c ON c.id = t.company_id
		 WHERE t.cv_id = $1 ORDER BY t.ordinal`,
		cvID, func(rows pgx.Rows) (records.Training, error) {
			var (
				r records.Training
				c companyCols
			)
			err := rows.Scan(append([]any{&r.ID, &r.Title, &r.CompletionDate, &r.Description, &r.Provider,
				&r.CompanyID}, c.dest()...)...)
			r.Companies = c.record()
			return r, err
		})
	if err != nil {
		return nil, err
	}
	links, err := loadSkillLinks(ctx, q, "training_skills", "training_id", cvID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].TrainingSkills = nonNilLinks(links[records.Str(rows[i].ID)])
	}
	if rows == nil {
		rows = []records.Training{}
	}
	return rows, nil
}

func loadLanguages(ctx context.Context, q querier, cvID uuid.UUID) ([]records.Language, error) {
	rows, err := selectByFK(ctx, q,
		`SELECT id::text, name, proficiency, certificate, certificate_date::text, certificate_url, notes
		 FROM languages WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (records.Language, error) {
			var r records.Language
			err := rows.Scan(&r.ID, &r.Name, &r.Proficiency, &r.Certificate, &r.CertificateDate,
				&r.CertificateURL, &r.Notes)
			return r, err
		})
	if rows == nil && err == nil {
		rows = []records.Language{}
	}
	return rows, err
}

func loadAwards(ctx context.Context, q querier, cvID uuid.UUID) ([]records.Award, error) {
	rows, err := selectByFK(ctx, q,
		`SELECT id::text, title, issuer, date::text, description, url, category, level
		 FROM awards WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (records.Award, error) {
			var r records.Award
			err := rows.Scan(&r.ID, &r.Title, &r.Issuer, &r.Date, &r.Description, &r.URL, &r.Category, &r.Level)
			return r, err
		})
	if rows == nil && err == nil {
		rows = []records.Award{}
	}
	return rows, err
}

func loadTestimonials(ctx context.Context, q querier, cvID uuid.UUID) ([]records.Testimonial, error) {
	rows, err := selectByFK(ctx, q,
		`SELECT id::text, author, role, company, relationship, date::text, content, contact_info, linkedin_profile
		 FROM testimonials WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (records.Testimonial, error) {
			var r records.Testimonial
			err := rows.Scan(&r.ID, &r.Author, &r.Role, &r.Company, &r.Relationship, &r.Date, &r.Content,
				&r.ContactInfo, &r.LinkedInProfile)
			return r, err
		})
	if rows == nil && err == nil {
		rows = []records.Testimonial{}
	}
	return rows, err
}

func loadPersonalityTests(ctx context.Context, q querier, cvID uuid.UUID) ([]records.PersonalityTest, error) {
	tests, err := selectByFK(ctx, q,
		`SELECT id::text, type, completion_date::text, provider, description, report_url
		 FROM personality_tests WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (records.PersonalityTest, error) {
			var r records.PersonalityTest
			err := rows.Scan(&r.ID, &r.Type, &r.CompletionDate, &r.Provider, &r.Description, &r.ReportURL)
			return r, err
		})
	if err != nil {
		return nil, err
	}

	results, err := selectByFK(ctx, q,
		`SELECT personality_test_id::text, id::text, trait, score, description
		 FROM personality_results WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (child[records.PersonalityResult], error) {
			var (
				c     child[records.PersonalityResult]
				score *string
			)
			err := rows.Scan(&c.parent, &c.row.ID, &c.row.Trait, &score, &c.row.Description)
			if score != nil {
				s := records.Scalar(*score)
				c.row.Score = &s
			}
			return c, err
		})
	if err != nil {
		return nil, err
	}

	byTest := group(results)
	for i := range tests {
		tests[i].Results = byTest[records.Str(tests[i].ID)]
		if tests[i].Results == nil {
			tests[i].Results = []records.PersonalityResult{}
		}
	}
	if tests == nil {
		tests = []records.PersonalityTest{}
	}
	return tests, nil
}

func loadProjects(ctx context.Context, q querier, cvID uuid.UUID) ([]records.Project, error) {
	rows, err := selectByFK(ctx, q,
		`SELECT id::text, title, description, company, location, link,
		        start_date::text, end_date::text, current
		 FROM projects WHERE cv_id = $1 ORDER BY ordinal`,
		cvID, func(rows pgx.Rows) (records.Project, error) {
			var r records.Project
			err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.Company, &r.Location, &r.Link,
				&r.StartDate, &r.EndDate, &r.Current)
			return r, err
		})
	if err != nil {
		return nil, err
	}
	_, byProject, err := loadProjectSkills(ctx, q, cvID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Skills = nonNilSkills(byProject[records.Str(rows[i].ID)])
	}
	if rows == nil {
		rows = []records.Project{}
	}
	return rows, nil
}
