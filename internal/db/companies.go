package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-builder/internal/types"
)

// -----------------------------------------------------------------------------
// Company Methods
// -----------------------------------------------------------------------------

const companySelect = `SELECT id, name, COALESCE(description, ''), COALESCE(industry, ''),
	COALESCE(website, ''), COALESCE(city, ''), COALESCE(country_code, ''), COALESCE(type, '')
	FROM companies`

func scanCompany(row pgx.Row) (types.Company, error) {
	var c types.Company
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Industry, &c.Website, &c.City, &c.CountryCode, &c.Type)
	return c, err
}

// ListCompanies returns the company library ordered by name.
func (db *DB) ListCompanies(ctx context.Context) ([]types.Company, error) {
	rows, err := db.pool.Query(ctx, companySelect+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []types.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// GetCompanyByID retrieves a company by its UUID
func (db *DB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*types.Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx, companySelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// CreateCompany finds an existing company by normalized name or creates a new
// one. Details of an existing company are filled in where they were blank.
func (db *DB) CreateCompany(ctx context.Context, c types.Company) (*types.Company, error) {
	id, err := findOrCreateCompany(ctx, db.pool, c)
	if err != nil {
		return nil, err
	}
	return db.GetCompanyByID(ctx, id)
}

// UpdateCompany overwrites a company's details. Renaming onto another
// company's normalized name fails with ErrConflict.
func (db *DB) UpdateCompany(ctx context.Context, c types.Company) (*types.Company, error) {
	normalized := NormalizeName(c.Name)
	if normalized == "" {
		return nil, fmt.Errorf("company name cannot be empty")
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE companies SET
		     name = $2, name_normalized = $3, description = $4, industry = $5, website = $6,
		     city = $7, country_code = (SELECT code FROM countries WHERE code = $8), type = $9,
		     updated_at = NOW()
		 WHERE id = $1`,
		c.ID, c.Name, normalized, textArg(c.Description), textArg(c.Industry), textArg(c.Website),
		textArg(c.City), textArg(c.CountryCode), textArg(c.Type),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("company %q: %w", c.Name, ErrConflict)
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("company %s: %w", c.ID, ErrNotFound)
	}
	return db.GetCompanyByID(ctx, c.ID)
}

// DeleteCompany removes a company from the library. Entries that referenced
// it keep their data without an employer, institution or issuer.
func (db *DB) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	n, err := deleteByFK(ctx, db.pool, "companies", "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	return nil
}

// resolveCompany returns the id to reference for c: its own id when set,
// otherwise a find-or-create by name. A company with neither yields uuid.Nil.
func resolveCompany(ctx context.Context, q querier, c types.Company) (uuid.UUID, error) {
	if c.ID != uuid.Nil {
		return c.ID, nil
	}
	if NormalizeName(c.Name) == "" {
		return uuid.Nil, nil
	}
	return findOrCreateCompany(ctx, q, c)
}

func findOrCreateCompany(ctx context.Context, q querier, c types.Company) (uuid.UUID, error) {
	normalized := NormalizeName(c.Name)
	if normalized == "" {
		return uuid.Nil, fmt.Errorf("company name cannot be empty")
	}

	var id uuid.UUID
	err := q.QueryRow(ctx,
		`INSERT INTO companies (name, name_normalized, description, industry, website, city, country_code, type)
		 VALUES ($1, $2, $3, $4, $5, $6, (SELECT code FROM countries WHERE code = $7), $8)
		 ON CONFLICT (name_normalized) DO UPDATE SET
		     description = COALESCE(companies.description, EXCLUDED.description),
		     industry    = COALESCE(companies.industry, EXCLUDED.industry),
		     website     = COALESCE(companies.website, EXCLUDED.website),
		     city        = COALESCE(companies.city, EXCLUDED.city),
		     updated_at  = NOW()
		 RETURNING id`,
		c.Name, normalized, textArg(c.Description), textArg(c.Industry), textArg(c.Website),
		textArg(c.City), textArg(c.CountryCode), textArg(c.Type),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create company: %w", err)
	}
	return id, nil
}

// -----------------------------------------------------------------------------
// Skill Methods
// -----------------------------------------------------------------------------

// ListSkills returns the skill library ordered by name.
func (db *DB) ListSkills(ctx context.Context) ([]types.Skill, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, COALESCE(domain, ''), COALESCE(subdomain, ''), name, COALESCE(description, '')
		 FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []types.Skill{}
	for rows.Next() {
		var s types.Skill
		if err := rows.Scan(&s.ID, &s.Domain, &s.Subdomain, &s.Name, &s.Description); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (db *DB) getSkill(ctx context.Context, id uuid.UUID) (*types.Skill, error) {
	out := types.Skill{ID: id}
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(domain, ''), COALESCE(subdomain, ''), name, COALESCE(description, '')
		 FROM skills WHERE id = $1`, id,
	).Scan(&out.Domain, &out.Subdomain, &out.Name, &out.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("skill %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}
	return &out, nil
}

// CreateSkill finds a skill by normalized name or adds it to the library.
func (db *DB) CreateSkill(ctx context.Context, s types.Skill) (*types.Skill, error) {
	id, err := findOrCreateSkill(ctx, db.pool, s)
	if err != nil {
		return nil, err
	}
	return db.getSkill(ctx, id)
}

// UpdateSkill overwrites a skill. Renaming onto another skill's normalized
// name fails with ErrConflict.
func (db *DB) UpdateSkill(ctx context.Context, s types.Skill) (*types.Skill, error) {
	normalized := NormalizeName(s.Name)
	if normalized == "" {
		return nil, fmt.Errorf("skill name cannot be empty")
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE skills SET name = $2, name_normalized = $3, domain = $4, subdomain = $5, description = $6
		 WHERE id = $1`,
		s.ID, s.Name, normalized, textArg(s.Domain), textArg(s.Subdomain), textArg(s.Description),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("skill %q: %w", s.Name, ErrConflict)
		}
		return nil, fmt.Errorf("failed to update skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("skill %s: %w", s.ID, ErrNotFound)
	}
	return db.getSkill(ctx, s.ID)
}

// DeleteSkill removes a skill from the library and from every entry linking it.
func (db *DB) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	n, err := deleteByFK(ctx, db.pool, "skills", "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("skill %s: %w", id, ErrNotFound)
	}
	return nil
}

func resolveSkill(ctx context.Context, q querier, s types.Skill) (uuid.UUID, error) {
	if s.ID != uuid.Nil {
		return s.ID, nil
	}
	if NormalizeName(s.Name) == "" {
		return uuid.Nil, nil
	}
	return findOrCreateSkill(ctx, q, s)
}

func findOrCreateSkill(ctx context.Context, q querier, s types.Skill) (uuid.UUID, error) {
	normalized := NormalizeName(s.Name)
	if normalized == "" {
		return uuid.Nil, fmt.Errorf("skill name cannot be empty")
	}
	var id uuid.UUID
	err := q.QueryRow(ctx,
		`INSERT INTO skills (name, name_normalized, domain, subdomain, description)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name_normalized) DO UPDATE SET
		     domain      = COALESCE(skills.domain, EXCLUDED.domain),
		     subdomain   = COALESCE(skills.subdomain, EXCLUDED.subdomain),
		     description = COALESCE(skills.description, EXCLUDED.description)
		 RETURNING id`,
		s.Name, normalized, textArg(s.Domain), textArg(s.Subdomain), textArg(s.Description),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create skill: %w", err)
	}
	return id, nil
}

// -----------------------------------------------------------------------------
// Country Methods
// -----------------------------------------------------------------------------

// ListCountries returns the country reference table ordered by name.
func (db *DB) ListCountries(ctx context.Context) ([]types.Country, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT code, name, COALESCE(nationality, '') FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	countries := []types.Country{}
	for rows.Next() {
		var c types.Country
		if err := rows.Scan(&c.Code, &c.Name, &c.Nationality); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}
