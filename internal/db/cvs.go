package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-builder/internal/records"
)

// CVSummary is a listing row for a stored CV.
type CVSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCV creates an empty CV and returns its ID
func (db *DB) CreateCV(ctx context.Context, title string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO cvs (title) VALUES ($1) RETURNING id`,
		textArg(title),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create cv: %w", err)
	}
	return id, nil
}

// GetCV loads the root record. It returns ErrNotFound for an unknown id.
func (db *DB) GetCV(ctx context.Context, cvID uuid.UUID) (*records.CV, error) {
	var rec records.CV
	err := db.pool.QueryRow(ctx,
		`SELECT id::text, created_at::text, updated_at::text FROM cvs WHERE id = $1`,
		cvID,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cv %s: %w", cvID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cv: %w", err)
	}
	return &rec, nil
}

// ListCVs returns stored CVs, most recently updated first.
func (db *DB) ListCVs(ctx context.Context, limit int) ([]CVSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT c.id, COALESCE(c.title, ''), COALESCE(p.first_name, ''), COALESCE(p.last_name, ''),
		        c.created_at, c.updated_at
		 FROM cvs c LEFT JOIN personal_info p ON p.cv_id = c.id
		 ORDER BY c.updated_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cvs: %w", err)
	}
	defer rows.Close()

	cvs := []CVSummary{}
	for rows.Next() {
		var s CVSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.FirstName, &s.LastName, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cv: %w", err)
		}
		cvs = append(cvs, s)
	}
	return cvs, rows.Err()
}

// DeleteCV deletes a CV and all its sections (via cascade)
func (db *DB) DeleteCV(ctx context.Context, cvID uuid.UUID) error {
	n, err := deleteByFK(ctx, db.pool, "cvs", "id", cvID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("cv %s: %w", cvID, ErrNotFound)
	}
	return nil
}

// TouchCV bumps updated_at after a section save.
func (db *DB) TouchCV(ctx context.Context, cvID uuid.UUID) error {
	return touchCV(ctx, db.pool, cvID)
}

func touchCV(ctx context.Context, q querier, cvID uuid.UUID) error {
	tag, err := q.Exec(ctx, `UPDATE cvs SET updated_at = NOW() WHERE id = $1`, cvID)
	if err != nil {
		return fmt.Errorf("failed to touch cv: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cv %s: %w", cvID, ErrNotFound)
	}
	return nil
}
