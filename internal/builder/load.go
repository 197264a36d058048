package builder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-builder/internal/normalize"
	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/types"
)

// Result is a loaded document. Sections listed in Errors failed to load and
// are empty in CV; every other section is populated.
type Result struct {
	CV     *types.CV
	Errors []*SectionError
}

// Failed reports whether the section failed to load.
func (r *Result) Failed(section types.Section) bool {
	for _, e := range r.Errors {
		if e.Section == section {
			return true
		}
	}
	return false
}

// Load reads every section of a CV concurrently. Only a failure to read or
// normalize the root record is returned as an error.
func (s *Service) Load(ctx context.Context, cvID uuid.UUID) (*Result, error) {
	root, err := s.store.GetCV(ctx, cvID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cv %s: %w", cvID, err)
	}

	bundle := &records.Bundle{CV: *root}
	var (
		mu       sync.Mutex
		failures []*SectionError
	)

	var g errgroup.Group
	g.SetLimit(s.cfg.LoadConcurrency)
	for _, section := range types.Sections() {
		g.Go(func() error {
			if err := s.loadSection(ctx, cvID, section, bundle); err != nil {
				s.log.Warn("section load failed", "cv_id", cvID.String(), "section", string(section), "error", err)
				mu.Lock()
				failures = append(failures, &SectionError{Section: section, Op: OpLoad, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	doc, err := normalize.CV(bundle)
	if err != nil {
		return nil, err
	}

	sortSectionErrors(failures)
	return &Result{CV: doc, Errors: failures}, nil
}

// loadSection retries transient failures. Cancellation is never retried.
func (s *Service) loadSection(ctx context.Context, cvID uuid.UUID, section types.Section, dst *records.Bundle) error {
	var err error
	for attempt := 0; attempt <= s.cfg.LoadRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
		}
		err = s.store.LoadSection(ctx, cvID, section, dst)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return err
}

// Completion reports which sections of a stored CV have entries.
func (s *Service) Completion(ctx context.Context, cvID uuid.UUID) ([]types.SectionStatus, []*SectionError, error) {
	res, err := s.Load(ctx, cvID)
	if err != nil {
		return nil, nil, err
	}
	return res.CV.Completion(), res.Errors, nil
}

func sortSectionErrors(errs []*SectionError) {
	order := make(map[types.Section]int)
	for i, sec := range types.Sections() {
		order[sec] = i
	}
	sort.Slice(errs, func(i, j int) bool {
		return order[errs[i].Section] < order[errs[j].Section]
	})
}
