// Package builder coordinates loading, saving, previewing and exporting CVs.
package builder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/logger"
	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
)

// Store is the persistence the service depends on.
type Store interface {
	GetCV(ctx context.Context, cvID uuid.UUID) (*records.CV, error)
	LoadSection(ctx context.Context, cvID uuid.UUID, section types.Section, dst *records.Bundle) error
	SaveSection(ctx context.Context, cvID uuid.UUID, section types.Section, doc *types.CV) error
	ListCountries(ctx context.Context) ([]types.Country, error)
}

// Config holds the service's collaborators and tuning.
type Config struct {
	Store    Store
	Exporter export.Exporter
	// Countries labels country codes. When nil the table is read from Store
	// on first use.
	Countries rendering.CountryLookup
	Logger    *logger.Logger

	// LoadConcurrency bounds concurrent section loads.
	LoadConcurrency int
	// LoadRetries is how many times a failed section load is repeated.
	LoadRetries int
	RetryDelay  time.Duration
}

// Service is the orchestration layer between callers and the store,
// normalizer, renderer and exporter.
type Service struct {
	store     Store
	exporter  export.Exporter
	log       *logger.Logger
	cfg       Config
	guard     *saveGuard
	countryMu sync.Mutex
	countries rendering.CountryLookup
}

// New creates a Service. Store is required.
func New(cfg Config) *Service {
	if cfg.LoadConcurrency <= 0 {
		cfg.LoadConcurrency = 4
	}
	if cfg.LoadRetries < 0 {
		cfg.LoadRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 250 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Service{
		store:     cfg.Store,
		exporter:  cfg.Exporter,
		log:       cfg.Logger,
		cfg:       cfg,
		guard:     newSaveGuard(),
		countries: cfg.Countries,
	}
}

// countryLookup returns the configured lookup or the store's country table.
// A failed read is logged and rendering falls back to raw codes.
func (s *Service) countryLookup(ctx context.Context) rendering.CountryLookup {
	s.countryMu.Lock()
	defer s.countryMu.Unlock()
	if s.countries != nil {
		return s.countries
	}
	list, err := s.store.ListCountries(ctx)
	if err != nil {
		s.log.Warn("failed to load countries", "error", err)
		return nil
	}
	s.countries = rendering.NewCountryMap(list)
	return s.countries
}

// saveGuard admits one save per CV section at a time.
type saveGuard struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func newSaveGuard() *saveGuard {
	return &saveGuard{sems: make(map[string]*semaphore.Weighted)}
}

// tryAcquire returns a release func, or false when the key is busy.
// Entries live only while a save holds them.
func (g *saveGuard) tryAcquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, ok := g.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
	}
	if !sem.TryAcquire(1) {
		return nil, false
	}
	g.sems[key] = sem

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			sem.Release(1)
			delete(g.sems, key)
		})
	}, true
}

// held reports how many keys are currently guarded.
func (g *saveGuard) held() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sems)
}

func guardKey(cvID uuid.UUID, section types.Section) string {
	return cvID.String() + "/" + string(section)
}
