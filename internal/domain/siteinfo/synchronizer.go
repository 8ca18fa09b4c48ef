package siteinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/apparel-storefront/internal/events"
	"github.com/example/apparel-storefront/internal/infrastructure/store"
)

type State int

const (
	Uninitialized State = iota
	Loading
	CreatingDefault
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case CreatingDefault:
		return "creating_default"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Synchronizer keeps the in-memory Site Info in step with the newest
// site_info row. It starts with Defaults so readers never block on the remote.
type Synchronizer struct {
	mu      sync.RWMutex
	state   State
	current SiteInfo

	// flow serializes Load and Update so their remote steps do not interleave.
	flow sync.Mutex

	repo      store.SiteInfoStore
	publisher events.Publisher
	logger    *slog.Logger
}

func NewSynchronizer(repo store.SiteInfoStore, publisher events.Publisher, logger *slog.Logger) *Synchronizer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Synchronizer{
		state:     Uninitialized,
		current:   Defaults(),
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Load reads the newest row. When the table is empty the default record is
// inserted and kept in memory. Any other failure is returned and memory keeps
// its previous content. The synchronizer ends Ready in every case.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.flow.Lock()
	defer s.flow.Unlock()
	defer s.setState(Ready)

	s.setState(Loading)
	row, err := s.repo.LatestSiteInfo(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.createDefault(ctx)
	case err != nil:
		s.logger.Error("load site info", "error", err)
		return fmt.Errorf("load site info: %w", err)
	}

	info, err := fromRow(*row)
	if err != nil {
		s.logger.Error("load site info", "site_info_id", row.ID, "error", err)
		return err
	}
	s.mu.Lock()
	s.current = info
	s.mu.Unlock()
	return nil
}

// Reload re-enters Loading; used when another instance reports a change.
func (s *Synchronizer) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Synchronizer) createDefault(ctx context.Context) error {
	s.setState(CreatingDefault)

	defaults := Defaults()
	s.mu.Lock()
	s.current = defaults.clone()
	s.mu.Unlock()

	row, err := defaults.toRow()
	if err == nil {
		_, err = s.repo.InsertSiteInfo(ctx, row)
	}
	if err != nil {
		s.logger.Error("create default site info", "error", err)
		return fmt.Errorf("create default site info: %w", err)
	}
	s.logger.Info("default site info created")
	return nil
}

// Update writes patch to the newest row, or inserts the merged record when no
// row exists, and only then merges patch into memory.
func (s *Synchronizer) Update(ctx context.Context, patch Patch) (SiteInfo, error) {
	s.flow.Lock()
	defer s.flow.Unlock()

	if patch.IsEmpty() {
		return s.Current(), nil
	}

	row, err := s.repo.LatestSiteInfo(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = s.insertMerged(ctx, patch)
	case err != nil:
		err = fmt.Errorf("fetch site info: %w", err)
	default:
		err = s.updateRow(ctx, row.ID, patch)
	}
	if err != nil {
		s.logger.Error("update site info", "error", err)
		return SiteInfo{}, err
	}

	s.mu.Lock()
	patch.apply(&s.current)
	updated := s.current.clone()
	s.mu.Unlock()

	if err := s.publisher.Publish(ctx, events.SiteInfoUpdated, "site_info", updated); err != nil {
		s.logger.Warn("publish site info event", "error", err)
	}
	return updated, nil
}

func (s *Synchronizer) updateRow(ctx context.Context, id string, patch Patch) error {
	fields, err := patch.columns()
	if err != nil {
		return err
	}
	if err := s.repo.UpdateSiteInfo(ctx, id, fields); err != nil {
		return fmt.Errorf("update site info %s: %w", id, err)
	}
	return nil
}

func (s *Synchronizer) insertMerged(ctx context.Context, patch Patch) error {
	merged := s.Current()
	patch.apply(&merged)
	row, err := merged.toRow()
	if err != nil {
		return err
	}
	if _, err := s.repo.InsertSiteInfo(ctx, row); err != nil {
		return fmt.Errorf("insert site info: %w", err)
	}
	return nil
}

// AppendCarouselImages adds urls after the existing carousel images.
func (s *Synchronizer) AppendCarouselImages(ctx context.Context, urls []string) (SiteInfo, error) {
	images := append(s.Current().CarouselImages, urls...)
	return s.Update(ctx, Patch{CarouselImages: &images})
}

// Current returns a copy of the in-memory record.
func (s *Synchronizer) Current() SiteInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Synchronizer) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
