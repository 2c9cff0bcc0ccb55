// Package switcher orchestrates extswitch: it caches the profile set from
// the store, resolves the matching profile for each navigation event, and
// drives the reconciler. It also exposes the editing surfaces (HTTP API and
// MCP tools) that the profile list/editor views talk to.
//
// Usage:
//
//	sw, err := switcher.New(st, ctl, logger)
//	w := watch.New(st.DB, watch.Options{...})
//	go w.Run(ctx, func() error { return sw.ReloadProfiles(ctx) })
//	go nav.Start(ctx, sw.HandleNavigation)
package switcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/extswitch/idgen"
	"github.com/hazyhaar/extswitch/navwatch"
	"github.com/hazyhaar/extswitch/profiles"
	"github.com/hazyhaar/extswitch/reconcile"
	"github.com/hazyhaar/extswitch/store"
)

// Switcher wires the store, the matcher, and the reconciler together.
type Switcher struct {
	store  *store.Store
	rec    *reconcile.Reconciler
	logger *slog.Logger
	newID  idgen.Generator

	// cached is the profile set the navigation path matches against. It is
	// refreshed by ReloadProfiles — navigation events never hit the
	// database.
	mu            sync.RWMutex
	cached        []*profiles.ProfileGroup
	globalEnabled bool
}

// Option customises a Switcher.
type Option func(*Switcher)

// WithIDGenerator overrides the profile/condition ID strategy.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Switcher) { s.newID = gen }
}

// New creates a Switcher and performs the initial profile load.
func New(ctx context.Context, st *store.Store, ctl reconcile.Controller, logger *slog.Logger, opts ...Option) (*Switcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Switcher{
		store:  st,
		rec:    reconcile.New(ctl, logger),
		logger: logger,
		newID:  idgen.Default,
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.ReloadProfiles(ctx); err != nil {
		return nil, fmt.Errorf("switcher: initial load: %w", err)
	}
	return s, nil
}

// Reconciler exposes the underlying reconciler for state inspection.
func (s *Switcher) Reconciler() *reconcile.Reconciler { return s.rec }

// ReloadProfiles refreshes the cached profile set and the global enable
// flag from the store.
func (s *Switcher) ReloadProfiles(ctx context.Context) error {
	list, err := s.store.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("switcher: list profiles: %w", err)
	}
	enabled, err := s.store.GlobalEnabled(ctx)
	if err != nil {
		return fmt.Errorf("switcher: read global flag: %w", err)
	}

	s.mu.Lock()
	s.cached = list
	s.globalEnabled = enabled
	s.mu.Unlock()

	s.logger.Info("switcher: profiles loaded", "count", len(list), "global_enabled", enabled)
	return nil
}

// Profiles returns the cached profile set (the slice is a copy, the groups
// are shared).
func (s *Switcher) Profiles() []*profiles.ProfileGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*profiles.ProfileGroup(nil), s.cached...)
}

// GlobalEnabled returns the cached global enable flag.
func (s *Switcher) GlobalEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalEnabled
}

// FindMatching resolves the best profile for a URL against the cached set.
func (s *Switcher) FindMatching(rawURL string) *profiles.ProfileGroup {
	return profiles.FindMatching(rawURL, s.Profiles())
}

// HandleNavigation reconciles extension states for one navigation event.
// This is the reconciliation boundary: every failure is logged and absorbed,
// the event loop must survive anything that happens here. When the switcher
// is globally disabled the event is ignored entirely — previously applied
// state stays as-is until re-enabled.
func (s *Switcher) HandleNavigation(ctx context.Context, ev navwatch.Event) {
	if !s.GlobalEnabled() {
		s.logger.Debug("switcher: globally disabled, skipping", "url", ev.URL)
		return
	}

	match := s.FindMatching(ev.URL)
	if match == nil {
		if s.rec.ShouldRestore(ev.URL, nil) {
			logResults(s.logger, "restore", s.rec.Restore(ctx))
		}
		return
	}

	logResults(s.logger, "apply", s.rec.Apply(ctx, match, ev.URL))
}

func logResults(logger *slog.Logger, op string, results []reconcile.ToggleResult) {
	for _, res := range results {
		if !res.OK {
			logger.Warn("switcher: toggle failed",
				"op", op, "extension_id", res.ExtensionID,
				"enabled", res.Enabled, "error", res.Err)
		}
	}
}

// CreateProfile validates p, assigns missing IDs, and persists it. The
// cached set is refreshed immediately so the next navigation event sees the
// new profile.
func (s *Switcher) CreateProfile(ctx context.Context, p *profiles.ProfileGroup) error {
	if p.ID == "" {
		p.ID = s.newID()
	}
	for i := range p.Conditions {
		if p.Conditions[i].ID == "" {
			p.Conditions[i].ID = s.newID()
		}
	}
	if msg := p.Validate(); msg != "" {
		return &ValidationError{Message: msg}
	}
	if err := s.store.InsertProfile(ctx, p); err != nil {
		return fmt.Errorf("switcher: insert profile: %w", err)
	}
	return s.ReloadProfiles(ctx)
}

// UpdateProfile validates and persists an edited profile group.
func (s *Switcher) UpdateProfile(ctx context.Context, p *profiles.ProfileGroup) error {
	for i := range p.Conditions {
		if p.Conditions[i].ID == "" {
			p.Conditions[i].ID = s.newID()
		}
	}
	if msg := p.Validate(); msg != "" {
		return &ValidationError{Message: msg}
	}
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return fmt.Errorf("switcher: update profile: %w", err)
	}
	return s.ReloadProfiles(ctx)
}

// DeleteProfile removes a profile group. If it is currently active its
// snapshot is restored first so its extension states do not stick.
func (s *Switcher) DeleteProfile(ctx context.Context, id string) error {
	if st := s.rec.CurrentState(); st.ActiveProfileID == id {
		logResults(s.logger, "restore", s.rec.Restore(ctx))
	}
	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("switcher: delete profile: %w", err)
	}
	return s.ReloadProfiles(ctx)
}

// GetProfile reads one profile group from the store. Returns nil, nil when
// absent.
func (s *Switcher) GetProfile(ctx context.Context, id string) (*profiles.ProfileGroup, error) {
	return s.store.GetProfile(ctx, id)
}

// SetGlobalEnabled flips the global flag and refreshes the cache. Disabling
// leaves any applied state untouched by design.
func (s *Switcher) SetGlobalEnabled(ctx context.Context, enabled bool) error {
	if err := s.store.SetGlobalEnabled(ctx, enabled); err != nil {
		return fmt.Errorf("switcher: set global flag: %w", err)
	}
	return s.ReloadProfiles(ctx)
}

// ValidationError reports a user-correctable input problem. The HTTP layer
// maps it to 422, other errors to 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
