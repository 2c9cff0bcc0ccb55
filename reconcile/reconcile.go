// Package reconcile owns the transient "what is currently applied" state of
// extswitch and converges it on navigation: snapshot the extensions a
// profile is about to change, apply the profile's target states, and restore
// the snapshot when navigation leaves the matched area.
//
// At most one profile is active at a time. Every operation that reads and
// writes the match state runs under one mutex, so overlapping navigation
// events reconcile one at a time — a snapshot is never clobbered mid-use
// and the committed active profile always corresponds to the last completed
// event.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hazyhaar/extswitch/profiles"
)

// ErrNotFound is returned by a Controller when the extension id is unknown
// to the browser.
var ErrNotFound = errors.New("extension not found")

// Controller queries and sets the enabled state of a browser extension.
// Implementations must return per-call errors rather than hang; a refused
// toggle is an error, not a panic.
type Controller interface {
	Enabled(ctx context.Context, extensionID string) (bool, error)
	SetEnabled(ctx context.Context, extensionID string, enabled bool) error
}

// SavedExtensionState is a point-in-time snapshot of one extension, captured
// immediately before a profile changes it.
type SavedExtensionState struct {
	ExtensionID string `json:"extension_id"`
	WasEnabled  bool   `json:"was_enabled"`
}

// MatchState is the transient reconciliation state. Zero value means Idle.
type MatchState struct {
	ActiveProfileID string                `json:"active_profile_id,omitempty"`
	SavedStates     []SavedExtensionState `json:"saved_states,omitempty"`
	LastMatchedURL  string                `json:"last_matched_url,omitempty"`
}

// Idle reports whether no profile is active.
func (s MatchState) Idle() bool { return s.ActiveProfileID == "" }

// ToggleResult records the outcome of one controller call. Failures are
// carried explicitly so callers can aggregate and report them instead of
// having them silently swallowed.
type ToggleResult struct {
	ExtensionID string `json:"extension_id"`
	Enabled     bool   `json:"enabled"`
	OK          bool   `json:"ok"`
	Err         error  `json:"-"`
}

// Reconciler is the single writer of the match state.
type Reconciler struct {
	ctl    Controller
	logger *slog.Logger

	mu    sync.Mutex
	state MatchState
}

// New creates a Reconciler in the Idle state.
func New(ctl Controller, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{ctl: ctl, logger: logger}
}

// Apply reconciles toward profile p for url.
//
//   - Same profile already active: only the last-matched URL is updated.
//     Re-navigating inside the matched area must not re-snapshot, or the
//     snapshot would be overwritten with already-modified values.
//   - Different profile active: its snapshot is restored first, then p is
//     applied.
//   - Idle: p is applied directly.
//
// Applying snapshots the current state of every extension p changes
// (keep entries are never touched, so never snapshotted), then requests the
// target states. A refusing extension is recorded as a failed ToggleResult
// and does not abort the rest of the batch.
func (r *Reconciler) Apply(ctx context.Context, p *profiles.ProfileGroup, url string) []ToggleResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.ActiveProfileID == p.ID {
		r.state.LastMatchedURL = url
		return nil
	}

	var results []ToggleResult
	if !r.state.Idle() {
		results = append(results, r.restoreLocked(ctx)...)
	}

	// Snapshot first, then apply — the snapshot must hold pre-apply values
	// even when targets overlap.
	saved := make([]SavedExtensionState, 0, len(p.ExtensionStates))
	apply := make([]profiles.ExtensionStateConfig, 0, len(p.ExtensionStates))
	for _, es := range p.ExtensionStates {
		if es.TargetState == profiles.TargetKeep {
			continue
		}
		cur, err := r.ctl.Enabled(ctx, es.ExtensionID)
		if err != nil {
			results = append(results, ToggleResult{
				ExtensionID: es.ExtensionID,
				Enabled:     es.TargetState == profiles.TargetEnable,
				Err:         err,
			})
			r.logger.Warn("reconcile: snapshot failed",
				"extension_id", es.ExtensionID, "profile_id", p.ID, "error", err)
			continue
		}
		saved = append(saved, SavedExtensionState{ExtensionID: es.ExtensionID, WasEnabled: cur})
		apply = append(apply, es)
	}

	for _, es := range apply {
		want := es.TargetState == profiles.TargetEnable
		res := ToggleResult{ExtensionID: es.ExtensionID, Enabled: want}
		if err := r.ctl.SetEnabled(ctx, es.ExtensionID, want); err != nil {
			res.Err = err
			r.logger.Warn("reconcile: apply failed",
				"extension_id", es.ExtensionID, "profile_id", p.ID,
				"enabled", want, "error", err)
		} else {
			res.OK = true
		}
		results = append(results, res)
	}

	r.state = MatchState{ActiveProfileID: p.ID, SavedStates: saved, LastMatchedURL: url}
	r.logger.Info("reconcile: profile applied",
		"profile_id", p.ID, "url", url, "touched", len(apply))
	return results
}

// Restore puts every snapshotted extension back to its pre-apply value and
// resets to Idle. Partial failure never blocks the transition back to Idle;
// calling Restore while already Idle is a no-op.
func (r *Reconciler) Restore(ctx context.Context) []ToggleResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restoreLocked(ctx)
}

func (r *Reconciler) restoreLocked(ctx context.Context) []ToggleResult {
	if r.state.Idle() && len(r.state.SavedStates) == 0 {
		r.state = MatchState{}
		return nil
	}

	profileID := r.state.ActiveProfileID
	var results []ToggleResult
	for _, s := range r.state.SavedStates {
		res := ToggleResult{ExtensionID: s.ExtensionID, Enabled: s.WasEnabled}
		if err := r.ctl.SetEnabled(ctx, s.ExtensionID, s.WasEnabled); err != nil {
			res.Err = err
			r.logger.Warn("reconcile: restore failed",
				"extension_id", s.ExtensionID, "profile_id", profileID, "error", err)
		} else {
			res.OK = true
		}
		results = append(results, res)
	}

	r.state = MatchState{}
	r.logger.Info("reconcile: restored to baseline",
		"profile_id", profileID, "restored", len(results))
	return results
}

// ShouldRestore is the pure decision helper for callers that saw no new
// profile to apply: true when a profile is active and either nothing matches
// the new URL (leaving matched territory) or a different profile matches.
// Restore-then-apply sequencing for the switch case lives inside Apply.
func (r *Reconciler) ShouldRestore(newURL string, matching *profiles.ProfileGroup) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.Idle() {
		return false
	}
	if matching == nil {
		return true
	}
	return matching.ID != r.state.ActiveProfileID
}

// CurrentState returns a snapshot copy of the match state, never the live
// value.
func (r *Reconciler) CurrentState() MatchState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.state
	out.SavedStates = append([]SavedExtensionState(nil), r.state.SavedStates...)
	return out
}

// Clear forces Idle without touching any extension. For resets, not part of
// the normal navigation flow.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	r.state = MatchState{}
	r.mu.Unlock()
}
