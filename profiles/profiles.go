// Package profiles defines profile groups — named, prioritized bundles of
// URL-matching conditions and target extension states — and the matching
// logic that resolves the active profile for a URL.
package profiles

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/extswitch/urlmatch"
)

// TargetState is the desired enabled state for one extension.
type TargetState string

const (
	TargetEnable  TargetState = "enable"
	TargetDisable TargetState = "disable"
	// TargetKeep leaves the extension untouched. Keep entries are filtered
	// out before persisting — an absent extension is equivalent to keep.
	TargetKeep TargetState = "keep"
)

// MatchCondition is one URL-matching rule within a profile group.
type MatchCondition struct {
	ID      string        `json:"id"`
	Type    urlmatch.Type `json:"type"`
	Pattern string        `json:"pattern"`
	Enabled bool          `json:"enabled"`
}

// ExtensionStateConfig binds an extension id to its desired state while the
// profile is active. Unique by ExtensionID within a group.
type ExtensionStateConfig struct {
	ExtensionID string      `json:"extension_id"`
	TargetState TargetState `json:"target_state"`
}

// ProfileGroup is a named set of conditions and extension states. A group
// matches a URL when it is enabled and at least one enabled condition
// matches; a group with no conditions never matches anything.
type ProfileGroup struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description,omitempty"`
	Enabled         bool                   `json:"enabled"`
	Priority        int                    `json:"priority"`
	Conditions      []MatchCondition       `json:"conditions"`
	ExtensionStates []ExtensionStateConfig `json:"extension_states"`
	CreatedAt       int64                  `json:"created_at"`
	UpdatedAt       int64                  `json:"updated_at"`
}

// Validate checks a condition for the editing surface. It returns a
// user-facing message, or "" when the condition is well-formed.
func (c *MatchCondition) Validate() string {
	if !c.Type.Valid() {
		return fmt.Sprintf("unknown condition type %q", c.Type)
	}
	return urlmatch.Validate(c.Pattern, c.Type)
}

// Validate checks a whole group for the editing surface. The first problem
// found is returned as a user-facing message, "" when the group is valid.
func (p *ProfileGroup) Validate() string {
	if strings.TrimSpace(p.Name) == "" {
		return "profile name must not be empty"
	}
	if len(p.Conditions) == 0 {
		return "profile needs at least one condition"
	}
	for i := range p.Conditions {
		if msg := p.Conditions[i].Validate(); msg != "" {
			return fmt.Sprintf("condition %d: %s", i+1, msg)
		}
	}
	seen := make(map[string]struct{}, len(p.ExtensionStates))
	for _, es := range p.ExtensionStates {
		if es.ExtensionID == "" {
			return "extension state with empty extension id"
		}
		if _, dup := seen[es.ExtensionID]; dup {
			return fmt.Sprintf("duplicate extension %s", es.ExtensionID)
		}
		seen[es.ExtensionID] = struct{}{}
		switch es.TargetState {
		case TargetEnable, TargetDisable, TargetKeep:
		default:
			return fmt.Sprintf("unknown target state %q for %s", es.TargetState, es.ExtensionID)
		}
	}
	return ""
}

// PruneKeepStates drops keep entries from the group's extension states.
// Called before persisting — keep is represented by absence.
func (p *ProfileGroup) PruneKeepStates() {
	kept := p.ExtensionStates[:0]
	for _, es := range p.ExtensionStates {
		if es.TargetState != TargetKeep {
			kept = append(kept, es)
		}
	}
	p.ExtensionStates = kept
}
