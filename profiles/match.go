package profiles

import (
	"sort"

	"github.com/hazyhaar/extswitch/urlmatch"
)

// MatchURL evaluates one condition against a URL. Disabled conditions never
// match. A pattern that fails to compile is treated as non-matching — the
// editing surface reports it via Validate, matching never crashes on it.
func MatchURL(rawURL string, c *MatchCondition) bool {
	if !c.Enabled {
		return false
	}
	m, err := urlmatch.Cached(c.Pattern, c.Type)
	if err != nil {
		return false
	}
	return m.MatchURL(rawURL)
}

// MatchProfile reports whether the group matches the URL: the group is
// enabled and at least one condition matches (OR, short-circuit). A group
// with zero conditions matches nothing.
func MatchProfile(rawURL string, p *ProfileGroup) bool {
	if !p.Enabled || len(p.Conditions) == 0 {
		return false
	}
	for i := range p.Conditions {
		if MatchURL(rawURL, &p.Conditions[i]) {
			return true
		}
	}
	return false
}

// FindMatching returns the highest-priority enabled group that matches the
// URL, or nil when none does (a normal outcome, not an error). Groups with
// equal priority keep their input order; tie order is implementation-defined
// and callers must not rely on it.
func FindMatching(rawURL string, groups []*ProfileGroup) *ProfileGroup {
	if len(groups) == 0 {
		return nil
	}

	ordered := make([]*ProfileGroup, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for _, p := range ordered {
		if MatchProfile(rawURL, p) {
			return p
		}
	}
	return nil
}
