// Package urlmatch compiles the three pattern dialects used by extension
// profiles into executable matchers.
//
// Dialects:
//
//	host-wildcard — matches the URL's host only. "*.example.com" matches the
//	                domain and any subdomain, "**.example.com" matches
//	                subdomains but not the bare domain, a "*" anywhere else
//	                matches one or more host characters and may span labels
//	                ("example.*" matches "example.co.uk").
//	url-wildcard  — matches the full URL. "*" matches any run of characters,
//	                everything else is literal.
//	regex         — the pattern is a regular expression, used verbatim.
//
// All dialects match case-insensitively and are anchored to the full string.
package urlmatch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// Type is the pattern dialect of a match condition.
type Type string

const (
	TypeHostWildcard Type = "host-wildcard"
	TypeURLWildcard  Type = "url-wildcard"
	TypeRegex        Type = "regex"
)

// Valid reports whether t is one of the three known dialects.
func (t Type) Valid() bool {
	switch t {
	case TypeHostWildcard, TypeURLWildcard, TypeRegex:
		return true
	}
	return false
}

// hostChars is the character class for an inner "*" in a host-wildcard
// pattern. It includes the dot so a single star can cover multiple labels.
const hostChars = `[a-z0-9._-]+?`

// Compiled is an executable matcher for one (pattern, type) pair.
type Compiled struct {
	typ Type
	re  *regexp.Regexp
}

// Type returns the dialect the matcher was compiled from.
func (c *Compiled) Type() Type { return c.typ }

// Match tests the input against the compiled expression directly: a host
// string for host-wildcard matchers, a full URL otherwise.
func (c *Compiled) Match(s string) bool {
	return c.re.MatchString(s)
}

// MatchURL tests a URL, extracting the host first for host-wildcard
// matchers.
func (c *Compiled) MatchURL(rawURL string) bool {
	if c.typ == TypeHostWildcard {
		return c.re.MatchString(Host(rawURL))
	}
	return c.re.MatchString(rawURL)
}

// Compile translates pattern into a Compiled matcher. Invalid input — an
// empty pattern, an unknown type, or a regex that does not compile — is
// returned as an error, never a panic.
func Compile(pattern string, typ Type) (*Compiled, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("urlmatch: empty pattern")
	}

	var expr string
	switch typ {
	case TypeHostWildcard:
		expr = "(?i)^" + hostWildcardExpr(pattern) + "$"
	case TypeURLWildcard:
		expr = "(?i)^" + urlWildcardExpr(pattern) + "$"
	case TypeRegex:
		expr = "(?i)" + pattern
	default:
		return nil, fmt.Errorf("urlmatch: unknown pattern type %q", typ)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("urlmatch: compile %s pattern: %w", typ, err)
	}
	return &Compiled{typ: typ, re: re}, nil
}

// Validate checks a pattern before compilation and returns a user-facing
// error message, or "" when the pattern is acceptable. Patterns that compile
// but can never match anything real are accepted — intent is the user's
// responsibility.
func Validate(pattern string, typ Type) string {
	if strings.TrimSpace(pattern) == "" {
		return "pattern must not be empty"
	}
	if !typ.Valid() {
		return fmt.Sprintf("unknown pattern type %q", typ)
	}
	if typ == TypeRegex {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return fmt.Sprintf("invalid regular expression: %v", err)
		}
	}
	return ""
}

// hostWildcardExpr translates a host-wildcard pattern body (without anchors).
func hostWildcardExpr(pattern string) string {
	p := strings.ToLower(strings.TrimSpace(pattern))

	var prefix string
	switch {
	case strings.HasPrefix(p, "**."):
		// Subdomains only, never the bare domain.
		prefix = `(?:[a-z0-9_-]+\.)+`
		p = p[3:]
	case strings.HasPrefix(p, "*."):
		// The domain itself or any subdomain.
		prefix = `(?:[a-z0-9_-]+\.)*`
		p = p[2:]
	case strings.HasPrefix(p, "."):
		prefix = `(?:[a-z0-9_-]+\.)*`
		p = p[1:]
	}

	parts := strings.Split(p, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return prefix + strings.Join(parts, hostChars)
}

// urlWildcardExpr translates a url-wildcard pattern body (without anchors).
func urlWildcardExpr(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, ".*")
}

// Host extracts the host component of rawURL for host-wildcard matching.
// When the input does not parse as a URL with a host, the raw string is used
// as-is — arbitrary identifiers simply rarely match, they never crash.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil && u.Host != "" {
		return normalizeHost(u.Hostname())
	}
	return normalizeHost(rawURL)
}

// normalizeHost lowercases the host and punycodes internationalized names so
// they compare against ASCII patterns.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	for _, r := range host {
		if r >= 0x80 {
			if ascii, err := idna.Lookup.ToASCII(host); err == nil {
				return ascii
			}
			break
		}
	}
	return host
}
