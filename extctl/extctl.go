// Package extctl provides extension controller backends for the reconciler.
//
// Chrome exposes no DevTools command to flip an extension, so the state
// changes go through a small companion extension holding the management
// permission. The companion serves a localhost HTTP bridge; Companion is the
// client side of that bridge.
package extctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/extswitch/reconcile"
)

// Companion talks to the companion extension's localhost bridge.
//
//	GET  {base}/extensions/{id}         → {"id": "...", "enabled": true}
//	PUT  {base}/extensions/{id}/enabled ← {"enabled": false}
//
// A 404 maps to reconcile.ErrNotFound; any other failure is returned per
// call — the reconciler decides whether to tolerate it.
type Companion struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

// Option configures a Companion controller.
type Option func(*Companion)

// WithTimeout sets the per-call HTTP timeout. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *Companion) { c.client.Timeout = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Companion) { c.logger = l }
}

// NewCompanion creates a Companion controller for the given base URL
// (e.g. "http://127.0.0.1:9555").
func NewCompanion(base string, opts ...Option) *Companion {
	c := &Companion{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 5 * time.Second},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ reconcile.Controller = (*Companion)(nil)

// Enabled queries the current enabled flag of an extension.
func (c *Companion) Enabled(ctx context.Context, extensionID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.base+"/extensions/"+extensionID, nil)
	if err != nil {
		return false, fmt.Errorf("extctl: new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("extctl: query %s: %w", extensionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, fmt.Errorf("extctl: %s: %w", extensionID, reconcile.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("extctl: query %s: status %d", extensionID, resp.StatusCode)
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil {
		return false, fmt.Errorf("extctl: decode %s: %w", extensionID, err)
	}
	return body.Enabled, nil
}

// SetEnabled requests a new enabled flag for an extension. The companion
// reports a refusal (e.g. a policy-installed extension) as a non-2xx status,
// which comes back as an error.
func (c *Companion) SetEnabled(ctx context.Context, extensionID string, enabled bool) error {
	payload, _ := json.Marshal(map[string]bool{"enabled": enabled})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.base+"/extensions/"+extensionID+"/enabled", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("extctl: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("extctl: set %s: %w", extensionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("extctl: %s: %w", extensionID, reconcile.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("extctl: set %s: status %d", extensionID, resp.StatusCode)
	}

	c.logger.Debug("extctl: state set", "extension_id", extensionID, "enabled", enabled)
	return nil
}
