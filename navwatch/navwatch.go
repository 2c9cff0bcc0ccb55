// Package navwatch emits navigation events from a Chrome instance over the
// DevTools protocol. It attaches to a running browser (or launches one),
// watches target-info updates, and delivers (url, tab) tuples for page
// targets in the order Chrome reports them.
//
// Only top-level navigations are reported — target-info updates describe the
// tab's main frame, subframe traffic never reaches the handler. Consecutive
// duplicate URLs for the same tab are collapsed.
package navwatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Event is one observed top-level navigation.
type Event struct {
	URL   string
	TabID string
}

// Handler receives navigation events. It is called from the event loop, one
// event at a time, in arrival order.
type Handler func(ctx context.Context, ev Event)

// Options configures the watcher.
type Options struct {
	// ControlURL is the DevTools endpoint of a running Chrome
	// (e.g. "http://127.0.0.1:9222"). Empty launches a headful Chrome.
	ControlURL string
	Logger     *slog.Logger
}

// Watcher subscribes to navigation events of one browser.
type Watcher struct {
	opts    Options
	browser *rod.Browser
	lnch    *launcher.Launcher
	tabs    *tabTracker
	logger  *slog.Logger
}

// New creates a Watcher. Call Start to connect and begin delivering events.
func New(opts Options) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{opts: opts, tabs: newTabTracker(), logger: logger}
}

// Start connects to Chrome and runs the event loop until ctx is cancelled.
// It blocks; run it in a goroutine when the caller has other work.
func (w *Watcher) Start(ctx context.Context, h Handler) error {
	if err := w.connect(); err != nil {
		return err
	}

	// Target discovery pushes TargetCreated/TargetInfoChanged for every tab,
	// including ones opened after we attach.
	if err := (proto.TargetSetDiscoverTargets{Discover: true}).Call(w.browser); err != nil {
		return fmt.Errorf("navwatch: enable target discovery: %w", err)
	}

	w.logger.Info("navwatch: attached", "control_url", w.opts.ControlURL)

	wait := w.browser.Context(ctx).EachEvent(
		func(e *proto.TargetTargetCreated) {
			w.dispatch(ctx, h, e.TargetInfo)
		},
		func(e *proto.TargetTargetInfoChanged) {
			w.dispatch(ctx, h, e.TargetInfo)
		},
		func(e *proto.TargetTargetDestroyed) {
			w.tabs.forget(string(e.TargetID))
		},
	)
	wait()

	w.logger.Info("navwatch: stopped")
	return nil
}

// Stop closes the browser connection. A Chrome we launched is shut down; a
// browser we only attached to keeps running.
func (w *Watcher) Stop() error {
	if w.browser == nil {
		return nil
	}
	err := w.browser.Close()
	if w.lnch != nil {
		w.lnch.Cleanup()
	}
	return err
}

func (w *Watcher) connect() error {
	if w.opts.ControlURL != "" {
		u, err := launcher.ResolveURL(w.opts.ControlURL)
		if err != nil {
			return fmt.Errorf("navwatch: resolve control url: %w", err)
		}
		w.browser = rod.New().ControlURL(u)
	} else {
		w.lnch = launcher.New().Headless(false)
		u, err := w.lnch.Launch()
		if err != nil {
			return fmt.Errorf("navwatch: launch chrome: %w", err)
		}
		w.browser = rod.New().ControlURL(u)
	}

	if err := w.browser.Connect(); err != nil {
		return fmt.Errorf("navwatch: connect: %w", err)
	}
	return nil
}

func (w *Watcher) dispatch(ctx context.Context, h Handler, info *proto.TargetTargetInfo) {
	tabID := string(info.TargetID)
	if !w.tabs.shouldEmit(string(info.Type), tabID, info.URL) {
		return
	}
	w.logger.Debug("navwatch: navigation", "tab_id", tabID, "url", info.URL)
	h(ctx, Event{URL: info.URL, TabID: tabID})
}
