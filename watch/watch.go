// Package watch reloads the switcher's cached profile set when another
// process writes the extswitch database. It polls a version token, debounces
// bursts of edits, and runs a reload action.
//
// Typical usage:
//
//	w := watch.New(db, watch.Options{Interval: 500 * time.Millisecond, Debounce: time.Second})
//	go w.Run(ctx, func() error { return switcher.ReloadProfiles(ctx) })
package watch

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"
	"time"
)

// ChangeDetector reads a version token from the database. Two calls that
// return different values mean "something changed". PRAGMA data_version is
// the natural token: it advances whenever another connection writes the
// same database file.
type ChangeDetector func(ctx context.Context, db *sql.DB) (int64, error)

// Options tunes the watcher.
type Options struct {
	// Interval is the polling frequency. Default: 1s.
	Interval time.Duration
	// Debounce is the quiet period after a detected change before the
	// action fires; further changes reset the timer. 0 fires immediately.
	Debounce time.Duration
	// Detector overrides the default PragmaDataVersion detector.
	Detector ChangeDetector
	// Logger overrides the default slog logger.
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Interval <= 0 {
		o.Interval = time.Second
	}
	if o.Detector == nil {
		o.Detector = PragmaDataVersion
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Watcher polls the database and runs a reload action on change. Safe for
// concurrent use.
type Watcher struct {
	db   *sql.DB
	opts Options

	version atomic.Int64
	reloads atomic.Int64
	errs    atomic.Int64
}

// New creates a Watcher. Call Run to start the loop.
func New(db *sql.DB, opts Options) *Watcher {
	opts.defaults()
	return &Watcher{db: db, opts: opts}
}

// Version returns the last successfully processed version token.
func (w *Watcher) Version() int64 { return w.version.Load() }

// Reloads returns how many times the action has run successfully.
func (w *Watcher) Reloads() int64 { return w.reloads.Load() }

// Errors returns how many poll or reload failures have occurred.
func (w *Watcher) Errors() int64 { return w.errs.Load() }

// Run blocks until ctx is cancelled, polling at Options.Interval. When the
// detector reports a new version and the debounce window passes quietly,
// action runs. If action fails the version is not advanced, so it is retried
// on the next cycle.
func (w *Watcher) Run(ctx context.Context, action func() error) {
	log := w.opts.Logger

	if v, err := w.opts.Detector(ctx, w.db); err != nil {
		log.Warn("watch: initial version check failed", "error", err)
	} else {
		w.version.Store(v)
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	pending := int64(-1)

	log.Info("watch: started", "interval", w.opts.Interval, "debounce", w.opts.Debounce)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			log.Info("watch: stopped")
			return

		case <-ticker.C:
			cur, err := w.opts.Detector(ctx, w.db)
			if err != nil {
				w.errs.Add(1)
				log.Warn("watch: version check failed", "error", err)
				continue
			}
			if cur == w.version.Load() || cur == pending {
				continue
			}
			pending = cur
			if w.opts.Debounce <= 0 {
				w.fire(log, action, pending)
				pending = -1
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(w.opts.Debounce)
			debounceCh = debounce.C
			log.Debug("watch: change detected, debouncing", "pending_version", cur)

		case <-debounceCh:
			debounceCh = nil
			if pending >= 0 {
				w.fire(log, action, pending)
				pending = -1
			}
		}
	}
}

func (w *Watcher) fire(log *slog.Logger, action func() error, ver int64) {
	start := time.Now()
	if err := action(); err != nil {
		w.errs.Add(1)
		log.Error("watch: reload failed", "error", err, "version", ver)
		return
	}
	w.reloads.Add(1)
	w.version.Store(ver)
	log.Info("watch: reload complete", "version", ver, "duration", time.Since(start))
}

// PragmaDataVersion reads PRAGMA data_version, which increments whenever
// another connection writes the same database file. This is what detects a
// profile editor saving changes while the daemon runs.
func PragmaDataVersion(ctx context.Context, db *sql.DB) (int64, error) {
	var v int64
	err := db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v)
	return v, err
}

// PragmaUserVersion reads PRAGMA user_version, an application-controlled
// integer. Useful in tests where deterministic version numbers are needed.
func PragmaUserVersion(ctx context.Context, db *sql.DB) (int64, error) {
	var v int64
	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
	return v, err
}
