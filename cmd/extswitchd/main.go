// Command extswitchd is the extension profile switcher daemon.
//
// It watches browser navigation, resolves the matching profile group for
// each URL, and reconciles extension enabled/disabled states through the
// companion bridge. Profiles are edited over the localhost HTTP API or the
// MCP tools; edits hot-reload without a restart.
//
// Usage:
//
//	extswitchd -config extswitchd.yaml
//	extswitchd -db extswitch.db -http 127.0.0.1:9555
//	extswitchd -mcp            # also serve MCP tools on stdio
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/extswitch/auth"
	"github.com/hazyhaar/extswitch/extctl"
	"github.com/hazyhaar/extswitch/navwatch"
	"github.com/hazyhaar/extswitch/store"
	"github.com/hazyhaar/extswitch/switcher"
	"github.com/hazyhaar/extswitch/watch"
)

func main() {
	configPath := flag.String("config", "", "path to extswitchd.yaml config file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	httpAddr := flag.String("http", "", "admin API bind address (overrides config)")
	mcpStdio := flag.Bool("mcp", false, "serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	// Logs go to stderr: stdout belongs to the MCP transport in -mcp mode.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *dbPath, *httpAddr, *mcpStdio); err != nil {
		logger.Error("extswitchd: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, dbPath, httpAddr string, mcpStdio bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}

	if cfg.AuthSecret != "" {
		if err := auth.ValidateSecret([]byte(cfg.AuthSecret)); err != nil {
			return err
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctl := extctl.NewCompanion(cfg.Companion.URL,
		extctl.WithTimeout(cfg.Companion.Timeout),
		extctl.WithLogger(logger))

	sw, err := switcher.New(ctx, st, ctl, logger)
	if err != nil {
		return err
	}
	// Leaving applied state behind on shutdown would strand the user's
	// extensions in profile configuration.
	defer func() {
		restoreCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sw.Reconciler().Restore(restoreCtx)
	}()

	// Hot-reload profiles when another process writes the database.
	w := watch.New(st.DB, watch.Options{
		Interval: cfg.Watch.Interval,
		Debounce: cfg.Watch.Debounce,
		Logger:   logger,
	})
	go w.Run(ctx, func() error { return sw.ReloadProfiles(ctx) })

	// Navigation events drive reconciliation.
	nav := navwatch.New(navwatch.Options{
		ControlURL: cfg.Browser.ControlURL,
		Logger:     logger,
	})
	navErr := make(chan error, 1)
	go func() { navErr <- nav.Start(ctx, sw.HandleNavigation) }()
	defer nav.Stop()

	// Admin API.
	r := chi.NewRouter()
	r.Use(auth.Middleware([]byte(cfg.AuthSecret)))
	sw.RegisterHTTP(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	httpErr := make(chan error, 1)
	go func() {
		logger.Info("extswitchd: admin API listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	// Optional MCP stdio transport.
	mcpErr := make(chan error, 1)
	if mcpStdio {
		msrv := mcp.NewServer(&mcp.Implementation{Name: "extswitch", Version: "0.1.0"}, nil)
		sw.RegisterMCP(msrv)
		go func() { mcpErr <- msrv.Run(ctx, &mcp.StdioTransport{}) }()
		logger.Info("extswitchd: MCP tools on stdio")
	}

	select {
	case <-ctx.Done():
		logger.Info("extswitchd: shutting down")
		return nil
	case err := <-navErr:
		if err != nil {
			return fmt.Errorf("navigation watcher: %w", err)
		}
		return nil
	case err := <-httpErr:
		return fmt.Errorf("admin API: %w", err)
	case err := <-mcpErr:
		if err != nil {
			return fmt.Errorf("mcp: %w", err)
		}
		return nil
	}
}

func loadConfig(path string) (*switcher.Config, error) {
	if path == "" {
		var cfg switcher.Config
		cfg.ApplyDefaults()
		return &cfg, nil
	}
	return switcher.LoadConfigFile(path)
}
