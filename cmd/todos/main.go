package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"todos/app"
	"todos/config"
	"todos/logging"
	"todos/model"
	"todos/store"
	"todos/tui"
	"todos/watch"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file (default: XDG config dir)")
	backend := flag.String("backend", "", "Storage backend: json or sqlite")
	dataPath := flag.String("path", "", "Entries file or database path")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	noWatch := flag.Bool("no-watch", false, "Disable live reload when the entries file changes")
	recoverFlag := flag.Bool("recover", false, "Restore a corrupt entries file from the newest valid backup (json backend)")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("todos %s\n", version)
		os.Exit(0)
	}

	if err := run(runOptions{
		configPath:   *configPath,
		backend:      *backend,
		dataPath:     *dataPath,
		logLevel:     *logLevel,
		noWatch:      *noWatch,
		withRecovery: *recoverFlag,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath   string
	backend      string
	dataPath     string
	logLevel     string
	noWatch      bool
	withRecovery bool
}

func run(opts runOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Path:   cfg.LogPath(),
	})
	if err != nil {
		return err
	}
	defer closeLog()

	path := cfg.StoragePath()
	st, err := store.Open(store.Options{
		Backend: cfg.Storage.Backend,
		Path:    path,
		Backups: cfg.Storage.Backups,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer st.Close()

	entries, status, err := loadEntries(st, opts.withRecovery)
	if err != nil {
		return fmt.Errorf("loading entries: %w", err)
	}
	logger.Info("starting", "version", version, "backend", cfg.Storage.Backend, "path", path, "entries", len(entries))

	uiOpts := tui.Options{
		Load:      reloadFunc(st),
		ShowHints: cfg.UI.Help,
		Status:    status,
		Logger:    logger,
	}
	if cfg.WatchEnabled() {
		w, err := startWatcher(path, logger)
		if err != nil {
			logger.Warn("live reload disabled", "error", err)
		} else {
			defer w.Stop()
			uiOpts.Watcher = w
		}
	}

	d := app.NewDispatcher(app.NewState(entries), st, logger)
	p := tea.NewProgram(tui.NewModel(d, uiOpts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("ui exited", "error", err)
		return err
	}
	logger.Info("exiting", "entries", d.State().TotalCount())
	return nil
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(opts runOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}
	if opts.dataPath != "" {
		cfg.Storage.Path = opts.dataPath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noWatch {
		cfg.UI.Watch = false
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadEntries(st store.Store, withRecovery bool) ([]model.Entry, string, error) {
	if f, ok := st.(*store.File); ok && withRecovery {
		return f.LoadWithRecovery()
	}
	entries, err := st.Load()
	return entries, "", err
}

// reloadFunc is the loader used for live reload. The file backend gets a
// reader that reports malformed content instead of quarantining it, so a
// broken write by another program never empties the running session.
func reloadFunc(st store.Store) func() ([]model.Entry, error) {
	if f, ok := st.(*store.File); ok {
		return f.Reload
	}
	return st.Load
}

func startWatcher(path string, logger *slog.Logger) (*watch.Watcher, error) {
	w, err := watch.New(path, watch.WithOnError(func(err error) {
		logger.Warn("watcher error", "error", err)
	}))
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	if w.IsPolling() {
		logger.Info("watching entries by polling", "path", w.Path())
	}
	return w, nil
}
