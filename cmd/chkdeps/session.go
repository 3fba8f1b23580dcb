package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshuapare/pkgdep/internal/config"
	"github.com/joshuapare/pkgdep/internal/logger"
	"github.com/joshuapare/pkgdep/internal/metrics"
	"github.com/joshuapare/pkgdep/pkg/deps"
)

// session is the state one invocation works against.
type session struct {
	cfg     config.Config
	store   *store
	checker *deps.Checker
	metrics *metrics.Recorder
	logs    io.Closer
	dirty   bool // a command changed the ledger
}

var sess *session

// flagKeys binds global flags to configuration keys.
var flagKeys = map[string]string{
	"store.backend":    "store",
	"store.path":       "store-path",
	"root_path":        "root-path",
	"metrics.textfile": "metrics-textfile",
	"log.level":        "log-level",
}

func openSession(cmd *cobra.Command) error {
	v := viper.New()
	flags := cmd.Root().PersistentFlags()
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}

	cfg, used, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	return startSession(cfg, used)
}

// startSession opens the store and observability described by cfg.
func startSession(cfg config.Config, cfgUsed string) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logOpts := logger.Options{
		Enabled: cfg.Log.Enabled || verbose,
		Level:   level,
		JSON:    cfg.Log.JSON,
		LogDir:  cfg.Log.Dir,
	}
	if verbose {
		logOpts.Level = slog.LevelDebug
	}
	logs, err := logger.Init(logOpts)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		logs.Close()
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	rec := metrics.New()
	sess = &session{
		cfg:   cfg,
		store: st,
		checker: deps.New(st.backend,
			deps.WithRootPath(cfg.RootPath),
			deps.WithLogger(logger.L),
			deps.WithRecorder(rec),
		),
		metrics: rec,
		logs:    logs,
	}
	logger.Debug("session opened",
		"config", cfgUsed,
		"backend", cfg.Store.Backend,
		"path", cfg.StorePath(),
		"root", cfg.RootPath,
	)
	return nil
}

// commitSession persists ledger changes after a successful command.
func commitSession() error {
	if sess == nil || !sess.dirty {
		return nil
	}
	if err := sess.store.save(); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	logger.Debug("ledger saved", "path", sess.cfg.StorePath())
	sess.dirty = false
	return nil
}

// closeSession writes metrics and releases the store and log file.
func closeSession() error {
	if sess == nil {
		return nil
	}
	s := sess
	sess = nil

	var errs []error
	if path := s.cfg.Metrics.Textfile; path != "" {
		if err := s.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	if err := s.store.close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.logs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// markDirty records that the ledger must be saved on success.
func markDirty() {
	if sess != nil {
		sess.dirty = true
	}
}
