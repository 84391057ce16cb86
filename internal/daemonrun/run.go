package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"shelfsync/internal/config"
	"shelfsync/internal/daemon"
	"shelfsync/internal/journal"
	"shelfsync/internal/logging"
	"shelfsync/internal/manager"
)

// PIDFileName is written to paths.state_dir while the daemon runs.
const PIDFileName = "shelfsync.pid"

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel    string
	Development bool
	Version     string
	// Console is "stdout" (default) or "stderr".
	Console string
}

// Run starts the shelfsync API and blocks until cmdCtx is cancelled or the
// process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	console := opts.Console
	if console == "" {
		console = "stdout"
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{console, filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logConfigSnapshot(logger, cfg)

	mgrOpts := []manager.Option{manager.WithLogger(logger), manager.WithVersion(opts.Version)}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg)
		if err != nil {
			logging.ErrorWithContext(logger, "open journal failed", "journal_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.state_dir permissions or set journal.enabled = false"),
			)
			return err
		}
		defer store.Close()
		mgrOpts = append(mgrOpts, manager.WithJournal(store))
	}

	mgr, err := manager.New(cfg, mgrOpts...)
	if err != nil {
		return fmt.Errorf("create manager: %w", err)
	}

	d, err := daemon.New(cfg, mgr, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.WarnWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check manager.bind and whether another instance uses this state directory"),
			logging.String(logging.FieldImpact, "api is not served"),
		)
		return err
	}

	pidPath := filepath.Join(cfg.Paths.StateDir, PIDFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	<-signalCtx.Done()
	logger.Info("shelfsync daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	names := make([]string, len(cfg.Agents))
	for i, agent := range cfg.Agents {
		names[i] = agent.Name
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.Int("agent_count", len(cfg.Agents)),
		logging.String("agents", strings.Join(names, ", ")),
		logging.Int("minimum_copies", cfg.Manager.MinimumCopies),
		logging.Duration("agent_timeout", cfg.AgentTimeout()),
		logging.Int("max_concurrency", cfg.Manager.MaxConcurrency),
		logging.String("sort_order", cfg.Manager.SortOrder),
		logging.Bool("journal_enabled", cfg.Journal.Enabled),
		logging.Bool("api_token_present", strings.TrimSpace(cfg.Manager.APIToken) != ""),
	)
}
