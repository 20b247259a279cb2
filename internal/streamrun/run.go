package streamrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"envwatch/internal/checkpoint"
	"envwatch/internal/config"
	"envwatch/internal/logging"
	"envwatch/internal/metrics"
	"envwatch/internal/preflight"
	"envwatch/internal/stream"
	"envwatch/internal/tail"
)

// ErrAlreadyRunning is returned when another engine holds the lock.
var ErrAlreadyRunning = errors.New("another envwatch engine is already running")

// Options configures process runtime behavior.
type Options struct {
	// LogLevel overrides the configured level when set.
	LogLevel    string
	Development bool
	// Quiet drops console output; the per-run log file is still written.
	Quiet bool
	// ResetCheckpoint discards the saved offset for the input log before
	// starting, so a resuming run reprocesses the input from the beginning.
	ResetCheckpoint bool
}

// Run starts the engine and blocks until ctx is cancelled or a signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runStamp := time.Now().UTC().Format("20060102T150405.000Z")
	runID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("envwatch-%s.log", runStamp))

	logger, err := newRunLogger(cfg, opts, logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update envwatch.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "envwatch-*.log", Exclude: []string{logPath}},
	)

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release engine lock", logging.Error(err))
		}
	}()

	if err := runPreflight(logger, cfg); err != nil {
		return err
	}

	collector := metrics.New()
	server, err := metrics.Serve(signalCtx, cfg.Metrics.Bind, collector, logging.NewComponentLogger(logger, "metrics"))
	if err != nil {
		return err
	}
	defer server.Stop()

	engineOpts := stream.Options{
		Input:        cfg.Paths.InputLog,
		Output:       cfg.Paths.OutputLog,
		PollInterval: cfg.PollInterval(),
		Logger:       logging.NewComponentLogger(logger, "stream"),
		Recorder:     collector,
		Fsync:        cfg.Stream.Fsync,
	}

	if cfg.Stream.Resume || opts.ResetCheckpoint {
		store, err := checkpoint.Open(cfg.CheckpointPath())
		if err != nil {
			return fmt.Errorf("open checkpoint store: %w", err)
		}
		defer store.Close()

		if opts.ResetCheckpoint {
			if err := store.Reset(signalCtx, cfg.Paths.InputLog); err != nil {
				return fmt.Errorf("reset checkpoint: %w", err)
			}
			logger.Info("checkpoint cleared",
				logging.String("input", cfg.Paths.InputLog),
				logging.String("checkpoint_db", store.Path()),
			)
		}

		if cfg.Stream.Resume {
			engineOpts.Checkpoints = store
			entry, found, err := store.Load(signalCtx, cfg.Paths.InputLog)
			if err != nil {
				return err
			}
			if found {
				engineOpts.Resume = &entry
				logger.Info("resuming from checkpoint",
					logging.Int64(logging.FieldOffset, entry.Offset),
					logging.Uint64("processed", entry.Processed),
					logging.String("saved_at", entry.UpdatedAt.Format(time.RFC3339)),
					logging.String("checkpoint_db", store.Path()),
				)
			}
		}
	}

	if cfg.Stream.Watch {
		watcher, err := tail.Watch(cfg.Paths.InputLog, logging.NewComponentLogger(logger, "watch"))
		if err != nil {
			logging.WarnWithContext(logger, "input watcher unavailable", "watch_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "create the input directory before starting the engine"),
				logging.String(logging.FieldImpact, "new lines are picked up on the poll interval only"),
			)
		} else {
			defer watcher.Close()
			engineOpts.Wake = watcher.C()
		}
	}

	engine, err := stream.New(engineOpts)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Run(signalCtx); err != nil {
		logger.Error("stream engine failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "engine_failed"),
			logging.String(logging.FieldErrorHint, "check the output log path and permissions"),
		)
		return err
	}
	logger.Info("envwatch engine shutting down")
	return nil
}

func newRunLogger(cfg *config.Config, opts Options, logPath string) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	outputs := []string{logPath}
	errorOutputs := []string{logPath}
	if !opts.Quiet {
		outputs = append([]string{"stdout"}, outputs...)
		errorOutputs = append([]string{"stderr"}, errorOutputs...)
	}
	return logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: errorOutputs,
		Development:      opts.Development,
	})
}

func runPreflight(logger *slog.Logger, cfg *config.Config) error {
	results := preflight.RunAll(cfg)
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.Bool("fatal", result.Fatal),
		)
	}
	if failed, ok := preflight.FirstFatal(results); ok {
		path := cfg.Paths.OutputLog
		if failed.Name == preflight.NameStateDir {
			path = cfg.Paths.StateDir
		}
		return &stream.FatalError{Op: "preflight " + strings.ToLower(failed.Name), Path: path, Err: errors.New(failed.Detail)}
	}
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "envwatch.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
