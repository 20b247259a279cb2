package streamrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"envwatch/internal/checkpoint"
	"envwatch/internal/stream"
	"envwatch/internal/streamrun"
	"envwatch/internal/testsupport"
)

const sampleLine = `{"timestamp":"2026-01-01T00:00:00","sensor_id":"SENSOR_A","aqi":155,"temperature_c":30.5,"humidity_pct":40}`

func startRun(t *testing.T, run func(ctx context.Context) error) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("runtime did not stop")
		return nil
	}
}

func TestRunProcessesInputAndWritesRunLog(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDataDir(), testsupport.WithWatch())
	testsupport.AppendLines(t, cfg.Paths.InputLog, sampleLine, "garbage")

	cancel, done := startRun(t, func(ctx context.Context) error {
		return streamrun.Run(ctx, cfg, streamrun.Options{Quiet: true})
	})

	lines := testsupport.WaitForLines(t, cfg.Paths.OutputLog, 1, 5*time.Second)
	if !strings.Contains(lines[0], `"overall_status":"UNSAFE"`) {
		t.Fatalf("unexpected output line %q", lines[0])
	}

	testsupport.AppendLines(t, cfg.Paths.InputLog, sampleLine)
	testsupport.WaitForLines(t, cfg.Paths.OutputLog, 2, 5*time.Second)

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	pointer := filepath.Join(cfg.Paths.LogDir, "envwatch.log")
	content, err := os.ReadFile(pointer)
	if err != nil {
		t.Fatalf("read log pointer: %v", err)
	}
	if !strings.Contains(string(content), "malformed input line skipped") {
		t.Fatalf("expected malformed warning in run log, got:\n%s", content)
	}
	if !strings.Contains(string(content), "run_id=") {
		t.Fatalf("expected run_id on log lines, got:\n%s", content)
	}
	matches, err := filepath.Glob(filepath.Join(cfg.Paths.LogDir, "envwatch-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one per-run log, got %v (%v)", matches, err)
	}
}

func TestRunRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDataDir())
	testsupport.MkdirAll(t, cfg.Paths.StateDir)

	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-acquire lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	err = streamrun.Run(context.Background(), cfg, streamrun.Options{Quiet: true})
	if !errors.Is(err, streamrun.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRunFailsFastWithoutOutputDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	err := streamrun.Run(context.Background(), cfg, streamrun.Options{Quiet: true})
	var fatal *stream.FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalError, got %v", err)
	}
	if fatal.Path != cfg.Paths.OutputLog {
		t.Fatalf("unexpected fatal path %q", fatal.Path)
	}
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDataDir(), testsupport.WithResume())
	testsupport.AppendLines(t, cfg.Paths.InputLog, sampleLine, sampleLine)

	cancel, done := startRun(t, func(ctx context.Context) error {
		return streamrun.Run(ctx, cfg, streamrun.Options{Quiet: true})
	})
	testsupport.WaitForLines(t, cfg.Paths.OutputLog, 2, 5*time.Second)
	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("first run: %v", err)
	}

	store, err := checkpoint.Open(cfg.CheckpointPath())
	if err != nil {
		t.Fatalf("open checkpoint: %v", err)
	}
	entry, found, err := store.Load(context.Background(), cfg.Paths.InputLog)
	_ = store.Close()
	if err != nil || !found || entry.Processed != 2 {
		t.Fatalf("unexpected checkpoint %+v found=%v err=%v", entry, found, err)
	}

	testsupport.AppendLines(t, cfg.Paths.InputLog, sampleLine)
	cancel, done = startRun(t, func(ctx context.Context) error {
		return streamrun.Run(ctx, cfg, streamrun.Options{Quiet: true})
	})
	testsupport.WaitForLines(t, cfg.Paths.OutputLog, 3, 5*time.Second)
	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if lines := testsupport.ReadLines(t, cfg.Paths.OutputLog); len(lines) != 3 {
		t.Fatalf("expected resumed run to append only the new record, got %d lines", len(lines))
	}
}

func TestRunResetCheckpointReprocessesInput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDataDir(), testsupport.WithResume())
	testsupport.AppendLines(t, cfg.Paths.InputLog, sampleLine, sampleLine)

	cancel, done := startRun(t, func(ctx context.Context) error {
		return streamrun.Run(ctx, cfg, streamrun.Options{Quiet: true})
	})
	testsupport.WaitForLines(t, cfg.Paths.OutputLog, 2, 5*time.Second)
	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("first run: %v", err)
	}

	testsupport.AppendLines(t, cfg.Paths.InputLog, sampleLine)
	cancel, done = startRun(t, func(ctx context.Context) error {
		return streamrun.Run(ctx, cfg, streamrun.Options{Quiet: true, ResetCheckpoint: true})
	})
	testsupport.WaitForLines(t, cfg.Paths.OutputLog, 3, 5*time.Second)
	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("reset run: %v", err)
	}

	// The cleared checkpoint makes the second run a fresh one: the output is
	// truncated and all three input lines are written again.
	if lines := testsupport.ReadLines(t, cfg.Paths.OutputLog); len(lines) != 3 {
		t.Fatalf("expected full reprocess into a fresh output, got %d lines", len(lines))
	}
	store, err := checkpoint.Open(cfg.CheckpointPath())
	if err != nil {
		t.Fatalf("open checkpoint: %v", err)
	}
	defer store.Close()
	entry, found, err := store.Load(context.Background(), cfg.Paths.InputLog)
	if err != nil || !found || entry.Processed != 3 {
		t.Fatalf("expected checkpoint restarted at 3 processed, got %+v found=%v err=%v", entry, found, err)
	}
}
