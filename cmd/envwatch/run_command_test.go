package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"envwatch/internal/stream"
	"envwatch/internal/testsupport"
)

func TestRunCommandEnrichesInput(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.AppendLines(t, env.cfg.Paths.InputLog, unsafeLine, "{broken", safeLine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, _, err := runCLIContext(t, ctx, []string{"run", "--quiet", "--resume"}, env.configPath)
		done <- err
	}()

	lines := testsupport.WaitForLines(t, env.cfg.Paths.OutputLog, 2, 5*time.Second)
	if !strings.Contains(lines[0], `"overall_status":"UNSAFE"`) || !strings.Contains(lines[1], `"overall_status":"SAFE"`) {
		t.Fatalf("unexpected output:\n%s", strings.Join(lines, "\n"))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop")
	}

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.StateDir, "checkpoint.db")); err != nil {
		t.Fatalf("expected --resume to create the checkpoint database: %v", err)
	}
}

func TestRunCommandFailsWithoutOutputDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.baseDir, "absent", "processed.jsonl")

	_, _, err := runCLI(t, []string{"--output", missing, "run", "--quiet"}, env.configPath)
	var fatal *stream.FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected FatalError, got %v", err)
	}
	if fatal.Path != missing {
		t.Fatalf("expected failing path %q, got %q", missing, fatal.Path)
	}
}
