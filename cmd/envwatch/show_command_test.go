package main

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"envwatch/internal/reading"
	"envwatch/internal/testsupport"
)

func enrichedLine(t *testing.T, raw string) string {
	t.Helper()
	result := reading.Decode([]byte(raw))
	if result.Outcome != reading.OutcomeEnriched {
		t.Fatalf("decode %q: %v", raw, result.Err)
	}
	data, err := reading.Encode(result.Record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return strings.TrimSuffix(string(data), "\n")
}

func TestShowWithoutOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"show"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "No enriched records available")
}

func TestShowRendersLastRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.AppendLines(t, env.cfg.Paths.OutputLog,
		enrichedLine(t, unsafeLine),
		"not json",
		enrichedLine(t, safeLine),
	)

	out, _, err := runCLI(t, []string{"show", "-n", "0"}, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "SENSOR_A")
	requireContains(t, out, "SENSOR_B")
	requireContains(t, out, "Avoid Outdoor Activity")
	requireContains(t, out, "SAFE 1  CAUTION 0  UNSAFE 1")
	requireContains(t, out, "Latest: Safe at SENSOR_B (2026-01-01T00:00:02): Air Quality Safe; Temperature Comfortable; Humidity Comfortable")
	requireContains(t, out, "Skipped 1 unreadable line(s)")
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI colors for a buffer, got %q", out)
	}

	out, _, err = runCLI(t, []string{"show", "--lines", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("show -n 1: %v", err)
	}
	if strings.Contains(out, "SENSOR_A") {
		t.Fatalf("expected only the last record, got:\n%s", out)
	}
	requireContains(t, out, "SENSOR_B")
}

type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestShowFollowPrintsAppendedRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.AppendLines(t, env.cfg.Paths.OutputLog, enrichedLine(t, safeLine))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--config", env.configPath, "show", "--follow"})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	waitFor(t, 5*time.Second, func() bool { return strings.Contains(out.String(), "SENSOR_B") })
	testsupport.AppendLines(t, env.cfg.Paths.OutputLog, enrichedLine(t, unsafeLine))
	waitFor(t, 5*time.Second, func() bool { return strings.Contains(out.String(), "[0002]") })
	requireContains(t, out.String(), "SENSOR_A aqi=155 temp=30.5 humidity=40 UNSAFE")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("show --follow returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("show --follow did not stop")
	}
}
