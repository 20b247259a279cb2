package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"envwatch/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantInput := filepath.Join(tempHome, ".local", "share", "envwatch", "sensor_data.jsonl")
	if cfg.Paths.InputLog != wantInput {
		t.Fatalf("unexpected input log: got %q want %q", cfg.Paths.InputLog, wantInput)
	}
	wantOutput := filepath.Join(tempHome, ".local", "share", "envwatch", "processed_data.jsonl")
	if cfg.Paths.OutputLog != wantOutput {
		t.Fatalf("unexpected output log: got %q want %q", cfg.Paths.OutputLog, wantOutput)
	}
	if got := cfg.PollInterval(); got != 500*time.Millisecond {
		t.Fatalf("expected default poll interval 500ms, got %s", got)
	}
	if cfg.Stream.Resume {
		t.Fatal("expected resume disabled by default")
	}
	if cfg.Metrics.Bind != "" {
		t.Fatalf("expected metrics endpoint disabled by default, got %q", cfg.Metrics.Bind)
	}
	if len(cfg.Simulator.Sensors) != 3 || cfg.Simulator.Sensors[0] != "SENSOR_A" {
		t.Fatalf("unexpected default sensors: %v", cfg.Simulator.Sensors)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "envwatch.toml")

	type payload struct {
		Paths struct {
			InputLog  string `toml:"input_log"`
			OutputLog string `toml:"output_log"`
		} `toml:"paths"`
		Stream struct {
			PollInterval float64 `toml:"poll_interval"`
			Resume       bool    `toml:"resume"`
		} `toml:"stream"`
		Simulator struct {
			Sensors []string `toml:"sensors"`
		} `toml:"simulator"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.InputLog = filepath.Join(tempDir, "in.jsonl")
	custom.Paths.OutputLog = filepath.Join(tempDir, "out.jsonl")
	custom.Stream.PollInterval = 1.5
	custom.Stream.Resume = true
	custom.Simulator.Sensors = []string{" roof ", "roof", "", "yard"}
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.InputLog != custom.Paths.InputLog {
		t.Fatalf("unexpected input log: %q", cfg.Paths.InputLog)
	}
	if got := cfg.PollInterval(); got != 1500*time.Millisecond {
		t.Fatalf("unexpected poll interval: %s", got)
	}
	if !cfg.Stream.Resume {
		t.Fatal("expected resume enabled")
	}
	if strings.Join(cfg.Simulator.Sensors, ",") != "roof,yard" {
		t.Fatalf("expected sensors trimmed and deduplicated, got %v", cfg.Simulator.Sensors)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadEnvironmentOverridesPaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv("ENVWATCH_INPUT_LOG", filepath.Join(dir, "sensors.jsonl"))
	t.Setenv("ENVWATCH_OUTPUT_LOG", filepath.Join(dir, "enriched.jsonl"))

	cfg, _, _, err := config.Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.InputLog != filepath.Join(dir, "sensors.jsonl") {
		t.Fatalf("expected input log from env, got %q", cfg.Paths.InputLog)
	}
	if cfg.Paths.OutputLog != filepath.Join(dir, "enriched.jsonl") {
		t.Fatalf("expected output log from env, got %q", cfg.Paths.OutputLog)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "negative poll interval",
			mutate: func(c *config.Config) { c.Stream.PollInterval = -1 },
			want:   "stream.poll_interval must not be negative",
		},
		{
			name: "same input and output",
			mutate: func(c *config.Config) {
				c.Paths.OutputLog = c.Paths.InputLog
			},
			want: "paths.output_log",
		},
		{
			name:   "unknown level",
			mutate: func(c *config.Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
		{
			name:   "negative simulator interval",
			mutate: func(c *config.Config) { c.Simulator.Interval = -2 },
			want:   "simulator.interval must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Stream.PollInterval != 0.5 {
		t.Fatalf("unexpected sample poll interval: %v", cfg.Stream.PollInterval)
	}
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(encoded), "poll_interval = 0.5") {
		t.Fatalf("expected encoded config to include poll interval, got:\n%s", encoded)
	}
}

func TestLoadZeroIntervalsSelectDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "zero.toml")
	content := "[stream]\npoll_interval = 0\n\n[simulator]\ninterval = 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.PollInterval(); got != 500*time.Millisecond {
		t.Fatalf("expected zero poll interval to select 500ms, got %s", got)
	}
	if got := cfg.SimulatorInterval(); got != 2*time.Second {
		t.Fatalf("expected zero simulator interval to select 2s, got %s", got)
	}
}
