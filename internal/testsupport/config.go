package testsupport

import (
	"path/filepath"
	"testing"

	"envwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Both logs live in the "data" directory, which is not created here.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputLog = filepath.Join(base, "data", "sensor_data.jsonl")
	cfgVal.Paths.OutputLog = filepath.Join(base, "data", "processed_data.jsonl")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Stream.PollInterval = 0.02
	cfgVal.Simulator.Interval = 0.01
	cfgVal.Logging.Level = "warn"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithResume enables checkpointing on the test config.
func WithResume() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stream.Resume = true
	}
}

// WithWatch enables the input file watcher on the test config.
func WithWatch() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Stream.Watch = true
	}
}

// WithMetricsBind sets the metrics endpoint address.
func WithMetricsBind(bind string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Bind = bind
	}
}

// WithDataDir creates the directory holding the input and output logs.
func WithDataDir() ConfigOption {
	return func(b *configBuilder) {
		MkdirAll(b.t, filepath.Join(b.baseDir, "data"))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
