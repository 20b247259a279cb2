package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStream()
	c.normalizeMetrics()
	c.normalizeSimulator()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("ENVWATCH_INPUT_LOG"); ok && strings.TrimSpace(value) != "" {
		c.Paths.InputLog = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("ENVWATCH_OUTPUT_LOG"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputLog = strings.TrimSpace(value)
	}

	var err error
	if strings.TrimSpace(c.Paths.InputLog) == "" {
		c.Paths.InputLog = defaultInputLog
	}
	if c.Paths.InputLog, err = expandPath(strings.TrimSpace(c.Paths.InputLog)); err != nil {
		return fmt.Errorf("paths.input_log: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputLog) == "" {
		c.Paths.OutputLog = defaultOutputLog
	}
	if c.Paths.OutputLog, err = expandPath(strings.TrimSpace(c.Paths.OutputLog)); err != nil {
		return fmt.Errorf("paths.output_log: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStream() {
	if c.Stream.PollInterval == 0 {
		c.Stream.PollInterval = defaultPollInterval
	}
}

func (c *Config) normalizeMetrics() {
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
}

func (c *Config) normalizeSimulator() {
	if c.Simulator.Interval == 0 {
		c.Simulator.Interval = defaultSimulatorInterval
	}
	sensors := make([]string, 0, len(c.Simulator.Sensors))
	seen := make(map[string]struct{}, len(c.Simulator.Sensors))
	for _, sensor := range c.Simulator.Sensors {
		trimmed := strings.TrimSpace(sensor)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		sensors = append(sensors, trimmed)
	}
	if len(sensors) == 0 {
		sensors = append(sensors, defaultSensors...)
	}
	c.Simulator.Sensors = sensors
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
