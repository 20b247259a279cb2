package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStream(); err != nil {
		return err
	}
	if err := c.validateSimulator(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputLog) == "" {
		return errors.New("paths.input_log must be set")
	}
	if strings.TrimSpace(c.Paths.OutputLog) == "" {
		return errors.New("paths.output_log must be set")
	}
	if filepath.Clean(c.Paths.InputLog) == filepath.Clean(c.Paths.OutputLog) {
		return fmt.Errorf("paths.output_log must differ from paths.input_log (%s)", c.Paths.InputLog)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateStream() error {
	if c.Stream.PollInterval < 0 {
		return fmt.Errorf("stream.poll_interval must not be negative (0 selects the default), got %v", c.Stream.PollInterval)
	}
	if c.Stream.PollInterval > 3600 {
		return fmt.Errorf("stream.poll_interval must be at most 3600 seconds, got %v", c.Stream.PollInterval)
	}
	return nil
}

func (c *Config) validateSimulator() error {
	if c.Simulator.Interval < 0 {
		return fmt.Errorf("simulator.interval must not be negative (0 selects the default), got %v", c.Simulator.Interval)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
