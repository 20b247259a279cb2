package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"envwatch/internal/config"
)

type globalFlags struct {
	configPath      string
	input           string
	output          string
	pollInterval    float64
	pollIntervalSet bool
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.configPath)
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath = resolved
		c.configExists = exists
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	changed := false
	if value := strings.TrimSpace(c.flags.input); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return fmt.Errorf("resolve --input: %w", err)
		}
		cfg.Paths.InputLog = expanded
		changed = true
	}
	if value := strings.TrimSpace(c.flags.output); value != "" {
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return fmt.Errorf("resolve --output: %w", err)
		}
		cfg.Paths.OutputLog = expanded
		changed = true
	}
	if c.flags.pollIntervalSet {
		if c.flags.pollInterval <= 0 {
			return fmt.Errorf("--poll-interval must be positive (got %v)", c.flags.pollInterval)
		}
		cfg.Stream.PollInterval = c.flags.pollInterval
		changed = true
	}
	if !changed {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
