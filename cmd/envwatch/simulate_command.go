package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"envwatch/internal/logging"
	"envwatch/internal/simulator"
)

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var interval float64
	var count int
	var noReset bool
	var sensors []string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Append synthetic sensor readings to the input log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if count < 0 {
				return fmt.Errorf("--count must not be negative (got %d)", count)
			}

			every := cfg.SimulatorInterval()
			if cmd.Flags().Changed("interval") {
				if interval <= 0 {
					return fmt.Errorf("--interval must be positive (got %v)", interval)
				}
				every = time.Duration(interval * float64(time.Second))
			}
			names := cfg.Simulator.Sensors
			if cmd.Flags().Changed("sensors") {
				names = cleanSensors(sensors)
			}
			reset := cfg.Simulator.Reset
			if noReset {
				reset = false
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			written, err := simulator.Run(cmd.Context(), simulator.Options{
				Path:     cfg.Paths.InputLog,
				Interval: every,
				Sensors:  names,
				Reset:    reset,
				Count:    count,
				Logger:   logging.NewComponentLogger(logger, "simulator"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d reading(s) to %s\n", written, cfg.Paths.InputLog)
			return nil
		},
	}

	cmd.Flags().Float64Var(&interval, "interval", 0, "Seconds between readings (overrides simulator.interval)")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many readings (0 runs until interrupted)")
	cmd.Flags().BoolVar(&noReset, "no-reset", false, "Keep existing readings in the input log")
	cmd.Flags().StringSliceVar(&sensors, "sensors", nil, "Comma-separated sensor identifiers")
	return cmd
}

func cleanSensors(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
