package main

import (
	"strings"

	"github.com/spf13/cobra"

	"envwatch/internal/streamrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var resume bool
	var watch bool
	var metricsBind string
	var quiet bool
	var resetCheckpoint bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tail the input log and append enriched records until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("resume") {
				cfg.Stream.Resume = resume
			}
			if cmd.Flags().Changed("watch") {
				cfg.Stream.Watch = watch
			}
			if cmd.Flags().Changed("metrics-bind") {
				cfg.Metrics.Bind = strings.TrimSpace(metricsBind)
			}
			return streamrun.Run(cmd.Context(), cfg, streamrun.Options{
				LogLevel:        logLevel,
				Quiet:           quiet,
				ResetCheckpoint: resetCheckpoint,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the saved checkpoint instead of reprocessing")
	cmd.Flags().BoolVar(&watch, "watch", false, "Wake on filesystem events in addition to polling")
	cmd.Flags().StringVar(&metricsBind, "metrics-bind", "", "Serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&resetCheckpoint, "reset-checkpoint", false, "Discard the saved input offset before starting")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only write the run log file, not the console")
	return cmd
}
