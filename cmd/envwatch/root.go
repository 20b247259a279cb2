package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "envwatch",
		Short:         "Environmental sensor stream enrichment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			flags.pollIntervalSet = cmd.Flags().Changed("poll-interval")
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	persistent.StringVar(&flags.input, "input", "", "Input log of raw sensor readings (overrides paths.input_log)")
	persistent.StringVar(&flags.output, "output", "", "Output log of enriched records (overrides paths.output_log)")
	persistent.Float64Var(&flags.pollInterval, "poll-interval", 0.5, "Seconds between polls of the input log (overrides stream.poll_interval)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newSimulateCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
