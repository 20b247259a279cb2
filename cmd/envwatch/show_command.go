package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"envwatch/internal/reading"
	"envwatch/internal/tail"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display enriched records from the output log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if lines < 0 {
				lines = 0
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			path := cfg.Paths.OutputLog

			raw, cur, err := tail.LastLines(path, lines)
			if err != nil {
				return fmt.Errorf("read output log: %w", err)
			}
			records, skipped := parseRecords(raw)

			var counts tierCounts
			for _, rec := range records {
				counts.add(rec.OverallStatus)
			}
			shown := len(records)
			if shown == 0 {
				fmt.Fprintln(out, "No enriched records available")
			} else {
				fmt.Fprintln(out, renderRecords(records, 1, colorize))
				fmt.Fprintln(out, renderBanner(records[shown-1], colorize))
				fmt.Fprintln(out, counts.summary(colorize))
			}
			if skipped > 0 {
				fmt.Fprintf(out, "Skipped %d unreadable line(s)\n", skipped)
			}
			if !follow {
				return nil
			}
			return followRecords(cmd, out, path, cur, shown, cfg.PollInterval(), colorize)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing records as they are appended")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of records to show (0 for all)")
	return cmd
}

func parseRecords(lines []string) ([]reading.EnrichedRecord, int) {
	records := make([]reading.EnrichedRecord, 0, len(lines))
	skipped := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		rec, err := reading.ParseEnriched([]byte(line))
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}

func followRecords(cmd *cobra.Command, out io.Writer, path string, cur tail.Cursor, index int, interval time.Duration, colorize bool) error {
	ctx := cmd.Context()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		batch, err := tail.Poll(path, cur)
		if err != nil {
			return fmt.Errorf("follow output log: %w", err)
		}
		if batch.Truncated {
			// The engine truncates its output at startup; start over from the top.
			fmt.Fprintln(out, "Output log was truncated; following from the beginning")
			cur = tail.Cursor{}
			index = 0
			timer.Reset(0)
			continue
		}
		for _, line := range batch.Lines {
			if line.Oversized {
				continue
			}
			rec, err := reading.ParseEnriched(line.Data)
			if err != nil {
				continue
			}
			index++
			fmt.Fprintln(out, renderRecordLine(index, rec, colorize))
		}
		cur = batch.Next
		if batch.More {
			timer.Reset(0)
		} else {
			timer.Reset(interval)
		}
	}
}
