package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"envwatch/internal/classify"
	"envwatch/internal/reading"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

var recordHeaders = []string{"#", "Timestamp", "Sensor", "AQI", "Temp °C", "Humidity %", "Status", "Advisory"}

var recordAligns = []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}

var titleCaser = cases.Title(language.Und)

func shouldColorize(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func tierColor(tier classify.Tier) string {
	switch tier {
	case classify.Unsafe:
		return ansiRed
	case classify.Caution:
		return ansiYellow
	case classify.Safe:
		return ansiGreen
	default:
		return ""
	}
}

func tierLabel(tier classify.Tier, colorize bool) string {
	label := string(tier)
	if colorize {
		if color := tierColor(tier); color != "" {
			return color + label + ansiReset
		}
	}
	return label
}

// advisorySummary joins the advisories of every dimension at the record's
// overall tier, e.g. "Avoid Outdoor Activity; Heat Risk, ...".
func advisorySummary(rec reading.EnrichedRecord) string {
	var parts []string
	for _, status := range []classify.Assessment{rec.AQIStatus, rec.TempStatus, rec.HumidityStatus} {
		if status.Tier != rec.OverallStatus || status.Advisory == "" {
			continue
		}
		parts = append(parts, titleCaser.String(status.Advisory))
	}
	return strings.Join(parts, "; ")
}

func recordRow(index int, rec reading.EnrichedRecord, colorize bool) []string {
	return []string{
		strconv.Itoa(index),
		rec.Timestamp,
		rec.SensorID,
		strconv.Itoa(rec.AQI),
		strconv.FormatFloat(rec.TemperatureC, 'f', 1, 64),
		strconv.Itoa(rec.HumidityPct),
		tierLabel(rec.OverallStatus, colorize),
		advisorySummary(rec),
	}
}

func renderRecords(records []reading.EnrichedRecord, firstIndex int, colorize bool) string {
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, recordRow(firstIndex+i, rec, colorize))
	}
	return renderTable(recordHeaders, rows, recordAligns)
}

// renderRecordLine is the single-line form used while following.
func renderRecordLine(index int, rec reading.EnrichedRecord, colorize bool) string {
	line := fmt.Sprintf("[%04d] %s %s aqi=%d temp=%.1f humidity=%d %s",
		index, rec.Timestamp, rec.SensorID, rec.AQI, rec.TemperatureC, rec.HumidityPct,
		tierLabel(rec.OverallStatus, colorize))
	if advisory := advisorySummary(rec); advisory != "" {
		line += " (" + advisory + ")"
	}
	return line
}

type tierCounts struct {
	safe    int
	caution int
	unsafe  int
}

func (c *tierCounts) add(tier classify.Tier) {
	switch tier {
	case classify.Safe:
		c.safe++
	case classify.Caution:
		c.caution++
	case classify.Unsafe:
		c.unsafe++
	}
}

func (c tierCounts) summary(colorize bool) string {
	return fmt.Sprintf("%s %d  %s %d  %s %d",
		tierLabel(classify.Safe, colorize), c.safe,
		tierLabel(classify.Caution, colorize), c.caution,
		tierLabel(classify.Unsafe, colorize), c.unsafe,
	)
}

// renderBanner summarises the most recent record, e.g.
// "Latest: Unsafe at SENSOR_A (2026-01-01T00:00:00): Avoid Outdoor Activity".
func renderBanner(rec reading.EnrichedRecord, colorize bool) string {
	label := titleCaser.String(string(rec.OverallStatus))
	if colorize {
		if color := tierColor(rec.OverallStatus); color != "" {
			label = color + label + ansiReset
		}
	}
	banner := fmt.Sprintf("Latest: %s at %s (%s)", label, rec.SensorID, rec.Timestamp)
	if advisory := advisorySummary(rec); advisory != "" {
		banner += ": " + advisory
	}
	return banner
}
