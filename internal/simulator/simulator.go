package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"envwatch/internal/logging"
	"envwatch/internal/reading"
)

// Ranges of generated values, inclusive.
const (
	MinAQI         = 20
	MaxAQI         = 250
	MinTemperature = 15.0
	MaxTemperature = 50.0
	MinHumidity    = 20
	MaxHumidity    = 99
)

// TimestampLayout is ISO-8601 local time with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// DefaultSensors are used when no sensor list is configured.
var DefaultSensors = []string{"SENSOR_A", "SENSOR_B", "SENSOR_C"}

// Options configures Run.
type Options struct {
	Path     string
	Interval time.Duration
	Sensors  []string
	// Reset removes an existing file before the first reading.
	Reset bool
	// Count stops after that many readings; zero runs until cancelled.
	Count  int
	Logger *slog.Logger
	Rand   *rand.Rand
	Now    func() time.Time
}

// Generate returns one random reading taken at now.
func Generate(rng *rand.Rand, now time.Time, sensors []string) reading.RawReading {
	if len(sensors) == 0 {
		sensors = DefaultSensors
	}
	temp := MinTemperature + rng.Float64()*(MaxTemperature-MinTemperature)
	return reading.RawReading{
		Timestamp:    now.Format(TimestampLayout),
		SensorID:     sensors[rng.IntN(len(sensors))],
		AQI:          MinAQI + rng.IntN(MaxAQI-MinAQI+1),
		TemperatureC: math.Round(temp*10) / 10,
		HumidityPct:  MinHumidity + rng.IntN(MaxHumidity-MinHumidity+1),
	}
}

// Run appends one reading per interval to opts.Path until ctx is cancelled
// or opts.Count readings were written. It returns the number written.
func Run(ctx context.Context, opts Options) (int, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return 0, errors.New("simulator output path is required")
	}
	if opts.Interval <= 0 {
		return 0, errors.New("simulator interval must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("ensure simulator directory: %w", err)
	}
	if opts.Reset {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("reset simulator output: %w", err)
		}
	}

	logger.Info("simulator started",
		logging.String("output", path),
		logging.Duration("interval", opts.Interval),
		logging.Int("count", opts.Count),
	)

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	written := 0
	for {
		raw := Generate(rng, now(), opts.Sensors)
		if err := appendReading(path, raw); err != nil {
			return written, err
		}
		written++
		logger.Info(fmt.Sprintf("[%04d] %s", written, raw.Timestamp),
			logging.String(logging.FieldSensorID, raw.SensorID),
			logging.Int("aqi", raw.AQI),
			logging.Float64("temperature_c", raw.TemperatureC),
			logging.Int("humidity_pct", raw.HumidityPct),
		)
		if opts.Count > 0 && written >= opts.Count {
			return written, nil
		}

		select {
		case <-ctx.Done():
			logger.Info("simulator stopped", logging.Int("written", written))
			return written, nil
		case <-ticker.C:
		}
	}
}

func appendReading(path string, raw reading.RawReading) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}
	data = append(data, '\n')

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open simulator output: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("append reading: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close simulator output: %w", err)
	}
	return nil
}
