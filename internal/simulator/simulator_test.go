package simulator_test

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"envwatch/internal/reading"
	"envwatch/internal/simulator"
)

func TestGenerateStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	now := time.Date(2026, 5, 4, 3, 2, 1, 123456000, time.Local)
	seen := map[string]bool{}

	for i := 0; i < 2000; i++ {
		raw := simulator.Generate(rng, now, nil)
		if raw.AQI < simulator.MinAQI || raw.AQI > simulator.MaxAQI {
			t.Fatalf("aqi out of range: %d", raw.AQI)
		}
		if raw.TemperatureC < simulator.MinTemperature || raw.TemperatureC > simulator.MaxTemperature {
			t.Fatalf("temperature out of range: %v", raw.TemperatureC)
		}
		if scaled := raw.TemperatureC * 10; math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("temperature not rounded to one decimal: %v", raw.TemperatureC)
		}
		if raw.HumidityPct < simulator.MinHumidity || raw.HumidityPct > simulator.MaxHumidity {
			t.Fatalf("humidity out of range: %d", raw.HumidityPct)
		}
		if raw.Timestamp != "2026-05-04T03:02:01.123456" {
			t.Fatalf("unexpected timestamp %q", raw.Timestamp)
		}
		seen[raw.SensorID] = true
	}
	for _, sensor := range simulator.DefaultSensors {
		if !seen[sensor] {
			t.Errorf("sensor %s never chosen", sensor)
		}
	}
}

func TestGenerateUsesConfiguredSensors(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 50; i++ {
		if got := simulator.Generate(rng, time.Now(), []string{"roof"}).SensorID; got != "roof" {
			t.Fatalf("unexpected sensor %q", got)
		}
	}
}

func TestRunWritesDecodableLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sensor_data.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("stale\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := simulator.Run(context.Background(), simulator.Options{
		Path:     path,
		Interval: time.Millisecond,
		Reset:    true,
		Count:    3,
		Rand:     rand.New(rand.NewPCG(5, 6)),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if written != 3 {
		t.Fatalf("expected 3 readings, got %d", written)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n"))
	if len(lines) != 3 {
		t.Fatalf("expected stale content removed and 3 lines written, got %q", data)
	}
	for _, line := range lines {
		if result := reading.Decode(line); result.Outcome != reading.OutcomeEnriched {
			t.Fatalf("line %q did not decode: %v", line, result.Err)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "in.jsonl")

	written, err := simulator.Run(ctx, simulator.Options{Path: path, Interval: time.Hour})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected the first reading before observing cancellation, got %d", written)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	if _, err := simulator.Run(context.Background(), simulator.Options{Interval: time.Second}); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := simulator.Run(context.Background(), simulator.Options{Path: "x.jsonl"}); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
