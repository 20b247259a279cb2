package reading

import (
	"envwatch/internal/classify"
)

// UnknownSensor is substituted when a reading carries no sensor_id.
const UnknownSensor = "UNKNOWN"

// RawReading is one record emitted by the sensor producer.
type RawReading struct {
	Timestamp    string  `json:"timestamp"`
	SensorID     string  `json:"sensor_id"`
	AQI          int     `json:"aqi"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  int     `json:"humidity_pct"`
}

// EnrichedRecord is a RawReading plus its per-dimension and overall risk status.
type EnrichedRecord struct {
	RawReading
	AQIStatus      classify.Assessment `json:"aqi_status"`
	TempStatus     classify.Assessment `json:"temp_status"`
	HumidityStatus classify.Assessment `json:"humidity_status"`
	OverallStatus  classify.Tier       `json:"overall_status"`
}

// Transform classifies every monitored dimension of raw.
func Transform(raw RawReading) EnrichedRecord {
	rec := EnrichedRecord{
		RawReading:     raw,
		AQIStatus:      classify.AQI(raw.AQI),
		TempStatus:     classify.Temperature(raw.TemperatureC),
		HumidityStatus: classify.Humidity(raw.HumidityPct),
	}
	rec.OverallStatus = classify.Worst(rec.AQIStatus.Tier, rec.TempStatus.Tier, rec.HumidityStatus.Tier)
	return rec
}
