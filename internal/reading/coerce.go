package reading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrFieldMissing is wrapped by FieldCoercionError when a required field is absent or null.
	ErrFieldMissing = errors.New("field missing")
	// ErrFieldNotNumeric is wrapped by FieldCoercionError when a value cannot be read as a number.
	ErrFieldNotNumeric = errors.New("field not numeric")
	// ErrFieldType is wrapped by FieldCoercionError when a text field has an unusable type.
	ErrFieldType = errors.New("unsupported field type")
)

// FieldCoercionError reports a required field that is missing or cannot be
// coerced to the expected type.
type FieldCoercionError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldCoercionError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("coerce %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("coerce %s (%v): %v", e.Field, e.Value, e.Err)
}

func (e *FieldCoercionError) Unwrap() error { return e.Err }

// Coerce builds a RawReading from decoded JSON fields. Numbers are expected as
// json.Number (decoder with UseNumber) or numeric strings. AQI and humidity are
// truncated toward zero.
func Coerce(fields map[string]any) (RawReading, error) {
	var raw RawReading
	var err error

	if raw.AQI, err = coerceInt(fields, "aqi"); err != nil {
		return RawReading{}, err
	}
	if raw.TemperatureC, err = coerceFloat(fields, "temperature_c"); err != nil {
		return RawReading{}, err
	}
	if raw.HumidityPct, err = coerceInt(fields, "humidity_pct"); err != nil {
		return RawReading{}, err
	}
	if raw.SensorID, err = coerceText(fields, "sensor_id", UnknownSensor); err != nil {
		return RawReading{}, err
	}
	if raw.Timestamp, err = coerceText(fields, "timestamp", ""); err != nil {
		return RawReading{}, err
	}
	return raw, nil
}

func coerceInt(fields map[string]any, name string) (int, error) {
	value, ok := fields[name]
	if !ok || value == nil {
		return 0, &FieldCoercionError{Field: name, Err: ErrFieldMissing}
	}
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return clampInt(name, value, float64(n))
		}
		f, err := v.Float64()
		if err != nil {
			return 0, &FieldCoercionError{Field: name, Value: value, Err: ErrFieldNotNumeric}
		}
		return clampInt(name, value, math.Trunc(f))
	case float64:
		return clampInt(name, value, math.Trunc(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, &FieldCoercionError{Field: name, Value: value, Err: ErrFieldNotNumeric}
		}
		return clampInt(name, value, float64(n))
	default:
		return 0, &FieldCoercionError{Field: name, Value: value, Err: ErrFieldNotNumeric}
	}
}

func clampInt(name string, original any, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, &FieldCoercionError{Field: name, Value: original, Err: ErrFieldNotNumeric}
	}
	return int(f), nil
}

func coerceFloat(fields map[string]any, name string) (float64, error) {
	value, ok := fields[name]
	if !ok || value == nil {
		return 0, &FieldCoercionError{Field: name, Err: ErrFieldMissing}
	}
	var (
		f   float64
		err error
	)
	switch v := value.(type) {
	case json.Number:
		f, err = v.Float64()
	case float64:
		f = v
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		err = ErrFieldNotNumeric
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldCoercionError{Field: name, Value: value, Err: ErrFieldNotNumeric}
	}
	return f, nil
}

func coerceText(fields map[string]any, name, fallback string) (string, error) {
	value, ok := fields[name]
	if !ok || value == nil {
		return fallback, nil
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", &FieldCoercionError{Field: name, Value: value, Err: ErrFieldType}
	}
}
