// Package reading defines the sensor record types and turns raw input lines
// into enriched records.
//
// Decode is the single entry point used by the stream engine: it parses one
// JSON line, coerces the numeric fields, classifies each dimension and reports
// an explicit per-line Result instead of failing the caller. Encode produces
// the output log line for an enriched record.
package reading
