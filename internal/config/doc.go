// Package config loads, normalizes, and validates envwatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ENVWATCH_INPUT_LOG. The Config type centralizes every knob the engine, the
// simulator and the CLI need, so input/output logs and state directories are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
