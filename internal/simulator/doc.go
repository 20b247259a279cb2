// Package simulator produces synthetic sensor readings into an input log so
// the engine can be exercised without real hardware.
package simulator
