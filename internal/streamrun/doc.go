// Package streamrun assembles the engine runtime from configuration. Both the
// "envwatch run" command and the envwatchd daemon call Run.
//
// Run owns everything around the engine: the per-run log file and its
// envwatch.log pointer, log retention, the single-instance lock, preflight
// checks, the optional checkpoint store, metrics endpoint and file watcher.
package streamrun
