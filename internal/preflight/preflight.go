package preflight

import (
	"envwatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Fatal marks checks whose failure must stop startup.
	Fatal bool
}

const (
	NameOutputLog = "Output log"
	NameInputLog  = "Input log"
	NameStateDir  = "State directory"
)

// RunAll executes the filesystem checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	output := CheckOutputPath(NameOutputLog, cfg.Paths.OutputLog)
	output.Fatal = true

	results := []Result{
		output,
		CheckInputPath(NameInputLog, cfg.Paths.InputLog),
	}
	if cfg.Stream.Resume {
		state := CheckDirectoryAccess(NameStateDir, cfg.Paths.StateDir)
		state.Fatal = true
		results = append(results, state)
	}
	return results
}

// FirstFatal returns the first failed fatal result, if any.
func FirstFatal(results []Result) (Result, bool) {
	for _, r := range results {
		if r.Fatal && !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
