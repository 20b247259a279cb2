// Package main hosts the envwatch CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the stream engine in the foreground,
// produces synthetic readings for local testing, renders the enriched output
// log as a table, and scaffolds configuration. Configuration is resolved once
// per invocation; --input, --output and --poll-interval override the file.
//
// Keep this package lean: behavior lives in the internal packages and the
// commands here only translate flags into their options.
package main
