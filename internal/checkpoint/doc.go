// Package checkpoint persists the stream cursor in SQLite so a restarted
// engine can continue from the last saved offset instead of reprocessing the
// whole input log.
//
// The store holds one row per input path. Saves happen after every poll, so a
// crash loses at most the progress of one poll: those lines are processed
// again on restart and downstream consumers see them twice.
package checkpoint
