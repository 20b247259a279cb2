// Package stream runs the ingestion loop: it tails the input log, enriches
// every complete reading and appends the result to the output log.
//
// One Engine owns one input/output pair, its cursor and its counters. The
// loop is sequential, so output order always equals input order. Lines are
// written one record per write; when a write fails the output is truncated
// back to its previous size and the same line is retried on the next poll, so
// the output never contains a partial record and nothing is skipped. Delivery
// is at-least-once: a restart without a checkpoint reprocesses the input from
// the beginning.
package stream
