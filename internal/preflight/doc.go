// Package preflight provides filesystem readiness checks for the paths the
// stream engine reads and writes.
//
// The run command and the daemon call RunAll before starting the engine. A
// failed output check is fatal: the engine would otherwise start, fail to
// open its output and exit anyway. Failed input checks are reported as
// warnings since the producer may create the input log later.
package preflight
