package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"envwatch/internal/checkpoint"
	"envwatch/internal/classify"
	"envwatch/internal/logging"
	"envwatch/internal/reading"
	"envwatch/internal/tail"
)

var errLineTooLong = fmt.Errorf("line exceeds %d bytes", tail.MaxLineBytes)

// Repeated transient warnings for the same op are limited to a burst of
// transientWarnBurst, then one per transientWarnEvery; the rest go to debug.
const (
	transientWarnEvery = 10 * time.Second
	transientWarnBurst = 3
)

// Options configures an Engine.
type Options struct {
	Input        string
	Output       string
	PollInterval time.Duration
	Logger       *slog.Logger
	Recorder     Recorder
	Checkpoints  Checkpointer
	// Wake cuts the poll-interval wait short, typically fed by a tail.Watcher.
	Wake <-chan struct{}
	// Resume continues from a saved checkpoint and appends to the existing
	// output log instead of truncating it.
	Resume *checkpoint.Entry
	// Fsync syncs the output log after every appended record.
	Fsync bool
}

// Engine tails one input log into one output log.
type Engine struct {
	input        string
	output       string
	pollInterval time.Duration
	logger       *slog.Logger
	recorder     Recorder
	checkpoints  Checkpointer
	wake         <-chan struct{}
	resume       *checkpoint.Entry
	fsync        bool

	openOutput func(path string, keep bool) (outputLog, int64, error)

	mu        sync.Mutex
	out       outputLog
	outSize   int64
	cursor    tail.Cursor
	state     State
	stats     Stats
	base      checkpoint.Entry
	saved     int64
	truncated bool
	closed    bool

	warnLimiters map[string]*rate.Limiter
	suppressed   map[string]int
}

// New validates opts and returns an engine. The output log is not touched
// until the first Run or Step.
func New(opts Options) (*Engine, error) {
	input := strings.TrimSpace(opts.Input)
	output := strings.TrimSpace(opts.Output)
	if input == "" {
		return nil, errors.New("input log path is required")
	}
	if output == "" {
		return nil, errors.New("output log path is required")
	}
	if filepath.Clean(input) == filepath.Clean(output) {
		return nil, fmt.Errorf("input and output must differ (both %q)", input)
	}

	e := &Engine{
		input:        input,
		output:       output,
		pollInterval: opts.PollInterval,
		logger:       opts.Logger,
		recorder:     opts.Recorder,
		checkpoints:  opts.Checkpoints,
		wake:         opts.Wake,
		resume:       opts.Resume,
		fsync:        opts.Fsync,
		openOutput:   openOutputFile,
		state:        StateAwaitingInput,
		saved:        -1,
		warnLimiters: make(map[string]*rate.Limiter),
		suppressed:   make(map[string]int),
	}
	if e.pollInterval <= 0 {
		e.pollInterval = DefaultPollInterval
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.recorder == nil {
		e.recorder = noopRecorder{}
	}
	return e, nil
}

// Run polls until ctx is cancelled. It returns nil on cancellation and a
// *FatalError when the output log cannot be opened.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.open(); err != nil {
		return err
	}
	defer e.Close()

	cur := e.Cursor()
	e.logger.Info("stream engine started",
		logging.String("input", e.input),
		logging.String("output", e.output),
		logging.Duration("poll_interval", e.pollInterval),
		logging.Int64(logging.FieldOffset, cur.Offset),
		logging.Bool("resumed", e.resume != nil),
	)

	for ctx.Err() == nil {
		report, err := e.Step(ctx)
		if err != nil {
			return err
		}
		if report.More {
			continue
		}
		e.wait(ctx)
	}

	e.saveCheckpoint(context.WithoutCancel(ctx), true)
	e.logSummary()
	return nil
}

// Step runs exactly one poll iteration without waiting.
func (e *Engine) Step(ctx context.Context) (StepReport, error) {
	if err := e.open(); err != nil {
		return StepReport{}, err
	}
	started := time.Now()
	var report StepReport

	e.mu.Lock()
	e.stats.Polls++
	cur := e.cursor
	e.mu.Unlock()

	batch, err := tail.Poll(e.input, cur)
	if err != nil {
		report.TransientErrors++
		e.transient(OpReadInput, err,
			"check that the input log is readable",
			"no new readings are processed until the input can be read",
		)
		e.finishPoll(ctx, started)
		return report, nil
	}
	report.Missing = batch.Missing
	report.Truncated = batch.Truncated
	e.observeInput(batch)

	completed := true
	for _, line := range batch.Lines {
		if ctx.Err() != nil {
			completed = false
			break
		}
		report.Lines++
		if !e.handleLine(line, &report) {
			completed = false
			break
		}
	}
	if completed {
		e.mu.Lock()
		e.cursor = batch.Next
		e.mu.Unlock()
		report.More = batch.More
	}

	e.finishPoll(ctx, started)
	return report, nil
}

func (e *Engine) handleLine(line tail.Line, report *StepReport) bool {
	if line.Oversized {
		report.Malformed++
		e.malformed(line, errLineTooLong)
		e.advance(line.End)
		return true
	}

	result := reading.Decode(line.Data)
	switch result.Outcome {
	case reading.OutcomeBlank:
		report.Blank++
		e.mu.Lock()
		e.stats.Blank++
		e.mu.Unlock()
	case reading.OutcomeMalformed:
		report.Malformed++
		e.malformed(line, result.Err)
	case reading.OutcomeEnriched:
		data, err := reading.Encode(result.Record)
		if err != nil {
			report.Malformed++
			e.malformed(line, err)
			break
		}
		if err := e.appendRecord(data); err != nil {
			report.TransientErrors++
			e.transient(OpWriteOutput, err,
				"check free space and permissions on the output log",
				"the reading is retried on the next poll",
				logging.Int64(logging.FieldOffset, line.Start),
			)
			return false
		}
		report.Processed++
		e.processed(result.Record)
	}
	e.advance(line.End)
	return true
}

func (e *Engine) appendRecord(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return errors.New("output log is closed")
	}

	n, err := e.out.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err == nil && e.fsync {
		if syncErr := e.out.Sync(); syncErr != nil {
			err = fmt.Errorf("sync output log: %w", syncErr)
		}
	}
	if err != nil {
		if truncErr := e.out.Truncate(e.outSize); truncErr != nil {
			return errors.Join(err, fmt.Errorf("roll back partial record: %w", truncErr))
		}
		return err
	}
	e.outSize += int64(n)
	return nil
}

func (e *Engine) processed(rec reading.EnrichedRecord) {
	e.mu.Lock()
	e.stats.Processed++
	switch rec.OverallStatus {
	case classify.Unsafe:
		e.stats.Unsafe++
	case classify.Caution:
		e.stats.Caution++
	default:
		e.stats.Safe++
	}
	seq := e.base.Processed + e.stats.Processed
	e.mu.Unlock()

	e.recorder.RecordProcessed(rec.OverallStatus)
	e.logger.Info(fmt.Sprintf("[%04d] %s", seq, rec.OverallStatus),
		logging.String(logging.FieldSensorID, rec.SensorID),
		logging.String("timestamp", rec.Timestamp),
		logging.Int("aqi", rec.AQI),
		logging.String("aqi_status", string(rec.AQIStatus.Tier)),
		logging.Float64("temperature_c", rec.TemperatureC),
		logging.String("temp_status", string(rec.TempStatus.Tier)),
		logging.Int("humidity_pct", rec.HumidityPct),
		logging.String("humidity_status", string(rec.HumidityStatus.Tier)),
	)
}

func (e *Engine) malformed(line tail.Line, err error) {
	e.mu.Lock()
	e.stats.Malformed++
	e.mu.Unlock()
	e.recorder.RecordMalformed()
	logging.WarnWithContext(e.logger, "malformed input line skipped", "malformed_line",
		logging.Error(err),
		logging.Int64(logging.FieldOffset, line.Start),
		logging.Int64("length", line.End-line.Start),
		logging.String(logging.FieldErrorHint, "check the producer output format"),
		logging.String(logging.FieldImpact, "the line is not retried"),
	)
}

func (e *Engine) transient(op string, err error, hint, impact string, attrs ...logging.Attr) {
	e.mu.Lock()
	e.stats.TransientErrors++
	limiter, ok := e.warnLimiters[op]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(transientWarnEvery), transientWarnBurst)
		e.warnLimiters[op] = limiter
	}
	allowed := limiter.Allow()
	suppressed := e.suppressed[op]
	if allowed {
		e.suppressed[op] = 0
	} else {
		e.suppressed[op]++
	}
	e.mu.Unlock()

	e.recorder.RecordTransientError(op)
	attrs = append(attrs,
		logging.Error(err),
		logging.String("op", op),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, impact),
	)
	if !allowed {
		e.logger.Debug("transient stream error (warning suppressed)", logging.Args(attrs...)...)
		return
	}
	if suppressed > 0 {
		attrs = append(attrs, logging.Int("suppressed", suppressed))
	}
	logging.WarnWithContext(e.logger, "transient stream error", "transient_"+op, attrs...)
}

func (e *Engine) advance(offset int64) {
	e.mu.Lock()
	e.cursor = e.cursor.AdvanceTo(offset)
	e.mu.Unlock()
}

func (e *Engine) observeInput(batch tail.Batch) {
	e.mu.Lock()
	becameStreaming := !batch.Missing && e.state == StateAwaitingInput
	if becameStreaming {
		e.state = StateStreaming
	}
	warnTruncated := batch.Truncated && !e.truncated
	e.truncated = batch.Truncated
	offset := e.cursor.Offset
	e.mu.Unlock()

	if becameStreaming {
		e.logger.Info("input log detected", logging.String("input", e.input), logging.Int64("size", batch.Size))
	}
	if warnTruncated {
		logging.WarnWithContext(e.logger, "input log is shorter than the consumed offset", "input_truncated",
			logging.Int64(logging.FieldOffset, offset),
			logging.Int64("size", batch.Size),
			logging.String(logging.FieldErrorHint, "the input log was truncated or replaced; restart to reprocess it"),
			logging.String(logging.FieldImpact, "no lines are read until the input grows past the offset"),
		)
	}
}

func (e *Engine) finishPoll(ctx context.Context, started time.Time) {
	e.recorder.SetOffset(e.Cursor().Offset)
	e.saveCheckpoint(ctx, false)
	e.recorder.ObservePoll(time.Since(started))
}

func (e *Engine) saveCheckpoint(ctx context.Context, force bool) {
	if e.checkpoints == nil {
		return
	}
	e.mu.Lock()
	entry := checkpoint.Entry{
		InputPath: e.input,
		Offset:    e.cursor.Offset,
		Processed: e.base.Processed + e.stats.Processed,
		Malformed: e.base.Malformed + e.stats.Malformed,
	}
	unchanged := entry.Offset == e.saved
	e.mu.Unlock()
	if unchanged && !force {
		return
	}

	if err := e.checkpoints.Save(ctx, entry); err != nil {
		if ctx.Err() != nil {
			return
		}
		e.transient(OpSaveCheckpoint, err,
			"check the state directory and checkpoint database",
			"a restart may reprocess more lines than necessary",
		)
		return
	}
	e.mu.Lock()
	e.saved = entry.Offset
	e.mu.Unlock()
}

func (e *Engine) wait(ctx context.Context) {
	timer := time.NewTimer(e.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-e.wake:
	}
}

func (e *Engine) open() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out != nil {
		return nil
	}
	if e.closed {
		return &FatalError{Op: "open output log", Path: e.output, Err: errors.New("engine is closed")}
	}

	keep := false
	if e.resume != nil {
		keep = true
		e.base = *e.resume
		e.cursor = tail.Cursor{Offset: e.resume.Offset}
		if size, ok := e.inputSize(); !ok || size < e.resume.Offset {
			logging.WarnWithContext(e.logger, "checkpoint offset beyond input log; starting from the beginning", "checkpoint_stale",
				logging.Int64(logging.FieldOffset, e.resume.Offset),
				logging.Int64("size", size),
				logging.String(logging.FieldErrorHint, "the input log was replaced since the checkpoint was saved"),
				logging.String(logging.FieldImpact, "all current input lines are processed and appended"),
			)
			e.base = checkpoint.Entry{InputPath: e.input}
			e.cursor = tail.Cursor{}
		}
	}

	out, size, err := e.openOutput(e.output, keep)
	if err != nil {
		return &FatalError{Op: "open output log", Path: e.output, Err: err}
	}
	e.out = out
	e.outSize = size
	return nil
}

func (e *Engine) inputSize() (int64, bool) {
	info, err := os.Stat(e.input)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

func (e *Engine) logSummary() {
	stats := e.Stats()
	e.logger.Info("stream engine stopped",
		logging.Uint64("processed", stats.Processed),
		logging.Uint64("malformed", stats.Malformed),
		logging.Uint64("blank", stats.Blank),
		logging.Uint64("transient_errors", stats.TransientErrors),
		logging.Uint64("unsafe", stats.Unsafe),
		logging.Uint64("caution", stats.Caution),
		logging.Uint64("safe", stats.Safe),
		logging.Int64(logging.FieldOffset, e.Cursor().Offset),
	)
}

// Stats returns a snapshot of the run counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// State reports whether the input log has been seen.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Cursor returns the current read position in the input log.
func (e *Engine) Cursor() tail.Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Close releases the output log. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out = nil
	return err
}
