package stream

import (
	"context"
	"fmt"
	"time"

	"envwatch/internal/checkpoint"
	"envwatch/internal/classify"
)

// State describes whether the engine has seen its input yet.
type State string

const (
	StateAwaitingInput State = "AWAITING_INPUT"
	StateStreaming     State = "STREAMING"
)

// DefaultPollInterval is used when Options.PollInterval is not positive.
const DefaultPollInterval = 500 * time.Millisecond

// Transient operation labels.
const (
	OpReadInput      = "read_input"
	OpWriteOutput    = "write_output"
	OpSaveCheckpoint = "save_checkpoint"
)

// Recorder receives engine activity. metrics.Collector implements it.
type Recorder interface {
	RecordProcessed(overall classify.Tier)
	RecordMalformed()
	RecordTransientError(op string)
	SetOffset(offset int64)
	ObservePoll(d time.Duration)
}

// Checkpointer persists engine progress after each poll.
type Checkpointer interface {
	Save(ctx context.Context, entry checkpoint.Entry) error
}

// Stats are the counters of one engine run.
type Stats struct {
	Processed       uint64
	Malformed       uint64
	Blank           uint64
	TransientErrors uint64
	Polls           uint64
	Safe            uint64
	Caution         uint64
	Unsafe          uint64
}

// StepReport summarizes one poll iteration.
type StepReport struct {
	Lines           int
	Processed       int
	Malformed       int
	Blank           int
	TransientErrors int
	// More reports unread input beyond the per-poll budget.
	More bool
	// Missing reports that the input log did not exist at poll time.
	Missing bool
	// Truncated reports that the input log was shorter than the cursor.
	Truncated bool
}

// FatalError reports a condition the engine cannot recover from by polling
// again, such as an output log that cannot be opened.
type FatalError struct {
	Op   string
	Path string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

type noopRecorder struct{}

func (noopRecorder) RecordProcessed(classify.Tier) {}
func (noopRecorder) RecordMalformed()              {}
func (noopRecorder) RecordTransientError(string)   {}
func (noopRecorder) SetOffset(int64)               {}
func (noopRecorder) ObservePoll(time.Duration)     {}
