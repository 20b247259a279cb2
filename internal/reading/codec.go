package reading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMalformedJSON marks a line that is not valid JSON.
	ErrMalformedJSON = errors.New("malformed json")
	// ErrNotObject marks valid JSON that is not a single object.
	ErrNotObject = errors.New("record is not a json object")
)

// Outcome classifies what Decode made of one input line.
type Outcome int

const (
	// OutcomeEnriched means Result.Record holds a classified reading.
	OutcomeEnriched Outcome = iota + 1
	// OutcomeBlank means the line held only whitespace and carries no record.
	OutcomeBlank
	// OutcomeMalformed means the line was rejected; Result.Err holds the reason.
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEnriched:
		return "enriched"
	case OutcomeBlank:
		return "blank"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Result is the per-line decision returned by Decode.
type Result struct {
	Outcome Outcome
	Record  EnrichedRecord
	Err     error
}

// Malformed builds a rejected-line result.
func Malformed(err error) Result {
	return Result{Outcome: OutcomeMalformed, Err: err}
}

// Decode parses one input line (without its line break) and transforms it.
func Decode(line []byte) Result {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return Result{Outcome: OutcomeBlank}
	}
	if trimmed[0] != '{' {
		if json.Valid(trimmed) {
			return Malformed(ErrNotObject)
		}
		return Malformed(ErrMalformedJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Malformed(fmt.Errorf("%w: %v", ErrMalformedJSON, err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Malformed(fmt.Errorf("%w: trailing data after object", ErrMalformedJSON))
	}

	raw, err := Coerce(fields)
	if err != nil {
		return Malformed(err)
	}
	return Result{Outcome: OutcomeEnriched, Record: Transform(raw)}
}

// Encode renders rec as one output log line, including the trailing newline.
func Encode(rec EnrichedRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode enriched record: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseEnriched decodes one output log line.
func ParseEnriched(line []byte) (EnrichedRecord, error) {
	var rec EnrichedRecord
	if err := json.Unmarshal(bytes.TrimSpace(line), &rec); err != nil {
		return EnrichedRecord{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if !rec.OverallStatus.Valid() {
		return EnrichedRecord{}, fmt.Errorf("unknown overall_status %q", rec.OverallStatus)
	}
	return rec, nil
}
