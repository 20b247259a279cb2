package tail

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// MaxLineBytes bounds the bytes buffered for one line. Longer lines are
	// consumed without buffering and reported as Oversized.
	MaxLineBytes   = 1 << 20
	readBufferSize = 64 * 1024
)

// maxPollBytes bounds the bytes consumed by a single Poll.
var maxPollBytes int64 = 16 << 20

// Cursor is the read position in a tailed file.
type Cursor struct {
	// Offset is the number of bytes already consumed. It never decreases.
	Offset int64
	// Pending is the length of the unterminated bytes seen after Offset at the
	// last poll. Those bytes are read again once their line is complete.
	Pending int64
}

// AdvanceTo returns a cursor at offset, or c unchanged if offset would move it backwards.
func (c Cursor) AdvanceTo(offset int64) Cursor {
	if offset <= c.Offset {
		return c
	}
	return Cursor{Offset: offset}
}

// Line is one complete line, without its terminator.
type Line struct {
	Data      []byte
	Start     int64
	End       int64
	Oversized bool
}

// Batch is the result of one Poll.
type Batch struct {
	Lines []Line
	Next  Cursor
	// Size is the file size observed by the poll.
	Size int64
	// Missing reports that the file does not exist.
	Missing bool
	// Truncated reports that the file is shorter than the cursor offset.
	Truncated bool
	// More reports that the per-poll byte budget was reached before the end of the file.
	More bool
}

// Poll reads the complete lines appended to path after cur. A missing file is
// not an error. On error the returned batch carries cur unchanged.
func Poll(path string, cur Cursor) (Batch, error) {
	batch := Batch{Next: cur}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			batch.Missing = true
			return batch, nil
		}
		return batch, fmt.Errorf("stat input log: %w", err)
	}
	if info.IsDir() {
		return batch, fmt.Errorf("input path %q is a directory", path)
	}

	size := info.Size()
	batch.Size = size
	switch {
	case size < cur.Offset:
		batch.Truncated = true
		return batch, nil
	case size == cur.Offset:
		batch.Next.Pending = 0
		return batch, nil
	}

	lines, consumed, pending, more, err := readForward(path, cur.Offset, size-cur.Offset)
	if err != nil {
		return Batch{Next: cur, Size: size}, err
	}
	batch.Lines = lines
	batch.More = more
	batch.Next = Cursor{Offset: cur.Offset + consumed, Pending: pending}
	return batch, nil
}

func readForward(path string, offset, available int64) ([]Line, int64, int64, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, 0, false, nil
		}
		return nil, 0, 0, false, fmt.Errorf("open input log: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, 0, false, fmt.Errorf("seek input log: %w", err)
	}

	reader := bufio.NewReaderSize(io.LimitReader(file, available), readBufferSize)

	var (
		lines     []Line
		consumed  int64
		current   []byte
		lineLen   int64
		oversized bool
	)
	for {
		if lineLen == 0 && consumed >= maxPollBytes {
			return lines, consumed, 0, consumed < available, nil
		}

		chunk, err := reader.ReadSlice('\n')
		if len(chunk) > 0 {
			lineLen += int64(len(chunk))
			if !oversized {
				if int64(len(current)+len(chunk)) > MaxLineBytes {
					oversized = true
					current = nil
				} else {
					current = append(current, chunk...)
				}
			}
		}

		switch {
		case err == nil:
			start := offset + consumed
			line := Line{Start: start, End: start + lineLen, Oversized: oversized}
			if !oversized {
				line.Data = trimLineBreak(current)
			}
			lines = append(lines, line)
			consumed += lineLen
			current, lineLen, oversized = nil, 0, false
		case errors.Is(err, bufio.ErrBufferFull):
		case errors.Is(err, io.EOF):
			return lines, consumed, lineLen, false, nil
		default:
			return nil, 0, 0, false, fmt.Errorf("read input log: %w", err)
		}
	}
}

func trimLineBreak(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'})
}
