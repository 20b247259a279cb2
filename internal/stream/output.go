package stream

import (
	"fmt"
	"io"
	"os"
)

// outputLog is the append-only sink for enriched records.
type outputLog interface {
	io.Writer
	Truncate(size int64) error
	Sync() error
	Close() error
}

// openOutputFile opens path for appending, truncating it first unless keep
// is set, and returns its current size.
func openOutputFile(path string, keep bool) (outputLog, int64, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !keep {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, fmt.Errorf("stat output log: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, 0, fmt.Errorf("output path %q is a directory", path)
	}
	return file, info.Size(), nil
}
