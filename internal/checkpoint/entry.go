package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Entry is the saved progress for one input log.
type Entry struct {
	InputPath string
	Offset    int64
	Processed uint64
	Malformed uint64
	UpdatedAt time.Time
}

// Load returns the entry for input. The boolean is false when none was saved.
func (s *Store) Load(ctx context.Context, input string) (Entry, bool, error) {
	ctx = ensureContext(ctx)
	var (
		entry     Entry
		updatedAt string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT input_path, offset_bytes, processed, malformed, updated_at
			 FROM checkpoints WHERE input_path = ?`,
			strings.TrimSpace(input),
		).Scan(&entry.InputPath, &entry.Offset, &entry.Processed, &entry.Malformed, &updatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("load checkpoint: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		entry.UpdatedAt = ts
	}
	return entry, true, nil
}

// Save upserts entry. A zero UpdatedAt is replaced with the current time.
func (s *Store) Save(ctx context.Context, entry Entry) error {
	input := strings.TrimSpace(entry.InputPath)
	if input == "" {
		return errors.New("checkpoint input path is required")
	}
	if entry.Offset < 0 {
		return fmt.Errorf("checkpoint offset %d is negative", entry.Offset)
	}
	updated := entry.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO checkpoints (input_path, offset_bytes, processed, malformed, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(input_path) DO UPDATE SET
		   offset_bytes = excluded.offset_bytes,
		   processed = excluded.processed,
		   malformed = excluded.malformed,
		   updated_at = excluded.updated_at`,
		input, entry.Offset, int64(entry.Processed), int64(entry.Malformed), updated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Reset removes the entry for input.
func (s *Store) Reset(ctx context.Context, input string) error {
	if err := s.execWithRetry(ctx, "DELETE FROM checkpoints WHERE input_path = ?", strings.TrimSpace(input)); err != nil {
		return fmt.Errorf("reset checkpoint: %w", err)
	}
	return nil
}
