package db

import (
	"context"
	"fmt"
)

// ErrorLog is one recorded error or recovered panic.
type ErrorLog struct {
	ID         int64  `json:"id"`
	Level      string `json:"level"`
	Module     string `json:"module"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace,omitempty"`
	Context    string `json:"context,omitempty"` // JSON object
	CreatedAt  string `json:"created_at"`
}

// InsertErrorLog records e. ID and CreatedAt are assigned by the store.
func (s *Store) InsertErrorLog(ctx context.Context, e ErrorLog) error {
	_, now := s.timestamp()
	err := s.CreateErrorLog(ctx, CreateErrorLogParams{
		Level:      e.Level,
		Module:     e.Module,
		Message:    e.Message,
		Stacktrace: nullString(e.Stacktrace),
		Context:    nullString(e.Context),
		CreatedAt:  now,
	})
	if err != nil {
		return fmt.Errorf("insert error log: %w", err)
	}
	return nil
}

// ListErrorLogs returns the most recent entries, newest first.
func (s *Store) ListErrorLogs(ctx context.Context, limit int) ([]ErrorLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.ListRecentErrorLogs(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list error logs: %w", err)
	}
	out := make([]ErrorLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, ErrorLog{
			ID:         r.ID,
			Level:      r.Level,
			Module:     r.Module,
			Message:    r.Message,
			Stacktrace: r.Stacktrace.String,
			Context:    r.Context.String,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}
