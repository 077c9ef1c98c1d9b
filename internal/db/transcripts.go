package db

import (
	"context"
	"fmt"
	"time"
)

// TranscriptLine is one utterance in a saved call transcript.
type TranscriptLine struct {
	Role    string `json:"role"`
	Seq     int    `json:"seq"`
	Content string `json:"content"`
}

// SaveTranscript stores the user and assistant utterances of a finished call.
// Sequence numbers are per role and follow slice order.
func (s *Store) SaveTranscript(ctx context.Context, streamSID string, user, assistant []string) error {
	if len(user) == 0 && len(assistant) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	qtx := s.withTx(tx)

	_, now := s.timestamp()
	for role, lines := range map[string][]string{"user": user, "assistant": assistant} {
		for i, text := range lines {
			err := qtx.InsertTranscriptLine(ctx, InsertTranscriptLineParams{
				StreamSid: streamSID,
				Role:      role,
				Seq:       int64(i),
				Content:   text,
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("insert transcript line: %w", err)
			}
		}
	}
	return tx.Commit()
}

// ListTranscript returns a call's utterances grouped by role, each in arrival order.
func (s *Store) ListTranscript(ctx context.Context, streamSID string) ([]TranscriptLine, error) {
	rows, err := s.ListTranscriptLines(ctx, streamSID)
	if err != nil {
		return nil, fmt.Errorf("list transcript: %w", err)
	}
	var out []TranscriptLine
	for _, r := range rows {
		out = append(out, TranscriptLine{Role: r.Role, Seq: int(r.Seq), Content: r.Content})
	}
	return out, nil
}

// PurgeTranscripts deletes transcript lines created before cutoff.
func (s *Store) PurgeTranscripts(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.DeleteTranscriptsBefore(ctx, cutoff.UTC().Format(TimeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge transcripts: %w", err)
	}
	return n, nil
}
