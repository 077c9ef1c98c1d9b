package types

import (
	"github.com/neboloop/callbridge/internal/db"
	"github.com/neboloop/callbridge/internal/sessions"
)

type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Timestamp      string `json:"timestamp"`
	ActiveSessions int    `json:"active_sessions"`
}

type ListSessionsResponse struct {
	Sessions []sessions.Info `json:"sessions"`
	Total    int             `json:"total"`
}

type TranscriptResponse struct {
	StreamSID string              `json:"stream_sid"`
	Lines     []db.TranscriptLine `json:"lines"`
}

type ListErrorsResponse struct {
	Errors []db.ErrorLog `json:"errors"`
}
