package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/db"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/svc"
)

func newTestService(t *testing.T) *svc.ServiceContext {
	t.Helper()
	logging.Disable()
	t.Cleanup(logging.Enable)
	t.Setenv(config.APIKeyEnv, "")

	dir := t.TempDir()
	settings := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(settings, []byte(`{"type":"Settings"}`), 0o600))

	cfg := config.DefaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Database.Path = filepath.Join(dir, "callbridge.db")
	cfg.Agent.SettingsFile = settings

	s, err := svc.NewServiceContext(context.Background(), cfg)
	require.NoError(t, err)
	s.Keychain = func() (string, error) { return "", errors.New("no keychain") }
	t.Cleanup(s.Close)
	return s
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestRoutes(t *testing.T) {
	s := newTestService(t)
	srv := httptest.NewServer(NewRouter(s, ServerOptions{Quiet: true}))
	defer srv.Close()

	ctx := context.Background()
	raised, err := s.DB.RaiseComplaint(ctx, db.NewComplaint{Name: "Ravi", ProblemDetails: "no power"})
	require.NoError(t, err)
	require.NoError(t, s.DB.SaveTranscript(ctx, "CA1", []string{"hello"}, []string{"hi there"}))

	var health map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	assert.Equal(t, "healthy", health["status"])
	assert.EqualValues(t, 0, health["active_sessions"])

	var c db.Complaint
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/complaints/1", &c))
	assert.Equal(t, raised.ComplaintID, c.ID)

	c = db.Complaint{}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/complaints/"+raised.ComplaintID[:8], &c))
	assert.Equal(t, int64(1), c.ComplaintNo)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/complaints/99", nil))

	var transcript struct {
		StreamSID string              `json:"stream_sid"`
		Lines     []db.TranscriptLine `json:"lines"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/transcripts/CA1", &transcript))
	assert.Len(t, transcript.Lines, 2)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/transcripts/CA404", nil))

	var list map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sessions", &list))
	assert.EqualValues(t, 0, list["total"])

	var errs map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/errors?limit=5", &errs))
	assert.Contains(t, errs, "errors")

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStreamWithoutCredential(t *testing.T) {
	s := newTestService(t)
	srv := httptest.NewServer(NewRouter(s, ServerOptions{Quiet: true}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + s.Config.Server.StreamPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, s, ServerOptions{Quiet: true}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.True(t, s.Tracker.Draining(), "new media streams are refused after shutdown starts")
}
