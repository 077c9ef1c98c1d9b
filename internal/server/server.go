package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/neboloop/callbridge/internal/handler"
	"github.com/neboloop/callbridge/internal/handler/calls"
	"github.com/neboloop/callbridge/internal/handler/complaints"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/svc"
	"github.com/neboloop/callbridge/internal/voice"
)

const (
	shutdownTimeout = 30 * time.Second
	drainTimeout    = 10 * time.Second
)

// ServerOptions holds optional settings for the server
type ServerOptions struct {
	Quiet bool // Suppress request logging
}

// NewRouter builds the HTTP routes served on the telephony-facing listener.
func NewRouter(svcCtx *svc.ServiceContext, opts ServerOptions) chi.Router {
	r := chi.NewRouter()

	if !opts.Quiet {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", handler.IndexHandler)
	r.Get("/health", handler.HealthCheckHandler(svcCtx))

	// Media stream endpoint. The upgrade must not be wrapped by anything
	// that buffers the response writer.
	r.HandleFunc(svcCtx.Config.Server.StreamPath, voice.DuplexHandler(svcCtx.VoiceHandler()))

	r.Get("/sessions", calls.ListSessionsHandler(svcCtx))
	r.Get("/transcripts/{streamSid}", calls.GetTranscriptHandler(svcCtx))
	r.Get("/complaints/{ref}", complaints.GetComplaintHandler(svcCtx))
	r.Get("/errors", calls.ListErrorsHandler(svcCtx))

	return r
}

// Run serves until ctx is cancelled, then cancels live calls, waits for them
// to drain and shuts the listener down.
func Run(ctx context.Context, svcCtx *svc.ServiceContext, opts ...ServerOptions) error {
	var o ServerOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	addr := svcCtx.Config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	// ReadTimeout/WriteTimeout are omitted: they set deadlines on the
	// underlying net.Conn, which media streams hijack for the whole call.
	httpServer := &http.Server{
		Handler:           NewRouter(svcCtx, o),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logging.Infof("Media stream server listening on %s%s", ln.Addr(), svcCtx.Config.Server.StreamPath)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logging.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are invisible to Shutdown. Drain refuses
	// new media streams before cancelling the live ones.
	if n := svcCtx.Tracker.Drain(); n > 0 {
		logging.Infof("Cancelled %d live call(s)", n)
		drainCtx, drainCancel := context.WithTimeout(shutdownCtx, drainTimeout)
		if !svcCtx.Tracker.Wait(drainCtx) {
			logging.Warnf("%d call(s) still running after %s", svcCtx.Tracker.Count(), drainTimeout)
		}
		drainCancel()
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
