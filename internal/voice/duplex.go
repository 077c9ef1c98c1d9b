package voice

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/crashlog"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/sessions"
)

// AgentDialer opens the agent-side socket for a new call.
type AgentDialer interface {
	Dial(ctx context.Context, apiKey string) (*websocket.Conn, error)
}

// SettingsSource supplies the settings document sent to the agent first.
type SettingsSource interface {
	Document() ([]byte, error)
}

// HandlerDeps holds what the media stream endpoint needs per call.
type HandlerDeps struct {
	Session  Deps
	Options  Options
	Dialer   AgentDialer
	Settings SettingsSource
	APIKey   func() (string, error)
	Tracker  *sessions.Tracker
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Media streams come from the telephony provider, not a browser.
	CheckOrigin: func(*http.Request) bool { return true },
}

// DuplexHandler returns an http.HandlerFunc that accepts a telephony media
// stream and bridges it to a fresh agent connection.
func DuplexHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connID := uuid.NewString()
		log := logging.With("conn", connID, "remote", r.RemoteAddr)

		if deps.Tracker != nil && deps.Tracker.Draining() {
			http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
			return
		}

		apiKey, err := deps.APIKey()
		if err != nil {
			log.Error("refusing media stream", logging.Err(err))
			status := http.StatusInternalServerError
			if errors.Is(err, config.ErrMissingCredential) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, "voice agent unavailable", status)
			return
		}
		settings, err := deps.Settings.Document()
		if err != nil {
			log.Error("refusing media stream: agent settings", logging.Err(err))
			http.Error(w, "voice agent unavailable", http.StatusInternalServerError)
			return
		}

		phone, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade failed", logging.Err(err))
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		agent, err := deps.Dialer.Dial(ctx, apiKey)
		if err != nil {
			log.Error("agent dial failed", logging.Err(err))
			crashlog.LogError("voice", err, map[string]string{"conn": connID, "stage": "dial"})
			newLink(phone, deps.Options.WriteWait).Close(websocket.CloseInternalServerErr, "agent unavailable")
			return
		}

		s := NewSession(connID, phone, agent, deps.Session, deps.Options)
		if err := s.SendSettings(settings); err != nil {
			log.Error("failed to send agent settings", logging.Err(err))
			s.agent.Close(websocket.CloseNormalClosure, "")
			s.phone.Close(websocket.CloseInternalServerErr, "agent unavailable")
			return
		}

		if deps.Tracker != nil {
			unregister, err := deps.Tracker.Register(connID, sessions.Handle{
				Cancel:    cancel,
				StreamSID: s.StreamSID,
			})
			if err != nil {
				log.Info("refusing media stream", logging.Err(err))
				s.agent.Close(websocket.CloseNormalClosure, "")
				s.phone.Close(websocket.CloseGoingAway, "server is shutting down")
				return
			}
			defer unregister()
		}

		log.Info("media stream connected")
		if err := s.Run(ctx); err != nil {
			log.Warn("session ended with error", logging.Err(err))
			crashlog.LogError("voice", err, map[string]string{"conn": connID, "streamSid": s.StreamSID()})
		}
	}
}
