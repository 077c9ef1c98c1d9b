package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/neboloop/callbridge/internal/config"
	"github.com/neboloop/callbridge/internal/conversation"
	"github.com/neboloop/callbridge/internal/logging"
	"github.com/neboloop/callbridge/internal/tools"
)

// ToolRunner executes agent function calls. It must always return a result.
type ToolRunner interface {
	Execute(ctx context.Context, name string, arguments json.RawMessage) tools.Result
}

// TranscriptStore persists a finished call's conversation.
type TranscriptStore interface {
	SaveTranscript(ctx context.Context, streamSID string, user, assistant []string) error
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Tools       ToolRunner
	Buffers     *conversation.Registry
	Transcripts TranscriptStore // optional
}

// Options tune one session.
type Options struct {
	Threshold      int           // bytes per forwarded audio frame
	QueueSize      int           // frames buffered between ingress and sender
	WriteWait      time.Duration // per-frame write deadline on both sockets
	ResponsePacing time.Duration // lock hold after a function call response
	FallbackPacing time.Duration // lock hold after an error fallback response
}

// OptionsFrom derives session options from the process config.
func OptionsFrom(c *config.Config) Options {
	return Options{
		Threshold:      c.Audio.Threshold(),
		QueueSize:      c.Audio.QueueSize,
		WriteWait:      c.Agent.WriteTimeout,
		ResponsePacing: c.Agent.ResponsePacing,
		FallbackPacing: c.Agent.FallbackPacing,
	}
}

const persistTimeout = 5 * time.Second

// Session bridges one telephony media stream to one agent connection.
type Session struct {
	connID string
	phone  *phoneLink
	agent  *agentLink
	deps   Deps
	opts   Options
	log    *slog.Logger

	frames chan []byte
	sid    *rendezvous

	// buf is set by the ingress loop before the stream id is published, and
	// only read by the receiver after it has waited for that id.
	buf *conversation.Buffer

	toolCalls  sync.WaitGroup
	closeConvo sync.Once
	stats      counters
}

// NewSession wires a session over an accepted telephony socket and a dialed agent socket.
func NewSession(connID string, phone, agent Conn, deps Deps, opts Options) *Session {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	return &Session{
		connID: connID,
		phone:  newPhoneLink(phone, opts.WriteWait),
		agent:  newAgentLink(agent, opts.WriteWait),
		deps:   deps,
		opts:   opts,
		log:    logging.With("conn", connID),
		frames: make(chan []byte, opts.QueueSize),
		sid:    newRendezvous(),
	}
}

// StreamSID returns the telephony stream id, or "" before the start event.
func (s *Session) StreamSID() string {
	sid, _ := s.sid.Value()
	return sid
}

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	return s.stats.snapshot()
}

// SendSettings writes the agent settings document. Call before Run.
func (s *Session) SendSettings(doc []byte) error {
	if err := s.agent.SendSettings(doc); err != nil {
		return &TransportError{Loop: "settings", Err: err}
	}
	return nil
}

// Run drives the ingress, sender and receiver loops until the first of them
// returns. The others are cancelled, both sockets are closed, and Run waits
// for every loop and in-flight function call before saving and dropping the
// conversation. The returned error is the first loop failure, if any.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	loop := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			defer cancel()
			err := fn(gctx)
			if err != nil {
				s.log.Warn("loop ended", "loop", name, logging.Err(err))
			} else {
				s.log.Debug("loop ended", "loop", name)
			}
			return err
		})
	}
	loop(loopIngress, s.ingress)
	loop(loopSender, s.send)
	loop(loopReceiver, s.receive)

	// Blocked reads only return once their socket is closed.
	g.Go(func() error {
		<-gctx.Done()
		s.phone.Close(websocket.CloseNormalClosure, "")
		s.agent.Close(websocket.CloseNormalClosure, "")
		return nil
	})

	err := g.Wait()
	s.toolCalls.Wait()
	s.closeConversation(ctx)

	st := s.Stats()
	s.log.Info("session closed",
		"streamSid", s.StreamSID(),
		"bytes_in", st.BytesIn,
		"frames_out", st.FramesOut,
		"audio_out", st.AudioOut,
		"barge_ins", st.BargeIns,
		"tool_calls", st.ToolCalls,
		"transcripts", st.Transcripts,
	)
	return err
}

// start handles the telephony start event. A stream id that another live
// session already holds ends this session.
func (s *Session) start(streamSID string) error {
	if _, ok := s.sid.Value(); ok {
		s.log.Warn("duplicate start event ignored", "streamSid", streamSID)
		return nil
	}
	buf, err := s.deps.Buffers.Create(streamSID)
	if err != nil {
		return fmt.Errorf("start %s: %w", streamSID, err)
	}
	s.buf = buf
	s.sid.Publish(streamSID)
	s.log.Info("stream started", "streamSid", streamSID)
	return nil
}

// closeConversation removes the call's buffer from the registry and saves its
// contents. Runs at most once, on the stop event or at teardown.
func (s *Session) closeConversation(ctx context.Context) {
	s.closeConvo.Do(func() {
		sid, ok := s.sid.Value()
		if !ok {
			return
		}
		buf, ok := s.deps.Buffers.Destroy(sid)
		if !ok || s.deps.Transcripts == nil {
			return
		}
		user, assistant := buf.Snapshot()
		if len(user) == 0 && len(assistant) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := s.deps.Transcripts.SaveTranscript(ctx, sid, user, assistant); err != nil {
			s.log.Error("failed to save transcript", logging.Err(err))
			return
		}
		s.log.Debug("transcript saved", "user", len(user), "assistant", len(assistant))
	})
}
