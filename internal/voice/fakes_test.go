package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/callbridge/internal/conversation"
	"github.com/neboloop/callbridge/internal/db"
	"github.com/neboloop/callbridge/internal/tools"
)

var errFakeClosed = errors.New("use of closed network connection")

type wsFrame struct {
	typ  int
	data []byte
}

// fakeConn is an in-memory websocket peer. Tests push inbound frames with
// send/sendJSON and inspect everything the session wrote.
type fakeConn struct {
	in        chan wsFrame
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	writes []wsFrame

	writeDelay time.Duration
	failWrites atomic.Bool
	inflight   atomic.Int32
	overlapped atomic.Bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan wsFrame, 256),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case <-f.closed:
		return 0, nil, errFakeClosed
	default:
	}
	select {
	case fr, ok := <-f.in:
		if !ok {
			return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
		}
		return fr.typ, fr.data, nil
	case <-f.closed:
		return 0, nil, errFakeClosed
	}
}

func (f *fakeConn) WriteMessage(typ int, data []byte) error {
	if f.inflight.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	defer f.inflight.Add(-1)

	if f.writeDelay > 0 {
		time.Sleep(f.writeDelay)
	}
	select {
	case <-f.closed:
		return errFakeClosed
	default:
	}
	if f.failWrites.Load() {
		return errors.New("broken pipe")
	}
	f.mu.Lock()
	f.writes = append(f.writes, wsFrame{typ: typ, data: append([]byte(nil), data...)})
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) WriteControl(int, []byte, time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error          { return nil }

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func (f *fakeConn) send(typ int, data []byte) {
	f.in <- wsFrame{typ: typ, data: data}
}

func (f *fakeConn) sendJSON(t *testing.T, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	f.send(websocket.TextMessage, b)
}

// hangUp makes the next read report a normal close.
func (f *fakeConn) hangUp() {
	close(f.in)
}

func (f *fakeConn) written() []wsFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wsFrame(nil), f.writes...)
}

func (f *fakeConn) binaryWrites() [][]byte {
	var out [][]byte
	for _, fr := range f.written() {
		if fr.typ == websocket.BinaryMessage {
			out = append(out, fr.data)
		}
	}
	return out
}

func (f *fakeConn) textWrites(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, fr := range f.written() {
		if fr.typ != websocket.TextMessage {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr.data, &m))
		out = append(out, m)
	}
	return out
}

// memBackend is an in-memory complaint backend.
type memBackend struct {
	mu         sync.Mutex
	complaints []db.Complaint
	block      chan struct{}
}

func (m *memBackend) RaiseComplaint(_ context.Context, in db.NewComplaint) (*db.RaiseResult, error) {
	if in.Name == "" || in.ProblemDetails == "" {
		return nil, db.ErrMissingFields
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	no := int64(len(m.complaints) + 1)
	c := db.Complaint{ComplaintNo: no, ID: fmt.Sprintf("5a1e0c3d-0000-4000-8000-%012d", no), Name: in.Name,
		ProblemDetails: in.ProblemDetails, Status: db.StatusPatrolling, CreatedTime: "2025-04-01T12:00:00.000000Z"}
	m.complaints = append(m.complaints, c)
	return &db.RaiseResult{Message: "Complaint registered successfully", ComplaintID: c.ID, ComplaintNo: no,
		Status: c.Status, CreatedTime: c.CreatedTime}, nil
}

func (m *memBackend) LookupComplaint(ctx context.Context, q db.LookupQuery) (*db.Complaint, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ComplaintNo == nil && q.ComplaintID == "" {
		return nil, db.ErrMissingLookupKey
	}
	for _, c := range m.complaints {
		if q.ComplaintNo != nil && c.ComplaintNo == *q.ComplaintNo {
			return &c, nil
		}
	}
	return nil, db.ErrComplaintNotFound
}

func (m *memBackend) UpdateComplaintStatus(_ context.Context, u db.StatusUpdate) (*db.UpdateResult, error) {
	return &db.UpdateResult{Message: "Complaint status updated", ComplaintID: u.ComplaintID, Status: u.Status}, nil
}

// memTranscripts records saved transcripts.
type memTranscripts struct {
	mu    sync.Mutex
	saved map[string][2][]string
}

func (m *memTranscripts) SaveTranscript(_ context.Context, sid string, user, assistant []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][2][]string)
	}
	m.saved[sid] = [2][]string{user, assistant}
	return nil
}

func (m *memTranscripts) get(sid string) ([2][]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.saved[sid]
	return v, ok
}

const testThreshold = 3200

type harness struct {
	phone       *fakeConn
	agent       *fakeConn
	session     *Session
	buffers     *conversation.Registry
	backend     *memBackend
	transcripts *memTranscripts
	done        chan error
}

func startHarness(t *testing.T) *harness {
	t.Helper()
	return startHarnessWith(t, conversation.NewRegistry())
}

// startHarnessWith runs a session against a shared buffer registry.
func startHarnessWith(t *testing.T, buffers *conversation.Registry) *harness {
	t.Helper()
	h := &harness{
		phone:       newFakeConn(),
		agent:       newFakeConn(),
		buffers:     buffers,
		backend:     &memBackend{},
		transcripts: &memTranscripts{},
		done:        make(chan error, 1),
	}
	h.session = NewSession("test-conn", h.phone, h.agent, Deps{
		Tools:       tools.NewDispatcher(h.backend),
		Buffers:     h.buffers,
		Transcripts: h.transcripts,
	}, Options{
		Threshold:      testThreshold,
		QueueSize:      16,
		ResponsePacing: time.Millisecond,
		FallbackPacing: time.Millisecond,
	})
	go func() { h.done <- h.session.Run(context.Background()) }()
	return h
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return nil
	}
}
