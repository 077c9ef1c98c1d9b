package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/callbridge/internal/db/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	migrations.QuietMode = true
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func TestRaiseComplaint(t *testing.T) {
	s := newTestStore(t)
	s.now = fixedClock(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), time.Second)
	ctx := context.Background()

	res, err := s.RaiseComplaint(ctx, NewComplaint{
		ServiceNo:      "SN-100",
		Name:           "Ravi",
		Landmark:       "near the temple",
		ProblemDetails: "power outage on the street",
	})
	require.NoError(t, err)
	assert.Equal(t, "Complaint registered successfully", res.Message)
	assert.Equal(t, StatusPatrolling, res.Status)
	assert.Len(t, res.ComplaintID, 36)
	assert.Equal(t, int64(1), res.ComplaintNo)
	assert.Equal(t, "2025-03-14T09:30:00.000000Z", res.CreatedTime)

	second, err := s.RaiseComplaint(ctx, NewComplaint{Name: "Anu", ProblemDetails: "sparking pole"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ComplaintNo)

	got, err := s.LookupComplaint(ctx, LookupQuery{ComplaintNo: &res.ComplaintNo})
	require.NoError(t, err)
	assert.Equal(t, res.ComplaintID, got.ID)
	assert.Equal(t, "SN-100", got.ServiceNo)
	assert.Equal(t, "", got.AreaDescription)
	assert.Equal(t, "near the temple", got.Landmark)
}

func TestRaiseComplaintRequiresFields(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RaiseComplaint(context.Background(), NewComplaint{Name: "Ravi", ProblemDetails: "  "})
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = s.RaiseComplaint(context.Background(), NewComplaint{ProblemDetails: "no light"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestLookupByIDPrefixPrefersNewest(t *testing.T) {
	s := newTestStore(t)
	s.now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour)
	ids := []string{
		"abc12300-0000-4000-8000-000000000000",
		"abc98700-0000-4000-8000-000000000000",
		"zzz00000-0000-4000-8000-000000000000",
	}
	i := 0
	s.newID = func() string { id := ids[i]; i++; return id }
	ctx := context.Background()

	for range ids {
		_, err := s.RaiseComplaint(ctx, NewComplaint{Name: "n", ProblemDetails: "p"})
		require.NoError(t, err)
	}

	got, err := s.LookupComplaint(ctx, LookupQuery{ComplaintID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, ids[1], got.ID)

	got, err = s.LookupComplaint(ctx, LookupQuery{ComplaintID: ids[0]})
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID)

	// a complaint number wins over an id
	no := int64(3)
	got, err = s.LookupComplaint(ctx, LookupQuery{ComplaintNo: &no, ComplaintID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, ids[2], got.ID)
}

func TestLookupErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LookupComplaint(ctx, LookupQuery{})
	assert.ErrorIs(t, err, ErrMissingLookupKey)

	_, err = s.LookupComplaint(ctx, LookupQuery{ComplaintID: "feed"})
	assert.ErrorIs(t, err, ErrComplaintNotFound)

	// LIKE wildcards in the prefix are literal
	_, err = s.RaiseComplaint(ctx, NewComplaint{Name: "n", ProblemDetails: "p"})
	require.NoError(t, err)
	_, err = s.LookupComplaint(ctx, LookupQuery{ComplaintID: "%"})
	assert.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestUpdateComplaintStatus(t *testing.T) {
	s := newTestStore(t)
	s.now = fixedClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), 90*time.Minute)
	ctx := context.Background()

	raised, err := s.RaiseComplaint(ctx, NewComplaint{Name: "Ravi", ProblemDetails: "transformer noise"})
	require.NoError(t, err)

	res, err := s.UpdateComplaintStatus(ctx, StatusUpdate{ComplaintID: raised.ComplaintID, Status: "in progress", EstimationTime: "2 hours"})
	require.NoError(t, err)
	assert.Equal(t, "Complaint status updated", res.Message)

	got, err := s.LookupComplaint(ctx, LookupQuery{ComplaintID: raised.ComplaintID})
	require.NoError(t, err)
	assert.Equal(t, "in progress", got.Status)
	assert.Equal(t, "2 hours", got.EstimationTime)
	assert.Empty(t, got.ResolvedTime)

	_, err = s.UpdateComplaintStatus(ctx, StatusUpdate{ComplaintID: raised.ComplaintID, Status: StatusFaultRectified})
	require.NoError(t, err)

	got, err = s.LookupComplaint(ctx, LookupQuery{ComplaintID: raised.ComplaintID})
	require.NoError(t, err)
	assert.Equal(t, StatusFaultRectified, got.Status)
	assert.Equal(t, "2025-06-01T09:30:00.000000Z", got.ResolvedTime)
	assert.Equal(t, "1h30m0s", got.ResolutionDuration)
}

func TestUpdateComplaintStatusErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpdateComplaintStatus(ctx, StatusUpdate{ComplaintID: "x"})
	assert.ErrorIs(t, err, ErrMissingStatusFields)

	_, err = s.UpdateComplaintStatus(ctx, StatusUpdate{ComplaintID: "missing", Status: "closed"})
	assert.ErrorIs(t, err, ErrComplaintNotFound)
}

// recordingConn captures statements instead of running them.
type recordingConn struct {
	DBTX
	queries []string
}

func (c *recordingConn) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	c.queries = append(c.queries, query)
	return nil, nil
}

func TestPostgresPlaceholders(t *testing.T) {
	ctx := context.Background()

	conn := &recordingConn{}
	pg := New((&Store{dialect: DialectPostgres}).bind(conn))
	require.NoError(t, pg.SetComplaintStatus(ctx, SetComplaintStatusParams{ID: "x", Status: "closed"}))
	require.Len(t, conn.queries, 1)
	assert.Contains(t, conn.queries[0], "SET status = $1, estimation_time = $2, resolved_time = $3, resolution_duration = $4")
	assert.Contains(t, conn.queries[0], "WHERE id = $5")
	assert.NotContains(t, conn.queries[0], "?")

	conn = &recordingConn{}
	lite := New((&Store{dialect: DialectSQLite}).bind(conn))
	require.NoError(t, lite.CreateErrorLog(ctx, CreateErrorLogParams{Level: "error"}))
	require.Len(t, conn.queries, 1)
	assert.Contains(t, conn.queries[0], "VALUES (?, ?, ?, ?, ?, ?)")
}

func TestQueryRef(t *testing.T) {
	q := QueryRef(" 42 ")
	require.NotNil(t, q.ComplaintNo)
	assert.Equal(t, int64(42), *q.ComplaintNo)
	assert.Empty(t, q.ComplaintID)

	q = QueryRef("5a1e0c3d")
	assert.Nil(t, q.ComplaintNo)
	assert.Equal(t, "5a1e0c3d", q.ComplaintID)
}
