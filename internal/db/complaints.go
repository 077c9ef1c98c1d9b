package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Complaint statuses used by the store itself. Any other status string is accepted on update.
const (
	StatusPatrolling     = "patrolling"
	StatusFaultRectified = "fault rectified"
)

// fullIDLength is the length of a canonical UUID string.
const fullIDLength = 36

// Validation failures. Their text is relayed verbatim to the voice agent.
var (
	ErrMissingFields       = errors.New("Missing required fields: name and problem_details")
	ErrMissingLookupKey    = errors.New("Provide complaint_no or complaint_id")
	ErrMissingStatusFields = errors.New("Missing complaint_id or status")
	ErrComplaintNotFound   = errors.New("Complaint not found")
)

// Complaint is a stored complaint record.
type Complaint struct {
	ComplaintNo        int64  `json:"complaint_no"`
	ID                 string `json:"complaint_id"`
	ServiceNo          string `json:"service_no,omitempty"`
	Name               string `json:"name"`
	AreaDescription    string `json:"area_description,omitempty"`
	Landmark           string `json:"landmark,omitempty"`
	ProblemDetails     string `json:"problem_details"`
	Status             string `json:"status"`
	EstimationTime     string `json:"estimation_time,omitempty"`
	CreatedTime        string `json:"created_time"`
	ResolvedTime       string `json:"resolved_time,omitempty"`
	ResolutionDuration string `json:"resolution_duration,omitempty"`
}

// NewComplaint holds the caller-supplied fields of a complaint.
type NewComplaint struct {
	ServiceNo       string
	Name            string
	AreaDescription string
	Landmark        string
	ProblemDetails  string
}

// RaiseResult is returned after a complaint is registered.
type RaiseResult struct {
	Message     string `json:"message"`
	ComplaintID string `json:"complaint_id"`
	ComplaintNo int64  `json:"complaint_no"`
	Status      string `json:"status"`
	CreatedTime string `json:"created_time"`
}

// LookupQuery selects a complaint by number, or by id / id prefix when no number is given.
type LookupQuery struct {
	ComplaintNo *int64
	ComplaintID string
}

// QueryRef interprets an operator-supplied reference: an integer is a
// complaint number, anything else an id or id prefix.
func QueryRef(ref string) LookupQuery {
	ref = strings.TrimSpace(ref)
	if no, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return LookupQuery{ComplaintNo: &no}
	}
	return LookupQuery{ComplaintID: ref}
}

// StatusUpdate changes a complaint's status.
type StatusUpdate struct {
	ComplaintID    string
	Status         string
	EstimationTime string
}

// UpdateResult is returned after a status change.
type UpdateResult struct {
	Message     string `json:"message"`
	ComplaintID string `json:"complaint_id"`
	Status      string `json:"status"`
}

// RaiseComplaint registers a new complaint in the patrolling state.
func (s *Store) RaiseComplaint(ctx context.Context, in NewComplaint) (*RaiseResult, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.ProblemDetails) == "" {
		return nil, ErrMissingFields
	}

	id := s.newID()
	_, created := s.timestamp()

	no, err := s.InsertComplaint(ctx, InsertComplaintParams{
		ID:              id,
		ServiceNo:       nullString(in.ServiceNo),
		Name:            strings.TrimSpace(in.Name),
		AreaDescription: nullString(in.AreaDescription),
		Landmark:        nullString(in.Landmark),
		ProblemDetails:  strings.TrimSpace(in.ProblemDetails),
		Status:          StatusPatrolling,
		CreatedTime:     created,
	})
	if err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}

	return &RaiseResult{
		Message:     "Complaint registered successfully",
		ComplaintID: id,
		ComplaintNo: no,
		Status:      StatusPatrolling,
		CreatedTime: created,
	}, nil
}

// LookupComplaint finds one complaint. A number takes precedence over an id.
// A full-length id matches exactly; anything shorter is a prefix and the most
// recently created match wins.
func (s *Store) LookupComplaint(ctx context.Context, q LookupQuery) (*Complaint, error) {
	id := strings.TrimSpace(q.ComplaintID)

	var (
		row ComplaintRow
		err error
	)
	switch {
	case q.ComplaintNo != nil:
		row, err = s.GetComplaintByNo(ctx, *q.ComplaintNo)
	case len(id) == fullIDLength:
		row, err = s.GetComplaintByID(ctx, id)
	case id != "":
		row, err = s.GetLatestComplaintByIDPrefix(ctx, escapeLike(id)+"%")
	default:
		return nil, ErrMissingLookupKey
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrComplaintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup complaint: %w", err)
	}
	return complaintFromRow(row), nil
}

// UpdateComplaintStatus sets a new status and estimation time. Moving to
// "fault rectified" records the resolution time and duration; any other status clears them.
func (s *Store) UpdateComplaintStatus(ctx context.Context, u StatusUpdate) (*UpdateResult, error) {
	id := strings.TrimSpace(u.ComplaintID)
	status := strings.TrimSpace(u.Status)
	if id == "" || status == "" {
		return nil, ErrMissingStatusFields
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	qtx := s.withTx(tx)

	createdText, err := qtx.GetComplaintCreatedTime(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrComplaintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load complaint: %w", err)
	}

	var resolved, duration sql.NullString
	if status == StatusFaultRectified {
		now, nowText := s.timestamp()
		resolved = sql.NullString{String: nowText, Valid: true}
		if created, perr := time.Parse(TimeLayout, createdText); perr == nil {
			duration = sql.NullString{String: now.Sub(created).Round(time.Second).String(), Valid: true}
		}
	}

	err = qtx.SetComplaintStatus(ctx, SetComplaintStatusParams{
		Status:             status,
		EstimationTime:     nullString(u.EstimationTime),
		ResolvedTime:       resolved,
		ResolutionDuration: duration,
		ID:                 id,
	})
	if err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &UpdateResult{
		Message:     "Complaint status updated",
		ComplaintID: id,
		Status:      status,
	}, nil
}

func complaintFromRow(r ComplaintRow) *Complaint {
	return &Complaint{
		ComplaintNo:        r.ComplaintNo,
		ID:                 r.ID,
		ServiceNo:          r.ServiceNo.String,
		Name:               r.Name,
		AreaDescription:    r.AreaDescription.String,
		Landmark:           r.Landmark.String,
		ProblemDetails:     r.ProblemDetails,
		Status:             r.Status,
		EstimationTime:     r.EstimationTime.String,
		CreatedTime:        r.CreatedTime,
		ResolvedTime:       r.ResolvedTime.String,
		ResolutionDuration: r.ResolutionDuration.String,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
