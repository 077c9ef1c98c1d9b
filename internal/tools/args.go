package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/neboloop/callbridge/internal/db"
)

// RaiseArgs are the arguments of raise_complaint.
type RaiseArgs struct {
	ServiceNo       Text `json:"service_no"`
	Name            Text `json:"name"`
	AreaDescription Text `json:"area_description"`
	Landmark        Text `json:"landmark"`
	ProblemDetails  Text `json:"problem_details"`
}

func (a RaiseArgs) complaint() db.NewComplaint {
	return db.NewComplaint{
		ServiceNo:       string(a.ServiceNo),
		Name:            string(a.Name),
		AreaDescription: string(a.AreaDescription),
		Landmark:        string(a.Landmark),
		ProblemDetails:  string(a.ProblemDetails),
	}
}

// LookupArgs are the arguments of lookup_complaint.
type LookupArgs struct {
	ComplaintNo Number `json:"complaint_no"`
	ComplaintID Text   `json:"complaint_id"`
}

func (a LookupArgs) query() db.LookupQuery {
	q := db.LookupQuery{ComplaintID: string(a.ComplaintID)}
	if a.ComplaintNo.Valid {
		no := a.ComplaintNo.Value
		q.ComplaintNo = &no
	}
	return q
}

// UpdateArgs are the arguments of update_complaint_status.
type UpdateArgs struct {
	ComplaintID    Text `json:"complaint_id"`
	Status         Text `json:"status"`
	EstimationTime Text `json:"estimation_time"`
}

func (a UpdateArgs) update() db.StatusUpdate {
	return db.StatusUpdate{
		ComplaintID:    string(a.ComplaintID),
		Status:         string(a.Status),
		EstimationTime: string(a.EstimationTime),
	}
}

// decodeArgs unmarshals a call's argument object. Empty input decodes as {}.
func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] != '{' {
		return fmt.Errorf("arguments must be a JSON object")
	}
	return json.Unmarshal(raw, v)
}

// Text is a string argument that also accepts a bare JSON number,
// since agents sometimes send service numbers unquoted.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string, got %s", b)
	}
	*t = Text(n.String())
	return nil
}

// Number is an optional integer argument that also accepts a numeric string.
// null and "" leave it unset.
type Number struct {
	Value int64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
		if len(b) == 0 {
			*n = Number{}
			return nil
		}
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("complaint_no must be an integer, got %s", b)
	}
	*n = Number{Value: v, Valid: true}
	return nil
}
