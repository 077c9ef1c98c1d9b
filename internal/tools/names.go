package tools

// Name is one of the functions the voice agent may call.
type Name string

const (
	RaiseComplaint        Name = "raise_complaint"
	LookupComplaint       Name = "lookup_complaint"
	UpdateComplaintStatus Name = "update_complaint_status"
)

// Names lists every supported function.
var Names = []Name{RaiseComplaint, LookupComplaint, UpdateComplaintStatus}

// ParseName maps a wire name onto the closed set.
func ParseName(s string) (Name, bool) {
	switch n := Name(s); n {
	case RaiseComplaint, LookupComplaint, UpdateComplaintStatus:
		return n, true
	}
	return "", false
}

func (n Name) String() string { return string(n) }
