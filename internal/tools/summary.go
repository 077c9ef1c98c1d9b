package tools

import (
	"fmt"

	"github.com/neboloop/callbridge/internal/db"
)

// The agent expects short text, not structured payloads.

func summarizeRaise(r *db.RaiseResult) string {
	id := "N/A"
	if r.ComplaintID != "" {
		id = truncate(r.ComplaintID, 8) + "..."
	}
	return fmt.Sprintf("Complaint registered successfully. Number: %d, ID: %s", r.ComplaintNo, id)
}

func summarizeLookup(c *db.Complaint) string {
	status := c.Status
	if status == "" {
		status = "unknown"
	}
	created := "N/A"
	if c.CreatedTime != "" {
		created = truncate(c.CreatedTime, 10)
	}
	return fmt.Sprintf("Found complaint %d with status: %s. Created: %s", c.ComplaintNo, status, created)
}

func summarizeMessage(msg string) string {
	if msg == "" {
		return "Function completed successfully"
	}
	return msg
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
