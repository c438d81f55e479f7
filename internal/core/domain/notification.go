package domain

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is one durable in-store alert for one recipient. Rows
// are written exactly once and never mutated here; the read/mark-read
// lifecycle belongs to the UI layer.
type Notification struct {
	ID          string
	RecipientID string // empty means a system-wide broadcast
	Severity    Severity
	Title       string
	Message     string
	Link        string
	Metadata    map[string]any
	CreatedAt   time.Time
}
