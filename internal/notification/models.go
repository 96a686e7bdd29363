package notification

import (
	"time"

	"github.com/google/uuid"

	"crmcore/internal/domain"
)

// Severity classifies a notification for rendering.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Valid reports whether s is in the closed severity set.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeveritySuccess, SeverityError:
		return true
	}
	return false
}

// Notification is one message delivered to one user.
//
// Invariants:
// - Title is rendered once at dispatch time and never re-rendered; it records
//   what the user was told, not a live view of the template.
// - ReadAt is set exactly when IsRead flips to true and cleared when it flips
//   back: ReadAt presence <=> IsRead.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	TriggeredBy *uuid.UUID       `json:"triggered_by,omitempty" db:"triggered_by"`
	TemplateKey string           `json:"template_key" db:"template_key"`
	Entity      domain.EntityRef `json:"entity,omitempty"`
	Severity    Severity         `json:"severity" db:"severity"`
	Title       string           `json:"title" db:"title"`
	IsRead      bool             `json:"is_read" db:"is_read"`
	ReadAt      *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
