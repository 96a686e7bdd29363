package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"crmcore/internal/domain"
	"crmcore/pkg/platform/sentinel"
)

// Action is the mutation category captured by an audit record.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

var actions = map[Action]bool{
	ActionCreate: true,
	ActionUpdate: true,
	ActionDelete: true,
	ActionView:   true,
}

// ValidateAction returns ErrInvalidAction when a is outside the closed set.
func ValidateAction(a Action) error {
	if !actions[a] {
		return fmt.Errorf("%w: %q", sentinel.ErrInvalidAction, string(a))
	}
	return nil
}

// Record is an immutable audit log entry.
//
// Invariants:
// - Records are never updated. Deletion happens only through the retention
//   manager once a record passes the horizon.
// - OldState/NewState are stored post-redaction; no plaintext sensitive field
//   ever reaches the store.
type Record struct {
	ID      uuid.UUID         `json:"id" db:"id"`
	ActorID uuid.UUID         `json:"actor_id" db:"actor_id"`
	Entity  domain.EntityRef  `json:"entity"`
	Action  Action            `json:"action" db:"action"`

	OldState map[string]any `json:"old_state,omitempty" db:"old_state"`
	NewState map[string]any `json:"new_state,omitempty" db:"new_state"`

	// IP and UserAgent are best-effort request enrichment; empty when the
	// mutation did not originate from an HTTP request.
	IP        string `json:"ip,omitempty" db:"ip"`
	UserAgent string `json:"user_agent,omitempty" db:"user_agent"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Entry is what a domain collaborator hands the Recorder after a successful
// write. The Recorder owns validation, redaction and persistence.
type Entry struct {
	ActorID  uuid.UUID
	Kind     domain.EntityKind
	EntityID string
	Action   Action
	OldState map[string]any
	NewState map[string]any

	// Request carries optional HTTP request enrichment.
	Request RequestInfo
}
