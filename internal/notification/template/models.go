package template

import "time"

// Template is one entry in the notification message catalog. Keys are
// lowercase token-like identifiers; uniqueness is enforced by the store and
// lookups are case-insensitive because keys are forced lowercase on write.
type Template struct {
	Key         string    `json:"key" db:"key"`
	Text        string    `json:"text" db:"text"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
