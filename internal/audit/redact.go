package audit

// RedactionMarker replaces the value of every sensitive field before a state
// snapshot is persisted. Redaction is irreversible.
const RedactionMarker = "[REDACTED]"

// sensitiveFields is the fixed set of field names that must never be stored
// in plaintext. The source entities are flat, so matching top-level names is
// sufficient.
var sensitiveFields = map[string]bool{
	"password":    true,
	"card_number": true,
	"cvv":         true,
	"national_id": true,
	"ssn":         true,
	"tax_id":      true,
}

// Redact returns a copy of state with every sensitive field replaced by
// RedactionMarker. All other keys pass through unchanged. Pure: the input map
// is never mutated. A nil state stays nil.
func Redact(state map[string]any) map[string]any {
	if state == nil {
		return nil
	}
	out := make(map[string]any, len(state))
	for k, v := range state {
		if sensitiveFields[k] {
			out[k] = RedactionMarker
			continue
		}
		out[k] = v
	}
	return out
}
