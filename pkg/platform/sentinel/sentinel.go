package sentinel

import "errors"

// Sentinel errors for infrastructure and validation facts. Stores return these
// (optionally wrapped) so services can translate them into HTTP or caller
// responses with errors.Is.
//
// - ErrNotFound: record does not exist in the store
// - ErrStorage: the underlying persistence layer failed; the original error is
//   attached alongside so the cause stays inspectable
// - ErrInvalidEntityKind / ErrInvalidAction: the caller referenced a kind or
//   action outside the closed sets
// - ErrUnknownTemplate: a notification template key has no catalog entry
var (
	ErrNotFound          = errors.New("not found")
	ErrStorage           = errors.New("storage failure")
	ErrInvalidEntityKind = errors.New("invalid entity kind")
	ErrInvalidAction     = errors.New("invalid action")
	ErrUnknownTemplate   = errors.New("unknown template")
)
