package template

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"crmcore/pkg/platform/sentinel"
)

// Store is the persistence contract for the template catalog.
type Store interface {
	// Upsert creates or overwrites the template stored under t.Key.
	Upsert(ctx context.Context, t *Template) error
	// Find returns sentinel.ErrNotFound when the key has no entry.
	Find(ctx context.Context, key string) (*Template, error)
}

// Registry is the keyed catalog of notification message templates. The
// catalog is controlled internally: a malformed template is a deployment
// defect, so rendering never fails at runtime.
type Registry struct {
	store Store
	clock func() time.Time
}

// NewRegistry constructs the template registry.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store, clock: time.Now}
}

// Upsert writes a template under its lowercase key. Re-applying with the same
// key overwrites text and description, which makes startup seeding idempotent.
func (r *Registry) Upsert(ctx context.Context, key, text, description string) error {
	key = NormalizeKey(key)
	if key == "" {
		return fmt.Errorf("%w: empty template key", sentinel.ErrUnknownTemplate)
	}
	now := r.clock().UTC()
	t := &Template{
		Key:         key,
		Text:        text,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.Upsert(ctx, t); err != nil {
		return fmt.Errorf("upsert template %q: %w: %w", key, sentinel.ErrStorage, err)
	}
	return nil
}

// Find resolves a key to its template. A missing key is an ErrUnknownTemplate:
// callers must never fabricate notification content.
func (r *Registry) Find(ctx context.Context, key string) (*Template, error) {
	t, err := r.store.Find(ctx, NormalizeKey(key))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", sentinel.ErrUnknownTemplate, key)
		}
		return nil, fmt.Errorf("find template %q: %w: %w", key, sentinel.ErrStorage, err)
	}
	return t, nil
}

// NormalizeKey forces the lowercase token form used for storage and lookup.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Render replaces every {{name}} marker with values[name]. A missing value
// degrades silently to the empty string; unresolved placeholders never leak
// into the rendered output.
func Render(text string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(marker string) string {
		name := placeholderPattern.FindStringSubmatch(marker)[1]
		return values[name]
	})
}
