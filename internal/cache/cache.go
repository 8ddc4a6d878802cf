// Package cache is the read-through cache used by the catalog and workout services.
// It is best-effort: a miss, an expired entry or a disabled store only costs latency.
package cache

import (
	"time"

	"github.com/google/uuid"
)

// Expiration controls how long an entry lives. A zero field is not applied.
// When both are set the entry expires at whichever deadline comes first.
type Expiration struct {
	Absolute time.Duration // Measured from Set
	Sliding  time.Duration // Renewed by every hit
}

// Store is the narrow cache interface the services depend on.
// Values are shared between readers and must be treated as immutable.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, exp Expiration)
	Remove(keys ...string)
}

// Get returns the value under key when it is present and of type T.
func Get[T any](s Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Cache keys.
const (
	KeyAllTemplatesBasic    = "AllTemplatesBasic"
	KeyAllTemplatesDetailed = "AllTemplatesDetailed"
)

func TemplateKey(id uuid.UUID) string            { return "Template_" + id.String() }
func TemplateWithDetailsKey(id uuid.UUID) string { return "TemplateWithDetails_" + id.String() }
func WorkoutsKey(userID uuid.UUID) string        { return "Workouts_" + userID.String() }

// TemplateKeys lists every key that can hold data of the given template.
func TemplateKeys(id uuid.UUID) []string {
	return []string{
		TemplateKey(id),
		TemplateWithDetailsKey(id),
		KeyAllTemplatesBasic,
		KeyAllTemplatesDetailed,
	}
}

// Noop is a Store that never holds anything. It is used when caching is disabled.
type Noop struct{}

func (Noop) Get(string) (any, bool)      { return nil, false }
func (Noop) Set(string, any, Expiration) {}
func (Noop) Remove(...string)            {}
