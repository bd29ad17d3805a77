// Package sessions keeps the portal sessions of in-flight searches. An active
// session serves hierarchy lookups and exactly one verify. Once verified it is
// retired: it may still download attachments, but cannot search again.
package sessions

import (
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	report_registry_sweep  = "registry.sweep"
	report_registry_active = "registry.active"
)

// ErrNotFound is returned for keys that are unknown, consumed or expired.
var ErrNotFound = errors.New("session not found")

type Options struct {
	// ActiveTTL is how long an unverified session is kept, 0 keeps it forever.
	ActiveTTL time.Duration
	// RetiredTTL and RetiredMax bound the attachment-only sessions.
	RetiredTTL time.Duration
	RetiredMax int
}

func (o Options) withDefaults() Options {
	if o.RetiredTTL <= 0 {
		o.RetiredTTL = 30 * time.Minute
	}
	if o.RetiredMax <= 0 {
		o.RetiredMax = 256
	}
	return o
}

type entry[T any] struct {
	// mu is held for as long as a caller uses the value.
	mu       sync.Mutex
	value    T
	created  time.Time
	consumed bool
}

// Registry maps opaque keys to sessions. A session is never handed to two
// callers at once.
type Registry[T any] struct {
	opts Options
	time chrono.TimeAPI
	tel  telemetry.API

	mu      sync.Mutex
	active  map[string]*entry[T]
	retired *expirable.LRU[string, *entry[T]]
}

func NewRegistry[T any](opts Options, time chrono.TimeAPI, tel telemetry.API) *Registry[T] {
	assert.NotNil(time)
	assert.NotNil(tel)

	opts = opts.withDefaults()
	return &Registry[T]{
		opts:    opts,
		time:    time,
		tel:     telemetry.NewScopedAPI("sessions", tel),
		active:  map[string]*entry[T]{},
		retired: expirable.NewLRU[string, *entry[T]](opts.RetiredMax, nil, opts.RetiredTTL),
	}
}

// Register stores value as a new active session and returns its key.
func (r *Registry[T]) Register(value T) string {
	key := uuid.NewString()
	r.mu.Lock()
	r.active[key] = &entry[T]{value: value, created: r.time.Now()}
	count := len(r.active)
	r.mu.Unlock()

	r.tel.ReportCount(report_registry_active, int64(count))
	return key
}

func (r *Registry[T]) lookupActive(key string) (*entry[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.active[key]
	return e, ok
}

// With runs fn with exclusive use of the active session key. Callers using
// the same key are serialized.
func (r *Registry[T]) With(key string, fn func(T) error) error {
	e, ok := r.lookupActive(key)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.consumed {
		return ErrNotFound
	}
	return fn(e.value)
}

// Consume removes the active session key and hands it to the caller, it can
// only succeed once per key. It waits for any caller still using the session.
func (r *Registry[T]) Consume(key string) (T, error) {
	r.mu.Lock()
	e, ok := r.active[key]
	delete(r.active, key)
	count := len(r.active)
	r.mu.Unlock()

	var zero T
	if !ok {
		return zero, ErrNotFound
	}
	r.tel.ReportCount(report_registry_active, int64(count))

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.consumed {
		return zero, ErrNotFound
	}
	e.consumed = true
	return e.value, nil
}

// Retire keeps a consumed session under key for attachment downloads only.
func (r *Registry[T]) Retire(key string, value T) {
	r.retired.Add(key, &entry[T]{value: value, created: r.time.Now()})
}

// WithAttachable runs fn with exclusive use of the session key, whether it is
// retired or still active.
func (r *Registry[T]) WithAttachable(key string, fn func(T) error) error {
	if e, ok := r.retired.Get(key); ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return fn(e.value)
	}
	return r.With(key, fn)
}

// Counts returns the number of active and retired sessions.
func (r *Registry[T]) Counts() (active, retired int) {
	r.mu.Lock()
	active = len(r.active)
	r.mu.Unlock()
	return active, r.retired.Len()
}

// Sweep drops active sessions older than ActiveTTL. Sessions in use are left
// for the next sweep.
func (r *Registry[T]) Sweep() int {
	if r.opts.ActiveTTL <= 0 {
		return 0
	}
	cutoff := r.time.Now().Add(-r.opts.ActiveTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for key, e := range r.active {
		if !e.created.Before(cutoff) {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		e.consumed = true
		e.mu.Unlock()
		delete(r.active, key)
		dropped++
	}
	if dropped > 0 {
		r.tel.ReportDebug("swept stale sessions", dropped)
	}
	r.tel.ReportCount(report_registry_active, int64(len(r.active)))
	return dropped
}

// StartSweeper schedules Sweep on cron every minute.
func (r *Registry[T]) StartSweeper(cron chrono.CronAPI) error {
	err := cron.Cron("sessions.sweep", "@every 1m", func() {
		r.Sweep()
	})
	if err != nil {
		r.tel.ReportBroken(report_registry_sweep, err)
		return err
	}
	return nil
}
