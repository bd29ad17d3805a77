package attachments

import (
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	report_store_add            = "store.add"
	report_store_register_epoch = "store.register-epoch"
	report_store_size           = "store.size"
)

type StoreOptions struct {
	// MaxEntries bounds the in-memory cache, 0 means unbounded.
	MaxEntries int
	// TTL expires cached documents, 0 means they live until evicted by an epoch.
	TTL time.Duration
	// Dir enables the disk mirror when non-empty.
	Dir string
}

// Store is the process-wide attachment cache. Only one search epoch is live at
// a time: registering a new one evicts the documents of the previous one.
type Store struct {
	cache  *expirable.LRU[string, Attachment]
	mirror *Mirror
	time   chrono.TimeAPI
	tel    telemetry.API

	// mu makes epoch registration (eviction + swap) a single critical section.
	mu    sync.Mutex
	epoch Epoch
}

func NewStore(opts StoreOptions, time chrono.TimeAPI, tel telemetry.API) (*Store, error) {
	assert.NotNil(time)
	assert.NotNil(tel)

	s := &Store{
		cache: expirable.NewLRU[string, Attachment](opts.MaxEntries, nil, opts.TTL),
		time:  time,
		tel:   telemetry.NewScopedAPI("attachments", tel),
	}
	if opts.Dir != "" {
		mirror, err := NewMirror(opts.Dir)
		if err != nil {
			return nil, err
		}
		err = mirror.Reset()
		if err != nil {
			return nil, fmt.Errorf("reset mirror: %w", err)
		}
		s.mirror = &mirror
	}
	return s, nil
}

// NewKey derives a fresh key for ref using the store's clock.
func (s *Store) NewKey(ref string) string {
	return Key(ref, s.time.Now())
}

// Add validates content and caches it under key.
func (s *Store) Add(key, filename string, content []byte) (Attachment, error) {
	pdf, err := Validate(content)
	if err != nil {
		return Attachment{}, err
	}
	att := Attachment{
		Key:      key,
		Filename: filename,
		Content:  pdf,
		Created:  s.time.Now(),
	}
	s.cache.Add(key, att)
	if s.mirror != nil {
		err = s.mirror.Write(att)
		if err != nil {
			s.tel.ReportWarning(report_store_add, "mirror write", key, err)
		}
	}
	s.tel.ReportCount(report_store_size, int64(s.cache.Len()))
	return att, nil
}

// Put caches content under a fresh key derived from ref.
func (s *Store) Put(ref, filename string, content []byte) (Attachment, error) {
	return s.Add(s.NewKey(ref), filename, content)
}

// Get looks in memory first and then in the disk mirror. source is
// "memory-cache" or "disk".
func (s *Store) Get(key string) (att Attachment, source string, err error) {
	att, ok := s.cache.Get(key)
	if ok {
		return att, "memory-cache", nil
	}
	if s.mirror == nil {
		return Attachment{}, "", ErrNotFound
	}
	att, err = s.mirror.Read(key)
	if errors.Is(err, ErrNotFound) {
		return Attachment{}, "", ErrNotFound
	}
	if err != nil {
		return Attachment{}, "", fmt.Errorf("read mirror: %w", err)
	}
	return att, "disk", nil
}

func (s *Store) evict(key string) {
	s.cache.Remove(key)
	if s.mirror == nil {
		return
	}
	err := s.mirror.Remove(key)
	if err != nil {
		s.tel.ReportWarning(report_store_register_epoch, "mirror remove", key, err)
	}
}

// RegisterEpoch makes keys the live attachment set. Keys of the previous
// epoch that are not part of the new one are removed from memory and disk.
func (s *Store) RegisterEpoch(keys []string) Epoch {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		next[k] = struct{}{}
	}
	for _, k := range s.epoch.Keys {
		if _, keep := next[k]; !keep {
			s.evict(k)
		}
	}

	s.epoch = Epoch{
		ID:      uuid.NewString(),
		Keys:    append([]string(nil), keys...),
		Created: s.time.Now(),
	}
	s.tel.ReportDebug("registered epoch", s.epoch.ID, len(keys))
	s.tel.ReportCount(report_store_size, int64(s.cache.Len()))
	return s.epoch
}

func (s *Store) Epoch() Epoch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Status summarizes the cache for debugging.
type Status struct {
	Count      int      `json:"count"`
	Keys       []string `json:"pdf_ids"`
	TotalBytes int      `json:"total_size_bytes"`
	DiskFiles  []string `json:"disk_files"`
	Epoch      Epoch    `json:"current_session"`
}

func (s *Store) Status() Status {
	status := Status{
		Keys:      []string{},
		DiskFiles: []string{},
		Epoch:     s.Epoch(),
	}
	for _, att := range s.cache.Values() {
		status.Keys = append(status.Keys, att.Key)
		status.TotalBytes += len(att.Content)
	}
	status.Count = len(status.Keys)
	if s.mirror != nil {
		files, err := s.mirror.Files()
		if err != nil {
			s.tel.ReportWarning(report_store_register_epoch, "list mirror", err)
		} else {
			status.DiskFiles = files
		}
	}
	return status
}
