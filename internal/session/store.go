// Package session keeps per-visitor state server-side. The client only
// holds a signed cookie naming the session.
package session

import (
	"context"       // Context for store calls
	"encoding/json" // Session payload encoding
	"errors"        // Error values
	"sync"          // Guards the memory store
	"time"          // Expiry

	"blog_system/internal/utils" // Redis JSON cache

	"github.com/redis/go-redis/v9" // Redis client
)

// ErrNotFound is returned by a Store for unknown or expired sessions
var ErrNotFound = errors.New("session not found")

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Category string `json:"category"` // success, danger, info
	Message  string `json:"message"`
}

// Data is what a session stores
type Data struct {
	UserID    uint    `json:"user_id,omitempty"`
	Flashes   []Flash `json:"flashes,omitempty"`
	CSRFToken string  `json:"csrf_token,omitempty"`
}

// Store persists session data by id
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis under "session:<id>"
type RedisStore struct {
	cache *utils.JSONCache
}

// NewRedisStore creates a RedisStore
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{cache: utils.NewJSONCache(rdb, "session:")}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	var d Data
	if err := s.cache.Get(ctx, id, &d); err != nil {
		if errors.Is(err, utils.ErrCacheMiss) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data, ttl time.Duration) error {
	return s.cache.Set(ctx, id, data, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, id)
}

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// memorySweepInterval bounds how often Save scans for expired entries
const memorySweepInterval = time.Minute

// MemoryStore keeps sessions in process memory. Expired entries are
// dropped when read and swept from Save at most once per interval.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time // Zero until the first Save
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, now: time.Now}
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops every expired entry
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	s.sweepLocked(s.now())
	s.mu.Unlock()
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
		}
	}
	s.nextSweep = now.Add(memorySweepInterval)
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok && !s.now().Before(e.expires) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var d Data
	if err := json.Unmarshal(e.payload, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data *Data, ttl time.Duration) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	now := s.now()
	if !now.Before(s.nextSweep) {
		s.sweepLocked(now) // Visitors without a cookie leave entries nobody reads again
	}
	s.entries[id] = memoryEntry{payload: b, expires: now.Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
