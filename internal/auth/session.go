package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionTTL is the absolute lifetime of an admin session, fixed at creation.
	SessionTTL = 5 * time.Hour

	// SessionCookie is the name of the cookie carrying the opaque session id.
	SessionCookie = "sessId"

	sessionKeyPrefix = "session:"
)

// Session holds the denormalized snapshot of the logged-in admin, plus the
// CSRF token required on state-changing form submissions.
type Session struct {
	UserID       uint      `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	LastLoggedIn time.Time `json:"last_logged_in"`
	CSRFToken    string    `json:"csrf_token"`
}

// SessionStore maintains server-side session state keyed by an opaque id.
// Implementations must be safe for concurrent use; the backing store is
// swappable without changing the interface (in-memory for single-process
// development, Redis for multi-process production).
type SessionStore interface {
	Create(ctx context.Context, sess Session) (string, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Destroy(ctx context.Context, sessionID string) error
}

func newSessionID() string {
	return uuid.New().String()
}

// --- in-memory store ---

type memEntry struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStore is a process-local SessionStore for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore returns a MemoryStore with a background janitor that evicts
// expired sessions.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memEntry),
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Close stops the janitor goroutine.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *MemoryStore) Create(_ context.Context, sess Session) (string, error) {
	id := newSessionID()
	s.mu.Lock()
	s.entries[id] = memEntry{sess: sess, expiresAt: time.Now().Add(SessionTTL)}
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	sess := e.sess
	return &sess, nil
}

func (s *MemoryStore) Destroy(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// --- redis store ---

// RedisStore is a SessionStore shared across processes.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a SessionStore backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Create(ctx context.Context, sess Session) (string, error) {
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	id := newSessionID()
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, raw, SessionTTL).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
