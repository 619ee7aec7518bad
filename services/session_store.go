package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/restaurant-ordering/ordering"
)

// SessionStore keeps one ordering session per user between requests. Lock
// serializes a user's load, mutate and save cycle; callers must run the
// returned unlock func.
type SessionStore interface {
	Load(ctx context.Context, userID uint) (*ordering.Session, error)
	Save(ctx context.Context, s *ordering.Session) error
	Delete(ctx context.Context, userID uint) error
	Lock(ctx context.Context, userID uint) (unlock func(), err error)
}

var (
	_ SessionStore = (*MemorySessionStore)(nil)
	_ SessionStore = (*RedisSessionStore)(nil)
)

// MemorySessionStore is the single-process store used when no redis is configured.
// Sessions are stored serialized so callers never share a pointer.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[uint][]byte
	locks    map[uint]chan struct{}
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[uint][]byte),
		locks:    make(map[uint]chan struct{}),
	}
}

// Lock waits for the user's slot or for ctx to end.
func (m *MemorySessionStore) Lock(ctx context.Context, userID uint) (func(), error) {
	m.mu.Lock()
	slot, ok := m.locks[userID]
	if !ok {
		slot = make(chan struct{}, 1)
		m.locks[userID] = slot
	}
	m.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrSessionBusy, ctx.Err())
	}
}

func (m *MemorySessionStore) Load(_ context.Context, userID uint) (*ordering.Session, error) {
	m.mu.Lock()
	raw, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	var s ordering.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemorySessionStore) Save(_ context.Context, s *ordering.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.UserID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, userID uint) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

const (
	// KeyOrderSession holds a user's ordering session: session:order:{user_id}.
	KeyOrderSession = "session:order:%d"
	// KeySessionLock is the SET NX guard around a session update: session:lock:{user_id}.
	KeySessionLock = "session:lock:%d"
)

// unlockScript deletes the lock only while it still carries our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisSessionStore shares sessions between API replicas.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration

	// LockTTL bounds how long a crashed holder blocks the user; LockWait is how
	// long Lock retries before giving up with ErrSessionBusy.
	LockTTL  time.Duration
	LockWait time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl, LockTTL: 15 * time.Second, LockWait: 5 * time.Second}
}

func (r *RedisSessionStore) Lock(ctx context.Context, userID uint) (func(), error) {
	key := fmt.Sprintf(KeySessionLock, userID)
	token := uuid.NewString()
	deadline := time.Now().Add(r.LockWait)

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, r.LockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// the request context may already be gone
				_ = unlockScript.Run(context.Background(), r.rdb, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrSessionBusy
		}
		select {
		case <-time.After(25 * time.Millisecond):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrSessionBusy, ctx.Err())
		}
	}
}

// NewRedisClient dials addr and checks it answers.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *RedisSessionStore) Load(ctx context.Context, userID uint) (*ordering.Session, error) {
	raw, err := r.rdb.Get(ctx, fmt.Sprintf(KeyOrderSession, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s ordering.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *ordering.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, fmt.Sprintf(KeyOrderSession, s.UserID), raw, r.ttl).Err()
}

func (r *RedisSessionStore) Delete(ctx context.Context, userID uint) error {
	return r.rdb.Del(ctx, fmt.Sprintf(KeyOrderSession, userID)).Err()
}
