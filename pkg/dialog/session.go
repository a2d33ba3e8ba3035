package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL is how long an idle dialog is kept
const DefaultSessionTTL = 30 * time.Minute

// MemorySessions keeps dialog states in process memory, expired entries are dropped on access
type MemorySessions struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[int64]memSession
}

type memSession struct {
	state   State
	expires time.Time
}

// NewMemorySessions makes in-memory session store, ttl 0 means DefaultSessionTTL
func NewMemorySessions(ttl time.Duration) *MemorySessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessions{ttl: ttl, now: time.Now, sessions: map[int64]memSession{}}
}

// Load returns the stored state, false if missing or expired
func (m *MemorySessions) Load(_ context.Context, userID int64) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return State{}, false, nil
	}
	if m.now().After(s.expires) {
		delete(m.sessions, userID)
		return State{}, false, nil
	}
	return s.state, true, nil
}

// Save stores the state and refreshes its ttl
func (m *MemorySessions) Save(_ context.Context, userID int64, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = memSession{state: state, expires: m.now().Add(m.ttl)}
	return nil
}

// Delete removes the state, missing state is not an error
func (m *MemorySessions) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// RedisSessions keeps dialog states in redis as JSON with expiration
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSessions connects to redis by url, like redis://localhost:6379/0, and checks the connection
func NewRedisSessions(ctx context.Context, redisURL string, ttl time.Duration) (*RedisSessions, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessions{client: client, ttl: ttl, prefix: "kleinwatch:dialog:"}, nil
}

// Load returns the stored state, false if missing or expired
func (r *RedisSessions) Load(ctx context.Context, userID int64) (State, bool, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("get session: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, false, fmt.Errorf("decode session: %w", err)
	}
	return s, true, nil
}

// Save stores the state and refreshes its ttl
func (r *RedisSessions) Save(ctx context.Context, userID int64, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Delete removes the state
func (r *RedisSessions) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close closes redis client
func (r *RedisSessions) Close() error {
	return r.client.Close()
}

func (r *RedisSessions) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}
