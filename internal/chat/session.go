// Package chat implements the scripted triage dialogue patients can use
// before booking. The flow is a small finite-state machine keyed by session
// id; the medical-advice steps delegate to an Advisor so the LLM integration
// stays swappable.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stage identifies where a session is in the triage flow.
type Stage string

const (
	// StageIllnessCheck asks whether the patient feels unwell.
	StageIllnessCheck Stage = "illness_check"
	// StageAskSymptoms collects a free-text symptom description.
	StageAskSymptoms Stage = "ask_symptoms"
	// StageSuggestCondition has offered a likely condition and waits to see
	// whether the patient is satisfied.
	StageSuggestCondition Stage = "suggest_condition"
	// StageRecommendDoctor is terminal; only a greeting restarts the flow.
	StageRecommendDoctor Stage = "recommend_doctor"
)

// Session is the per-conversation state.
type Session struct {
	Stage    Stage  `json:"stage"`
	Symptoms string `json:"symptoms,omitempty"`
}

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("chat: session not found")

// SessionStore persists dialogue state between requests.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Put(ctx context.Context, sessionID string, session *Session) error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

// Get retrieves a session by id.
func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := sess
	return &copied, nil
}

// Put stores a session.
func (s *MemorySessionStore) Put(ctx context.Context, sessionID string, session *Session) error {
	s.mu.Lock()
	s.sessions[sessionID] = *session
	s.mu.Unlock()
	return nil
}

// RedisSessionStore keeps sessions in Redis with a TTL so abandoned chats
// expire on their own.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("chat: redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

var _ SessionStore = (*RedisSessionStore)(nil)

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

// Get retrieves a session by id.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chat: load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("chat: decode session: %w", err)
	}
	return &sess, nil
}

// Put stores a session and refreshes its TTL.
func (s *RedisSessionStore) Put(ctx context.Context, sessionID string, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("chat: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("chat: store session: %w", err)
	}
	return nil
}
