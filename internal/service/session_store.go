package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"weather-app/internal/domain"
)

// SessionStore guarda sesiones del lado del servidor indexadas por token.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, bool, error)
	Delete(ctx context.Context, token string) error
}

type memorySessionStore struct {
	mu    sync.Mutex
	items map[string]domain.Session
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		items: make(map[string]domain.Session),
	}
}

func (s *memorySessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("empty session token")
	}
	s.items[session.Token] = session
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, token string) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[token]
	if !ok {
		return domain.Session{}, false, nil
	}
	return session, true, nil
}

func (s *memorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

type redisSessionStore struct {
	client redisKVClient
	prefix string
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// NewRedisSessionStore guarda sesiones en Redis con TTL nativo, de modo que
// las sesiones vencidas desaparecen sin barrido explicito.
func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "sess:",
	}
}

func (s *redisSessionStore) Save(ctx context.Context, session domain.Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("empty session token")
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+session.Token, payload, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (domain.Session, bool, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Session{}, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	payload, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.Session{}, false, err
	}
	return session, true, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+token).Err()
}
