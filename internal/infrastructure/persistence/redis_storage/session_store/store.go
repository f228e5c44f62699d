// internal/infrastructure/persistence/redis_storage/session_store/store.go
package session_store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"trading-journal-bot/internal/core/domain/sessions"
	"trading-journal-bot/internal/infrastructure/config"
)

const keyPrefix = "journal:session:"

// SessionStore - хранилище сессий в Redis. Сессия хранится одним
// JSON-значением без TTL: токен и история должны жить бессрочно.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore создает хранилище поверх Redis
func NewSessionStore(cfg *config.Config) *SessionStore {
	return &SessionStore{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}),
	}
}

// Ping проверяет доступность Redis
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get возвращает сессию или nil, если её нет
func (s *SessionStore) Get(ctx context.Context, identity string) (*sessions.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+identity).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var session sessions.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Put сохраняет сессию целиком
func (s *SessionStore) Put(ctx context.Context, session *sessions.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+session.Identity, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete удаляет сессию
func (s *SessionStore) Delete(ctx context.Context, identity string) error {
	return s.client.Del(ctx, keyPrefix+identity).Err()
}

// List возвращает идентификаторы известных сессий (SCAN по префиксу)
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	var identities []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		identities = append(identities, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return identities, nil
}

// Close закрывает подключение к Redis
func (s *SessionStore) Close() error {
	return s.client.Close()
}
