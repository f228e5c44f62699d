// internal/infrastructure/persistence/factory/factory.go
package factory

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"trading-journal-bot/internal/core/domain/sessions"
	"trading-journal-bot/internal/infrastructure/config"
	"trading-journal-bot/internal/infrastructure/persistence/in_memory_storage"
	pg_sessions "trading-journal-bot/internal/infrastructure/persistence/postgres/repository/session_store"
	redis_sessions "trading-journal-bot/internal/infrastructure/persistence/redis_storage/session_store"
	"trading-journal-bot/pkg/logger"
)

// NewSessionStore собирает хранилище сессий по конфигурации.
// db нужен только для backend=postgres.
func NewSessionStore(cfg *config.Config, db *sqlx.DB) (sessions.Store, error) {
	switch cfg.Journal.StoreBackend {
	case "redis":
		store := redis_sessions.NewSessionStore(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis недоступен: %w", err)
		}
		logger.Info("Хранилище сессий: Redis (%s)", cfg.GetRedisAddr())
		return store, nil

	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("backend=postgres требует подключения к БД")
		}
		logger.Info("Хранилище сессий: PostgreSQL")
		return pg_sessions.NewSessionStore(db), nil

	default:
		logger.Warn("Хранилище сессий: память процесса (сессии не переживут рестарт)")
		return in_memory_storage.NewSessionStore(), nil
	}
}
