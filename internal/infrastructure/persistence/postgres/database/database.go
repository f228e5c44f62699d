// internal/infrastructure/persistence/postgres/database/database.go
package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"trading-journal-bot/internal/infrastructure/config"
	"trading-journal-bot/pkg/logger"
)

// Connect открывает пул соединений с PostgreSQL и готовит схему
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.GetPostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("подключение к postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.Database.MaxConnIdleTime)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("✅ PostgreSQL подключен: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	return db, nil
}

// ensureSchema создает таблицы бота, если их ещё нет
func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	identity   TEXT PRIMARY KEY,
	document   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS submissions (
	id         BIGSERIAL PRIMARY KEY,
	key        TEXT NOT NULL UNIQUE,
	identity   TEXT NOT NULL,
	page_id    TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	fields     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_identity ON submissions (identity, created_at DESC);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("подготовка схемы: %w", err)
	}
	return nil
}
