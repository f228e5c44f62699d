// internal/infrastructure/persistence/postgres/repository/session_store/repository.go
package session_store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"trading-journal-bot/internal/core/domain/sessions"
)

// SessionStore - хранилище сессий в PostgreSQL: сессия лежит одним
// JSONB-документом, identity - первичный ключ
type SessionStore struct {
	db *sqlx.DB
}

// NewSessionStore создает хранилище поверх пула соединений
func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Get возвращает сессию или nil, если её нет
func (s *SessionStore) Get(ctx context.Context, identity string) (*sessions.Session, error) {
	var raw []byte
	query := `SELECT document FROM sessions WHERE identity = $1`
	if err := s.db.GetContext(ctx, &raw, query, identity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("чтение сессии: %w", err)
	}

	var session sessions.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Put сохраняет сессию целиком (upsert по identity)
func (s *SessionStore) Put(ctx context.Context, session *sessions.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (identity, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (identity) DO UPDATE SET document = $2, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, query, session.Identity, raw); err != nil {
		return fmt.Errorf("сохранение сессии: %w", err)
	}
	return nil
}

// Delete удаляет сессию
func (s *SessionStore) Delete(ctx context.Context, identity string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE identity = $1`, identity)
	return err
}

// List возвращает идентификаторы известных сессий
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	var identities []string
	if err := s.db.SelectContext(ctx, &identities, `SELECT identity FROM sessions`); err != nil {
		return nil, fmt.Errorf("список сессий: %w", err)
	}
	return identities, nil
}
