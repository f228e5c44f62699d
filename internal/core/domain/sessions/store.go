// internal/core/domain/sessions/store.go
package sessions

import "context"

// Store - хранилище сессий по идентификатору пользователя.
// Реализации взаимозаменяемы (память, Redis, PostgreSQL). Дисциплина
// записи однописательная: обращения к одной сессии не перемежаются,
// за это отвечает движок мастера.
type Store interface {
	// Get возвращает сессию или nil, если её ещё нет
	Get(ctx context.Context, identity string) (*Session, error)
	// Put сохраняет сессию целиком
	Put(ctx context.Context, session *Session) error
	// Delete удаляет сессию
	Delete(ctx context.Context, identity string) error
	// List возвращает идентификаторы известных сессий
	List(ctx context.Context) ([]string, error)
}
