// internal/infrastructure/persistence/in_memory_storage/store.go
package in_memory_storage

import (
	"context"
	"encoding/json"
	"sync"

	"trading-journal-bot/internal/core/domain/sessions"
)

// SessionStore - хранилище сессий в памяти процесса. Используется в
// тестах и в режиме разработки; содержимое не переживает рестарт.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string][]byte // identity -> JSON сессии
}

// NewSessionStore создает пустое хранилище
func NewSessionStore() *SessionStore {
	return &SessionStore{data: make(map[string][]byte)}
}

// Get возвращает сессию или nil, если её нет
func (s *SessionStore) Get(ctx context.Context, identity string) (*sessions.Session, error) {
	s.mu.RLock()
	raw, ok := s.data[identity]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var session sessions.Session
	if err := json.Unmarshal(raw, &session); err != nil {
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
	s.mu.Lock()
	s.data[session.Identity] = raw
	s.mu.Unlock()
	return nil
}

// Delete удаляет сессию
func (s *SessionStore) Delete(ctx context.Context, identity string) error {
	s.mu.Lock()
	delete(s.data, identity)
	s.mu.Unlock()
	return nil
}

// List возвращает идентификаторы известных сессий
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identities := make([]string, 0, len(s.data))
	for identity := range s.data {
		identities = append(identities, identity)
	}
	return identities, nil
}
