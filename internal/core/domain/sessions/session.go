// internal/core/domain/sessions/session.go
package sessions

import (
	"time"

	"trading-journal-bot/internal/core/domain/journal"
)

// Session - постоянное состояние одного пользователя. Создается лениво
// при первом обращении и никогда не удаляется: токен и ссылки на Notion
// переживают много циклов черновика.
type Session struct {
	Identity    string `json:"identity"`
	NotionToken string `json:"notion_token,omitempty"`
	RootPageID  string `json:"root_page_id,omitempty"`
	DatabaseID  string `json:"database_id,omitempty"`

	Cursor  journal.Step   `json:"cursor"`
	Editing bool           `json:"editing,omitempty"` // шаг открыт из режима правки
	Draft   *journal.Draft `json:"draft,omitempty"`

	History []journal.Record `json:"history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession создает сессию нового пользователя в главном меню
func NewSession(identity string) *Session {
	now := time.Now().UTC()
	return &Session{
		Identity:  identity,
		Cursor:    journal.StepMenu,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Linked сообщает, привязан ли аккаунт Notion
func (s *Session) Linked() bool {
	return s.NotionToken != ""
}

// Discovered сообщает, найдена ли база журнала
func (s *Session) Discovered() bool {
	return s.DatabaseID != ""
}
