// internal/delivery/telegram/app/bot/events.go
package bot

import (
	"strconv"
	"strings"

	"trading-journal-bot/internal/core/wizard"
	"trading-journal-bot/internal/delivery/telegram"
)

// mapUpdate переводит обновление Telegram в нормализованное событие
// мастера. Идентификатор пользователя - id приватного чата: по нему же
// доставляются отложенные уведомления.
func mapUpdate(update telegram.Update) (identity string, chatID int64, callbackID string, event wizard.Event, ok bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		cb := update.CallbackQuery
		chatID = cb.Message.Chat.ID
		return strconv.FormatInt(chatID, 10), chatID, cb.ID, wizard.ParseCallback(cb.Data), true

	case update.Message != nil && update.Message.Text != "":
		msg := update.Message
		chatID = msg.Chat.ID
		return strconv.FormatInt(chatID, 10), chatID, "", mapText(msg.Text), true
	}
	return "", 0, "", wizard.Event{}, false
}

// mapText переводит текстовое сообщение в событие
func mapText(text string) wizard.Event {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		switch strings.Fields(text)[0] {
		case "/start", "/menu":
			return wizard.Menu()
		case "/cancel":
			return wizard.Cancel()
		case "/last":
			return wizard.ShowLast()
		case "/recent":
			return wizard.ShowRecent(0)
		default:
			// Незнакомая команда: движок повторит текущее приглашение
			return wizard.Event{}
		}
	}
	return wizard.FreeText(text)
}
