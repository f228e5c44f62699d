// internal/delivery/telegram/app/bot/events_test.go
package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal-bot/internal/core/wizard"
	"trading-journal-bot/internal/delivery/telegram"
)

func TestMapTextCommands(t *testing.T) {
	assert.Equal(t, wizard.EventMenu, mapText("/start").Kind)
	assert.Equal(t, wizard.EventMenu, mapText("/menu").Kind)
	assert.Equal(t, wizard.EventCancel, mapText("/cancel").Kind)
	assert.Equal(t, wizard.EventShowLast, mapText("/last").Kind)
	assert.Equal(t, wizard.EventShowRecent, mapText("/recent").Kind)
	assert.Equal(t, wizard.EventUnknown, mapText("/unknowncommand").Kind)
}

func TestMapTextFreeText(t *testing.T) {
	ev := mapText("  2.5  ")
	assert.Equal(t, wizard.EventFreeText, ev.Kind)
	assert.Equal(t, "2.5", ev.Text)
}

func TestMapUpdateMessage(t *testing.T) {
	update := telegram.Update{
		Message: &telegram.Message{
			Chat: telegram.Chat{ID: 99},
			Text: "/start",
		},
	}

	identity, chatID, callbackID, ev, ok := mapUpdate(update)
	require.True(t, ok)
	assert.Equal(t, "99", identity)
	assert.Equal(t, int64(99), chatID)
	assert.Empty(t, callbackID)
	assert.Equal(t, wizard.EventMenu, ev.Kind)
}

func TestMapUpdateCallback(t *testing.T) {
	update := telegram.Update{
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-1",
			Data: "sel:pair:EURUSD",
			Message: &telegram.Message{
				Chat: telegram.Chat{ID: 99},
			},
		},
	}

	identity, chatID, callbackID, ev, ok := mapUpdate(update)
	require.True(t, ok)
	assert.Equal(t, "99", identity)
	assert.Equal(t, int64(99), chatID)
	assert.Equal(t, "cb-1", callbackID)
	assert.Equal(t, wizard.EventSelect, ev.Kind)
	assert.Equal(t, "EURUSD", ev.Value)
}

func TestMapUpdateIgnoresEmpty(t *testing.T) {
	_, _, _, _, ok := mapUpdate(telegram.Update{})
	assert.False(t, ok)

	// Сообщение без текста (стикер, фото) тоже пропускается
	_, _, _, _, ok = mapUpdate(telegram.Update{
		Message: &telegram.Message{Chat: telegram.Chat{ID: 99}},
	})
	assert.False(t, ok)
}
