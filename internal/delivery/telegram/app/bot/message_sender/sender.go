// internal/delivery/telegram/app/bot/message_sender/sender.go
package message_sender

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"trading-journal-bot/internal/delivery/telegram"
	"trading-journal-bot/internal/delivery/telegram/app/http_client"
	"trading-journal-bot/pkg/logger"
)

// MessageSender интерфейс для отправки сообщений
type MessageSender interface {
	SendTextMessage(chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error
	AnswerCallback(callbackID string) error
}

// MessageSenderImpl реализация MessageSender
type MessageSenderImpl struct {
	client      *http_client.TelegramClient
	rateLimiter *RateLimiter
	enabled     bool
}

// NewMessageSender создает новый MessageSender
func NewMessageSender(client *http_client.TelegramClient, enabled bool) MessageSender {
	return &MessageSenderImpl{
		client:      client,
		rateLimiter: NewRateLimiter(200 * time.Millisecond),
		enabled:     enabled,
	}
}

// SendTextMessage отправляет текст с inline клавиатурой
func (ms *MessageSenderImpl) SendTextMessage(chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	if !ms.enabled {
		logger.Debug("Telegram отключен, пропуск отправки в %d", chatID)
		return nil
	}

	ms.rateLimiter.Wait(fmt.Sprintf("%d", chatID))

	request := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	if keyboard != nil {
		request["reply_markup"] = keyboard
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}

	resp, err := ms.client.Post("sendMessage", payload)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	defer resp.Body.Close()

	var apiResp telegram.APIResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return fmt.Errorf("sendMessage: разбор ответа: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("sendMessage: %s (код %d)", apiResp.Description, apiResp.ErrorCode)
	}
	return nil
}

// AnswerCallback подтверждает нажатие inline кнопки
func (ms *MessageSenderImpl) AnswerCallback(callbackID string) error {
	if !ms.enabled {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{"callback_query_id": callbackID})
	if err != nil {
		return err
	}

	resp, err := ms.client.Post("answerCallbackQuery", payload)
	if err != nil {
		return fmt.Errorf("answerCallbackQuery: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}
