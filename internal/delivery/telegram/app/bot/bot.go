// internal/delivery/telegram/app/bot/bot.go
package bot

import (
	"context"
	"strconv"

	"trading-journal-bot/internal/core/wizard"
	"trading-journal-bot/internal/delivery/telegram"
	"trading-journal-bot/internal/delivery/telegram/app/bot/message_sender"
	telegram_http "trading-journal-bot/internal/delivery/telegram/app/http_client"
	"trading-journal-bot/internal/infrastructure/config"
	"trading-journal-bot/pkg/logger"
)

// TradingJournalBot - Telegram-фронтенд мастера журнала трейдов.
// Бот только переводит обновления в нормализованные события движка
// и отрисовывает его приглашения; логика анкеты живет в wizard.
type TradingJournalBot struct {
	config *config.Config
	engine *wizard.Engine

	telegramClient *telegram_http.TelegramClient
	pollingClient  *telegram_http.PollingClient
	messageSender  message_sender.MessageSender

	pollingHandler *PollingHandler
}

// NewTradingJournalBot создает бота поверх движка мастера
func NewTradingJournalBot(cfg *config.Config, engine *wizard.Engine) *TradingJournalBot {
	baseURL := "https://api.telegram.org/bot" + cfg.Telegram.BotToken + "/"
	telegramClient := telegram_http.NewTelegramClient(baseURL)

	b := &TradingJournalBot{
		config:         cfg,
		engine:         engine,
		telegramClient: telegramClient,
		pollingClient:  telegram_http.NewPollingClient(baseURL),
		messageSender:  message_sender.NewMessageSender(telegramClient, cfg.Telegram.Enabled),
	}
	b.pollingHandler = NewPollingHandler(b)
	return b
}

// HandleUpdate обрабатывает одно обновление Telegram целиком:
// следующее обновление берется только после завершения этого
func (b *TradingJournalBot) HandleUpdate(update telegram.Update) error {
	identity, chatID, callbackID, event, ok := mapUpdate(update)
	if !ok {
		return nil // Тип обновления боту не интересен
	}

	if callbackID != "" {
		if err := b.messageSender.AnswerCallback(callbackID); err != nil {
			logger.Debug("answerCallbackQuery: %v", err)
		}
	}

	prompt, err := b.engine.HandleEvent(context.Background(), identity, event)
	if err != nil {
		logger.Error("Обработка события %s: %v", identity, err)
		return b.messageSender.SendTextMessage(chatID, "Сталася помилка. Спробуйте /start.", nil)
	}

	return b.messageSender.SendTextMessage(chatID, prompt.Text, keyboard(prompt))
}

// Notify доставляет отложенное сообщение движка (отчет об оценке)
func (b *TradingJournalBot) Notify(identity, text string) error {
	chatID, err := strconv.ParseInt(identity, 10, 64)
	if err != nil {
		return err
	}
	return b.messageSender.SendTextMessage(chatID, text, nil)
}

// StartPolling запускает long-polling цикл
func (b *TradingJournalBot) StartPolling() error {
	return b.pollingHandler.Start()
}

// StopPolling останавливает long-polling цикл
func (b *TradingJournalBot) StopPolling() {
	b.pollingHandler.Stop()
}

// keyboard собирает inline клавиатуру из кнопок приглашения
func keyboard(prompt wizard.Prompt) *telegram.InlineKeyboardMarkup {
	if len(prompt.Buttons) == 0 {
		return nil
	}
	markup := &telegram.InlineKeyboardMarkup{}
	for _, row := range prompt.Buttons {
		var line []telegram.InlineKeyboardButton
		for _, btn := range row {
			line = append(line, telegram.InlineKeyboardButton{
				Text:         btn.Label,
				CallbackData: btn.Data,
				URL:          btn.URL,
			})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, line)
	}
	return markup
}
