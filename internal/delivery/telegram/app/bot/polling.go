// internal/delivery/telegram/app/bot/polling.go
package bot

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"trading-journal-bot/internal/delivery/telegram"
	"trading-journal-bot/pkg/logger"
)

// PollingHandler - цикл long-polling. Обновления обрабатываются строго
// по одному: Telegram выдает их по порядку, а движок переживает только
// одно событие пользователя за раз.
type PollingHandler struct {
	bot      *TradingJournalBot
	offset   int64
	running  bool
	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPollingHandler создает обработчик polling
func NewPollingHandler(b *TradingJournalBot) *PollingHandler {
	return &PollingHandler{bot: b}
}

// Start запускает цикл получения обновлений
func (p *PollingHandler) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("polling уже запущен")
	}
	p.running = true
	p.stopChan = make(chan struct{})

	p.wg.Add(1)
	go p.loop()

	logger.Info("✅ Telegram polling запущен")
	return nil
}

// Stop останавливает цикл и ждёт завершения текущего обновления
func (p *PollingHandler) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	logger.Info("🛑 Telegram polling остановлен")
}

// loop - основной цикл polling
func (p *PollingHandler) loop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		default:
		}

		updates, err := p.fetch()
		if err != nil {
			logger.Warn("getUpdates: %v", err)
			select {
			case <-p.stopChan:
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			p.offset = update.UpdateID + 1
			if err := p.bot.HandleUpdate(update); err != nil {
				logger.Error("Обновление %d: %v", update.UpdateID, err)
			}
		}
	}
}

// fetch запрашивает порцию обновлений
func (p *PollingHandler) fetch() ([]telegram.Update, error) {
	resp, err := p.bot.pollingClient.GetUpdates(p.offset, p.bot.config.Telegram.PollTimeout)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var updates telegram.UpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&updates); err != nil {
		return nil, err
	}
	if !updates.OK {
		return nil, fmt.Errorf("telegram вернул ok=false")
	}
	return updates.Result, nil
}
