// internal/delivery/telegram/app/bot/message_sender/rate_limiter.go
package message_sender

import (
	"sync"
	"time"
)

// RateLimiter - ограничитель частоты отправки по чату
type RateLimiter struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
	minDelay time.Duration
}

// NewRateLimiter создает новый ограничитель частоты
func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	return &RateLimiter{
		lastSent: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait блокирует до момента, когда в чат снова можно писать
func (rl *RateLimiter) Wait(key string) {
	rl.mu.Lock()
	now := time.Now()
	wait := time.Duration(0)
	if last, exists := rl.lastSent[key]; exists {
		if d := rl.minDelay - now.Sub(last); d > 0 {
			wait = d
		}
	}
	rl.lastSent[key] = now.Add(wait)
	rl.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}
