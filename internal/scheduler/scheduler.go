// internal/scheduler/scheduler.go
package scheduler

import (
	"sync"
	"time"

	"trading-journal-bot/pkg/logger"
)

// Scheduler запускает одноразовые отложенные задачи. Боту не нужны
// cron-расписания: единственная фоновая работа - отложенный запрос
// досчитанных Notion полей после сабмита.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[int64]*time.Timer
	nextID  int64
	stopped bool
	wg      sync.WaitGroup
}

// New создает планировщик
func New() *Scheduler {
	return &Scheduler{
		timers: make(map[int64]*time.Timer),
	}
}

// After ставит одноразовую задачу через delay. Паника внутри задачи
// гасится и логируется, цикл обработки событий она не роняет.
func (s *Scheduler) After(delay time.Duration, name string, fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		logger.Warn("⏱ [Scheduler] Остановлен, задача %q не поставлена", name)
		return
	}
	id := s.nextID
	s.nextID++
	s.wg.Add(1)

	timer := time.AfterFunc(delay, func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("⏱ [Scheduler] Паника в задаче %q: %v", name, r)
			}
		}()
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		logger.Debug("⏱ [Scheduler] Запуск задачи %q", name)
		fn()
	})
	s.timers[id] = timer
	s.mu.Unlock()

	logger.Debug("⏱ [Scheduler] Задача %q поставлена через %s", name, delay)
}

// Stop снимает невыполненные задачи и ждёт завершения запущенных
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, timer := range s.timers {
		if timer.Stop() {
			// Задача не успела запуститься
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	logger.Info("🛑 [Scheduler] Остановлен")
}
