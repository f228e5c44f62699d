// internal/core/wizard/submit.go
package wizard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trading-journal-bot/internal/core/domain/journal"
	"trading-journal-bot/internal/core/domain/sessions"
	"trading-journal-bot/pkg/logger"
)

// submit отправляет черновик в Notion и сверяет результат.
// Номер записи берётся как max+1 без compare-and-swap: гонка двух
// одновременных сабмитов в одну базу может дать дубль номера, это
// известное ограничение.
func (e *Engine) submit(ctx context.Context, s *sessions.Session) Prompt {
	maxSeq, err := e.ledger.MaxSequence(ctx, s.NotionToken, s.DatabaseID)
	if err != nil {
		logger.Warn("MaxSequence для %s: %v, считаем базу пустой", s.Identity, err)
		maxSeq = 0
	}
	seq := maxSeq + 1

	fields := s.Draft.Snapshot()
	pageID, err := e.ledger.CreatePage(ctx, s.NotionToken, s.DatabaseID, fields, seq)
	if err != nil {
		// Черновик не трогаем: пользователь может повторить отправку
		logger.Error("CreatePage для %s: %v", s.Identity, err)
		return reviewPrompt(s, textSubmitFail)
	}

	record := journal.Record{
		Key:       uuid.NewString(),
		PageID:    pageID,
		Seq:       seq,
		Fields:    fields,
		CreatedAt: time.Now().UTC(),
	}
	s.History = journal.PushHistory(s.History, record, e.opts.HistoryLimit)
	s.Draft = nil
	s.Editing = false
	s.Cursor = journal.StepMenu

	logger.Trade(s.Identity, seq, fieldText(fields, "Pair"), fieldText(fields, "RR"))

	if e.archive != nil {
		if aerr := e.archive.SaveSubmission(ctx, s.Identity, record); aerr != nil {
			logger.Warn("Архив сабмита #%d для %s: %v", seq, s.Identity, aerr)
		}
	}

	e.scheduleFetch(s.Identity, s.NotionToken, pageID, seq)

	return menuPrompt(textSubmitOK)
}

// scheduleFetch ставит одноразовую отложенную задачу: Notion досчитывает
// оценку асинхронно, поэтому запрашиваем её после паузы. Неудача
// терминальна - повторов нет, пользователь получает сообщение о
// сохранённом без оценки трейде.
func (e *Engine) scheduleFetch(identity, token, pageID string, seq int) {
	if e.deferred == nil || e.notifier == nil {
		return
	}
	e.deferred.After(e.opts.FetchDelay, "computed-fields", func() {
		ctx := context.Background()
		cf, err := e.ledger.ComputedFields(ctx, token, pageID)
		if err != nil || cf == nil {
			logger.Warn("Оценка страницы %s недоступна: %v", pageID, err)
			if nerr := e.notifier.Notify(identity, textSavedNoScore); nerr != nil {
				logger.Error("Уведомление %s: %v", identity, nerr)
			}
			return
		}
		e.attachComputed(ctx, identity, pageID, cf)
		if nerr := e.notifier.Notify(identity, formatComputed(seq, cf)); nerr != nil {
			logger.Error("Уведомление %s: %v", identity, nerr)
		}
	})
}

// attachComputed дописывает досчитанные поля в локальную историю
func (e *Engine) attachComputed(ctx context.Context, identity, pageID string, cf *journal.ComputedFields) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.store.Get(ctx, identity)
	if err != nil || s == nil {
		return
	}
	for i := range s.History {
		if s.History[i].PageID == pageID {
			s.History[i].Computed = cf
			break
		}
	}
	if err := e.store.Put(ctx, s); err != nil {
		logger.Warn("Сохранение оценки в историю %s: %v", identity, err)
	}
}

func fieldText(fields map[string]journal.FieldValue, name string) string {
	if fv, ok := fields[name]; ok {
		return journal.FormatValue(fv)
	}
	return ""
}
