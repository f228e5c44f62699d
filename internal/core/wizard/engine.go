// internal/core/wizard/engine.go
package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trading-journal-bot/internal/core/domain/journal"
	"trading-journal-bot/internal/core/domain/sessions"
	"trading-journal-bot/pkg/logger"
)

// Ledger - внешний журнал (Notion). Движок не знает деталей протокола,
// только контракты запросов.
type Ledger interface {
	// CreatePage создает запись и возвращает её внешний id
	CreatePage(ctx context.Context, token, databaseID string, fields map[string]journal.FieldValue, seq int) (string, error)
	// MaxSequence возвращает наибольший номер записи; 0 для пустой базы
	// или при ошибке
	MaxSequence(ctx context.Context, token, databaseID string) (int, error)
	// ComputedFields возвращает досчитанные поля записи; nil, если они
	// ещё не готовы
	ComputedFields(ctx context.Context, token, pageID string) (*journal.ComputedFields, error)
	// ListRecent возвращает последние записи базы
	ListRecent(ctx context.Context, token, databaseID string, limit int) ([]journal.RecordSummary, error)
	// Discover ищет корневую страницу и базу журнала
	Discover(ctx context.Context, token string) (rootPageID, databaseID string, err error)
}

// Archive - локальный архив отправленных трейдов. Ошибки архива не
// доходят до пользователя.
type Archive interface {
	SaveSubmission(ctx context.Context, identity string, r journal.Record) error
}

// Notifier - канал доставки отложенных сообщений пользователю
type Notifier interface {
	Notify(identity, text string) error
}

// Deferred - запуск одноразовой отложенной задачи
type Deferred interface {
	After(delay time.Duration, name string, fn func())
}

// Options настраивают движок
type Options struct {
	HistoryLimit int
	FetchDelay   time.Duration
	// AuthURL строит ссылку привязки Notion для пользователя
	AuthURL func(identity string) string
}

// Engine - конечный автомат анкеты. Одно событие обрабатывается
// целиком под mu: события разных пользователей не перемежают записи
// в хранилище сессий.
type Engine struct {
	store    sessions.Store
	ledger   Ledger
	archive  Archive  // может быть nil
	notifier Notifier // может быть nil
	deferred Deferred
	opts     Options

	mu sync.Mutex
}

// NewEngine создает движок мастера
func NewEngine(store sessions.Store, ledger Ledger, deferred Deferred, opts Options) *Engine {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = journal.DefaultHistoryLimit
	}
	if opts.FetchDelay <= 0 {
		opts.FetchDelay = 5 * time.Second
	}
	if opts.AuthURL == nil {
		opts.AuthURL = func(string) string { return "" }
	}
	return &Engine{
		store:    store,
		ledger:   ledger,
		deferred: deferred,
		opts:     opts,
	}
}

// SetArchive подключает локальный архив сабмитов
func (e *Engine) SetArchive(a Archive) { e.archive = a }

// SetNotifier подключает канал отложенных уведомлений
func (e *Engine) SetNotifier(n Notifier) { e.notifier = n }

// HandleEvent обрабатывает одно событие пользователя и возвращает
// следующее приглашение. Ошибка возвращается только при отказе
// хранилища сессий; ошибки валидации и внешних вызовов приходят
// пользователю текстом внутри Prompt.
func (e *Engine) HandleEvent(ctx context.Context, identity string, ev Event) (Prompt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.store.Get(ctx, identity)
	if err != nil {
		return Prompt{}, err
	}
	if s == nil {
		s = sessions.NewSession(identity)
	}

	prompt := e.dispatch(ctx, s, ev)

	s.UpdatedAt = time.Now().UTC()
	if err := e.store.Put(ctx, s); err != nil {
		return Prompt{}, err
	}
	return prompt, nil
}

// dispatch - единственная точка переходов автомата
func (e *Engine) dispatch(ctx context.Context, s *sessions.Session, ev Event) Prompt {
	// Без привязанного Notion любое событие даёт приглашение
	// авторизации, курсор не меняется
	if !s.Linked() {
		return e.authPrompt(s)
	}

	if ev.Kind == EventDiscover || !s.Discovered() {
		return e.handleDiscovery(ctx, s, ev)
	}

	switch ev.Kind {
	case EventMenu:
		s.Cursor = journal.StepMenu
		return menuPrompt(textMenu)

	case EventStart:
		s.Draft = journal.NewDraft()
		s.Editing = false
		s.Cursor = journal.First()
		info, _ := journal.Info(s.Cursor)
		return stepPrompt(info, s, "")

	case EventCancel:
		// Черновик пропадает, токен и история остаются
		s.Draft = nil
		s.Editing = false
		s.Cursor = journal.StepMenu
		return menuPrompt(textCancelled)

	case EventBack:
		return e.handleBack(s)

	case EventSelect:
		return e.handleSelect(s, ev)

	case EventConfirm:
		return e.handleConfirm(s)

	case EventFreeText:
		return e.handleFreeText(s, ev)

	case EventEditMenu:
		if s.Cursor == journal.StepReview {
			return editMenuPrompt()
		}
		return e.currentPrompt(s)

	case EventEditField:
		return e.handleEditField(s, ev)

	case EventSubmit:
		if s.Cursor == journal.StepReview && s.Draft != nil {
			return e.submit(ctx, s)
		}
		return e.currentPrompt(s)

	case EventShowLast:
		return e.showLast(s)

	case EventShowRecent:
		return e.showRecent(ctx, s, ev.Count)

	default:
		// Устаревшая кнопка или незнакомое событие: повторяем
		// текущее приглашение
		return e.currentPrompt(s)
	}
}

// handleDiscovery ищет базу журнала, когда ссылки ещё не закэшированы
func (e *Engine) handleDiscovery(ctx context.Context, s *sessions.Session, ev Event) Prompt {
	if s.Discovered() {
		return e.currentPrompt(s)
	}
	if ev.Kind != EventDiscover {
		return discoverPrompt()
	}
	rootID, dbID, err := e.ledger.Discover(ctx, s.NotionToken)
	if err != nil || dbID == "" {
		logger.Warn("Поиск базы журнала для %s не удался: %v", s.Identity, err)
		return discoverPrompt()
	}
	s.RootPageID = rootID
	s.DatabaseID = dbID
	logger.Info("База журнала найдена для %s: %s", s.Identity, dbID)
	return menuPrompt(textMenu)
}

// handleSelect записывает выбор и двигает курсор вперёд
func (e *Engine) handleSelect(s *sessions.Session, ev Event) Prompt {
	info, ok := journal.Info(s.Cursor)
	if !ok || s.Draft == nil || ev.Step != s.Cursor {
		// Выбор адресован не тому шагу - устаревшая кнопка
		return e.currentPrompt(s)
	}
	if !validOption(info, ev.Value) {
		return e.currentPrompt(s)
	}

	if info.Multi {
		s.Draft.Toggle(info.Field, ev.Value)
		// Шаг-набор повторяется до явного "Готово"
		return stepPrompt(info, s, "")
	}

	s.Draft.Set(info.Field, ev.Value)
	return e.advance(s, info)
}

// handleConfirm завершает шаг-набор по кнопке "Готово"
func (e *Engine) handleConfirm(s *sessions.Session) Prompt {
	info, ok := journal.Info(s.Cursor)
	if !ok || !info.Multi || s.Draft == nil {
		return e.currentPrompt(s)
	}
	if !s.Draft.Has(info.Field) {
		// Пустой набор не подтверждается
		return stepPrompt(info, s, textEmptySet)
	}
	return e.advance(s, info)
}

// handleFreeText принимает числовой ввод RR
func (e *Engine) handleFreeText(s *sessions.Session, ev Event) Prompt {
	info, ok := journal.Info(s.Cursor)
	if !ok || !info.FreeText || s.Draft == nil {
		return e.currentPrompt(s)
	}

	n, err := decimal.NewFromString(strings.TrimSpace(ev.Text))
	if err != nil {
		// Черновик не трогаем, курсор на месте
		return Prompt{Text: textBadNumber, ExpectsFreeText: true}
	}
	s.Draft.SetNumber(info.Field, n)

	if s.Editing {
		s.Editing = false
		s.Cursor = journal.StepReview
		return reviewPrompt(s, "")
	}

	// Страховочная проверка полноты перед сводкой: обычный проход сюда
	// с пробелами не попадает, но регрессии правки не должны отправлять
	// неполный черновик
	if missing := s.Draft.Missing(); len(missing) > 0 {
		return Prompt{
			Text:            "У чернетці бракує полів: " + strings.Join(missing, ", "),
			ExpectsFreeText: true,
		}
	}

	s.Cursor = journal.StepReview
	return reviewPrompt(s, "")
}

// handleBack возвращает курсор на предыдущий шаг и очищает его поле
func (e *Engine) handleBack(s *sessions.Session) Prompt {
	if s.Draft == nil {
		return e.currentPrompt(s)
	}
	// Из шага, открытого на правку, назад значит "к сводке без изменений"
	if s.Editing {
		s.Editing = false
		s.Cursor = journal.StepReview
		return reviewPrompt(s, "")
	}
	prev, ok := journal.Prev(s.Cursor)
	if !ok {
		// С первого шага назад некуда
		return e.currentPrompt(s)
	}
	prevInfo, _ := journal.Info(prev)
	// Повторный вход в шаг начинается с чистого поля; для набора
	// очищается весь набор
	s.Draft.Delete(prevInfo.Field)
	s.Cursor = prev
	return stepPrompt(prevInfo, s, "")
}

// handleEditField прыгает из сводки к шагу выбранного поля
func (e *Engine) handleEditField(s *sessions.Session, ev Event) Prompt {
	if s.Cursor != journal.StepReview || s.Draft == nil {
		return e.currentPrompt(s)
	}
	info, ok := journal.ByField(ev.Field)
	if !ok {
		return e.currentPrompt(s)
	}
	s.Cursor = info.Step
	s.Editing = true
	return stepPrompt(info, s, "")
}

// advance двигает курсор после завершения шага. Из режима правки
// возвращаемся к сводке, иначе идём к следующему шагу, предварительно
// очистив его возможное устаревшее значение.
func (e *Engine) advance(s *sessions.Session, info journal.StepInfo) Prompt {
	if s.Editing {
		s.Editing = false
		s.Cursor = journal.StepReview
		return reviewPrompt(s, "")
	}

	next, _ := journal.Next(info.Step)
	if next == journal.StepReview {
		s.Cursor = journal.StepReview
		return reviewPrompt(s, "")
	}
	nextInfo, _ := journal.Info(next)
	s.Draft.Delete(nextInfo.Field)
	s.Cursor = next
	return stepPrompt(nextInfo, s, "")
}

func validOption(info journal.StepInfo, value string) bool {
	for _, option := range info.Options {
		if option == value {
			return true
		}
	}
	return false
}
