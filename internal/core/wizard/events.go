// internal/core/wizard/events.go
package wizard

import (
	"strconv"
	"strings"

	"trading-journal-bot/internal/core/domain/journal"
)

// EventKind - вид нормализованного события от фронтенда
type EventKind int

const (
	EventUnknown EventKind = iota
	EventMenu               // /start, показать главное меню
	EventStart              // начать новый черновик
	EventSelect             // выбор варианта на шаге
	EventConfirm            // "Готово" на шаге-наборе
	EventBack               // назад
	EventCancel             // отмена черновика
	EventFreeText           // свободный текстовый ввод
	EventEditMenu           // открыть меню правки из сводки
	EventEditField          // перейти к шагу поля из меню правки
	EventSubmit             // отправить черновик
	EventDiscover           // повторить поиск базы журнала
	EventShowLast           // показать последний трейд
	EventShowRecent         // показать последние трейды из Notion
)

// Event - событие мастера. Теговый вариант: смысл полей зависит от Kind.
type Event struct {
	Kind  EventKind
	Step  journal.Step // Select: шаг, которому адресован выбор
	Value string       // Select: выбранный вариант
	Text  string       // FreeText: введённый текст
	Field string       // EditField: имя поля
	Count int          // ShowRecent: сколько записей
}

// Конструкторы событий

func Menu() Event    { return Event{Kind: EventMenu} }
func Start() Event   { return Event{Kind: EventStart} }
func Confirm() Event { return Event{Kind: EventConfirm} }
func Back() Event    { return Event{Kind: EventBack} }
func Cancel() Event  { return Event{Kind: EventCancel} }

func Select(step journal.Step, value string) Event {
	return Event{Kind: EventSelect, Step: step, Value: value}
}

func FreeText(text string) Event   { return Event{Kind: EventFreeText, Text: text} }
func EditMenu() Event              { return Event{Kind: EventEditMenu} }
func EditField(field string) Event { return Event{Kind: EventEditField, Field: field} }
func Submit() Event                { return Event{Kind: EventSubmit} }
func Discover() Event              { return Event{Kind: EventDiscover} }
func ShowLast() Event              { return Event{Kind: EventShowLast} }
func ShowRecent(n int) Event       { return Event{Kind: EventShowRecent, Count: n} }

// Callback data: схема строк, которыми кнопки ссылаются на события.
// Формат выбора: "sel:<ключ шага>:<вариант>", правки: "edit:<ключ шага>".
const (
	cbAdd      = "add"
	cbLast     = "last"
	cbRecent   = "recent"
	cbDone     = "done"
	cbBack     = "back"
	cbCancel   = "cancel"
	cbEditMenu = "editmenu"
	cbSubmit   = "submit"
	cbDiscover = "discover"
	cbSelect   = "sel"
	cbEdit     = "edit"
)

// SelectData строит callback data для варианта шага
func SelectData(info journal.StepInfo, option string) string {
	return cbSelect + ":" + info.Key + ":" + option
}

// EditData строит callback data для кнопки меню правки
func EditData(info journal.StepInfo) string {
	return cbEdit + ":" + info.Key
}

// ParseCallback разбирает callback data в событие. Любая незнакомая
// строка (устаревшая кнопка после смены состояния) дает EventUnknown,
// который движок обрабатывает как no-op.
func ParseCallback(data string) Event {
	switch data {
	case cbAdd:
		return Start()
	case cbLast:
		return ShowLast()
	case cbRecent:
		return ShowRecent(0)
	case cbDone:
		return Confirm()
	case cbBack:
		return Back()
	case cbCancel:
		return Cancel()
	case cbEditMenu:
		return EditMenu()
	case cbSubmit:
		return Submit()
	case cbDiscover:
		return Discover()
	}

	parts := strings.SplitN(data, ":", 3)
	switch {
	case len(parts) == 3 && parts[0] == cbSelect:
		if info, ok := journal.ByKey(parts[1]); ok {
			return Select(info.Step, parts[2])
		}
	case len(parts) == 2 && parts[0] == cbEdit:
		if info, ok := journal.ByKey(parts[1]); ok {
			return EditField(info.Field)
		}
	case len(parts) == 2 && parts[0] == cbRecent:
		if n, err := strconv.Atoi(parts[1]); err == nil {
			return ShowRecent(n)
		}
	}
	return Event{Kind: EventUnknown}
}
