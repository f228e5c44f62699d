// internal/core/wizard/prompt.go
package wizard

import (
	"fmt"
	"strings"

	"trading-journal-bot/internal/core/domain/journal"
	"trading-journal-bot/internal/core/domain/sessions"
)

// Button - кнопка, которую фронтенд отрисует под сообщением
type Button struct {
	Label string
	Data  string // callback data; пусто для URL-кнопок
	URL   string
}

// Prompt - ответ движка фронтенду: текст, кнопки и признак
// ожидания свободного ввода
type Prompt struct {
	Text            string
	Buttons         [][]Button
	ExpectsFreeText bool
}

// Тексты интерфейса
const (
	textMenu          = "Виберіть опцію:"
	textCancelled     = "Скасовано. Виберіть опцію:"
	textEmptySet      = "Оберіть хоча б один варіант."
	textBadNumber     = "Введіть коректне число для RR (наприклад, 2.5):"
	textReviewHeader  = "Перевірте трейд:"
	textEditMenu      = "Яке поле виправити?"
	textSubmitOK      = "Трейд успішно додано до Notion! Оцінка буде за кілька секунд."
	textSubmitFail    = "Не вдалося зберегти трейд у Notion. Спробуйте ще раз."
	textNoTrades      = "Трейдів поки немає."
	textListFail      = "Не вдалося отримати список трейдів."
	textSavedNoScore  = "Трейд збережено, але оцінку отримати не вдалося."
	textAuth          = "Щоб вести журнал, підключіть свій Notion:"
	textAuthButton    = "🔑 Підключити Notion"
	textDiscover      = "База журналу не знайдена. Надайте інтеграції доступ до бази та повторіть."
	textDiscoverRetry = "🔄 Спробувати ще раз"
)

// menuPrompt - главное меню вне мастера
func menuPrompt(text string) Prompt {
	return Prompt{
		Text: text,
		Buttons: [][]Button{
			{{Label: "➕ Додати новий трейд", Data: cbAdd}},
			{{Label: "📄 Переглянути останній трейд", Data: cbLast}},
			{{Label: "📋 Останні трейди", Data: cbRecent}},
		},
	}
}

// authPrompt - приглашение привязать Notion; курсор не меняется
func (e *Engine) authPrompt(s *sessions.Session) Prompt {
	return Prompt{
		Text: textAuth,
		Buttons: [][]Button{
			{{Label: textAuthButton, URL: e.opts.AuthURL(s.Identity)}},
		},
	}
}

// discoverPrompt - база журнала ещё не найдена
func discoverPrompt() Prompt {
	return Prompt{
		Text: textDiscover,
		Buttons: [][]Button{
			{{Label: textDiscoverRetry, Data: cbDiscover}},
		},
	}
}

// stepPrompt рисует вопрос шага. errLine, если задан, ставится первой
// строкой (повторный показ после ошибки валидации).
func stepPrompt(info journal.StepInfo, s *sessions.Session, errLine string) Prompt {
	text := info.Prompt
	if info.Multi {
		if fv, ok := s.Draft.Get(info.Field); ok && len(fv.Set) > 0 {
			text = fmt.Sprintf("%s: %s", info.Field, strings.Join(fv.Set, ", "))
		}
	}
	if errLine != "" {
		text = errLine + "\n" + text
	}

	var rows [][]Button
	for _, option := range info.Options {
		label := option
		if info.Multi && selected(s.Draft, info.Field, option) {
			label = "✅ " + option
		}
		rows = append(rows, []Button{{Label: label, Data: SelectData(info, option)}})
	}

	nav := []Button{}
	if info.Step != journal.First() || s.Editing {
		nav = append(nav, Button{Label: "⬅️ Назад", Data: cbBack})
	}
	nav = append(nav, Button{Label: "❌ Скасувати", Data: cbCancel})
	if info.Multi {
		nav = append(nav, Button{Label: "✔️ Готово", Data: cbDone})
	}
	rows = append(rows, nav)

	return Prompt{Text: text, Buttons: rows, ExpectsFreeText: info.FreeText}
}

func selected(d *journal.Draft, field, option string) bool {
	fv, ok := d.Get(field)
	if !ok {
		return false
	}
	for _, v := range fv.Set {
		if v == option {
			return true
		}
	}
	return false
}

// reviewPrompt - сводка черновика перед отправкой
func reviewPrompt(s *sessions.Session, errLine string) Prompt {
	text := textReviewHeader + "\n" + journal.FormatFields(s.Draft.Snapshot())
	if errLine != "" {
		text = errLine + "\n\n" + text
	}
	return Prompt{
		Text: strings.TrimRight(text, "\n"),
		Buttons: [][]Button{
			{{Label: "✅ Підтвердити", Data: cbSubmit}},
			{{Label: "✏️ Редагувати", Data: cbEditMenu}},
			{{Label: "❌ Скасувати", Data: cbCancel}},
		},
	}
}

// editMenuPrompt - меню правки: по кнопке на каждое поле анкеты
func editMenuPrompt() Prompt {
	var rows [][]Button
	row := []Button{}
	for _, info := range journal.Steps() {
		row = append(row, Button{Label: info.Field, Data: EditData(info)})
		if len(row) == 2 {
			rows = append(rows, row)
			row = []Button{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Label: "⬅️ Назад", Data: cbBack}})
	return Prompt{Text: textEditMenu, Buttons: rows}
}

// currentPrompt повторяет приглашение текущего состояния (no-op для
// незнакомых и устаревших событий)
func (e *Engine) currentPrompt(s *sessions.Session) Prompt {
	switch {
	case s.Cursor == journal.StepMenu || s.Draft == nil:
		return menuPrompt(textMenu)
	case s.Cursor == journal.StepReview:
		return reviewPrompt(s, "")
	default:
		if info, ok := journal.Info(s.Cursor); ok {
			return stepPrompt(info, s, "")
		}
		return menuPrompt(textMenu)
	}
}

// formatComputed - отчёт о досчитанных Notion полях
func formatComputed(seq int, cf *journal.ComputedFields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Трейд #%d оцінено!", seq)
	if cf.Score != nil {
		fmt.Fprintf(&b, "\nScore: %.1f", *cf.Score)
	}
	if cf.Class != "" {
		fmt.Fprintf(&b, "\nClass: %s", cf.Class)
	}
	if cf.SuggestedRisk != nil {
		fmt.Fprintf(&b, "\nRisk: %.2f%%", *cf.SuggestedRisk)
	}
	return b.String()
}
