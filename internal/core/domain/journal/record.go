// internal/core/domain/journal/record.go
package journal

import (
	"fmt"
	"strings"
	"time"
)

// ComputedFields - поля, которые Notion досчитывает после создания записи
type ComputedFields struct {
	Score         *float64 `json:"score,omitempty"`
	Class         string   `json:"class,omitempty"`
	SuggestedRisk *float64 `json:"suggested_risk,omitempty"`
}

// Record - отправленный в Notion трейд
type Record struct {
	Key       string                `json:"key"` // клиентский ключ сабмита (uuid)
	PageID    string                `json:"page_id"`
	Seq       int                   `json:"seq"`
	Fields    map[string]FieldValue `json:"fields"`
	Computed  *ComputedFields       `json:"computed,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// RecordSummary - краткая запись из свежей выборки Notion
type RecordSummary struct {
	PageID string
	Seq    int
	Pair   string
	RR     string
	Score  *float64
}

// DefaultHistoryLimit - сколько трейдов храним в локальной истории
const DefaultHistoryLimit = 5

// PushHistory вставляет запись в начало истории, срезая хвост до limit
func PushHistory(history []Record, r Record, limit int) []Record {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	history = append([]Record{r}, history...)
	if len(history) > limit {
		history = history[:limit]
	}
	return history
}

// FormatValue печатает значение поля для чата
func FormatValue(fv FieldValue) string {
	switch fv.Kind {
	case KindMulti:
		return strings.Join(fv.Set, ", ")
	case KindNumber:
		return fv.Number.String()
	default:
		return fv.Option
	}
}

// FormatFields печатает поля анкеты построчно в порядке шагов
func FormatFields(fields map[string]FieldValue) string {
	var b strings.Builder
	for _, info := range Steps() {
		fv, ok := fields[info.Field]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", info.Field, FormatValue(fv))
	}
	return b.String()
}

// FormatRecord печатает отправленный трейд для чата
func FormatRecord(r Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Трейд #%d\n", r.Seq)
	b.WriteString(FormatFields(r.Fields))
	if r.Computed != nil {
		if r.Computed.Score != nil {
			fmt.Fprintf(&b, "Score: %.1f\n", *r.Computed.Score)
		}
		if r.Computed.Class != "" {
			fmt.Fprintf(&b, "Class: %s\n", r.Computed.Class)
		}
		if r.Computed.SuggestedRisk != nil {
			fmt.Fprintf(&b, "Risk: %.2f%%\n", *r.Computed.SuggestedRisk)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
