// internal/core/domain/journal/draft.go
package journal

import (
	"github.com/shopspring/decimal"
)

// FieldKind - вид значения поля черновика
type FieldKind int

const (
	KindSingle FieldKind = iota // один вариант, новая отметка заменяет старую
	KindMulti                   // набор вариантов, отметка переключает членство
	KindNumber                  // числовой ввод (RR)
)

// FieldValue - значение одного поля черновика
type FieldValue struct {
	Kind   FieldKind       `json:"kind"`
	Option string          `json:"option,omitempty"`
	Set    []string        `json:"set,omitempty"`
	Number decimal.Decimal `json:"number"`
}

// Draft - собираемая мастером запись трейда
type Draft struct {
	Values map[string]FieldValue `json:"values"`
}

// NewDraft создает пустой черновик
func NewDraft() *Draft {
	return &Draft{Values: make(map[string]FieldValue)}
}

// Set записывает одиночное значение поля, затирая прежнее
func (d *Draft) Set(field, option string) {
	d.Values[field] = FieldValue{Kind: KindSingle, Option: option}
}

// SetNumber записывает числовое значение поля
func (d *Draft) SetNumber(field string, n decimal.Decimal) {
	d.Values[field] = FieldValue{Kind: KindNumber, Number: n}
}

// Toggle переключает членство option в наборе поля и возвращает
// итоговый набор. Двойное переключение возвращает набор к исходному.
func (d *Draft) Toggle(field, option string) []string {
	fv, ok := d.Values[field]
	if !ok || fv.Kind != KindMulti {
		fv = FieldValue{Kind: KindMulti}
	}
	for i, v := range fv.Set {
		if v == option {
			fv.Set = append(fv.Set[:i], fv.Set[i+1:]...)
			d.Values[field] = fv
			return fv.Set
		}
	}
	fv.Set = append(fv.Set, option)
	d.Values[field] = fv
	return fv.Set
}

// Delete убирает поле из черновика. Для набора очищается весь набор.
func (d *Draft) Delete(field string) {
	delete(d.Values, field)
}

// Get возвращает значение поля
func (d *Draft) Get(field string) (FieldValue, bool) {
	fv, ok := d.Values[field]
	return fv, ok
}

// Has сообщает, заполнено ли поле. Пустой набор считается незаполненным.
func (d *Draft) Has(field string) bool {
	fv, ok := d.Values[field]
	if !ok {
		return false
	}
	if fv.Kind == KindMulti {
		return len(fv.Set) > 0
	}
	return true
}

// Missing возвращает имена незаполненных полей анкеты в порядке шагов
func (d *Draft) Missing() []string {
	var missing []string
	for _, info := range Steps() {
		if !d.Has(info.Field) {
			missing = append(missing, info.Field)
		}
	}
	return missing
}

// Snapshot возвращает копию значений черновика
func (d *Draft) Snapshot() map[string]FieldValue {
	snap := make(map[string]FieldValue, len(d.Values))
	for field, fv := range d.Values {
		if fv.Kind == KindMulti {
			set := make([]string, len(fv.Set))
			copy(set, fv.Set)
			fv.Set = set
		}
		snap[field] = fv
	}
	return snap
}
