// Package record собирает строку таблицы заявок из заполненной заявки
// и проверяет готовность заявки к сохранению.
package record

import (
	"strings"
	"time"

	"github.com/mmeshcher/zayavki-crm/internal/codec"
	"github.com/mmeshcher/zayavki-crm/internal/model"
)

// Названия колонок листа ЗАЯВКИ. Порядок колонок — часть контракта
// с хранилищем и не меняется.
var Columns = []string{
	"ДАТА ВВОДА",
	"НОМЕР ЗАЯВКИ",
	"ТЕЛЕФОН",
	"АДРЕС",
	"ДАТА ДОСТАВКИ",
	"КОММЕНТАРИЙ",
	"ЗАКАЗ",
	"СУММА",
}

// MissingFields возвращает список незаполненных обязательных полей.
// Пустой список означает, что заявку можно сохранять. Ошибок здесь
// нет: незаполненные поля — нормальное состояние формы, сохранение
// просто остаётся недоступным, пока список непуст.
func MissingFields(o *model.Order) []string {
	var missing []string

	if strings.TrimSpace(o.Number) == "" {
		missing = append(missing, "номер заявки")
	}
	if strings.TrimSpace(o.Phone) == "" {
		missing = append(missing, "телефон")
	}
	if strings.TrimSpace(o.Address) == "" {
		missing = append(missing, "адрес")
	}
	if len(o.Items) == 0 {
		missing = append(missing, "позиции заявки")
	}

	return missing
}

// Builder собирает строки таблицы. Часы вынесены в поле, чтобы в
// тестах фиксировать момент ввода.
type Builder struct {
	now func() time.Time
}

// NewBuilder создаёт Builder с системными часами.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// NewBuilderWithClock создаёт Builder с заданными часами.
func NewBuilderWithClock(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build превращает заявку в строку таблицы. Момент ввода ставится в
// момент вызова, а не открытия формы. Готовность заявки здесь не
// проверяется — это обязанность вызывающего (см. MissingFields).
func (b *Builder) Build(o *model.Order) model.Record {
	return model.Record{
		EnteredAt:  b.now(),
		Number:     o.Number,
		Phone:      o.Phone,
		Address:    o.Address,
		DeliveryAt: o.DeliveryAt,
		Comment:    o.Comment,
		OrderText:  codec.Encode(o.Items),
		TotalKop:   o.TotalKop(),
	}
}

// Row раскладывает запись в плоскую строку в порядке Columns.
func Row(r model.Record) []string {
	return []string{
		r.EnteredAt.Format(model.TimestampLayout),
		r.Number,
		r.Phone,
		r.Address,
		r.DeliveryAt.Format(model.TimestampLayout),
		r.Comment,
		r.OrderText,
		codec.FormatPriceKop(r.TotalKop),
	}
}

// FromRow восстанавливает запись из строки таблицы. Нераспознанные
// даты остаются нулевыми, нераспознанная сумма — нулём; строка при
// этом считается загруженной, а не ошибочной.
func FromRow(row []string) model.Record {
	var r model.Record

	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	if t, err := time.Parse(model.TimestampLayout, field(0)); err == nil {
		r.EnteredAt = t
	}
	r.Number = field(1)
	r.Phone = field(2)
	r.Address = field(3)
	if t, err := time.Parse(model.TimestampLayout, field(4)); err == nil {
		r.DeliveryAt = t
	}
	r.Comment = field(5)
	r.OrderText = field(6)
	if kop, err := codec.ParsePriceKop(field(7)); err == nil {
		r.TotalKop = kop
	}

	return r
}
