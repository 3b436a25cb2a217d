// Package model содержит доменные сущности сервиса ввода заявок.
package model

import "time"

// TimestampLayout — формат хранения дат в таблице заявок. Формат
// фиксированный: строки с датой в другом формате при поиске позиции
// вставки пропускаются, а не интерпретируются.
const TimestampLayout = "02.01.2006 15:04:05"

// PlaceholderItem — служебная позиция прайс-листа "ничего не выбрано".
const PlaceholderItem = "--- Выберите позицию ---"

// PriceItem описывает одну позицию прайс-листа: наименование и цену в копейках.
type PriceItem struct {
	Name     string
	PriceKop int64
}

// LineItem описывает одну позицию заявки. Цена фиксируется в момент
// добавления позиции и не отслеживает последующие изменения прайса.
type LineItem struct {
	Name     string
	Quantity int
	PriceKop int64
	Note     string
}

// SubtotalKop возвращает стоимость позиции в копейках.
func (li LineItem) SubtotalKop() int64 {
	return int64(li.Quantity) * li.PriceKop
}

// Order представляет заявку в процессе заполнения.
type Order struct {
	Number     string
	Phone      string
	Address    string
	DeliveryAt time.Time
	Comment    string
	Items      []LineItem
}

// TotalKop возвращает сумму позиций в копейках. Позиция с испорченной
// ценой (нераспознанная строка декодируется в ноль, битые данные могут
// дать отрицательное значение) учитывается как ноль: одна плохая строка
// не портит сумму заявки целиком. Для пустого списка возвращается 0.
func TotalKop(items []LineItem) int64 {
	var total int64
	for _, li := range items {
		if sub := li.SubtotalKop(); sub > 0 {
			total += sub
		}
	}
	return total
}

// TotalKop возвращает сумму заявки в копейках.
func (o Order) TotalKop() int64 {
	return TotalKop(o.Items)
}

// Record — строка листа ЗАЯВКИ в том виде, в котором она хранится.
type Record struct {
	EnteredAt  time.Time
	Number     string
	Phone      string
	Address    string
	DeliveryAt time.Time
	Comment    string
	OrderText  string
	TotalKop   int64
}
