// Package calc реализует калькулятор позиций заявки.
package calc

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/zayavki-crm/internal/model"
)

// ErrUnknownItem возвращается при попытке добавить позицию, которой нет в прайс-листе.
var (
	ErrUnknownItem = errors.New("item not found in price list")
	// ErrInvalidQuantity возвращается для количества меньше единицы.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrIndexOutOfRange возвращается при удалении позиции по несуществующему индексу.
	ErrIndexOutOfRange = errors.New("item index out of range")
)

// Catalog — снимок прайс-листа для поиска цены по наименованию.
type Catalog struct {
	items  []model.PriceItem
	byName map[string]int64
}

// NewCatalog строит каталог по списку позиций прайс-листа.
// Служебная позиция-заглушка в каталог не попадает.
func NewCatalog(items []model.PriceItem) *Catalog {
	c := &Catalog{byName: make(map[string]int64, len(items))}
	for _, it := range items {
		if it.Name == model.PlaceholderItem {
			continue
		}
		if _, ok := c.byName[it.Name]; ok {
			continue
		}
		c.byName[it.Name] = it.PriceKop
		c.items = append(c.items, it)
	}
	return c
}

// Items возвращает позиции каталога в исходном порядке.
func (c *Catalog) Items() []model.PriceItem {
	return c.items
}

// Price возвращает цену позиции в копейках.
func (c *Catalog) Price(name string) (int64, bool) {
	price, ok := c.byName[name]
	return price, ok
}

// AddItem добавляет позицию в заявку. Цена берётся из каталога на
// момент вызова и фиксируется в позиции.
func AddItem(catalog *Catalog, order *model.Order, name string, quantity int, note string) (model.LineItem, error) {
	if quantity < 1 {
		return model.LineItem{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}

	price, ok := catalog.Price(name)
	if !ok || name == model.PlaceholderItem {
		return model.LineItem{}, fmt.Errorf("%w: %s", ErrUnknownItem, name)
	}

	li := model.LineItem{
		Name:     name,
		Quantity: quantity,
		PriceKop: price,
		Note:     note,
	}
	order.Items = append(order.Items, li)

	return li, nil
}

// AddPricedItem добавляет позицию с уже зафиксированной ценой. Так
// попадают в заявку позиции сохранённой ранее заявки при её
// редактировании: их цена не пересматривается по текущему прайсу, и
// сами позиции не обязаны в нём присутствовать. Отрицательная цена
// (битые исторические данные) приводится к нулю.
func AddPricedItem(order *model.Order, name string, quantity int, priceKop int64, note string) (model.LineItem, error) {
	if quantity < 1 {
		return model.LineItem{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if name == "" || name == model.PlaceholderItem {
		return model.LineItem{}, fmt.Errorf("%w: %s", ErrUnknownItem, name)
	}
	if priceKop < 0 {
		priceKop = 0
	}

	li := model.LineItem{
		Name:     name,
		Quantity: quantity,
		PriceKop: priceKop,
		Note:     note,
	}
	order.Items = append(order.Items, li)

	return li, nil
}

// RemoveItem удаляет позицию по индексу, сохраняя порядок остальных.
func RemoveItem(items []model.LineItem, index int) ([]model.LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	res := make([]model.LineItem, 0, len(items)-1)
	res = append(res, items[:index]...)
	res = append(res, items[index+1:]...)

	return res, nil
}

// TotalKop возвращает сумму всех позиций в копейках. Подсчёт общий на
// весь сервис, см. model.TotalKop.
func TotalKop(items []model.LineItem) int64 {
	return model.TotalKop(items)
}
