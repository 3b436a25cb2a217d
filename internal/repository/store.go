// Package repository содержит реализации хранилища заявок и прайс-листа.
//
// Хранилище позиционное: строки книги заявок адресуются индексом, как
// строки листа таблицы. Оба бэкенда — книга XLSX и PostgreSQL —
// реализуют один и тот же контракт, включая вставку по индексу.
package repository

import (
	"errors"

	"github.com/mmeshcher/zayavki-crm/internal/model"
)

// ErrOrderNotFound возвращается, если заявка с указанным номером не найдена.
var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrRowOutOfRange возвращается при обращении к несуществующей строке книги.
	ErrRowOutOfRange = errors.New("row index out of range")
)

// StoredRecord — запись вместе с её позицией в книге заявок.
type StoredRecord struct {
	Index  int
	Record model.Record
}
