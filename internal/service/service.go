// Package service реализует бизнес-логику сервиса ввода заявок.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mmeshcher/zayavki-crm/internal/calc"
	"github.com/mmeshcher/zayavki-crm/internal/codec"
	"github.com/mmeshcher/zayavki-crm/internal/model"
	"github.com/mmeshcher/zayavki-crm/internal/notify"
	"github.com/mmeshcher/zayavki-crm/internal/parse"
	"github.com/mmeshcher/zayavki-crm/internal/record"
	"github.com/mmeshcher/zayavki-crm/internal/repository"
)

// Store описывает контракт книги заявок, используемый сервисом.
type Store interface {
	Close() error
	LoadPriceList(ctx context.Context) ([]model.PriceItem, error)
	Append(ctx context.Context, r model.Record) error
	InsertAt(ctx context.Context, index int, r model.Record) error
	UpdateAt(ctx context.Context, index int, r model.Record) error
	FindInsertionIndex(ctx context.Context, deliveryAt time.Time) (int, error)
	FindByOrderNumber(ctx context.Context, number string) (repository.StoredRecord, error)
	NextOrderNumber(ctx context.Context) (string, error)
}

// ValidationError перечисляет незаполненные или некорректные поля
// заявки. Это ожидаемое состояние формы, а не сбой: сохранение
// отклоняется, введённые данные остаются на месте.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "не заполнены поля: " + strings.Join(e.Fields, ", ")
}

// Service содержит бизнес-логику ввода заявок.
type Service struct {
	store        Store
	builder      *record.Builder
	managerPhone string
	now          func() time.Time

	catalogTTL time.Duration
	mu         sync.Mutex
	catalog    *calc.Catalog
	loadedAt   time.Time
}

// NewService создаёт сервис поверх указанного хранилища.
func NewService(store Store, managerPhone string, catalogTTL time.Duration) *Service {
	return &Service{
		store:        store,
		builder:      record.NewBuilder(),
		managerPhone: managerPhone,
		now:          time.Now,
		catalogTTL:   catalogTTL,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Catalog возвращает каталог позиций прайс-листа. Прайс перечитывается
// из хранилища не чаще, чем раз в catalogTTL.
func (s *Service) Catalog(ctx context.Context) (*calc.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog != nil && s.now().Sub(s.loadedAt) < s.catalogTTL {
		return s.catalog, nil
	}

	items, err := s.store.LoadPriceList(ctx)
	if err != nil {
		if s.catalog != nil {
			// Устаревший каталог лучше, чем отказ формы целиком.
			return s.catalog, nil
		}
		return nil, err
	}

	s.catalog = calc.NewCatalog(items)
	s.loadedAt = s.now()

	return s.catalog, nil
}

// ParseConversation извлекает подсказки для полей заявки из текста переписки.
func (s *Service) ParseConversation(text string) parse.Result {
	return parse.Conversation(text, s.now())
}

// AddItem добавляет позицию прайс-листа в заявку.
func (s *Service) AddItem(ctx context.Context, order *model.Order, name string, quantity int, note string) (model.LineItem, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return model.LineItem{}, err
	}
	return calc.AddItem(catalog, order, name, quantity, note)
}

// RemoveItem удаляет позицию заявки по индексу.
func (s *Service) RemoveItem(order *model.Order, index int) error {
	items, err := calc.RemoveItem(order.Items, index)
	if err != nil {
		return err
	}
	order.Items = items
	return nil
}

// SuggestOrderNumber возвращает следующий свободный номер заявки.
func (s *Service) SuggestOrderNumber(ctx context.Context) (string, error) {
	return s.store.NextOrderNumber(ctx)
}

// LookupOrder восстанавливает заявку из сохранённой записи по номеру.
func (s *Service) LookupOrder(ctx context.Context, number string) (*model.Order, error) {
	sr, err := s.store.FindByOrderNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	r := sr.Record
	return &model.Order{
		Number:     r.Number,
		Phone:      r.Phone,
		Address:    r.Address,
		DeliveryAt: r.DeliveryAt,
		Comment:    r.Comment,
		Items:      codec.Decode(r.OrderText),
	}, nil
}

// SaveOrder сохраняет заявку. Новая заявка вставляется в книгу по
// хронологии даты доставки, существующая (найденная по номеру)
// перезаписывается на месте. При любой ошибке заявка в памяти не
// меняется, оператор может повторить сохранение.
func (s *Service) SaveOrder(ctx context.Context, order *model.Order) (model.Record, error) {
	missing := record.MissingFields(order)

	phone, phoneOK := parse.CanonicalPhone(order.Phone)
	if strings.TrimSpace(order.Phone) != "" && !phoneOK {
		missing = append(missing, "телефон в формате 7XXXXXXXXXX")
	}

	if len(missing) > 0 {
		return model.Record{}, &ValidationError{Fields: missing}
	}

	canonical := *order
	canonical.Phone = phone
	rec := s.builder.Build(&canonical)

	sr, err := s.store.FindByOrderNumber(ctx, order.Number)
	switch {
	case err == nil:
		if err := s.store.UpdateAt(ctx, sr.Index, rec); err != nil {
			return model.Record{}, err
		}
	case errors.Is(err, repository.ErrOrderNotFound):
		index, err := s.store.FindInsertionIndex(ctx, rec.DeliveryAt)
		if err != nil {
			return model.Record{}, err
		}
		if err := s.store.InsertAt(ctx, index, rec); err != nil {
			return model.Record{}, err
		}
	default:
		return model.Record{}, err
	}

	order.Phone = phone

	return rec, nil
}

// WhatsAppLink строит ссылку на отправку сводки заявки менеджеру.
func (s *Service) WhatsAppLink(r model.Record) string {
	return notify.WhatsAppLink(s.managerPhone, r)
}
