// Package handler содержит HTTP-обработчики API сервиса ввода заявок.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/zayavki-crm/internal/calc"
	"github.com/mmeshcher/zayavki-crm/internal/codec"
	"github.com/mmeshcher/zayavki-crm/internal/model"
	"github.com/mmeshcher/zayavki-crm/internal/parse"
	"github.com/mmeshcher/zayavki-crm/internal/repository"
	"github.com/mmeshcher/zayavki-crm/internal/service"
)

// Принимаемые форматы даты доставки во входящих запросах.
var deliveryLayouts = []string{
	model.TimestampLayout,
	"02.01.2006 15:04",
	"02.01.2006",
}

const displayLayout = "02.01.2006 15:04"

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ParseConversation(text string) parse.Result
	Catalog(ctx context.Context) (*calc.Catalog, error)
	AddItem(ctx context.Context, order *model.Order, name string, quantity int, note string) (model.LineItem, error)
	SuggestOrderNumber(ctx context.Context) (string, error)
	LookupOrder(ctx context.Context, number string) (*model.Order, error)
	SaveOrder(ctx context.Context, order *model.Order) (model.Record, error)
	WhatsAppLink(r model.Record) string
}

// Handler реализует HTTP-обработчики API сервиса ввода заявок.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Phone         string `json:"phone,omitempty"`
	PhoneFound    bool   `json:"phone_found"`
	Number        string `json:"order_number,omitempty"`
	NumberFound   bool   `json:"order_number_found"`
	DeliveryDate  string `json:"delivery_date"`
	DateFound     bool   `json:"date_found"`
	DateCorrected bool   `json:"date_corrected"`
}

// ParseConversation извлекает подсказки полей заявки из текста переписки.
func (h *Handler) ParseConversation(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res := h.service.ParseConversation(req.Text)

	h.writeJSON(w, parseResponse{
		Phone:         res.Phone,
		PhoneFound:    res.PhoneFound,
		Number:        res.Number,
		NumberFound:   res.NumberFound,
		DeliveryDate:  res.Delivery.Date.Format("02.01.2006"),
		DateFound:     res.Delivery.Found,
		DateCorrected: res.Delivery.Corrected,
	})
}

type priceItemResponse struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// GetPriceList возвращает актуальный прайс-лист.
func (h *Handler) GetPriceList(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context())
	if err != nil {
		h.logger.Error("load price list error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	items := catalog.Items()
	resp := make([]priceItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, priceItemResponse{
			Name:  it.Name,
			Price: float64(it.PriceKop) / 100,
		})
	}

	h.writeJSON(w, resp)
}

// SuggestOrderNumber возвращает следующий свободный номер заявки.
func (h *Handler) SuggestOrderNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.SuggestOrderNumber(r.Context())
	if err != nil {
		h.logger.Error("suggest order number error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"order_number": number})
}

// itemRequest описывает позицию во входящем запросе. Price заполняется
// при редактировании сохранённой заявки: цена таких позиций была
// зафиксирована при первоначальном сохранении и по текущему прайсу не
// пересматривается. Новые позиции приходят без цены и расцениваются по
// каталогу.
type itemRequest struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price,omitempty"`
	Note     string   `json:"note,omitempty"`
}

type itemResponse struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
	Note     string  `json:"note,omitempty"`
}

type calculateRequest struct {
	Items []itemRequest `json:"items"`
}

type calculateResponse struct {
	Items     []itemResponse `json:"items"`
	Total     float64        `json:"total"`
	OrderText string         `json:"order_text"`
}

// Calculate расценивает позиции по текущему прайсу и возвращает сумму
// вместе с текстовым блоком заявки.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.priceItems(r.Context(), req.Items)
	if err != nil {
		h.writeItemError(w, err)
		return
	}

	h.writeJSON(w, calculateResponse{
		Items:     itemsResponse(order.Items),
		Total:     float64(calc.TotalKop(order.Items)) / 100,
		OrderText: codec.Encode(order.Items),
	})
}

type saveOrderRequest struct {
	Number     string        `json:"order_number"`
	Phone      string        `json:"phone"`
	Address    string        `json:"address"`
	DeliveryAt string        `json:"delivery_at"`
	Comment    string        `json:"comment,omitempty"`
	Items      []itemRequest `json:"items"`
}

type saveOrderResponse struct {
	Number       string  `json:"order_number"`
	Phone        string  `json:"phone"`
	Total        float64 `json:"total"`
	OrderText    string  `json:"order_text"`
	EnteredAt    string  `json:"entered_at"`
	DeliveryAt   string  `json:"delivery_at"`
	WhatsAppLink string  `json:"whatsapp_link"`
}

type validationResponse struct {
	MissingFields []string `json:"missing_fields"`
}

// SaveOrder сохраняет заявку: новую — по хронологии даты доставки,
// существующую — поверх прежней строки.
func (h *Handler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	var req saveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	deliveryAt, ok := parseDelivery(req.DeliveryAt)
	if !ok {
		h.writeStatusJSON(w, http.StatusUnprocessableEntity, validationResponse{
			MissingFields: []string{"дата доставки"},
		})
		return
	}

	order, err := h.priceItems(r.Context(), req.Items)
	if err != nil {
		h.writeItemError(w, err)
		return
	}

	order.Number = req.Number
	order.Phone = req.Phone
	order.Address = req.Address
	order.DeliveryAt = deliveryAt
	order.Comment = req.Comment

	rec, err := h.service.SaveOrder(r.Context(), order)
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			h.writeStatusJSON(w, http.StatusUnprocessableEntity, validationResponse{
				MissingFields: vErr.Fields,
			})
			return
		}
		h.logger.Error("save order error", zap.Error(err), zap.String("order", req.Number))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, saveOrderResponse{
		Number:       rec.Number,
		Phone:        rec.Phone,
		Total:        float64(rec.TotalKop) / 100,
		OrderText:    rec.OrderText,
		EnteredAt:    rec.EnteredAt.Format(model.TimestampLayout),
		DeliveryAt:   rec.DeliveryAt.Format(displayLayout),
		WhatsAppLink: h.service.WhatsAppLink(rec),
	})
}

type orderResponse struct {
	Number     string         `json:"order_number"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	DeliveryAt string         `json:"delivery_at"`
	Comment    string         `json:"comment,omitempty"`
	Items      []itemResponse `json:"items"`
	Total      float64        `json:"total"`
}

// GetOrder возвращает сохранённую заявку по номеру.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	order, err := h.service.LookupOrder(r.Context(), number)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("lookup order error", zap.Error(err), zap.String("order", number))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, orderResponse{
		Number:     order.Number,
		Phone:      order.Phone,
		Address:    order.Address,
		DeliveryAt: order.DeliveryAt.Format(displayLayout),
		Comment:    order.Comment,
		Items:      itemsResponse(order.Items),
		Total:      float64(calc.TotalKop(order.Items)) / 100,
	})
}

// priceItems расценивает позиции запроса: с явной ценой — как есть,
// остальные — по текущему каталогу.
func (h *Handler) priceItems(ctx context.Context, items []itemRequest) (*model.Order, error) {
	order := &model.Order{}
	for _, it := range items {
		if it.Price != nil {
			kop := int64(math.Round(*it.Price * 100))
			if _, err := calc.AddPricedItem(order, it.Name, it.Quantity, kop, it.Note); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := h.service.AddItem(ctx, order, it.Name, it.Quantity, it.Note); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (h *Handler) writeItemError(w http.ResponseWriter, err error) {
	if errors.Is(err, calc.ErrUnknownItem) || errors.Is(err, calc.ErrInvalidQuantity) {
		h.writeStatusJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	h.logger.Error("price items error", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	h.writeStatusJSON(w, http.StatusOK, v)
}

func (h *Handler) writeStatusJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

func itemsResponse(items []model.LineItem) []itemResponse {
	resp := make([]itemResponse, 0, len(items))
	for _, li := range items {
		resp = append(resp, itemResponse{
			Name:     li.Name,
			Quantity: li.Quantity,
			Price:    float64(li.PriceKop) / 100,
			Subtotal: float64(li.SubtotalKop()) / 100,
			Note:     li.Note,
		})
	}
	return resp
}

func parseDelivery(s string) (time.Time, bool) {
	for _, layout := range deliveryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
