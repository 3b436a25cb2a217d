package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/zayavki-crm/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса ввода заявок.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/conversation/parse", h.ParseConversation)
		r.Get("/price", h.GetPriceList)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/next-number", h.SuggestOrderNumber)
			r.Post("/calculate", h.Calculate)
			r.Post("/", h.SaveOrder)
			r.Get("/{number}", h.GetOrder)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
