package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"pizzeria-api/internal/middleware"
	"pizzeria-api/internal/model"
	"pizzeria-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), middleware.UserFrom(r.Context()), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// MyOrders handles GET /api/orders/my-orders requests.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListMyOrders(r.Context(), middleware.UserFrom(r.Context()))
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), middleware.UserFrom(r.Context()), orderID)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// List handles GET /api/admin/orders requests, optionally filtered by ?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAllOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status requests. The new
// status comes from the ?status= query parameter or a JSON body.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		var req model.StatusUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeInvalidJSON(w, r, h.logger)
			return
		}
		status = req.Status
	}
	if strings.TrimSpace(status) == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), middleware.UserFrom(r.Context()), orderID, status)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated",
		"order":   order,
	})
}

// History handles GET /api/admin/orders/{id}/history requests.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	history, err := h.service.StatusHistory(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "order ID is required", h.logger)
		return uuid.Nil, false
	}

	orderID, err := uuid.Parse(raw)
	if err != nil {
		// Malformed ids cannot name an order.
		writeDomainError(w, r, model.ErrOrderNotFound, h.logger)
		return uuid.Nil, false
	}
	return orderID, true
}
