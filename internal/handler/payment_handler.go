package handler

import (
	"net/http"

	"pizzeria-api/internal/middleware"
	"pizzeria-api/internal/model"
	"pizzeria-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler handles payment HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Methods handles GET /api/payments/methods requests.
func (h *PaymentHandler) Methods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"methods": h.service.AvailableMethods()})
}

// CreateIntent handles POST /api/orders/{id}/payment-intent requests.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, model.ErrOrderNotFound, h.logger)
		return
	}

	var req model.PaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	intent, err := h.service.CreateIntentForOrder(r.Context(), middleware.UserFrom(r.Context()), orderID, &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, intent)
}

// Confirm handles POST /api/orders/{id}/payments/{intentId}/confirm requests.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, model.ErrOrderNotFound, h.logger)
		return
	}

	var req model.PaymentConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	intent, err := h.service.Confirm(r.Context(), middleware.UserFrom(r.Context()), orderID, chi.URLParam(r, "intentId"), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, intent)
}

// Refund handles POST /api/admin/payments/{intentId}/refund requests.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req model.RefundRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	refund, err := h.service.Refund(r.Context(), chi.URLParam(r, "intentId"), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, refund)
}
