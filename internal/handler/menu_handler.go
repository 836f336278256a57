package handler

import (
	"net/http"

	"pizzeria-api/internal/model"
	"pizzeria-api/internal/service"

	"github.com/rs/zerolog"
)

// MenuHandler handles catalog HTTP requests.
type MenuHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.CatalogService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger.With().Str("handler", "menu").Logger(),
	}
}

// Pizzas handles GET /api/menu/pizzas requests.
func (h *MenuHandler) Pizzas(w http.ResponseWriter, r *http.Request) {
	pizzas, err := h.service.ListPizzas(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, pizzas)
}

// Items handles GET /api/menu/items requests.
func (h *MenuHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenuItems(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Categories handles GET /api/menu/categories requests.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Categories())
}

// CreatePizza handles POST /api/admin/pizzas requests.
func (h *MenuHandler) CreatePizza(w http.ResponseWriter, r *http.Request) {
	var pizza model.Pizza
	if err := decodeJSON(w, r, &pizza); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	created, err := h.service.CreatePizza(r.Context(), &pizza)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// CreateMenuItem handles POST /api/admin/menu-items requests.
func (h *MenuHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var item model.MenuItem
	if err := decodeJSON(w, r, &item); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	created, err := h.service.CreateMenuItem(r.Context(), &item)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
