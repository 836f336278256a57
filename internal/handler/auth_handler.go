package handler

import (
	"net/http"

	"pizzeria-api/internal/middleware"
	"pizzeria-api/internal/model"
	"pizzeria-api/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles account HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/auth/me requests.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		writeDomainError(w, r, model.ErrUnauthorised, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
