package router

import (
	"net/http"

	"pizzeria-api/internal/handler"
	"pizzeria-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth    *handler.AuthHandler
	Menu    *handler.MenuHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	authenticator middleware.Authenticator,
	allowedOrigins []string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID -> Recovery -> Logging -> CORS
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"message": "Pizzeria API", "status": "running"}`))
		})

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Get("/menu/pizzas", h.Menu.Pizzas)
		r.Get("/menu/items", h.Menu.Items)
		r.Get("/menu/categories", h.Menu.Categories)

		r.Get("/payments/methods", h.Payment.Methods)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(authenticator, logger))

			r.Get("/auth/me", h.Auth.Me)

			r.Post("/orders", h.Order.Create)
			r.Get("/orders/my-orders", h.Order.MyOrders)
			r.Get("/orders/{id}", h.Order.GetByID)
			r.Post("/orders/{id}/payment-intent", h.Payment.CreateIntent)
			r.Post("/orders/{id}/payments/{intentId}/confirm", h.Payment.Confirm)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logger))

				r.Get("/orders", h.Order.List)
				r.Put("/orders/{id}/status", h.Order.UpdateStatus)
				r.Get("/orders/{id}/history", h.Order.History)
				r.Post("/pizzas", h.Menu.CreatePizza)
				r.Post("/menu-items", h.Menu.CreateMenuItem)
				r.Post("/payments/{intentId}/refund", h.Payment.Refund)
			})
		})
	})

	return r
}
