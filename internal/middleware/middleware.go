package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pizzeria-api/internal/model"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Authenticator resolves bearer tokens to users.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated user stored in ctx, or nil.
func UserFrom(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey{}).(*model.User)
	return user
}

// CORS allows browser calls from the given origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: !containsWildcard(allowedOrigins),
		MaxAge:           300,
	})
	return c.Handler
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// BearerAuth validates the access token from the Authorization header and
// stores the resolved user in the request context.
func BearerAuth(authenticator Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, r, http.StatusUnauthorized, model.ErrUnauthorised)
				return
			}

			user, err := authenticator.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				if errors.Is(err, model.ErrUpstreamUnavailable) {
					logger.Error().Err(err).Str("path", r.URL.Path).Msg("token subject lookup timed out")
					w.Header().Set("Retry-After", "1")
					writeError(w, r, http.StatusServiceUnavailable, model.ErrUpstreamUnavailable)
					return
				}
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, r, http.StatusUnauthorized, model.ErrUnauthorised)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// It must run after BearerAuth.
func RequireAdmin(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFrom(r.Context())
			if user == nil {
				writeError(w, r, http.StatusUnauthorized, model.ErrUnauthorised)
				return
			}
			if !user.IsAdmin {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("user_id", user.ID.String()).
					Msg("admin route refused")
				writeError(w, r, http.StatusForbidden, model.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logging logs HTTP requests with timing information.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			logger.Info().
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// Recovery recovers from panics and returns a 500 error.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error().
						Interface("panic", err).
						Str("request_id", chimiddleware.GetReqID(r.Context())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("panic recovered")

					writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
						Error:         model.ErrCodeInternalError,
						Message:       "internal server error",
						CorrelationID: chimiddleware.GetReqID(r.Context()),
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err *model.DomainError) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         err.Code,
		Message:       err.Message,
		CorrelationID: chimiddleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
