package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/models"
	"rentbroker/internal/services"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	IdentityKey  contextKey = "identity"
	RequestIDKey contextKey = "request_id"
)

const slowRequestThreshold = 1 * time.Second

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Response-Time"},
		AllowCredentials: !containsWildcard(allowedOrigins),
		MaxAge:           86400,
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

func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Content-Security-Policy", "default-src 'self'")
			next.ServeHTTP(w, r)
		})
	}
}

func RequestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			r = r.WithContext(ctx)

			logger.Debug().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("Incoming request")

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info().
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("Request completed")
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Authentication resolves the Authorization header once per request. Anonymous requests pass
// through without an identity; a header that fails to resolve is answered with 401.
func Authentication(resolver *services.IdentityResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				status, code := apperrors.HTTPStatus(err)
				if status == http.StatusInternalServerError {
					logger.Error().Err(err).Str("request_id", RequestID(r)).Msg("Identity resolution failed")
					respondWithError(w, status, code, "An unexpected error occurred")
					return
				}
				logger.Warn().
					Str("request_id", RequestID(r)).
					Str("kind", code).
					Str("reason", err.Error()).
					Msg("Authentication rejected")
				respondWithError(w, status, code, apperrors.Message(err, "Authentication failed"))
				return
			}

			if identity != nil {
				r = r.WithContext(context.WithValue(r.Context(), IdentityKey, identity.Clone()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated answers 401 for anonymous callers.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r) == nil {
			respondWithError(w, http.StatusUnauthorized, "unauthenticated", "Authentication is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole applies the role check of the guard at route level.
func RequireRole(guard services.Guard, role models.Role, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			if err := guard.Authorize(identity, role); err != nil {
				status, code := apperrors.HTTPStatus(err)
				var denied *services.AccessDenied
				if errors.As(err, &denied) {
					logger.Warn().
						Str("request_id", RequestID(r)).
						Int64("user_id", identity.UserID).
						Str("required_role", string(role)).
						Str("reason", string(denied.Reason)).
						Msg("Access denied")
				}
				respondWithError(w, status, code, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequestValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method == http.MethodPost || r.Method == http.MethodPut) && r.ContentLength != 0 {
				contentType := r.Header.Get("Content-Type")
				if !strings.Contains(contentType, "application/json") {
					respondWithError(w, http.StatusBadRequest, "invalid_argument", "Content-Type must be application/json")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ErrorHandling(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("error", err).
						Str("path", r.URL.Path).
						Str("method", r.Method).
						Msg("Panic recovered")

					respondWithError(w, http.StatusInternalServerError, "unexpected_error", "An unexpected error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func PerformanceMonitoring(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &timedWriter{responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK}, start: start}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			if duration > slowRequestThreshold {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Dur("duration", duration).
					Int("status", wrapped.statusCode).
					Msg("Slow request detected")
			}
		})
	}
}

// timedWriter stamps X-Response-Time right before the headers go out.
type timedWriter struct {
	responseWriter
	start time.Time
}

func (tw *timedWriter) WriteHeader(code int) {
	if !tw.wroteHeader {
		tw.Header().Set("X-Response-Time", time.Since(tw.start).String())
	}
	tw.responseWriter.WriteHeader(code)
}

func (tw *timedWriter) Write(b []byte) (int, error) {
	if !tw.wroteHeader {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.responseWriter.Write(b)
}

// GetIdentity returns a deep copy of the caller's identity, or nil for anonymous requests.
// The stored identity cannot be changed through it.
func GetIdentity(r *http.Request) *services.Identity {
	identity, ok := r.Context().Value(IdentityKey).(*services.Identity)
	if !ok {
		return nil
	}
	return identity.Clone()
}

func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(RequestIDKey).(string)
	return id
}

func respondWithError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    errorCode,
		Message: message,
	})
}
