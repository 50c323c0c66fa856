package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nextedu/portal/config"
	"github.com/nextedu/portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// Headers read by the API.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderAPIKey    = "X-API-Key"
	// HeaderPortalUser identifies the caller for feature rollout buckets.
	HeaderPortalUser = "X-Portal-User"
)

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func (s *Server) requestLogger(r *http.Request) *logger.Logger {
	return logger.FromContext(r.Context())
}

func errField(err error) logger.Field {
	return logger.Err(err)
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// requestID accepts a caller-supplied X-Request-ID or generates a UUID,
// and attaches a request-scoped logger to the context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := context.WithValue(r.Context(), contextKeyRequestID, id)
		ctx = logger.WithContext(ctx, s.logger.WithRequestID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs every request and feeds the HTTP metrics.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		route := routePattern(r)
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveHTTP(r.Method, route, rw.statusCode, elapsed)
		}

		fields := []logger.Field{
			logger.String("method", r.Method),
			logger.String("route", route),
			logger.String("path", r.URL.Path),
			logger.Int("status", rw.statusCode),
			logger.Latency(elapsed),
			logger.String("ip", clientIP(r)),
		}
		l := s.requestLogger(r)
		switch {
		case rw.statusCode >= 500:
			l.Error("http request", fields...)
		case rw.statusCode >= 400:
			l.Warn("http request", fields...)
		default:
			l.Info("http request", fields...)
		}
	})
}

// recovery turns panics into 500 responses.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.requestLogger(r).Error("panic recovered",
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())),
					logger.String("path", r.URL.Path),
				)
				writeJSONError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured origins and answers preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID, X-Portal-User")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.config.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// rateLimit limits requests per client IP and action. Limiter errors
// let the request through.
func (s *Server) rateLimit(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.deps.RateLimiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			allowed, remaining, err := s.deps.RateLimiter.Allow(r.Context(), clientIP(r), action)
			if err != nil {
				s.requestLogger(r).Warn("rate limiter unavailable", errField(err))
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, r, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAPIKey protects admin routes. With no key configured the admin
// API is closed.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderAPIKey)
		if key == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		switch {
		case s.config.AdminAPIKey == "":
			writeJSONError(w, r, http.StatusForbidden, "admin_disabled", "Admin API is not configured")
		case key == "":
			writeJSONError(w, r, http.StatusUnauthorized, "missing_api_key", "API key is required")
		case subtle.ConstantTimeCompare([]byte(key), []byte(s.config.AdminAPIKey)) != 1:
			writeJSONError(w, r, http.StatusUnauthorized, "invalid_api_key", "Invalid API key")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// feature rejects requests when a feature flag is off for the caller.
// The rollout bucket uses the {id} path parameter or X-Portal-User.
func (s *Server) feature(name, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.deps.Features == nil {
				next.ServeHTTP(w, r)
				return
			}
			user := chi.URLParam(r, "id")
			if user == "" {
				user = r.Header.Get(HeaderPortalUser)
			}
			if !s.deps.Features.IsEnabled(name, &config.FeatureContext{UserID: user, Role: role}) {
				writeJSONError(w, r, http.StatusNotFound, "feature_disabled", "This feature is not available")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

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

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// routePattern returns the matched chi pattern so metrics do not explode
// on path parameters.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
