package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/caretrack/service-auth-go/internal/event"
	eventrepo "github.com/caretrack/service-auth-go/internal/event/repo"
	"github.com/caretrack/service-auth-go/internal/profile"
	profilerepo "github.com/caretrack/service-auth-go/internal/profile/repo"
	"github.com/caretrack/service-auth-go/internal/token"
	"github.com/caretrack/service-auth-go/internal/user"
	userrepo "github.com/caretrack/service-auth-go/internal/user/repo"
	"github.com/caretrack/service-auth-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware tags every request with a ksuid and echoes it back in
// the X-Request-Id header so log lines can be correlated with responses.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = utilities.NewKSUID()
			}
			w.Header().Set("X-Request-Id", id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"request_id", lrw.Header().Get("X-Request-Id"),
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes wires repositories, services, and handlers onto the
// standard library's http.ServeMux and wraps the mux with the middleware
// chain. Bearer-gated routes go through token.RequireAuth.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokenCfg token.Config) http.Handler {
	mux := http.NewServeMux()

	tokenSvc := token.NewService(tokenCfg)
	userSvc := user.NewService(userrepo.NewUserRepo(db), nil)
	profileSvc := profile.NewService(profilerepo.NewProfileRepo(db), logger)
	eventSvc := event.NewService(eventrepo.NewEventRepo(db))

	userHandler := user.NewHandler(userSvc, tokenSvc, profileSvc, logger)
	profileHandler := profile.NewHandler(profileSvc, logger)
	eventHandler := event.NewHandler(eventSvc, logger)

	auth := token.RequireAuth(tokenSvc, logger)

	// open routes
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /register", userHandler.Register)
	mux.HandleFunc("POST /login", userHandler.Login)

	// bearer-gated routes
	mux.Handle("POST /complete_registration", auth(http.HandlerFunc(profileHandler.Complete)))
	mux.Handle("GET /profile", auth(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("GET /events", auth(http.HandlerFunc(eventHandler.List)))
	mux.Handle("POST /medication_log", auth(http.HandlerFunc(eventHandler.LogMedication)))
	mux.Handle("POST /log_event", auth(http.HandlerFunc(eventHandler.Log)))
	mux.Handle("GET /protected", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := token.UserIDFrom(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "Protected resource accessed.",
			"user_id": userID,
		})
	})))

	// request id outermost so the correlation ID is set before the logger
	// (or any later middleware) runs
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return RequestIDMiddleware()(handler)
}
