// Package http fronts internal/transport/grpc.Server with a plain REST
// surface. The teacher's gateway relied on grpc-gateway's generated
// *.pb.gw.go transcoding stubs, produced by protoc-gen-grpc-gateway; with
// no protoc available here, handlers call the control plane's Go methods
// directly instead of transcoding HTTP/JSON onto a gRPC dial.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rezkam/bulkscroll/internal/auth"
	"github.com/rezkam/bulkscroll/internal/http/handler"
	mw "github.com/rezkam/bulkscroll/internal/http/middleware"
)

// DefaultMaxBodyBytes is the default maximum request body size (1MB).
const DefaultMaxBodyBytes = 1 << 20

// Config holds configuration for the HTTP router.
type Config struct {
	MaxBodyBytes int64
}

// NewRouter creates and configures the Chi router with all middleware and
// routes. Applies defaults for zero or invalid config values.
func NewRouter(server *handler.Server, authenticator *auth.Authenticator, config Config) *chi.Mux {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.MaxBodyBytes(config.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			slog.ErrorContext(r.Context(), "failed to write health check response", "error", err)
		}
	})

	r.Route("/v1", func(r chi.Router) {
		authMiddleware := mw.NewAuth(authenticator)

		r.With(authMiddleware.Validate).Post("/runs", server.StartRun)
		r.Get("/runs/{request_id}/status", server.GetStatus) // status is unauthenticated (spec: observers may poll without the run's own key)
		r.With(authMiddleware.Validate).Post("/runs/{request_id}/cancel", server.CancelRun)
	})

	return r
}
