package server

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/auth"
	"github.com/gokatarajesh/mymath-exams/internal/config"
	"github.com/gokatarajesh/mymath-exams/internal/logging"
	"github.com/gokatarajesh/mymath-exams/internal/session"
	httperrors "github.com/gokatarajesh/mymath-exams/pkg/http/errors"
)

// Routes is a group of endpoints that mounts itself on the mux.
type Routes interface {
	Mount(mux *http.ServeMux)
}

// Options carries what the HTTP layer needs beyond config.
type Options struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Tokens    auth.TokenValidator
	EndVisit  http.HandlerFunc
	RouteSets []Routes
}

// NewHTTPServer wires base routes (health, metrics, ping), the API route
// groups and the middleware chain.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, opts Options) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewHandler(cfg, logger, opts),
	}
}

// NewHandler builds the root handler. Requests pass CORS, then get a visit
// id, a request logger and finally optional bearer authentication.
func NewHandler(cfg *config.App, logger zerolog.Logger, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), opts.Pool, opts.Redis); err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if opts.EndVisit != nil {
		mux.HandleFunc("DELETE /v1/visit", opts.EndVisit)
	}
	for _, routes := range opts.RouteSets {
		routes.Mount(mux)
	}

	var handler http.Handler = mux
	if opts.Tokens != nil {
		handler = auth.AuthMiddleware(opts.Tokens, logger)(handler)
	}
	handler = logging.Middleware(logger, visitField)(handler)
	handler = session.Middleware(session.CookieOptions{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	})(handler)
	handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})(handler)
	return handler
}

func visitField(r *http.Request) (string, string) {
	return "visit_id", session.VisitID(r.Context())
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if pool != nil {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
	}
	if redis != nil {
		if err := redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
