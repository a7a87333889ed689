package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/auth"
	"github.com/gokatarajesh/mymath-exams/internal/auth/jwt"
	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	"github.com/gokatarajesh/mymath-exams/internal/config"
	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
	"github.com/gokatarajesh/mymath-exams/internal/db/repository"
	"github.com/gokatarajesh/mymath-exams/internal/exam"
	"github.com/gokatarajesh/mymath-exams/internal/leaderboard"
	"github.com/gokatarajesh/mymath-exams/internal/logging"
	"github.com/gokatarajesh/mymath-exams/internal/server"
	"github.com/gokatarajesh/mymath-exams/internal/session"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps logger, Postgres, Redis, the exam engine and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	q := queries.New(pool)
	userRepo := repository.NewUserRepository(q)
	catalogRepo := repository.NewCatalogRepository(q)
	attemptRepo := repository.NewAttemptRepository(q)
	answerRepo := repository.NewAnswerRepository(q)

	authSvc := auth.NewService(userRepo, auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret:  []byte(cfg.Security.JWTSecret),
			RefreshSecret: []byte(cfg.Security.JWTSecret + "_refresh"),
			Issuer:        cfg.Name,
		},
	}, logger)

	var oauthSvc *auth.OAuthService
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		redirectURL := cfg.OAuth.GoogleRedirectURL
		if redirectURL == "" {
			redirectURL = fmt.Sprintf("http://%s/v1/oauth/google/callback", cfg.HTTPAddr)
		}
		oauthSvc = auth.NewOAuthService(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, redirectURL, logger)
		logger.Info().Msg("OAuth service initialized")
	} else {
		logger.Warn().Msg("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID or GOOGLE_OAUTH_CLIENT_SECRET)")
	}
	authHandlers := auth.NewHTTPHandlers(authSvc, oauthSvc, cfg.Session.CookieSecure, logger)

	catalogSvc := catalog.NewService(catalogRepo, catalog.NewCache(redisClient, cfg.Catalog.CacheTTL), logger)
	visits := session.NewStore(redisClient, cfg.Session.TTL, logger)
	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{TopN: cfg.Leaderboard.TopN})

	engine := exam.NewEngine(
		catalogSvc,
		exam.NewLedgerProgress(attemptRepo, answerRepo, visits),
		exam.NewVisitProgress(visits),
		attemptRepo,
		exam.EngineOptions{Scores: leaderboardSvc},
		logger,
	)
	examHandlers := exam.NewHTTPHandlers(engine, auth.ContextIdentity{}, visits, logger)
	lbHandler := leaderboard.NewHTTPHandler(leaderboardSvc, catalogSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Options{
		Pool:      pool,
		Redis:     redisClient,
		Tokens:    authSvc,
		EndVisit:  visits.HandleEndVisit,
		RouteSets: []server.Routes{authHandlers, examHandlers, lbHandler},
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
