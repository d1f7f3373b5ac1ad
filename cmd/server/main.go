package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kinship/internal/family"
	familyservice "kinship/internal/family/service"
	familystore "kinship/internal/family/store"
	"kinship/internal/platform/config"
	"kinship/internal/platform/httpserver"
	"kinship/internal/platform/logger"
	"kinship/internal/platform/metrics"
	"kinship/internal/platform/middleware"
	redisplatform "kinship/internal/platform/redis"
	"kinship/internal/profile"
	profilehandler "kinship/internal/profile/handler"
	"kinship/internal/taxonomy"
	"kinship/internal/taxonomy/cache"
	taxonomyservice "kinship/internal/taxonomy/service"
	taxonomystore "kinship/internal/taxonomy/store"
	"kinship/pkg/platform/middleware/requesttime"
	"kinship/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	m := metrics.New()

	// Stores: postgres when configured, in-memory for local development.
	var (
		taxStore  taxonomystore.Store
		famStore  familystore.Store
		runner    tx.Runner
		healthzDB *sql.DB
	)
	if cfg.PostgresURL != "" {
		db, err := sql.Open("pgx", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		cancel()
		defer db.Close()
		taxStore = taxonomystore.NewPostgres(db)
		famStore = familystore.NewPostgres(db)
		runner = tx.NewSQLRunner(db)
		healthzDB = db
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory stores")
		taxStore = taxonomystore.NewInMemory()
		famStore = familystore.NewInMemory()
		runner = tx.NewNoopRunner()
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		taxStore = cache.New(taxStore, cache.NewRedisKV(redisClient.Client), config.TaxonomyCacheTTL, log, m)
	}

	taxonomySvc := taxonomy.NewService(taxStore,
		taxonomyservice.WithLogger(log),
		taxonomyservice.WithMetrics(m),
	)
	familySvc := family.NewService(famStore, familyservice.WithLogger(log))
	profileSvc := profile.New(familySvc, taxonomySvc, runner,
		profile.WithLogger(log),
		profile.WithMetrics(m),
	)

	taxonomyHandler := taxonomy.NewHandler(taxonomySvc, log)
	familyHandler := family.NewHandler(familySvc, log)
	profileHandler := profilehandler.New(profileSvc, log)

	validator := middleware.NewJWTValidator(cfg.JWTSigningKey)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(requesttime.Middleware)

	var ping func(ctx context.Context) error
	if healthzDB != nil {
		ping = healthzDB.PingContext
	}
	router.Get("/healthz", httpserver.HealthHandler(ping))
	router.Handle("/metrics", promhttp.Handler())

	// Member-facing routes.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))
		taxonomyHandler.RegisterPublic(r)
		familyHandler.Register(r)
		profileHandler.Register(r)
	})

	// Operator routes, disabled when no token hash is configured.
	if cfg.OperatorTokenHash != "" {
		router.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireOperatorToken(cfg.OperatorTokenHash, log))
			taxonomyHandler.RegisterAdmin(r)
			profileHandler.RegisterAdmin(r)
		})
	} else {
		log.Warn("OPERATOR_TOKEN_HASH not set, operator routes disabled")
	}

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
