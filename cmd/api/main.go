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

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_recommender/internal/adapters/http_server"
	"hotel_recommender/internal/adapters/observability"
	redisad "hotel_recommender/internal/adapters/redis"
	"hotel_recommender/internal/app"
	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/shared"
	"hotel_recommender/internal/storage/modelfile"
	mysqlrepo "hotel_recommender/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// model store
	var store domain.ModelStore
	switch cfg.ModelStore {
	case shared.StoreMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		store = mysqlrepo.New(db)
	default:
		store = modelfile.New(cfg.ModelPath)
	}

	// cache is optional: without redis every request is computed
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, caching disabled")
		} else {
			cache = rc
			defer rc.Close()
		}
		cancel()
	}

	recs := app.NewRecommendationService(store, cache, cfg.CacheTTL, cfg.DefaultK, cfg.MaxK)
	if err := recs.Reload(context.Background()); err != nil {
		if !errors.Is(err, domain.ErrModelNotFitted) {
			log.Fatal().Err(err).Msg("model load failed")
		}
		log.Warn().Msg("no trained model yet; /v1/recommendations returns 503 until one is loaded")
	}

	// http
	srv := server.New(server.Options{RateRPS: cfg.RateLimitRPS, RateBurst: cfg.RateLimitBurst})
	if cfg.MetricsAddr == "" {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	srv.MountHandlers(&server.Handlers{Recs: recs})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	// SIGHUP reloads the model; SIGINT/SIGTERM shut down.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for s := range sig {
			if s == syscall.SIGHUP {
				if err := recs.Reload(context.Background()); err != nil {
					log.Error().Err(err).Msg("model reload failed")
				}
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = httpSrv.Shutdown(ctx)
			cancel()
			return
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
