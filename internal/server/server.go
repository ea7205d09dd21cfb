package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/bunge-labs/billbot/config"
	"github.com/bunge-labs/billbot/engine"
	"github.com/bunge-labs/billbot/internal/kb"
	"github.com/bunge-labs/billbot/internal/store"
	"github.com/bunge-labs/billbot/internal/telemetry"
	"github.com/bunge-labs/billbot/provider"
	"github.com/bunge-labs/billbot/repository"
)

// Run wires the full service and blocks serving HTTP.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()
	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return err
	}
	_ = Migrate("file://migrations", dsn, "up", 0)

	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	ix, err := kb.Open(cfg.KB.IndexPath)
	if err != nil {
		return err
	}

	metrics := telemetry.New()
	syncer := kb.NewSynchronizer(st, ix, nil)
	if n, err := syncer.Sync(ctx); err != nil {
		// The index keeps serving whatever the last sweep left behind.
		log.Printf("initial sync failed: %v", err)
		metrics.SyncRuns.WithLabelValues("failed").Inc()
	} else {
		metrics.SyncRuns.WithLabelValues("ok").Inc()
		metrics.SyncedRecords.Add(float64(n))
	}

	prov, err := provider.NewProvider(provider.Client(cfg.LLM.Provider), cfg.LLM)
	if err != nil {
		return err
	}
	if err := prov.Ping(ctx); err != nil {
		log.Printf("generation backend unreachable at startup: %v", err)
	}

	eng := engine.New(ix, prov, cfg.KB.Corpus, cfg.LLM.MaxTokens, cfg.LLM.Temperature, metrics, nil)

	// Redis backs the conversation log and the sync lock; an empty host
	// disables both.
	var conversations repository.ConversationRepository
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s:%s): %w", cfg.Redis.Host, cfg.Redis.Port, err)
		}
		conversations, err = repository.NewConversationRepository(ctx, repository.RepoTypeRedis, cfg.Redis)
		if err != nil {
			return err
		}
	}

	sched := &SyncScheduler{
		Sync:     syncer,
		CronSpec: cfg.KB.SyncCron,
		Rdb:      rdb,
		Metrics:  metrics,
		Stop:     make(chan struct{}),
	}
	sched.Start()

	wh := &WebhookHandler{
		Engine:        eng,
		Index:         ix,
		Conversations: conversations,
		Logger:        log.New(log.Writer(), "[WEBHOOK] ", log.LstdFlags),
	}
	wh.Register(e)

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10010"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
