// Package main is the entry point for the API server
//
//	@title			planeat API
//	@version		1.0
//	@description	Recipe planning API: recipes, social features and the per-user meal agenda.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in						header
//	@name					Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"planeat-api/internal/config"
	"planeat-api/internal/db"
	"planeat-api/internal/esx"
	"planeat-api/internal/httpx"
	"planeat-api/internal/httpx/auth"
	"planeat-api/internal/httpx/kit"
	"planeat-api/internal/httpx/recipes"
	"planeat-api/internal/jobs"
	"planeat-api/internal/lockx"
	"planeat-api/internal/logx"
	"planeat-api/internal/metrics"
	"planeat-api/internal/mqx"
	"planeat-api/internal/planner"
	"planeat-api/internal/redisx"
	"planeat-api/internal/server"
	"planeat-api/internal/store"

	_ "planeat-api/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load config (env first; optional Apollo override)
	cfg, cfgStore, apClose, err := config.Load()
	if err != nil {
		panic(err)
	}
	if apClose != nil {
		defer apClose()
	}

	logx.Init(cfg.Log.Level, cfg.Log.Format)
	mainLogger := logx.GetScope("main")
	defer func() { _ = logx.Sync() }()

	mainLogger.Info("config loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.Server.Addr),
		zap.String("log.level", cfg.Log.Level),
		zap.String("log.format", cfg.Log.Format),
	)

	if err := auth.CheckConfig(cfg); err != nil {
		mainLogger.Fatal("jwt config", zap.Error(err))
	}

	drv, closeDB, err := db.Open(cfg)
	if err != nil {
		mainLogger.Fatal("open db error", zap.Error(err))
	}
	defer closeDB()

	if cfg.DB.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx, drv)
		cancel()
		if err != nil {
			mainLogger.Fatal("auto migrate error", zap.Error(err))
		}
	}
	st := store.New(drv)
	m := metrics.New()
	opts := []planner.Option{planner.WithMetrics(m)}

	// Optional deps: Redis, MQ, ES
	var rdb redis.UniversalClient
	rc, redisClose, err := redisx.Open(cfg)
	if err != nil {
		mainLogger.Warn("redis init failed", zap.Error(err))
	} else {
		defer redisClose()
	}
	if rc != nil {
		rdb = rc
		opts = append(opts, planner.WithLocker(lockx.NewRedis(rc, "planeat:lock:", 10*time.Second)))
	}

	var publisher mqx.Publisher
	if cfg.MQ.URL != "" {
		if pub, err := mqx.NewRabbitPublisher(cfg.MQ.URL, cfg.MQ.Exchange); err != nil {
			mainLogger.Warn("mq init failed", zap.Error(err))
		} else {
			publisher = pub
			opts = append(opts, planner.WithPublisher(pub))
			defer func() { _ = pub.Close() }()
		}
	}

	search := recipes.Search{Index: cfg.ES.RecipeIndex}
	esClient, esClose, err := esx.Open(cfg)
	if err != nil {
		mainLogger.Warn("es init failed", zap.Error(err))
	} else if esClient != nil {
		defer esClose()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := esx.EnsureIndex(ctx, esClient, cfg.ES.RecipeIndex); err != nil {
			mainLogger.Warn("es index init failed", zap.Error(err))
		}
		cancel()
		search.ES = esClient
	}

	svc := planner.New(st, opts...)

	sched := jobs.NewScheduler(svc)
	if err := sched.Reschedule(cfg.Jobs.AuditCron); err != nil {
		mainLogger.Warn("invalid audit schedule", zap.String("spec", cfg.Jobs.AuditCron), zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	app := fiber.New(fiber.Config{ErrorHandler: kit.ErrorHandler()})
	httpx.RegisterCommonMiddlewares(app)
	httpx.Register(app, &httpx.Providers{
		Config:  cfg,
		Store:   st,
		Planner: svc,
		MQ:      publisher,
		Search:  search,
		RDB:     rdb,
		Metrics: m,
	})

	// Dynamic config (Apollo)
	cfgStore.AddValidator(config.PoolValidator)
	cfgStore.AddValidator(func(newCfg *config.Config, changed map[string]bool) error {
		if !changed["jobs.audit_cron"] || newCfg.Jobs.AuditCron == "" {
			return nil
		}
		if err := jobs.ValidateSpec(newCfg.Jobs.AuditCron); err != nil {
			return fmt.Errorf("jobs.audit_cron: %w", err)
		}
		return nil
	})

	cfgStore.Watch(func(newCfg *config.Config, changed map[string]bool) {
		if changed["db.max_open"] || changed["db.max_idle"] {
			db.UpdatePool(newCfg.DB.MaxOpenConns, newCfg.DB.MaxIdleConns)
			mainLogger.Info("db pool updated",
				zap.Int("max_open", newCfg.DB.MaxOpenConns),
				zap.Int("max_idle", newCfg.DB.MaxIdleConns),
			)
		}
		if changed["log.level"] || changed["log.format"] {
			logx.Init(newCfg.Log.Level, newCfg.Log.Format)
			mainLogger.Info("logger reconfigured",
				zap.String("level", newCfg.Log.Level),
				zap.String("format", newCfg.Log.Format),
			)
		}
		if changed["jobs.audit_cron"] {
			if err := sched.Reschedule(newCfg.Jobs.AuditCron); err != nil {
				mainLogger.Warn("audit reschedule failed", zap.Error(err))
			} else {
				mainLogger.Info("audit rescheduled", zap.String("spec", newCfg.Jobs.AuditCron))
			}
		}
		for _, k := range []string{"db.url", "server.addr", "redis.addr", "mq.url", "es.addrs", "ratelimit.window", "ratelimit.max"} {
			if changed[k] {
				mainLogger.Warn("config changed; restart required to take effect", zap.String("key", k))
			}
		}
	})

	errCh := make(chan error, 1)
	go func() {
		ln, err := server.GetListener(cfg.Server.Addr)
		if err != nil {
			errCh <- fmt.Errorf("listener: %w", err)
			return
		}
		errCh <- app.Listener(ln)
	}()
	mainLogger.Info("server started", zap.String("addr", cfg.Server.Addr))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			mainLogger.Error("server exited", zap.Error(err))
		}
	}
	mainLogger.Info("shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		mainLogger.Warn("shutdown", zap.Error(err))
	}
}
