package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	"github.com/iliyamo/projecthub/internal/auth"
	"github.com/iliyamo/projecthub/internal/config"
	"github.com/iliyamo/projecthub/internal/database"
	"github.com/iliyamo/projecthub/internal/handler"
	"github.com/iliyamo/projecthub/internal/logging"
	"github.com/iliyamo/projecthub/internal/metrics"
	"github.com/iliyamo/projecthub/internal/middleware"
	"github.com/iliyamo/projecthub/internal/queue"
	"github.com/iliyamo/projecthub/internal/repository"
	"github.com/iliyamo/projecthub/internal/router"
	"github.com/iliyamo/projecthub/internal/scheduler"
)

const activityLogDir = "logs"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log, err := logging.New(cfg.IsProduction())
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.RunMigrations {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	rdb, err := config.NewRedisClient(config.RedisOptions())
	if err != nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	companies := repository.NewCompanyRepo(db)
	projects := repository.NewProjectRepo(db)
	tasks := repository.NewTaskRepo(db)
	daily := repository.NewDailyTaskRepo(db)

	publisher := queue.NewAMQPPublisher(cfg.RabbitURL)
	defer publisher.Close()
	events := queue.NewEmitter(publisher, log)
	defer events.Wait()

	m := metrics.New()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(log, !cfg.IsProduction())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(m.Middleware())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	cacheCfg := config.LoadCacheConfig()
	guards := router.Guards{
		Verifier: auth.NewVerifier(cfg.JWTSecret, users),
		Cache:    middleware.NewRedisCache(cacheCfg, rdb, log),
	}
	router.RegisterRoutes(e, handler.Health(db), m.Handler())
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), guards)
	router.RegisterCompanies(e, handler.NewCompanyHandler(companies, users), companies, guards)
	router.RegisterProjects(e,
		handler.NewProjectHandler(projects, tasks, companies, events),
		handler.NewTaskHandler(projects, tasks, events),
		guards)
	router.RegisterDailyTasks(e, handler.NewDailyTaskHandler(daily, projects, events), guards)

	go queue.StartActivityConsumer(ctx, cfg.RabbitURL, activityLogDir, log)

	reset := scheduler.NewDailyReset(daily, events, log, func() {
		m.ResetCompleted()
		// cached daily-task and stats responses predate the reset
		if err := middleware.FlushCache(ctx, rdb, cacheCfg.Prefix); err != nil {
			log.Warn("cache flush after daily reset failed", zap.Error(err))
		}
	})
	cron, err := reset.Start(ctx, cfg.DailyResetSpec)
	if err != nil {
		return err
	}
	defer cron.Stop()

	srvErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", ":"+cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
