package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nnomo/apartment-reservations/internal/config"
	"github.com/nnomo/apartment-reservations/internal/database"
	"github.com/nnomo/apartment-reservations/internal/handler"
	"github.com/nnomo/apartment-reservations/internal/jobs"
	"github.com/nnomo/apartment-reservations/internal/middleware"
	"github.com/nnomo/apartment-reservations/internal/queue"
	"github.com/nnomo/apartment-reservations/internal/realtime"
	"github.com/nnomo/apartment-reservations/internal/receipt"
	"github.com/nnomo/apartment-reservations/internal/repository"
	"github.com/nnomo/apartment-reservations/internal/router"
	"github.com/nnomo/apartment-reservations/internal/service"
)

func serveCmd() *cobra.Command {
	var migrate, noCron bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, the live channel and the reminder schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate, noCron)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	cmd.Flags().BoolVar(&noCron, "no-cron", false, "do not schedule the reminder sweep (another instance runs it)")
	return cmd
}

func serve(parent context.Context, migrate, noCron bool) error {
	cfg := config.Load()
	log := newLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// ---- Live events ----
	hub := realtime.NewHub(log)
	var live service.EventSink = hub
	var rdb *redis.Client
	if client, err := config.NewRedisClient(ctx); err != nil {
		log.Warn("redis unavailable: no rate limit, events stay on this instance", "error", err)
	} else {
		rdb = client
		defer rdb.Close()
		relay := realtime.NewRedisRelay(rdb, hub, log)
		live = relay
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("event relay stopped", "error", err)
			}
		}()
	}
	sinks := service.MultiSink{live}
	if cfg.AMQPURL != "" {
		pub := queue.NewPublisher(cfg.AMQPURL, log)
		go pub.Run(ctx)
		sinks = append(sinks, pub)
	} else {
		log.Info("RABBITMQ_URL not set, audit queue disabled")
	}

	// ---- Core ----
	reservations := repository.NewReservationRepo(db)
	configs := repository.NewConfigRepo(db)
	apartments := repository.NewApartmentRepo(db)
	admins := repository.NewAdminRepo(db)

	svc := service.NewReservationService(reservations, configs, sinks,
		receipt.NewRenderer(cfg.ReceiptsDir),
		service.Options{AutoValidate: cfg.AutoValidate, DefaultReminderHours: cfg.ReminderHours},
		log,
	)
	resolver := service.NewResolver(reservations, apartments, nil)

	if !noCron {
		sweep := service.NewReminderSweep(reservations, configs, newMailer(cfg, log), log)
		c, err := jobs.NewReminderJob(sweep, log).Start(cfg.ReminderCron)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: allowOrigins(cfg.FrontendURL)}))
	e.Use(requestLogger(log))

	resHandler := handler.NewReservationHandler(svc, log)
	router.RegisterRoutes(e, handler.NewHealthHandler(db))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, admins, log), cfg.JWTSecret, cfg.SuperRegisterPath)
	router.RegisterClient(e,
		handler.NewApartmentHandler(resolver, log),
		resHandler,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	)
	router.RegisterAdmin(e, resHandler, handler.NewCatalogHandler(apartments, log), cfg.JWTSecret)
	router.RegisterRealtime(e, handler.NewWSHandler(hub, cfg.JWTSecret, cfg.FrontendURL, log))

	addr := ":" + cfg.Port
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func allowOrigins(frontend string) []string {
	if frontend == "" {
		return []string{"*"}
	}
	return []string{frontend}
}

// requestLogger forwards Echo's access log to slog.
func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}
