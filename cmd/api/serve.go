package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"propcare/internal/config"
	"propcare/internal/database"
	"propcare/internal/database/schema"
	"propcare/internal/domain/cases"
	"propcare/internal/domain/dispatch"
	"propcare/internal/domain/notification"
	"propcare/internal/domain/policy"
	"propcare/internal/domain/quote"
	"propcare/internal/domain/roster"
	"propcare/internal/domain/timeline"
	"propcare/internal/metrics"
	"propcare/internal/middleware"
	"propcare/internal/pkg/jwt"
	"propcare/internal/pkg/response"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "dev" {
		if err := schema.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rec, err := metrics.NewPromRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable; policy cache and stream sink run degraded", zap.Error(err))
		}
	}

	var mq mqtt.Client
	if cfg.MQTT.Broker != "" {
		mq, err = notification.ConnectMQTT(cfg.MQTT)
		if err != nil {
			log.Warn("mqtt unavailable; sink disabled", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		} else {
			defer mq.Disconnect(250)
		}
	}

	router, async := buildRouter(cfg, log, db, rdb, mq, rec)
	defer async.Wait()

	srv := &http.Server{Addr: cfg.App.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.App.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func buildRouter(cfg *config.Config, log *zap.Logger, db *gorm.DB, rdb *redis.Client, mq mqtt.Client, rec metrics.Recorder) (*gin.Engine, *notification.Async) {
	tx := database.NewTransactor(db)
	hub := timeline.NewHub(log)
	events := timeline.NewRepository(db)

	var policyCache policy.Cache
	if rdb != nil {
		policyCache = policy.NewRedisCache(rdb, cfg.Redis.PolicyCacheTTL)
	}
	policySvc := policy.NewService(policy.NewRepository(db), policyCache, log)
	rosterSvc := roster.NewService(roster.NewRepository(db), policySvc, log)

	inbox := notification.NewService(notification.NewRepository(db))
	var external notification.Multi
	if rdb != nil {
		external = append(external, notification.NewStreamNotifier(rdb, cfg.Redis.NotificationStream))
	}
	if mq != nil {
		external = append(external, notification.NewMQTTNotifier(mq, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, cfg.Notify.Timeout))
	}
	async := notification.NewAsync(external, cfg.Notify.Timeout, rec, log)
	notifier := notification.Multi{inbox, async}

	caseRepo := cases.NewRepository(db)
	caseSvc := cases.NewService(caseRepo, events, tx, hub, log)

	dispatchSvc := dispatch.NewService(dispatch.Deps{
		Cases:    caseRepo,
		Roster:   rosterSvc,
		Policies: policySvc,
		Events:   events,
		Tx:       tx,
		Notifier: notifier,
		Feed:     hub,
		Metrics:  rec,
		Log:      log,
	})
	quoteSvc := quote.NewService(quote.Deps{
		Quotes:    quote.NewRepository(db),
		Cases:     caseRepo,
		Directory: rosterSvc,
		Events:    events,
		Tx:        tx,
		Notifier:  notifier,
		Feed:      hub,
		Metrics:   rec,
		Log:       log,
	})

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jwtSvc := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	api := r.Group("/api/v1", middleware.JWTAuth(jwtSvc), middleware.RequireOrg())
	{
		cases.NewHandler(caseSvc).RegisterRoutes(api)
		timeline.NewHandler(events, caseSvc, hub, log).RegisterRoutes(api)
		policy.NewHandler(policySvc).RegisterRoutes(api)
		roster.NewHandler(rosterSvc).RegisterRoutes(api)
		dispatch.NewHandler(dispatchSvc).RegisterRoutes(api)
		quote.NewHandler(quoteSvc).RegisterRoutes(api)
		notification.NewHandler(inbox).RegisterRoutes(api)
	}
	return r, async
}
