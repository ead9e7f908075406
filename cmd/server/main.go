package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"

	"github.com/PritamSuryawanshii/FollowMee/config"
	"github.com/PritamSuryawanshii/FollowMee/module/core"
	"github.com/PritamSuryawanshii/FollowMee/module/core/service"
	"github.com/PritamSuryawanshii/FollowMee/pkg/middleware"
	"github.com/PritamSuryawanshii/FollowMee/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		return err
	}
	logger := config.NewLogger(cfg.LogEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgres(ctx, cfg)
	if err != nil {
		logger.Error("postgres", slog.Any("error", err))
		return err
	}
	defer func() { _ = db.Close() }()

	redisClient, err := config.NewRedis(ctx, cfg)
	if err != nil {
		logger.Error("redis", slog.Any("error", err))
		return err
	}
	defer func() { _ = redisClient.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		logger.Error("rabbitmq", slog.Any("error", err))
		return err
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg, logger)
	if err != nil {
		logger.Error("mqtt", slog.Any("error", err))
		return err
	}
	defer mqttClient.Disconnect(250)

	coreModule, err := core.Build(db, redisClient, amqpConn, mqttClient, logger, core.Options{
		HistoryLimit:  cfg.HistoryLimit,
		MembershipTTL: cfg.MembershipTTL,
		Geofence: service.GeofenceConfig{
			MinRadius: cfg.GeofenceMinRadius,
			MaxRadius: cfg.GeofenceMaxRadius,
		},
		Share: service.ShareConfig{
			MinDuration: cfg.ShareMinDuration,
			MaxDuration: cfg.ShareMaxDuration,
		},
	})
	if err != nil {
		logger.Error("core module", slog.Any("error", err))
		return err
	}

	go coreModule.RunHub(ctx)

	if err := coreModule.StartSubscribers(); err != nil {
		logger.Error("start subscribers", slog.Any("error", err))
		return err
	}

	if cfg.LogEnv != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.RegisterGin()

	r := gin.New()
	r.Use(gin.Recovery())

	pingRedis := func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}
	pingRabbitMQ := func(context.Context) error {
		if amqpConn.IsClosed() {
			return errors.New("connection closed")
		}
		return nil
	}
	pingMQTT := func(context.Context) error {
		return mqttStatus(mqttClient)
	}
	health := config.NewHealthChecker(map[string]config.Pinger{
		"postgres": config.PingFunc(db.PingContext),
		"redis":    config.PingFunc(pingRedis),
		"rabbitmq": config.PingFunc(pingRabbitMQ),
		"mqtt":     config.PingFunc(pingMQTT),
	})
	health.Register(r)

	api := r.Group("")
	api.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitTTL, logger))
	coreModule.RegisterRoutes(api)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server", slog.Any("error", err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func mqttStatus(c mqtt.Client) error {
	if !c.IsConnectionOpen() {
		return errors.New("not connected")
	}
	return nil
}
