package core

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	handler "github.com/PritamSuryawanshii/FollowMee/module/core/internal/handler/http"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/handler/subscriber"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/live"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/database/postgres"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/publisher/rabbitmq"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/state/redis"
	"github.com/PritamSuryawanshii/FollowMee/module/core/service"
)

type Options struct {
	HistoryLimit  int
	MembershipTTL time.Duration
	Geofence      service.GeofenceConfig
	Share         service.ShareConfig
}

type Module struct {
	LocationSvc *service.LocationService
	GeofenceSvc *service.GeofenceService
	ShareSvc    *service.ShareService
	TrackingSvc *service.TrackingService

	hub        *live.Hub
	handlers   []interface{ Register(r *gin.RouterGroup) }
	subscriber *subscriber.LocationSubscriber
}

func Build(
	db *sql.DB,
	redisClient *goredis.Client,
	amqpConn *amqp.Connection,
	mqttClient mqtt.Client,
	logger *slog.Logger,
	opts Options,
) (*Module, error) {
	locationRepo := postgres.NewLocationRepo(db)
	geofenceRepo := postgres.NewGeofenceRepo(db)
	shareRepo := postgres.NewShareRepo(db)
	membership := redis.NewMembershipStore(redisClient, opts.MembershipTTL)

	geofencePub, err := rabbitmq.NewGeofencePublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("geofence publisher: %w", err)
	}

	hub := live.NewHub(logger.With(slog.String("component", "live")))

	locationSvc := service.NewLocationService(locationRepo, logger, opts.HistoryLimit)
	geofenceSvc := service.NewGeofenceService(geofenceRepo, membership, geofencePub, logger, opts.Geofence)
	shareSvc := service.NewShareService(shareRepo, locationSvc, logger, opts.Share)
	trackingSvc := service.NewTrackingService(locationSvc, geofenceSvc, shareSvc, hub, logger)

	return &Module{
		LocationSvc: locationSvc,
		GeofenceSvc: geofenceSvc,
		ShareSvc:    shareSvc,
		TrackingSvc: trackingSvc,
		hub:         hub,
		handlers: []interface{ Register(r *gin.RouterGroup) }{
			handler.NewLocationHandler(trackingSvc, locationSvc, logger),
			handler.NewGeofenceHandler(geofenceSvc, logger),
			handler.NewShareHandler(shareSvc, hub, logger),
		},
		subscriber: subscriber.NewLocationSubscriber(mqttClient, trackingSvc, logger.With(slog.String("component", "mqtt"))),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	for _, h := range m.handlers {
		h.Register(r)
	}
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// RunHub blocks serving live share viewers until ctx is done.
func (m *Module) RunHub(ctx context.Context) {
	m.hub.Run(ctx)
}
