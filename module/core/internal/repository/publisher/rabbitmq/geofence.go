package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/publisher"
)

var _ publisher.GeofencePublisher = (*GeofencePublisher)(nil)

const (
	ExchangeName = "followmee.events"
	QueueName    = "geofence_events"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type GeofencePublisher struct {
	ch channel
}

func NewGeofencePublisher(conn *amqp.Connection) (*GeofencePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &GeofencePublisher{ch: ch}, nil
}

type eventMessage struct {
	UserID     string                   `json:"user_id"`
	RegionID   string                   `json:"region_id"`
	RegionName string                   `json:"region_name"`
	Event      domain.GeofenceEventType `json:"event"`
	Location   eventLocation            `json:"location"`
	Timestamp  int64                    `json:"timestamp"`
}

type eventLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *GeofencePublisher) PublishEvent(ctx context.Context, event *domain.GeofenceEvent) error {
	msg := eventMessage{
		UserID:     event.UserID,
		RegionID:   event.RegionID,
		RegionName: event.RegionName,
		Event:      event.Event,
		Location: eventLocation{
			Latitude:  event.Location.Lat,
			Longitude: event.Location.Lon,
		},
		Timestamp: event.Timestamp.UnixMilli(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		Body:         body,
	})
}
