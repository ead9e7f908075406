package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/pkg/validator"
)

const (
	TopicPattern  = "followmee/users/+/location"
	handleTimeout = 10 * time.Second
	subscribeQoS  = 1
)

type tracker interface {
	Record(ctx context.Context, sample *domain.LocationSample) (*domain.Evaluation, error)
}

type locationMessage struct {
	UserID    string   `json:"user_id" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required,lat"`
	Longitude *float64 `json:"longitude" validate:"required,lng"`
	Timestamp int64    `json:"timestamp" validate:"gt=0"`
	Accuracy  *float64 `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
	Speed     *float64 `json:"speed,omitempty" validate:"omitempty,gte=0"`
}

type LocationSubscriber struct {
	client  mqtt.Client
	tracker tracker
	logger  *slog.Logger
}

func NewLocationSubscriber(client mqtt.Client, tracker tracker, logger *slog.Logger) *LocationSubscriber {
	return &LocationSubscriber{
		client:  client,
		tracker: tracker,
		logger:  logger,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(TopicPattern, subscribeQoS, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid location message",
			slog.String("topic", msg.Topic()),
			slog.Any("error", err),
		)
		return
	}

	if err := validateLocationMessage(msg.Topic(), &raw); err != nil {
		s.logger.Warn("location message rejected",
			slog.String("topic", msg.Topic()),
			slog.Any("error", err),
		)
		return
	}

	sample := &domain.LocationSample{
		UserID:    raw.UserID,
		Coord:     domain.Coordinate{Lat: *raw.Latitude, Lon: *raw.Longitude},
		Timestamp: time.UnixMilli(raw.Timestamp),
		Accuracy:  raw.Accuracy,
		Speed:     raw.Speed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	eval, err := s.tracker.Record(ctx, sample)
	if err != nil {
		s.logger.Error("record location failed",
			slog.String("user_id", sample.UserID),
			slog.Any("error", err),
		)
		return
	}
	s.logger.Debug("location recorded",
		slog.String("user_id", sample.UserID),
		slog.Int("regions", len(eval.Membership)),
	)
}

// topicUserID extracts the user segment of followmee/users/<id>/location.
func topicUserID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "followmee" || parts[1] != "users" || parts[3] != "location" {
		return ""
	}
	return parts[2]
}

func validateLocationMessage(topic string, msg *locationMessage) error {
	if err := validator.ValidateStruct(msg); err != nil {
		return err
	}
	if math.IsNaN(*msg.Latitude) || math.IsNaN(*msg.Longitude) {
		return fmt.Errorf("coordinates: must be numbers")
	}
	if id := topicUserID(topic); id != "" && id != msg.UserID {
		return fmt.Errorf("user_id: %q does not match topic user %q", msg.UserID, id)
	}
	return nil
}
