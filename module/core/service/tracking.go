package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type sampleSaver interface {
	SaveLocation(ctx context.Context, sample *domain.LocationSample) error
}

type geofenceMonitor interface {
	Monitor(ctx context.Context, sample *domain.LocationSample) (*domain.Evaluation, error)
}

type shareLister interface {
	ActiveShareIDs(ctx context.Context, userID string) ([]string, error)
}

// LiveUpdate is what share viewers receive for every new sample.
type LiveUpdate struct {
	Type      string   `json:"type"`
	UserID    string   `json:"user_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
}

// Broadcaster pushes a payload to every viewer of a share.
type Broadcaster interface {
	Publish(shareID string, payload interface{})
}

// TrackingService runs every incoming sample through save, geofence
// monitoring and live share fan-out.
type TrackingService struct {
	locations   sampleSaver
	geofences   geofenceMonitor
	shares      shareLister
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewTrackingService(locations sampleSaver, geofences geofenceMonitor, shares shareLister, broadcaster Broadcaster, logger *slog.Logger) *TrackingService {
	return &TrackingService{
		locations:   locations,
		geofences:   geofences,
		shares:      shares,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *TrackingService) Record(ctx context.Context, sample *domain.LocationSample) (*domain.Evaluation, error) {
	if err := s.locations.SaveLocation(ctx, sample); err != nil {
		return nil, err
	}

	s.broadcast(ctx, sample)

	eval, err := s.geofences.Monitor(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("geofence monitor: %w", err)
	}
	return eval, nil
}

func (s *TrackingService) broadcast(ctx context.Context, sample *domain.LocationSample) {
	ids, err := s.shares.ActiveShareIDs(ctx, sample.UserID)
	if err != nil {
		s.logger.Warn("list active shares failed",
			slog.String("user_id", sample.UserID),
			slog.Any("error", err),
		)
		return
	}
	if len(ids) == 0 {
		return
	}
	update := &LiveUpdate{
		Type:      "location_update",
		UserID:    sample.UserID,
		Latitude:  sample.Coord.Lat,
		Longitude: sample.Coord.Lon,
		Timestamp: sample.Timestamp.UnixMilli(),
		Accuracy:  sample.Accuracy,
		Speed:     sample.Speed,
	}
	for _, id := range ids {
		s.broadcaster.Publish(id, update)
	}
}
