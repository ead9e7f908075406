package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/geo"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/database"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/publisher"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/state"
)

const maxSwapAttempts = 5

type GeofenceConfig struct {
	MinRadius float64
	MaxRadius float64
}

type GeofenceService struct {
	repo      database.GeofenceRepository
	store     state.MembershipStore
	publisher publisher.GeofencePublisher
	logger    *slog.Logger
	cfg       GeofenceConfig
	now       func() time.Time
}

func NewGeofenceService(
	repo database.GeofenceRepository,
	store state.MembershipStore,
	pub publisher.GeofencePublisher,
	logger *slog.Logger,
	cfg GeofenceConfig,
) *GeofenceService {
	return &GeofenceService{
		repo:      repo,
		store:     store,
		publisher: pub,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *GeofenceService) CreateRegion(ctx context.Context, in domain.NewGeofenceRegion) (*domain.GeofenceRegion, error) {
	const op = "service.Geofence.CreateRegion"

	if err := s.validateRegion(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	region := &domain.GeofenceRegion{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Name:      strings.TrimSpace(in.Name),
		Center:    in.Center,
		Radius:    in.Radius,
		Active:    in.Active,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, region); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("geofence created",
		slog.String("user_id", region.UserID),
		slog.String("region_id", region.ID),
		slog.Float64("radius", region.Radius),
	)
	return region, nil
}

func (s *GeofenceService) validateRegion(in domain.NewGeofenceRegion) error {
	if in.UserID == "" {
		return fmt.Errorf("user_id: required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name: required: %w", domain.ErrInvalidInput)
	}
	if !validCoordinate(in.Center) {
		return fmt.Errorf("center: out of range: %w", domain.ErrInvalidInput)
	}
	// written as a negated range check so NaN is rejected too
	if !(in.Radius > 0 && in.Radius >= s.cfg.MinRadius && in.Radius <= s.cfg.MaxRadius) {
		return fmt.Errorf("radius: must be between %g and %g meters: %w", s.cfg.MinRadius, s.cfg.MaxRadius, domain.ErrInvalidInput)
	}
	return nil
}

func (s *GeofenceService) ListRegions(ctx context.Context, userID string) ([]domain.GeofenceRegion, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *GeofenceService) DeleteRegion(ctx context.Context, userID, regionID string) error {
	return s.repo.Delete(ctx, userID, regionID)
}

func (s *GeofenceService) ToggleRegion(ctx context.Context, userID, regionID string) (*domain.GeofenceRegion, error) {
	return s.repo.ToggleActive(ctx, userID, regionID)
}

// Evaluate reports which of the user's active regions contain coord without
// touching the stored membership.
func (s *GeofenceService) Evaluate(ctx context.Context, userID string, coord domain.Coordinate) (domain.Membership, error) {
	regions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Geofence.Evaluate: %w", err)
	}
	sample := domain.LocationSample{UserID: userID, Coord: coord, Timestamp: s.now()}
	return geo.EvaluateAll(sample, regions), nil
}

// Monitor evaluates the sample, compares against the previous membership and
// publishes an event for every entry and exit. The new membership is claimed
// with a compare-and-swap before publishing, so concurrent samples for the
// same user never report one transition twice. When publishing fails the
// previous membership is restored and the next sample retries.
func (s *GeofenceService) Monitor(ctx context.Context, sample *domain.LocationSample) (*domain.Evaluation, error) {
	const op = "service.Geofence.Monitor"

	regions, err := s.repo.ListByUser(ctx, sample.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: list regions: %w", op, err)
	}

	curr := geo.EvaluateAll(*sample, regions)
	byID := make(map[string]*domain.GeofenceRegion, len(regions))
	for i := range regions {
		r := &regions[i]
		byID[r.ID] = r
		if inside, ok := curr[r.ID]; ok {
			s.logger.Debug("geofence membership",
				slog.String("user_id", sample.UserID),
				slog.String("region", r.Name),
				slog.Bool("inside", inside),
			)
		}
	}

	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		prev, err := s.store.Load(ctx, sample.UserID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		swapped, err := s.store.Swap(ctx, sample.UserID, prev, curr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !swapped {
			s.logger.Debug("membership changed concurrently, retrying",
				slog.String("user_id", sample.UserID),
				slog.Int("attempt", attempt+1),
			)
			continue
		}

		transitions := Diff(prev, curr)
		if err := s.publishTransitions(ctx, sample, transitions, byID); err != nil {
			if _, rerr := s.store.Swap(ctx, sample.UserID, curr, prev); rerr != nil {
				s.logger.Warn("restore membership",
					slog.String("user_id", sample.UserID),
					slog.Any("error", rerr),
				)
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &domain.Evaluation{Membership: curr, Transitions: transitions}, nil
	}

	return nil, fmt.Errorf("%s: membership of %s kept changing after %d attempts", op, sample.UserID, maxSwapAttempts)
}

func (s *GeofenceService) publishTransitions(
	ctx context.Context,
	sample *domain.LocationSample,
	transitions []domain.Transition,
	byID map[string]*domain.GeofenceRegion,
) error {
	for _, t := range transitions {
		var event domain.GeofenceEventType
		switch t.Type {
		case domain.TransitionEntered:
			event = domain.GeofenceEntered
		case domain.TransitionExited:
			event = domain.GeofenceExited
		default:
			continue
		}

		alert := &domain.GeofenceEvent{
			UserID:     sample.UserID,
			RegionID:   t.RegionID,
			RegionName: byID[t.RegionID].Name,
			Event:      event,
			Location:   sample.Coord,
			Timestamp:  sample.Timestamp,
		}
		if err := s.publisher.PublishEvent(ctx, alert); err != nil {
			return fmt.Errorf("publish %s: %w", event, err)
		}
		s.logger.Info("geofence transition",
			slog.String("user_id", sample.UserID),
			slog.String("region_id", t.RegionID),
			slog.String("event", string(event)),
		)
	}
	return nil
}

func validCoordinate(c domain.Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
