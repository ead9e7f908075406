package database

import (
	"context"
	"time"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type LocationRepository interface {
	Insert(ctx context.Context, sample *domain.LocationSample) error
	GetLatest(ctx context.Context, userID string) (*domain.LocationSample, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error)
	Prune(ctx context.Context, userID string, keep int) error
}

type GeofenceRepository interface {
	Insert(ctx context.Context, region *domain.GeofenceRegion) error
	ListByUser(ctx context.Context, userID string) ([]domain.GeofenceRegion, error)
	Delete(ctx context.Context, userID, regionID string) error
	ToggleActive(ctx context.Context, userID, regionID string) (*domain.GeofenceRegion, error)
}

type ShareRepository interface {
	Insert(ctx context.Context, share *domain.SharedLocation) error
	Get(ctx context.Context, shareID string) (*domain.SharedLocation, error)
	ListActive(ctx context.Context, userID string, now time.Time) ([]domain.SharedLocation, error)
	Delete(ctx context.Context, userID, shareID string) error
}
