package publisher

import (
	"context"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

type GeofencePublisher interface {
	PublishEvent(ctx context.Context, event *domain.GeofenceEvent) error
}
