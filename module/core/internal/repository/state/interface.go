package state

import (
	"context"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
)

// MembershipStore keeps the last evaluated membership per user so the next
// evaluation can be diffed against it.
type MembershipStore interface {
	Load(ctx context.Context, userID string) (domain.Membership, error)
	// Swap stores next only while the stored snapshot still equals prev and
	// reports whether it did.
	Swap(ctx context.Context, userID string, prev, next domain.Membership) (bool, error)
}
