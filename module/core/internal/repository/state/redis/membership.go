package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/state"
)

var _ state.MembershipStore = (*MembershipStore)(nil)

const keyPrefix = "membership:"

// MembershipStore stores one hash per user: field region id, value "1" when
// inside and "0" when outside.
type MembershipStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewMembershipStore(client *goredis.Client, ttl time.Duration) *MembershipStore {
	return &MembershipStore{client: client, ttl: ttl}
}

func (s *MembershipStore) Load(ctx context.Context, userID string) (domain.Membership, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+userID).Result()
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}
	return decode(fields), nil
}

// Swap watches the user's key, so a writer that changed it between the
// comparison and the write makes the transaction fail and Swap report false.
// The stored snapshot is replaced as a whole; regions absent from next are
// forgotten.
func (s *MembershipStore) Swap(ctx context.Context, userID string, prev, next domain.Membership) (bool, error) {
	key := keyPrefix + userID
	swapped := false

	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if !sameMembership(decode(fields), prev) {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			s.write(ctx, pipe, key, next)
			return nil
		})
		if err != nil {
			return err
		}
		swapped = true
		return nil
	}, key)

	if errors.Is(err, goredis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("swap membership: %w", err)
	}
	return swapped, nil
}

func (s *MembershipStore) write(ctx context.Context, pipe goredis.Pipeliner, key string, m domain.Membership) {
	pipe.Del(ctx, key)
	if len(m) == 0 {
		return
	}
	values := make(map[string]interface{}, len(m))
	for regionID, inside := range m {
		if inside {
			values[regionID] = "1"
		} else {
			values[regionID] = "0"
		}
	}
	pipe.HSet(ctx, key, values)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

func decode(fields map[string]string) domain.Membership {
	m := make(domain.Membership, len(fields))
	for regionID, v := range fields {
		m[regionID] = v == "1"
	}
	return m
}

// a missing key and an empty snapshot are the same thing
func sameMembership(a, b domain.Membership) bool {
	if len(a) != len(b) {
		return false
	}
	for id, inside := range a {
		other, ok := b[id]
		if !ok || other != inside {
			return false
		}
	}
	return true
}
