package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/database"
	"github.com/PritamSuryawanshii/FollowMee/pkg/validator"
)

type ShareConfig struct {
	MinDuration time.Duration
	MaxDuration time.Duration
}

type latestLocationReader interface {
	GetLatest(ctx context.Context, userID string) (*domain.LocationSample, error)
}

type ShareService struct {
	repo      database.ShareRepository
	locations latestLocationReader
	logger    *slog.Logger
	cfg       ShareConfig
	now       func() time.Time
}

func NewShareService(repo database.ShareRepository, locations latestLocationReader, logger *slog.Logger, cfg ShareConfig) *ShareService {
	return &ShareService{
		repo:      repo,
		locations: locations,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Share grants recipientEmail access to the user's live location for the
// given duration.
func (s *ShareService) Share(ctx context.Context, userID, recipientEmail string, duration time.Duration) (*domain.SharedLocation, error) {
	const op = "service.Share.Share"

	if userID == "" {
		return nil, fmt.Errorf("%s: user_id: required: %w", op, domain.ErrInvalidInput)
	}
	if err := validator.ValidateVar(recipientEmail, "required,email"); err != nil {
		return nil, fmt.Errorf("%s: recipient_email: %v: %w", op, err, domain.ErrInvalidInput)
	}
	if duration < s.cfg.MinDuration || duration > s.cfg.MaxDuration {
		return nil, fmt.Errorf("%s: duration must be between %s and %s: %w", op, s.cfg.MinDuration, s.cfg.MaxDuration, domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	share := &domain.SharedLocation{
		ID:             uuid.NewString(),
		UserID:         userID,
		RecipientEmail: recipientEmail,
		CreatedAt:      now,
		ExpiresAt:      now.Add(duration),
	}
	if err := s.repo.Insert(ctx, share); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("location shared",
		slog.String("user_id", userID),
		slog.String("share_id", share.ID),
		slog.Time("expires_at", share.ExpiresAt),
	)
	return share, nil
}

func (s *ShareService) ListActive(ctx context.Context, userID string) ([]domain.SharedLocation, error) {
	return s.repo.ListActive(ctx, userID, s.now())
}

func (s *ShareService) Revoke(ctx context.Context, userID, shareID string) error {
	return s.repo.Delete(ctx, userID, shareID)
}

// Authorize returns the share if it exists and has not expired yet.
func (s *ShareService) Authorize(ctx context.Context, shareID string) (*domain.SharedLocation, error) {
	share, err := s.repo.Get(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.Expired(s.now()) {
		return nil, fmt.Errorf("share %s: %w", shareID, domain.ErrShareExpired)
	}
	return share, nil
}

// ViewLocation returns the latest location of the user behind an unexpired
// share.
func (s *ShareService) ViewLocation(ctx context.Context, shareID string) (*domain.LocationSample, error) {
	share, err := s.Authorize(ctx, shareID)
	if err != nil {
		return nil, err
	}
	return s.locations.GetLatest(ctx, share.UserID)
}

func (s *ShareService) ActiveShareIDs(ctx context.Context, userID string) ([]string, error) {
	shares, err := s.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(shares))
	for i, sh := range shares {
		ids[i] = sh.ID
	}
	return ids, nil
}
