package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/database"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

type LocationService struct {
	repo         database.LocationRepository
	logger       *slog.Logger
	historyLimit int
}

// NewLocationService keeps at most historyLimit samples per user. Zero or a
// negative value keeps everything.
func NewLocationService(repo database.LocationRepository, logger *slog.Logger, historyLimit int) *LocationService {
	return &LocationService{repo: repo, logger: logger, historyLimit: historyLimit}
}

func (s *LocationService) SaveLocation(ctx context.Context, sample *domain.LocationSample) error {
	const op = "service.Location.SaveLocation"

	if err := s.repo.Insert(ctx, sample); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.historyLimit > 0 {
		if err := s.repo.Prune(ctx, sample.UserID, s.historyLimit); err != nil {
			s.logger.Warn("prune history failed",
				slog.String("op", op),
				slog.String("user_id", sample.UserID),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

func (s *LocationService) GetLatest(ctx context.Context, userID string) (*domain.LocationSample, error) {
	return s.repo.GetLatest(ctx, userID)
}

func (s *LocationService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error) {
	if query.End.Before(query.Start) {
		return nil, fmt.Errorf("history window ends before it starts: %w", domain.ErrInvalidInput)
	}
	switch {
	case query.Limit <= 0:
		query.Limit = defaultHistoryLimit
	case query.Limit > maxHistoryLimit:
		query.Limit = maxHistoryLimit
	}
	return s.repo.GetHistory(ctx, query)
}
