package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/database"
)

var _ database.LocationRepository = (*LocationRepo)(nil)

type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

func (r *LocationRepo) Insert(ctx context.Context, s *domain.LocationSample) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_locations (user_id, latitude, longitude, accuracy, speed, captured_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		s.UserID, s.Coord.Lat, s.Coord.Lon, nullFloat(s.Accuracy), nullFloat(s.Speed), s.Timestamp,
	)
	return err
}

func (r *LocationRepo) GetLatest(ctx context.Context, userID string) (*domain.LocationSample, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, latitude, longitude, accuracy, speed, captured_at FROM user_locations WHERE user_id = $1 ORDER BY captured_at DESC LIMIT 1`,
		userID,
	)

	s, err := scanSample(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest location %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetHistory returns up to query.Limit samples inside the window, the newest
// ones when the window holds more, ordered oldest first.
func (r *LocationRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.LocationSample, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, latitude, longitude, accuracy, speed, captured_at FROM (
			SELECT user_id, latitude, longitude, accuracy, speed, captured_at FROM user_locations
			WHERE user_id = $1 AND captured_at >= $2 AND captured_at <= $3
			ORDER BY captured_at DESC LIMIT $4
		) recent ORDER BY captured_at ASC`,
		query.UserID, query.Start, query.End, query.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.LocationSample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *s)
	}
	return results, rows.Err()
}

// Prune drops everything but the keep most recently inserted samples of the
// user. Insertion order is used because device timestamps can arrive out of
// order.
func (r *LocationRepo) Prune(ctx context.Context, userID string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_locations WHERE user_id = $1 AND id NOT IN (
			SELECT id FROM user_locations WHERE user_id = $1 ORDER BY id DESC LIMIT $2
		)`,
		userID, keep,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(sc scanner) (*domain.LocationSample, error) {
	var (
		s               domain.LocationSample
		accuracy, speed sql.NullFloat64
	)
	if err := sc.Scan(&s.UserID, &s.Coord.Lat, &s.Coord.Lon, &accuracy, &speed, &s.Timestamp); err != nil {
		return nil, err
	}
	if accuracy.Valid {
		s.Accuracy = &accuracy.Float64
	}
	if speed.Valid {
		s.Speed = &speed.Float64
	}
	return &s, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
