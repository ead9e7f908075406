package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/database"
)

var _ database.ShareRepository = (*ShareRepo)(nil)

type ShareRepo struct {
	db *sql.DB
}

func NewShareRepo(db *sql.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

func (r *ShareRepo) Insert(ctx context.Context, s *domain.SharedLocation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shared_locations (id, user_id, recipient_email, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.RecipientEmail, s.CreatedAt, s.ExpiresAt,
	)
	return err
}

func (r *ShareRepo) Get(ctx context.Context, shareID string) (*domain.SharedLocation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, recipient_email, created_at, expires_at FROM shared_locations WHERE id = $1`,
		shareID,
	)

	var s domain.SharedLocation
	err := row.Scan(&s.ID, &s.UserID, &s.RecipientEmail, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("share %s: %w", shareID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShareRepo) ListActive(ctx context.Context, userID string, now time.Time) ([]domain.SharedLocation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, recipient_email, created_at, expires_at FROM shared_locations WHERE user_id = $1 AND expires_at > $2 ORDER BY expires_at ASC`,
		userID, now,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.SharedLocation
	for rows.Next() {
		var s domain.SharedLocation
		if err := rows.Scan(&s.ID, &s.UserID, &s.RecipientEmail, &s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *ShareRepo) Delete(ctx context.Context, userID, shareID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM shared_locations WHERE id = $1 AND user_id = $2`,
		shareID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("share %s: %w", shareID, domain.ErrNotFound)
	}
	return nil
}
