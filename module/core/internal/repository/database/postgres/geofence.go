package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PritamSuryawanshii/FollowMee/module/core/domain"
	"github.com/PritamSuryawanshii/FollowMee/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) Insert(ctx context.Context, g *domain.GeofenceRegion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO geofence_regions (id, user_id, name, latitude, longitude, radius, active, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.UserID, g.Name, g.Center.Lat, g.Center.Lon, g.Radius, g.Active, g.CreatedAt,
	)
	return err
}

func (r *GeofenceRepo) ListByUser(ctx context.Context, userID string) ([]domain.GeofenceRegion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, latitude, longitude, radius, active, created_at FROM geofence_regions WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.GeofenceRegion
	for rows.Next() {
		g, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *g)
	}
	return results, rows.Err()
}

func (r *GeofenceRepo) Delete(ctx context.Context, userID, regionID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM geofence_regions WHERE id = $1 AND user_id = $2`,
		regionID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("geofence %s: %w", regionID, domain.ErrNotFound)
	}
	return nil
}

func (r *GeofenceRepo) ToggleActive(ctx context.Context, userID, regionID string) (*domain.GeofenceRegion, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE geofence_regions SET active = NOT active WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, latitude, longitude, radius, active, created_at`,
		regionID, userID,
	)

	g, err := scanRegion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("geofence %s: %w", regionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func scanRegion(sc scanner) (*domain.GeofenceRegion, error) {
	var g domain.GeofenceRegion
	if err := sc.Scan(&g.ID, &g.UserID, &g.Name, &g.Center.Lat, &g.Center.Lon, &g.Radius, &g.Active, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
