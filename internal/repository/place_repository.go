package repository

import (
	"context"
	"fmt"

	"placebot/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PlaceRepository provides access to saved places in the database.
type PlaceRepository struct {
	db *sqlx.DB
}

// NewPlaceRepository creates a repository for places.
func NewPlaceRepository(db *sqlx.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// ListByUser returns the user's places in insertion order, oldest first.
func (r *PlaceRepository) ListByUser(ctx context.Context, userID int64) ([]model.Place, error) {
	places := []model.Place{}
	query := `SELECT id, "user", address, latitude, longitude, COALESCE(image, '') AS image
	          FROM places WHERE "user" = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &places, query, userID); err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	return places, nil
}

// SaveWithQuota inserts a place and enforces the per-user retention
// limit in the same transaction: when the user already holds maxPerUser
// places, the oldest ones are deleted first so the insert never pushes
// the count above the limit. Returns the new place id and the ids of
// evicted rows.
func (r *PlaceRepository) SaveWithQuota(ctx context.Context, place *model.Place, maxPerUser int) (int64, []int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("begin save tx: %w", err)
	}
	defer tx.Rollback()

	var ids []int64
	if err := tx.SelectContext(ctx, &ids,
		`SELECT id FROM places WHERE "user" = $1 ORDER BY id FOR UPDATE`, place.User); err != nil {
		return 0, nil, fmt.Errorf("lock places: %w", err)
	}

	var evicted []int64
	if maxPerUser > 0 && len(ids) >= maxPerUser {
		evicted = ids[:len(ids)-maxPerUser+1]
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM places WHERE id = ANY($1)`, pq.Array(evicted)); err != nil {
			return 0, nil, fmt.Errorf("evict oldest places: %w", err)
		}
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO places ("user", address, latitude, longitude, image)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')) RETURNING id`,
		place.User, place.Address, place.Latitude, place.Longitude, place.Image,
	).Scan(&id)
	if err != nil {
		return 0, nil, fmt.Errorf("insert place: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit save tx: %w", err)
	}
	place.ID = id
	return id, evicted, nil
}

// DeleteAllByUser removes every place of the user and reports how many
// rows were deleted.
func (r *PlaceRepository) DeleteAllByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE "user" = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete places: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete places rows: %w", err)
	}
	return n, nil
}
