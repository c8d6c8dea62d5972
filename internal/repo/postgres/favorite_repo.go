package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoriteRepo struct {
	pool *pgxpool.Pool
}

type FavoriteCardRecord struct {
	TargetID      int64
	Name          string
	Gender        string
	BirthYear     int
	Region        string
	Nationality   string
	MaritalStatus string
	IsActive      bool
	SavedAt       time.Time
}

func NewFavoriteRepo(pool *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{pool: pool}
}

// Toggle adds the target to favorites, or removes it if already saved.
// Returns whether the target is a favorite after the call.
func (r *FavoriteRepo) Toggle(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, fmt.Errorf("invalid favorite pair")
	}

	var isFavorite bool
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var removedID int64
		err := tx.QueryRow(ctx, `
DELETE FROM favorites
WHERE user_id = $1 AND target_id = $2
RETURNING id
`, userID, targetID).Scan(&removedID)
		if err == nil {
			isFavorite = false
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("remove favorite: %w", err)
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO favorites (user_id, target_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, target_id) DO NOTHING
`, userID, targetID); err != nil {
			return fmt.Errorf("add favorite: %w", err)
		}
		isFavorite = true

		return nil
	})
	if err != nil {
		return false, err
	}

	return isFavorite, nil
}

func (r *FavoriteRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]FavoriteCardRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []FavoriteCardRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	f.target_id,
	COALESCE(p.name, ''),
	COALESCE(p.gender, ''),
	COALESCE(p.birth_year, 0),
	COALESCE(p.region, ''),
	COALESCE(p.nationality, ''),
	COALESCE(p.marital_status, ''),
	COALESCE(p.is_active, FALSE),
	f.created_at
FROM favorites f
LEFT JOIN profiles p ON p.user_id = f.target_id
WHERE f.user_id = $1
ORDER BY f.created_at DESC, f.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	items := make([]FavoriteCardRecord, 0, limit)
	for rows.Next() {
		var item FavoriteCardRecord
		if err := rows.Scan(
			&item.TargetID,
			&item.Name,
			&item.Gender,
			&item.BirthYear,
			&item.Region,
			&item.Nationality,
			&item.MaritalStatus,
			&item.IsActive,
			&item.SavedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate favorites: %w", rows.Err())
	}

	return items, nil
}

// IsFavorite reports whether target is saved by user.
func (r *FavoriteRepo) IsFavorite(ctx context.Context, userID, targetID int64) (bool, error) {
	if r.pool == nil {
		return false, nil
	}
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid favorite pair")
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM favorites
WHERE user_id = $1 AND target_id = $2
LIMIT 1
`, userID, targetID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup favorite: %w", err)
	}

	return true, nil
}
