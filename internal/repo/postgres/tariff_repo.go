package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Usergeee443/nikoh/internal/domain/model"
)

var ErrTariffNotFound = errors.New("tariff not found")

type TariffRepo struct {
	pool *pgxpool.Pool
}

const tariffColumns = `id, user_id, tariff_id, requests_left, requests_total, listing_expires, top_expires, is_active, payment_id, created_at`

func NewTariffRepo(pool *pgxpool.Pool) *TariffRepo {
	return &TariffRepo{pool: pool}
}

// CurrentValid returns the freshest grant that is still listed.
func (r *TariffRepo) CurrentValid(ctx context.Context, userID int64, now time.Time) (model.UserTariff, error) {
	if r.pool == nil {
		return model.UserTariff{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.UserTariff{}, fmt.Errorf("invalid user id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+tariffColumns+`
FROM user_tariffs
WHERE user_id = $1 AND is_active AND listing_expires >= $2
ORDER BY created_at DESC, id DESC
LIMIT 1
`, userID, now)

	tariff, err := scanTariff(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserTariff{}, ErrTariffNotFound
		}
		return model.UserTariff{}, fmt.Errorf("find current tariff: %w", err)
	}

	return tariff, nil
}

func (r *TariffRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]model.UserTariff, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []model.UserTariff{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+tariffColumns+`
FROM user_tariffs
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user tariffs: %w", err)
	}
	defer rows.Close()

	items := make([]model.UserTariff, 0, limit)
	for rows.Next() {
		tariff, err := scanTariff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user tariff: %w", err)
		}
		items = append(items, tariff)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate user tariffs: %w", rows.Err())
	}

	return items, nil
}

// DeactivateExpired retires grants whose listing window has passed.
func (r *TariffRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE user_tariffs
SET is_active = FALSE
WHERE is_active AND listing_expires < $1
`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired tariffs: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanTariff(row rowScanner) (model.UserTariff, error) {
	var t model.UserTariff
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.TariffID,
		&t.RequestsLeft,
		&t.RequestsTotal,
		&t.ListingExpires,
		&t.TopExpires,
		&t.IsActive,
		&t.PaymentID,
		&t.CreatedAt,
	)
	if err != nil {
		return model.UserTariff{}, err
	}
	return t, nil
}
