package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Usergeee443/nikoh/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

type UpsertUser struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	IsAdmin    bool
}

// AuthCountsRecord is the badge snapshot returned with every authentication.
type AuthCountsRecord struct {
	UnreadMessages  int
	PendingRequests int
	HasActiveTariff bool
	TariffID        string
	RequestsLeft    int
}

type AdminUserRecord struct {
	User          model.User
	HasProfile    bool
	ProfileName   string
	Gender        string
	Region        string
	ProfileActive bool
}

const userColumns = `id, telegram_id, username, first_name, last_name, is_admin, is_blocked, created_at, last_active_at`

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) UpsertFromTelegram(ctx context.Context, in UpsertUser) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if in.TelegramID <= 0 {
		return model.User{}, fmt.Errorf("invalid telegram_id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (telegram_id, username, first_name, last_name, is_admin, is_blocked, created_at, last_active_at)
VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
ON CONFLICT (telegram_id) DO UPDATE SET
	username = EXCLUDED.username,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	is_admin = users.is_admin OR EXCLUDED.is_admin,
	last_active_at = NOW()
RETURNING `+userColumns+`
`, in.TelegramID, strings.TrimSpace(in.Username), strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), in.IsAdmin).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.IsAdmin,
		&user.IsBlocked,
		&user.CreatedAt,
		&user.LastActiveAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("upsert user by telegram_id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, userID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1
`, userID).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.IsAdmin,
		&user.IsBlocked,
		&user.CreatedAt,
		&user.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if telegramID <= 0 {
		return model.User{}, fmt.Errorf("invalid telegram_id")
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE telegram_id = $1
`, telegramID).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.IsAdmin,
		&user.IsBlocked,
		&user.CreatedAt,
		&user.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("find user by telegram_id: %w", err)
	}

	return user, nil
}

// SetBlocked flips the block flag. Blocking also hides the profile from the feed.
func (r *UserRepo) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
UPDATE users
SET is_blocked = $2
WHERE id = $1
`, userID, blocked)
		if err != nil {
			return fmt.Errorf("set user blocked: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		if blocked {
			if _, err := tx.Exec(ctx, `
UPDATE profiles
SET is_active = FALSE, updated_at = NOW()
WHERE user_id = $1
`, userID); err != nil {
				return fmt.Errorf("deactivate profile of blocked user: %w", err)
			}
		}

		return nil
	})
}

// AuthCounts reads the unread/pending badges and the tariff snapshot in one tx
// so the numbers are consistent with each other.
func (r *UserRepo) AuthCounts(ctx context.Context, userID int64, now time.Time) (AuthCountsRecord, error) {
	if userID <= 0 {
		return AuthCountsRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return AuthCountsRecord{}, nil
	}

	var counts AuthCountsRecord
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM messages m
JOIN chats c ON c.id = m.chat_id
WHERE (c.user1_id = $1 OR c.user2_id = $1)
	AND c.is_active
	AND c.expires_at > $2
	AND m.sender_id <> $1
	AND NOT m.is_read
`, userID, now).Scan(&counts.UnreadMessages)
		if err != nil {
			return fmt.Errorf("count unread messages: %w", err)
		}

		err = tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM match_requests
WHERE receiver_id = $1 AND status = 'PENDING'
`, userID).Scan(&counts.PendingRequests)
		if err != nil {
			return fmt.Errorf("count pending requests: %w", err)
		}

		err = tx.QueryRow(ctx, `
SELECT tariff_id, requests_left
FROM user_tariffs
WHERE user_id = $1 AND is_active AND listing_expires >= $2
ORDER BY created_at DESC, id DESC
LIMIT 1
`, userID, now).Scan(&counts.TariffID, &counts.RequestsLeft)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("read tariff snapshot: %w", err)
		}
		counts.HasActiveTariff = true

		return nil
	})
	if err != nil {
		return AuthCountsRecord{}, err
	}

	return counts, nil
}

func (r *UserRepo) ListRecent(ctx context.Context, limit int) ([]AdminUserRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []AdminUserRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	u.id, u.telegram_id, u.username, u.first_name, u.last_name,
	u.is_admin, u.is_blocked, u.created_at, u.last_active_at,
	p.user_id IS NOT NULL,
	COALESCE(p.name, ''),
	COALESCE(p.gender, ''),
	COALESCE(p.region, ''),
	COALESCE(p.is_active, FALSE)
FROM users u
LEFT JOIN profiles p ON p.user_id = u.id
ORDER BY u.created_at DESC, u.id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	defer rows.Close()

	items := make([]AdminUserRecord, 0, limit)
	for rows.Next() {
		var item AdminUserRecord
		if err := rows.Scan(
			&item.User.ID,
			&item.User.TelegramID,
			&item.User.Username,
			&item.User.FirstName,
			&item.User.LastName,
			&item.User.IsAdmin,
			&item.User.IsBlocked,
			&item.User.CreatedAt,
			&item.User.LastActiveAt,
			&item.HasProfile,
			&item.ProfileName,
			&item.Gender,
			&item.Region,
			&item.ProfileActive,
		); err != nil {
			return nil, fmt.Errorf("scan recent user: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate recent users: %w", rows.Err())
	}

	return items, nil
}
