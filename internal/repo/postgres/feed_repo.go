package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
)

var ErrFeedCandidateNotFound = errors.New("feed candidate not found")

type FeedRepo struct {
	pool *pgxpool.Pool
}

// FeedCandidateRecord is a visible profile plus its boost flag.
type FeedCandidateRecord struct {
	Profile    model.Profile
	TelegramID int64
	IsTop      bool
}

func NewFeedRepo(pool *pgxpool.Pool) *FeedRepo {
	return &FeedRepo{pool: pool}
}

// ListPage returns one page of visible opposite-gender profiles in stable
// recency order, plus the total count for the same filter.
func (r *FeedRepo) ListPage(ctx context.Context, viewerID int64, gender enums.Gender, offset, limit int, now time.Time) ([]FeedCandidateRecord, int64, error) {
	if viewerID <= 0 {
		return nil, 0, fmt.Errorf("invalid viewer id")
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []FeedCandidateRecord{}, 0, nil
	}

	var total int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM profiles p
JOIN users u ON u.id = p.user_id
WHERE p.gender = $2
	AND p.is_active
	AND p.is_complete
	AND NOT u.is_blocked
	AND p.user_id <> $1
`, viewerID, gender.String()).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count feed candidates: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	`+prefixedProfileColumns("p")+`,
	u.telegram_id,
	COALESCE(t.top_expires > $3, FALSE)
FROM profiles p
JOIN users u ON u.id = p.user_id
LEFT JOIN LATERAL (
	SELECT top_expires
	FROM user_tariffs ut
	WHERE ut.user_id = p.user_id AND ut.is_active AND ut.listing_expires >= $3
	ORDER BY ut.created_at DESC, ut.id DESC
	LIMIT 1
) t ON TRUE
WHERE p.gender = $2
	AND p.is_active
	AND p.is_complete
	AND NOT u.is_blocked
	AND p.user_id <> $1
ORDER BY p.activated_at DESC NULLS LAST, p.user_id DESC
OFFSET $4
LIMIT $5
`, viewerID, gender.String(), now, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list feed candidates: %w", err)
	}
	defer rows.Close()

	items := make([]FeedCandidateRecord, 0, limit)
	for rows.Next() {
		item, err := scanFeedCandidate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan feed candidate: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate feed candidates: %w", rows.Err())
	}

	return items, total, nil
}

// FindCandidate loads one visible profile for the detail view.
func (r *FeedRepo) FindCandidate(ctx context.Context, targetUserID int64, now time.Time) (FeedCandidateRecord, error) {
	if r.pool == nil {
		return FeedCandidateRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if targetUserID <= 0 {
		return FeedCandidateRecord{}, fmt.Errorf("invalid target user id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT
	`+prefixedProfileColumns("p")+`,
	u.telegram_id,
	COALESCE(t.top_expires > $2, FALSE)
FROM profiles p
JOIN users u ON u.id = p.user_id
LEFT JOIN LATERAL (
	SELECT top_expires
	FROM user_tariffs ut
	WHERE ut.user_id = p.user_id AND ut.is_active AND ut.listing_expires >= $2
	ORDER BY ut.created_at DESC, ut.id DESC
	LIMIT 1
) t ON TRUE
WHERE p.user_id = $1
	AND p.is_active
	AND p.is_complete
	AND NOT u.is_blocked
`, targetUserID, now)

	item, err := scanFeedCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FeedCandidateRecord{}, ErrFeedCandidateNotFound
		}
		return FeedCandidateRecord{}, fmt.Errorf("find feed candidate: %w", err)
	}

	return item, nil
}

func prefixedProfileColumns(alias string) string {
	return alias + `.user_id, ` + alias + `.name, ` + alias + `.gender, ` + alias + `.birth_year, ` +
		alias + `.region, ` + alias + `.nationality, ` + alias + `.marital_status, ` +
		alias + `.height_cm, ` + alias + `.weight_kg, ` + alias + `.prayer_frequency, ` +
		alias + `.fasting, ` + alias + `.religious_level, ` + alias + `.education, ` +
		alias + `.profession, ` + alias + `.bio, ` +
		alias + `.partner_age_min, ` + alias + `.partner_age_max, ` + alias + `.partner_region, ` +
		alias + `.partner_marital_status, ` + alias + `.partner_religious_level, ` +
		alias + `.is_complete, ` + alias + `.is_active, ` + alias + `.activated_at, ` +
		alias + `.created_at, ` + alias + `.updated_at`
}

func scanFeedCandidate(row rowScanner) (FeedCandidateRecord, error) {
	var item FeedCandidateRecord
	var gender string
	err := row.Scan(
		&item.Profile.UserID,
		&item.Profile.Name,
		&gender,
		&item.Profile.BirthYear,
		&item.Profile.Region,
		&item.Profile.Nationality,
		&item.Profile.MaritalStatus,
		&item.Profile.HeightCM,
		&item.Profile.WeightKG,
		&item.Profile.PrayerFrequency,
		&item.Profile.Fasting,
		&item.Profile.ReligiousLevel,
		&item.Profile.Education,
		&item.Profile.Profession,
		&item.Profile.Bio,
		&item.Profile.PartnerAgeMin,
		&item.Profile.PartnerAgeMax,
		&item.Profile.PartnerRegion,
		&item.Profile.PartnerMaritalStatus,
		&item.Profile.PartnerReligiousLevel,
		&item.Profile.IsComplete,
		&item.Profile.IsActive,
		&item.Profile.ActivatedAt,
		&item.Profile.CreatedAt,
		&item.Profile.UpdatedAt,
		&item.TelegramID,
		&item.IsTop,
	)
	if err != nil {
		return FeedCandidateRecord{}, err
	}

	if parsed, ok := enums.ParseGender(gender); ok {
		item.Profile.Gender = parsed
	}

	return item, nil
}
