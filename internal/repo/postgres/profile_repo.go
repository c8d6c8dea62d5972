package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

const profileColumns = `
	user_id, name, gender, birth_year, region, nationality, marital_status,
	height_cm, weight_kg, prayer_frequency, fasting, religious_level,
	education, profession, bio,
	partner_age_min, partner_age_max, partner_region, partner_marital_status,
	partner_religious_level,
	is_complete, is_active, activated_at, created_at, updated_at`

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Upsert(ctx context.Context, p model.Profile) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if p.UserID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO profiles (
	user_id, name, gender, birth_year, region, nationality, marital_status,
	height_cm, weight_kg, prayer_frequency, fasting, religious_level,
	education, profession, bio,
	partner_age_min, partner_age_max, partner_region, partner_marital_status,
	partner_religious_level,
	is_complete, is_active, activated_at, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9, $10, $11, $12,
	$13, $14, $15,
	$16, $17, $18, $19,
	$20,
	TRUE, FALSE, NULL, NOW(), NOW()
)
ON CONFLICT (user_id) DO UPDATE SET
	name = EXCLUDED.name,
	gender = EXCLUDED.gender,
	birth_year = EXCLUDED.birth_year,
	region = EXCLUDED.region,
	nationality = EXCLUDED.nationality,
	marital_status = EXCLUDED.marital_status,
	height_cm = EXCLUDED.height_cm,
	weight_kg = EXCLUDED.weight_kg,
	prayer_frequency = EXCLUDED.prayer_frequency,
	fasting = EXCLUDED.fasting,
	religious_level = EXCLUDED.religious_level,
	education = EXCLUDED.education,
	profession = EXCLUDED.profession,
	bio = EXCLUDED.bio,
	partner_age_min = EXCLUDED.partner_age_min,
	partner_age_max = EXCLUDED.partner_age_max,
	partner_region = EXCLUDED.partner_region,
	partner_marital_status = EXCLUDED.partner_marital_status,
	partner_religious_level = EXCLUDED.partner_religious_level,
	is_complete = TRUE,
	updated_at = NOW()
RETURNING `+profileColumns+`
`,
		p.UserID, p.Name, p.Gender.String(), p.BirthYear, p.Region, p.Nationality, p.MaritalStatus,
		p.HeightCM, p.WeightKG, p.PrayerFrequency, p.Fasting, p.ReligiousLevel,
		p.Education, p.Profession, p.Bio,
		p.PartnerAgeMin, p.PartnerAgeMax, p.PartnerRegion, p.PartnerMaritalStatus,
		p.PartnerReligiousLevel,
	)

	saved, err := scanProfile(row)
	if err != nil {
		return model.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}

	return saved, nil
}

func (r *ProfileRepo) FindByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE user_id = $1
`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("find profile by user id: %w", err)
	}

	return profile, nil
}

// SetActive flips feed visibility. Activation stamps activated_at so the
// listing keeps a stable recency order.
func (r *ProfileRepo) SetActive(ctx context.Context, userID int64, active bool) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE profiles
SET
	is_active = $2,
	activated_at = CASE WHEN $2 THEN NOW() ELSE activated_at END,
	updated_at = NOW()
WHERE user_id = $1
RETURNING `+profileColumns+`
`, userID, active)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("set profile active: %w", err)
	}

	return profile, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var p model.Profile
	var gender string
	err := row.Scan(
		&p.UserID,
		&p.Name,
		&gender,
		&p.BirthYear,
		&p.Region,
		&p.Nationality,
		&p.MaritalStatus,
		&p.HeightCM,
		&p.WeightKG,
		&p.PrayerFrequency,
		&p.Fasting,
		&p.ReligiousLevel,
		&p.Education,
		&p.Profession,
		&p.Bio,
		&p.PartnerAgeMin,
		&p.PartnerAgeMax,
		&p.PartnerRegion,
		&p.PartnerMaritalStatus,
		&p.PartnerReligiousLevel,
		&p.IsComplete,
		&p.IsActive,
		&p.ActivatedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return model.Profile{}, err
	}

	if parsed, ok := enums.ParseGender(gender); ok {
		p.Gender = parsed
	}

	return p, nil
}
