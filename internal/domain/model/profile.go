package model

import (
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
)

type Profile struct {
	UserID                int64        `json:"user_id"`
	Name                  string       `json:"name"`
	Gender                enums.Gender `json:"gender"`
	BirthYear             int          `json:"birth_year"`
	Region                string       `json:"region"`
	Nationality           string       `json:"nationality"`
	MaritalStatus         string       `json:"marital_status"`
	HeightCM              int          `json:"height_cm"`
	WeightKG              int          `json:"weight_kg"`
	PrayerFrequency       string       `json:"prayer_frequency"`
	Fasting               string       `json:"fasting"`
	ReligiousLevel        string       `json:"religious_level"`
	Education             string       `json:"education"`
	Profession            string       `json:"profession"`
	Bio                   string       `json:"bio"`
	PartnerAgeMin         int          `json:"partner_age_min"`
	PartnerAgeMax         int          `json:"partner_age_max"`
	PartnerRegion         string       `json:"partner_region"`
	PartnerMaritalStatus  string       `json:"partner_marital_status"`
	PartnerReligiousLevel string       `json:"partner_religious_level"`
	IsComplete            bool         `json:"is_complete"`
	IsActive              bool         `json:"is_active"`
	ActivatedAt           *time.Time   `json:"activated_at"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// Age derives the approximate age from the birth year.
func (p Profile) Age(now time.Time) int {
	if p.BirthYear <= 0 {
		return 0
	}
	age := now.Year() - p.BirthYear
	if age < 0 {
		return 0
	}
	return age
}
