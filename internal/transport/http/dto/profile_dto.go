package dto

import "time"

type ProfileRequest struct {
	Name                  string `json:"name"`
	Gender                string `json:"gender"`
	BirthYear             int    `json:"birth_year"`
	Region                string `json:"region"`
	Nationality           string `json:"nationality"`
	MaritalStatus         string `json:"marital_status"`
	HeightCM              int    `json:"height_cm"`
	WeightKG              int    `json:"weight_kg"`
	PrayerFrequency       string `json:"prayer_frequency"`
	Fasting               string `json:"fasting"`
	ReligiousLevel        string `json:"religious_level"`
	Education             string `json:"education"`
	Profession            string `json:"profession"`
	Bio                   string `json:"bio"`
	PartnerAgeMin         int    `json:"partner_age_min"`
	PartnerAgeMax         int    `json:"partner_age_max"`
	PartnerRegion         string `json:"partner_region"`
	PartnerMaritalStatus  string `json:"partner_marital_status"`
	PartnerReligiousLevel string `json:"partner_religious_level"`
}

type ProfileResponse struct {
	UserID                int64      `json:"user_id"`
	Name                  string     `json:"name"`
	Gender                string     `json:"gender"`
	BirthYear             int        `json:"birth_year"`
	Age                   int        `json:"age"`
	Region                string     `json:"region"`
	Nationality           string     `json:"nationality,omitempty"`
	MaritalStatus         string     `json:"marital_status"`
	HeightCM              int        `json:"height_cm,omitempty"`
	WeightKG              int        `json:"weight_kg,omitempty"`
	PrayerFrequency       string     `json:"prayer_frequency,omitempty"`
	Fasting               string     `json:"fasting,omitempty"`
	ReligiousLevel        string     `json:"religious_level,omitempty"`
	Education             string     `json:"education,omitempty"`
	Profession            string     `json:"profession,omitempty"`
	Bio                   string     `json:"bio,omitempty"`
	PartnerAgeMin         int        `json:"partner_age_min,omitempty"`
	PartnerAgeMax         int        `json:"partner_age_max,omitempty"`
	PartnerRegion         string     `json:"partner_region,omitempty"`
	PartnerMaritalStatus  string     `json:"partner_marital_status,omitempty"`
	PartnerReligiousLevel string     `json:"partner_religious_level,omitempty"`
	IsComplete            bool       `json:"is_complete"`
	IsActive              bool       `json:"is_active"`
	ActivatedAt           *time.Time `json:"activated_at,omitempty"`
}

type ProfileViewResponse struct {
	Profile         ProfileResponse `json:"profile"`
	HasActiveTariff bool            `json:"has_active_tariff"`
	IsTop           bool            `json:"is_top"`
	RequestsLeft    int             `json:"requests_left"`
	ListingExpires  *time.Time      `json:"listing_expires,omitempty"`
}

type ProfileToggleResponse struct {
	IsActive bool `json:"is_active"`
}
