package model

import "time"

// UserTariff is a paid entitlement granted after an approved payment.
type UserTariff struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	TariffID       string     `json:"tariff_id"`
	RequestsLeft   int        `json:"requests_left"`
	RequestsTotal  int        `json:"requests_total"`
	ListingExpires time.Time  `json:"listing_expires"`
	TopExpires     *time.Time `json:"top_expires"`
	IsActive       bool       `json:"is_active"`
	PaymentID      *int64     `json:"payment_id"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (t UserTariff) ValidAt(now time.Time) bool {
	return t.IsActive && !t.ListingExpires.Before(now)
}

func (t UserTariff) TopAt(now time.Time) bool {
	return t.TopExpires != nil && t.TopExpires.After(now)
}
