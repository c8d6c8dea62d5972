package dto

import "time"

type TariffPlanResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Requests    int    `json:"requests"`
	ListingDays int    `json:"listing_days"`
	TopDays     int    `json:"top_days"`
}

type UserTariffResponse struct {
	TariffID       string     `json:"tariff_id"`
	RequestsLeft   int        `json:"requests_left"`
	RequestsTotal  int        `json:"requests_total"`
	ListingExpires time.Time  `json:"listing_expires"`
	TopExpires     *time.Time `json:"top_expires,omitempty"`
}

type PaymentResponse struct {
	ID         int64     `json:"id"`
	TariffID   string    `json:"tariff_id"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	HasReceipt bool      `json:"has_receipt"`
	CreatedAt  time.Time `json:"created_at"`
}

type TariffOverviewResponse struct {
	Plans      []TariffPlanResponse `json:"plans"`
	Current    *UserTariffResponse  `json:"current,omitempty"`
	Active     []UserTariffResponse `json:"active"`
	Pending    *PaymentResponse     `json:"pending,omitempty"`
	CardNumber string               `json:"card_number"`
	CardHolder string               `json:"card_holder"`
}

type PurchaseRequest struct {
	TariffID string `json:"tariff_id"`
}

type PurchaseResponse struct {
	Payment    PaymentResponse `json:"payment"`
	CardNumber string          `json:"card_number"`
	CardHolder string          `json:"card_holder"`
}
