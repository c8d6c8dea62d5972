package dto

import "time"

type AdminStatsResponse struct {
	TotalUsers       int64 `json:"total_users"`
	BlockedUsers     int64 `json:"blocked_users"`
	CompleteProfiles int64 `json:"complete_profiles"`
	ActiveProfiles   int64 `json:"active_profiles"`
	MaleProfiles     int64 `json:"male_profiles"`
	FemaleProfiles   int64 `json:"female_profiles"`
	PendingPayments  int64 `json:"pending_payments"`
	ApprovedPayments int64 `json:"approved_payments"`
	ApprovedAmount   int64 `json:"approved_amount"`
	ActiveTariffs    int64 `json:"active_tariffs"`
	TotalRequests    int64 `json:"total_requests"`
	AcceptedRequests int64 `json:"accepted_requests"`
	ActiveChats      int64 `json:"active_chats"`
	TotalMessages    int64 `json:"total_messages"`
}

type AdminPaymentResponse struct {
	Payment     PaymentResponse `json:"payment"`
	UserID      int64           `json:"user_id"`
	TelegramID  string          `json:"telegram_id"`
	Username    string          `json:"username,omitempty"`
	ProfileName string          `json:"profile_name,omitempty"`
}

type AdminPaymentsResponse struct {
	Items []AdminPaymentResponse `json:"items"`
}

type AdminPaymentActionRequest struct {
	Action string `json:"action"`
}

type AdminPaymentActionResponse struct {
	Payment PaymentResponse     `json:"payment"`
	Tariff  *UserTariffResponse `json:"tariff,omitempty"`
}

type AdminUserResponse struct {
	ID            int64     `json:"id"`
	TelegramID    string    `json:"telegram_id"`
	Username      string    `json:"username,omitempty"`
	FirstName     string    `json:"first_name,omitempty"`
	IsAdmin       bool      `json:"is_admin"`
	IsBlocked     bool      `json:"is_blocked"`
	HasProfile    bool      `json:"has_profile"`
	ProfileName   string    `json:"profile_name,omitempty"`
	Gender        string    `json:"gender,omitempty"`
	Region        string    `json:"region,omitempty"`
	ProfileActive bool      `json:"profile_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type AdminUsersResponse struct {
	Items []AdminUserResponse `json:"items"`
}

type AdminUserActionRequest struct {
	Action string `json:"action"`
}

type AdminUserActionResponse struct {
	OK bool `json:"ok"`
}
