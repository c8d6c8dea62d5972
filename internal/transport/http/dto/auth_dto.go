package dto

type TelegramAuthRequest struct {
	InitData string `json:"init_data"`
}

type AuthUserResponse struct {
	ID         int64  `json:"id"`
	TelegramID string `json:"telegram_id"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
}

type AuthResponse struct {
	User            AuthUserResponse `json:"user"`
	UnreadMessages  int              `json:"unread_messages"`
	PendingRequests int              `json:"pending_requests"`
	HasActiveTariff bool             `json:"has_active_tariff"`
	TariffID        string           `json:"tariff_id,omitempty"`
	RequestsLeft    int              `json:"requests_left"`
}
