package dto

import "time"

type ChatItemResponse struct {
	ID            string     `json:"id"`
	PartnerID     int64      `json:"partner_id"`
	PartnerName   string     `json:"partner_name"`
	UnreadCount   int        `json:"unread_count"`
	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	IsOpen        bool       `json:"is_open"`
}

type ChatsResponse struct {
	Items []ChatItemResponse `json:"items"`
}

type MessageResponse struct {
	ID        int64     `json:"id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationResponse struct {
	ID        string            `json:"id"`
	PartnerID int64             `json:"partner_id"`
	ExpiresAt time.Time         `json:"expires_at"`
	IsOpen    bool              `json:"is_open"`
	Messages  []MessageResponse `json:"messages"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}
