package model

import (
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
)

type MatchRequest struct {
	ID          int64               `json:"id"`
	SenderID    int64               `json:"sender_id"`
	ReceiverID  int64               `json:"receiver_id"`
	Message     string              `json:"message"`
	Status      enums.RequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	RespondedAt *time.Time          `json:"responded_at"`
}
