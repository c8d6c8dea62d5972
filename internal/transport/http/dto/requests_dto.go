package dto

import "time"

type CreateMatchRequest struct {
	ReceiverID int64  `json:"receiver_id"`
	Message    string `json:"message"`
}

type MatchRequestResponse struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	ReceiverID  int64      `json:"receiver_id"`
	Message     string     `json:"message,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type CreateMatchResponse struct {
	Request      MatchRequestResponse `json:"request"`
	RequestsLeft int                  `json:"requests_left"`
}

type RequestCardResponse struct {
	Request     MatchRequestResponse `json:"request"`
	Counterpart FeedCardResponse     `json:"counterpart"`
}

type RequestsResponse struct {
	Items []RequestCardResponse `json:"items"`
}

type RespondRequest struct {
	Action string `json:"action"`
}

type RespondResponse struct {
	Request MatchRequestResponse `json:"request"`
	ChatID  string               `json:"chat_id,omitempty"`
}
