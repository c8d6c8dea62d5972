package model

import "time"

// ChatSession is the time-boxed conversation opened by an accepted request.
type ChatSession struct {
	ID        string    `json:"id"`
	RequestID int64     `json:"request_id"`
	User1ID   int64     `json:"user1_id"`
	User2ID   int64     `json:"user2_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c ChatSession) HasParticipant(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

func (c ChatSession) PartnerOf(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

func (c ChatSession) OpenAt(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiresAt)
}

type Message struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
