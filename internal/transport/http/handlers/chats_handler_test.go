package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
	authsvc "github.com/Usergeee443/nikoh/internal/services/auth"
	chatsvc "github.com/Usergeee443/nikoh/internal/services/chats"
)

type chatStoreStub struct {
	chat model.ChatSession
}

func (s chatStoreStub) ListForUser(context.Context, int64, int) ([]pgrepo.ChatListRecord, error) {
	return nil, nil
}

func (s chatStoreStub) FindForParticipant(_ context.Context, chatID string, userID int64) (model.ChatSession, error) {
	if chatID != s.chat.ID || !s.chat.HasParticipant(userID) {
		return model.ChatSession{}, pgrepo.ErrChatNotFound
	}
	return s.chat, nil
}

func (s chatStoreStub) Open(_ context.Context, chatID string, userID int64, _ int) (model.ChatSession, []model.Message, error) {
	if chatID != s.chat.ID || !s.chat.HasParticipant(userID) {
		return model.ChatSession{}, nil, pgrepo.ErrChatNotFound
	}
	return s.chat, nil, nil
}

func (s chatStoreStub) InsertMessage(_ context.Context, chatID string, senderID int64, content string) (model.Message, error) {
	return model.Message{ID: 1, ChatID: chatID, SenderID: senderID, Content: content}, nil
}

type limiterStub struct {
	retryAfter int64
	allowed    bool
}

func (s limiterStub) AllowMessage(context.Context, string, int64) (int64, bool, error) {
	return s.retryAfter, s.allowed, nil
}

func sendMessageRequest(t *testing.T, chatID string, userID int64, content string) *http.Request {
	t.Helper()

	body, err := json.Marshal(map[string]any{"content": content})
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/chats/"+chatID+"/messages", bytes.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID:     userID,
		TelegramID: 100000 + userID,
	}))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("chatID", chatID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func activeChat() model.ChatSession {
	return model.ChatSession{
		ID:        "chat-1",
		RequestID: 5,
		User1ID:   101,
		User2ID:   202,
		IsActive:  true,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}
}

func TestSendMessageThrottledReturns429WithRetryHint(t *testing.T) {
	svc := chatsvc.NewService(chatsvc.Dependencies{
		Chats:   chatStoreStub{chat: activeChat()},
		Limiter: limiterStub{allowed: false, retryAfter: 7},
	}, chatsvc.Config{})
	h := NewChatsHandler(svc)

	rr := httptest.NewRecorder()
	h.SendMessage(rr, sendMessageRequest(t, "chat-1", 101, "salom"))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "TOO_MANY_MESSAGES" {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, "TOO_MANY_MESSAGES")
	}
	if payload.RetryAfterSec != 7 {
		t.Fatalf("unexpected retry_after_sec: got %d want %d", payload.RetryAfterSec, 7)
	}
}

func TestSendMessageToForeignChatReturns404(t *testing.T) {
	svc := chatsvc.NewService(chatsvc.Dependencies{
		Chats:   chatStoreStub{chat: activeChat()},
		Limiter: limiterStub{allowed: true},
	}, chatsvc.Config{})
	h := NewChatsHandler(svc)

	rr := httptest.NewRecorder()
	h.SendMessage(rr, sendMessageRequest(t, "chat-1", 999, "salom"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSendMessageStoresContent(t *testing.T) {
	svc := chatsvc.NewService(chatsvc.Dependencies{
		Chats:   chatStoreStub{chat: activeChat()},
		Limiter: limiterStub{allowed: true},
	}, chatsvc.Config{})
	h := NewChatsHandler(svc)

	rr := httptest.NewRecorder()
	h.SendMessage(rr, sendMessageRequest(t, "chat-1", 101, "  salom  "))

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusCreated)
	}

	var payload struct {
		SenderID int64  `json:"sender_id"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.SenderID != 101 || payload.Content != "salom" {
		t.Fatalf("unexpected message payload: %+v", payload)
	}
}
