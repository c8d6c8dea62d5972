package chats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

type fakeChatStore struct {
	chats    map[string]model.ChatSession
	messages map[string][]model.Message
	nextID   int64
	lastRead string
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		chats:    map[string]model.ChatSession{},
		messages: map[string][]model.Message{},
		nextID:   1,
	}
}

func (f *fakeChatStore) addChat(chat model.ChatSession) {
	f.chats[chat.ID] = chat
}

func (f *fakeChatStore) ListForUser(_ context.Context, userID int64, _ int) ([]pgrepo.ChatListRecord, error) {
	items := []pgrepo.ChatListRecord{}
	for _, chat := range f.chats {
		if chat.HasParticipant(userID) {
			items = append(items, pgrepo.ChatListRecord{Chat: chat, PartnerID: chat.PartnerOf(userID)})
		}
	}
	return items, nil
}

func (f *fakeChatStore) FindForParticipant(_ context.Context, chatID string, userID int64) (model.ChatSession, error) {
	chat, ok := f.chats[chatID]
	if !ok || !chat.HasParticipant(userID) {
		return model.ChatSession{}, pgrepo.ErrChatNotFound
	}
	return chat, nil
}

func (f *fakeChatStore) Open(_ context.Context, chatID string, userID int64, _ int) (model.ChatSession, []model.Message, error) {
	chat, ok := f.chats[chatID]
	if !ok || !chat.HasParticipant(userID) {
		return model.ChatSession{}, nil, pgrepo.ErrChatNotFound
	}
	f.lastRead = chatID
	history := f.messages[chatID]
	for i := range history {
		if history[i].SenderID != userID {
			history[i].IsRead = true
		}
	}
	f.messages[chatID] = history
	return chat, history, nil
}

func (f *fakeChatStore) InsertMessage(_ context.Context, chatID string, senderID int64, content string) (model.Message, error) {
	message := model.Message{
		ID:        f.nextID,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.messages[chatID] = append(f.messages[chatID], message)
	return message, nil
}

type fakeLimiter struct {
	allowed    bool
	retryAfter int64
	err        error
	calls      int
}

func (f *fakeLimiter) AllowMessage(context.Context, string, int64) (int64, bool, error) {
	f.calls++
	return f.retryAfter, f.allowed, f.err
}

type recordingNotifier struct {
	recipients []int64
}

func (n *recordingNotifier) MessageReceived(_ context.Context, recipientID int64, _ string) {
	n.recipients = append(n.recipients, recipientID)
}

func openChat(id string, user1, user2 int64) model.ChatSession {
	return model.ChatSession{
		ID:        id,
		User1ID:   user1,
		User2ID:   user2,
		IsActive:  true,
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func newTestService(store *fakeChatStore, limiter MessageLimiter) (*Service, *recordingNotifier) {
	notifier := &recordingNotifier{}
	svc := NewService(Dependencies{
		Chats:    store,
		Limiter:  limiter,
		Notifier: notifier,
	}, Config{MessageMaxLength: 2000})
	return svc, notifier
}

func TestSendMessageNotifiesPartner(t *testing.T) {
	store := newFakeChatStore()
	store.addChat(openChat("chat-1", 1, 2))
	svc, notifier := newTestService(store, &fakeLimiter{allowed: true})

	message, err := svc.SendMessage(context.Background(), 1, "chat-1", "  salom  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.Content != "salom" {
		t.Fatalf("content not trimmed: %q", message.Content)
	}
	if len(notifier.recipients) != 1 || notifier.recipients[0] != 2 {
		t.Fatalf("partner not notified: %v", notifier.recipients)
	}
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	store := newFakeChatStore()
	store.addChat(openChat("chat-1", 1, 2))
	svc, _ := newTestService(store, &fakeLimiter{allowed: true})

	if _, err := svc.SendMessage(context.Background(), 3, "chat-1", "salom"); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("outsider must see chat as missing, got %v", err)
	}
}

func TestSendMessageRejectsExpiredChat(t *testing.T) {
	store := newFakeChatStore()
	chat := openChat("chat-1", 1, 2)
	chat.ExpiresAt = time.Now().Add(-time.Minute)
	store.addChat(chat)
	svc, _ := newTestService(store, &fakeLimiter{allowed: true})

	if _, err := svc.SendMessage(context.Background(), 1, "chat-1", "salom"); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("expired chat must look missing, got %v", err)
	}
}

func TestSendMessageRejectsInactiveChat(t *testing.T) {
	store := newFakeChatStore()
	chat := openChat("chat-1", 1, 2)
	chat.IsActive = false
	store.addChat(chat)
	svc, _ := newTestService(store, &fakeLimiter{allowed: true})

	if _, err := svc.SendMessage(context.Background(), 1, "chat-1", "salom"); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("inactive chat must look missing, got %v", err)
	}
}

func TestSendMessageValidatesContent(t *testing.T) {
	store := newFakeChatStore()
	store.addChat(openChat("chat-1", 1, 2))
	svc, _ := newTestService(store, &fakeLimiter{allowed: true})

	if _, err := svc.SendMessage(context.Background(), 1, "chat-1", "   "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty message, got %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), 1, "chat-1", strings.Repeat("a", 2001)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for oversized message, got %v", err)
	}
}

func TestSendMessageThrottled(t *testing.T) {
	store := newFakeChatStore()
	store.addChat(openChat("chat-1", 1, 2))
	svc, notifier := newTestService(store, &fakeLimiter{allowed: false, retryAfter: 7})

	_, err := svc.SendMessage(context.Background(), 1, "chat-1", "salom")
	if !errors.Is(err, ErrTooManyMessages) {
		t.Fatalf("expected ErrTooManyMessages, got %v", err)
	}

	var throttled *ThrottledError
	if !errors.As(err, &throttled) || throttled.RetryAfterSec != 7 {
		t.Fatalf("expected retry hint 7, got %v", err)
	}
	if len(store.messages["chat-1"]) != 0 {
		t.Fatalf("throttled message must not be stored")
	}
	if len(notifier.recipients) != 0 {
		t.Fatalf("throttled message must not notify")
	}
}

func TestSendMessageAllowsWhenLimiterDown(t *testing.T) {
	store := newFakeChatStore()
	store.addChat(openChat("chat-1", 1, 2))
	limiter := &fakeLimiter{err: fmt.Errorf("redis down")}
	svc, _ := newTestService(store, limiter)

	if _, err := svc.SendMessage(context.Background(), 1, "chat-1", "salom"); err != nil {
		t.Fatalf("limiter outage must not block sends: %v", err)
	}
	if limiter.calls != 1 {
		t.Fatalf("limiter not consulted")
	}
}

func TestGetMarksPartnerMessagesRead(t *testing.T) {
	store := newFakeChatStore()
	store.addChat(openChat("chat-1", 1, 2))
	svc, _ := newTestService(store, &fakeLimiter{allowed: true})

	if _, err := svc.SendMessage(context.Background(), 2, "chat-1", "salom"); err != nil {
		t.Fatalf("send: %v", err)
	}

	conv, err := svc.Get(context.Background(), 1, "chat-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if conv.PartnerID != 2 {
		t.Fatalf("unexpected partner: %d", conv.PartnerID)
	}
	if !conv.Open {
		t.Fatalf("chat must be open")
	}
	if len(conv.Messages) != 1 || !conv.Messages[0].IsRead {
		t.Fatalf("partner message must be marked read: %+v", conv.Messages)
	}
	if store.lastRead != "chat-1" {
		t.Fatalf("open must run through the store")
	}
}

func TestGetExpiredChatIsReadOnly(t *testing.T) {
	store := newFakeChatStore()
	chat := openChat("chat-1", 1, 2)
	chat.ExpiresAt = time.Now().Add(-time.Hour)
	store.addChat(chat)
	svc, _ := newTestService(store, &fakeLimiter{allowed: true})

	conv, err := svc.Get(context.Background(), 1, "chat-1")
	if err != nil {
		t.Fatalf("get expired chat: %v", err)
	}
	if conv.Open {
		t.Fatalf("expired chat must not report open")
	}
}
