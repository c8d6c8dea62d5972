package chats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrChatNotFound    = errors.New("chat not found")
	ErrTooManyMessages = errors.New("too many messages")
)

type ChatStore interface {
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.ChatListRecord, error)
	FindForParticipant(ctx context.Context, chatID string, userID int64) (model.ChatSession, error)
	Open(ctx context.Context, chatID string, userID int64, messageLimit int) (model.ChatSession, []model.Message, error)
	InsertMessage(ctx context.Context, chatID string, senderID int64, content string) (model.Message, error)
}

// MessageLimiter throttles sends per chat per sender.
type MessageLimiter interface {
	AllowMessage(ctx context.Context, chatID string, senderID int64) (int64, bool, error)
}

// Notifier pings the partner about a new message. Best-effort.
type Notifier interface {
	MessageReceived(ctx context.Context, recipientID int64, chatID string)
}

type Config struct {
	MessageMaxLength    int
	HistoryPageMessages int
	ListLimit           int
}

type Dependencies struct {
	Chats    ChatStore
	Limiter  MessageLimiter
	Notifier Notifier
	Logger   *zap.Logger
}

type Service struct {
	chats    ChatStore
	limiter  MessageLimiter
	notifier Notifier
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time
}

// Conversation is an open chat: the session, its ordered history, and the
// partner id for the reader.
type Conversation struct {
	Chat      model.ChatSession
	Messages  []model.Message
	PartnerID int64
	Open      bool
}

// ThrottledError carries the retry hint for a rate-limited send.
type ThrottledError struct {
	RetryAfterSec int64
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many messages, retry after %ds", e.RetryAfterSec)
}

func (e *ThrottledError) Unwrap() error { return ErrTooManyMessages }

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MessageMaxLength <= 0 {
		cfg.MessageMaxLength = 2000
	}
	if cfg.HistoryPageMessages <= 0 {
		cfg.HistoryPageMessages = 100
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		chats:    deps.Chats,
		limiter:  deps.Limiter,
		notifier: deps.Notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// List returns the caller's chats, most recently active first.
func (s *Service) List(ctx context.Context, userID int64) ([]pgrepo.ChatListRecord, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.chats == nil {
		return nil, fmt.Errorf("chat store is nil")
	}
	return s.chats.ListForUser(ctx, userID, s.cfg.ListLimit)
}

// Get opens a chat for the caller and marks the partner's messages as read.
// Expired chats still open read-only.
func (s *Service) Get(ctx context.Context, userID int64, chatID string) (Conversation, error) {
	if userID <= 0 || chatID == "" {
		return Conversation{}, ErrValidation
	}
	if s.chats == nil {
		return Conversation{}, fmt.Errorf("chat store is nil")
	}

	chat, messages, err := s.chats.Open(ctx, chatID, userID, s.cfg.HistoryPageMessages)
	if err != nil {
		if errors.Is(err, pgrepo.ErrChatNotFound) {
			return Conversation{}, ErrChatNotFound
		}
		return Conversation{}, err
	}

	return Conversation{
		Chat:      chat,
		Messages:  messages,
		PartnerID: chat.PartnerOf(userID),
		Open:      chat.OpenAt(s.now().UTC()),
	}, nil
}

// SendMessage appends to an open chat. A closed or foreign chat looks the
// same as a missing one. When the limiter backend is down the message goes
// through; flood control is not worth dropping chats over.
func (s *Service) SendMessage(ctx context.Context, userID int64, chatID, content string) (model.Message, error) {
	if userID <= 0 || chatID == "" {
		return model.Message{}, ErrValidation
	}
	if s.chats == nil {
		return model.Message{}, fmt.Errorf("chat store is nil")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, fmt.Errorf("empty message: %w", ErrValidation)
	}
	if len([]rune(content)) > s.cfg.MessageMaxLength {
		return model.Message{}, fmt.Errorf("message too long: %w", ErrValidation)
	}

	chat, err := s.chats.FindForParticipant(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrChatNotFound) {
			return model.Message{}, ErrChatNotFound
		}
		return model.Message{}, err
	}
	if !chat.OpenAt(s.now().UTC()) {
		return model.Message{}, ErrChatNotFound
	}

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowMessage(ctx, chatID, userID)
		if err != nil {
			s.logger.Warn("message limiter unavailable, allowing send",
				zap.String("chat_id", chatID),
				zap.Error(err),
			)
		} else if !allowed {
			return model.Message{}, &ThrottledError{RetryAfterSec: retryAfter}
		}
	}

	message, err := s.chats.InsertMessage(ctx, chatID, userID, content)
	if err != nil {
		return model.Message{}, err
	}

	if s.notifier != nil {
		s.notifier.MessageReceived(ctx, chat.PartnerOf(userID), chatID)
	}

	return message, nil
}
