package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

const maxMessageLength = 500

var (
	ErrValidation        = errors.New("validation error")
	ErrProfileIncomplete = errors.New("profile is not complete")
	ErrReceiverNotFound  = errors.New("receiver not found")
	ErrDuplicate         = errors.New("request for this pair already exists")
	ErrNoQuota           = errors.New("no request quota left")
	ErrRequestNotFound   = errors.New("request not found")
	ErrRequestResolved   = errors.New("request already resolved")
)

type RequestStore interface {
	CreateWithQuota(ctx context.Context, senderID, receiverID int64, message string, now time.Time) (model.MatchRequest, int, error)
	ListReceivedPending(ctx context.Context, receiverID int64, limit int) ([]pgrepo.RequestCardRecord, error)
	ListSent(ctx context.Context, senderID int64, limit int) ([]pgrepo.RequestCardRecord, error)
	Accept(ctx context.Context, requestID, receiverID int64, chatID string, now, expiresAt time.Time) (model.MatchRequest, model.ChatSession, error)
	Reject(ctx context.Context, requestID, receiverID int64, now time.Time) (model.MatchRequest, error)
}

type ProfileStore interface {
	FindByUserID(ctx context.Context, userID int64) (model.Profile, error)
}

// Notifier pushes Telegram notifications about request events. Calls are
// best-effort and must not fail the workflow.
type Notifier interface {
	RequestReceived(ctx context.Context, receiverID int64, senderName string)
	RequestAccepted(ctx context.Context, senderID int64, chat model.ChatSession)
}

type Config struct {
	ChatWindow time.Duration
	ListLimit  int
}

type Dependencies struct {
	Requests RequestStore
	Profiles ProfileStore
	Notifier Notifier
}

type Service struct {
	requests RequestStore
	profiles ProfileStore
	notifier Notifier
	cfg      Config
	now      func() time.Time
	newID    func() string
}

// CreateResult carries the stored request and the sender's remaining quota.
type CreateResult struct {
	Request      model.MatchRequest
	RequestsLeft int
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.ChatWindow <= 0 {
		cfg.ChatWindow = 7 * 24 * time.Hour
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}

	return &Service{
		requests: deps.Requests,
		profiles: deps.Profiles,
		notifier: deps.Notifier,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create sends a match request. Both parties need complete profiles, the
// pair must be new, and the sender burns one request from their quota.
func (s *Service) Create(ctx context.Context, senderID, receiverID int64, message string) (CreateResult, error) {
	if senderID <= 0 || receiverID <= 0 || senderID == receiverID {
		return CreateResult{}, ErrValidation
	}
	if s.requests == nil || s.profiles == nil {
		return CreateResult{}, fmt.Errorf("requests dependencies are not configured")
	}

	message = strings.TrimSpace(message)
	if len([]rune(message)) > maxMessageLength {
		return CreateResult{}, fmt.Errorf("message too long: %w", ErrValidation)
	}

	sender, err := s.profiles.FindByUserID(ctx, senderID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return CreateResult{}, ErrProfileIncomplete
		}
		return CreateResult{}, err
	}
	if !sender.IsComplete {
		return CreateResult{}, ErrProfileIncomplete
	}

	receiver, err := s.profiles.FindByUserID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return CreateResult{}, ErrReceiverNotFound
		}
		return CreateResult{}, err
	}
	if !receiver.IsComplete {
		return CreateResult{}, ErrReceiverNotFound
	}

	request, left, err := s.requests.CreateWithQuota(ctx, senderID, receiverID, message, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrDuplicateRequest):
			return CreateResult{}, ErrDuplicate
		case errors.Is(err, pgrepo.ErrNoQuota):
			return CreateResult{}, ErrNoQuota
		default:
			return CreateResult{}, err
		}
	}

	if s.notifier != nil {
		s.notifier.RequestReceived(ctx, receiverID, sender.Name)
	}

	return CreateResult{Request: request, RequestsLeft: left}, nil
}

// ListReceived returns the caller's pending inbox, newest first.
func (s *Service) ListReceived(ctx context.Context, userID int64) ([]pgrepo.RequestCardRecord, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.requests == nil {
		return nil, fmt.Errorf("request store is nil")
	}
	return s.requests.ListReceivedPending(ctx, userID, s.cfg.ListLimit)
}

// ListSent returns everything the caller has sent, any status, newest first.
func (s *Service) ListSent(ctx context.Context, userID int64) ([]pgrepo.RequestCardRecord, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.requests == nil {
		return nil, fmt.Errorf("request store is nil")
	}
	return s.requests.ListSent(ctx, userID, s.cfg.ListLimit)
}

// Accept resolves a pending request addressed to the caller and opens a chat
// that stays alive for the configured window.
func (s *Service) Accept(ctx context.Context, requestID, receiverID int64) (model.MatchRequest, model.ChatSession, error) {
	if requestID <= 0 || receiverID <= 0 {
		return model.MatchRequest{}, model.ChatSession{}, ErrValidation
	}
	if s.requests == nil {
		return model.MatchRequest{}, model.ChatSession{}, fmt.Errorf("request store is nil")
	}

	now := s.now().UTC()
	request, chat, err := s.requests.Accept(ctx, requestID, receiverID, s.newID(), now, now.Add(s.cfg.ChatWindow))
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrRequestNotFound):
			return model.MatchRequest{}, model.ChatSession{}, ErrRequestNotFound
		case errors.Is(err, pgrepo.ErrRequestResolved):
			return model.MatchRequest{}, model.ChatSession{}, ErrRequestResolved
		default:
			return model.MatchRequest{}, model.ChatSession{}, err
		}
	}

	if s.notifier != nil {
		s.notifier.RequestAccepted(ctx, request.SenderID, chat)
	}

	return request, chat, nil
}

// Reject resolves a pending request addressed to the caller.
func (s *Service) Reject(ctx context.Context, requestID, receiverID int64) (model.MatchRequest, error) {
	if requestID <= 0 || receiverID <= 0 {
		return model.MatchRequest{}, ErrValidation
	}
	if s.requests == nil {
		return model.MatchRequest{}, fmt.Errorf("request store is nil")
	}

	request, err := s.requests.Reject(ctx, requestID, receiverID, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrRequestNotFound):
			return model.MatchRequest{}, ErrRequestNotFound
		case errors.Is(err, pgrepo.ErrRequestResolved):
			return model.MatchRequest{}, ErrRequestResolved
		default:
			return model.MatchRequest{}, err
		}
	}

	return request, nil
}
