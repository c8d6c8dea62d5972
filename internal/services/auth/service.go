package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

type UserStore interface {
	UpsertFromTelegram(ctx context.Context, in pgrepo.UpsertUser) (model.User, error)
	AuthCounts(ctx context.Context, userID int64, now time.Time) (pgrepo.AuthCountsRecord, error)
}

type Config struct {
	BotToken      string
	AdminIDs      []int64
	AllowInsecure bool
}

type Service struct {
	users  UserStore
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// Result is the full authentication payload returned to the Mini App.
type Result struct {
	User   model.User
	Counts pgrepo.AuthCountsRecord
}

func NewService(users UserStore, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Identify verifies initData and upserts the account. Every verified call
// refreshes the stored Telegram names, so repeating it is harmless.
func (s *Service) Identify(ctx context.Context, initData string) (model.User, error) {
	if s.users == nil {
		return model.User{}, fmt.Errorf("user store is nil")
	}

	if s.cfg.AllowInsecure {
		s.logger.Warn("initData signature verification bypassed")
	}

	tgUser, err := ParseInitData(initData, s.cfg.BotToken, s.cfg.AllowInsecure)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.UpsertFromTelegram(ctx, pgrepo.UpsertUser{
		TelegramID: tgUser.ID,
		Username:   tgUser.Username,
		FirstName:  tgUser.FirstName,
		LastName:   tgUser.LastName,
		IsAdmin:    s.isAdmin(tgUser.ID),
	})
	if err != nil {
		return model.User{}, err
	}

	if user.IsBlocked {
		return model.User{}, ErrBlocked
	}

	return user, nil
}

// Authenticate is Identify plus the badge counters the client shows on start.
func (s *Service) Authenticate(ctx context.Context, initData string) (Result, error) {
	user, err := s.Identify(ctx, initData)
	if err != nil {
		return Result{}, err
	}

	counts, err := s.users.AuthCounts(ctx, user.ID, s.now().UTC())
	if err != nil {
		return Result{}, err
	}

	return Result{User: user, Counts: counts}, nil
}

// isAdmin grants the admin role to allowlisted Telegram ids. The flag is
// sticky in storage: removal from the allowlist does not revoke it.
func (s *Service) isAdmin(telegramID int64) bool {
	for _, id := range s.cfg.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
