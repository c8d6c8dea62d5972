package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/domain/rules"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

// Sender is the outbound Telegram surface of the bot.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendReviewQueue(ctx context.Context, chatID int64, text string, paymentID int64) error
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (model.User, error)
}

type Config struct {
	AdminIDs  []int64
	WebAppURL string
}

// Service pushes bot notifications. Every method is best-effort: failures
// are logged and swallowed so they never break the calling flow.
type Service struct {
	sender Sender
	users  UserStore
	logger *zap.Logger
	cfg    Config
}

func NewService(sender Sender, users UserStore, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sender: sender,
		users:  users,
		logger: logger,
		cfg:    cfg,
	}
}

func (s *Service) PaymentSubmitted(ctx context.Context, payment model.PaymentRequest, plan rules.TariffPlan) {
	if s == nil || s.sender == nil {
		return
	}

	text := fmt.Sprintf(
		"Yangi to'lov so'rovi #%d\nTarif: %s\nSumma: %d so'm",
		payment.ID, plan.Name, plan.Price,
	)
	for _, adminID := range s.cfg.AdminIDs {
		if err := s.sender.SendReviewQueue(ctx, adminID, text, payment.ID); err != nil {
			s.logger.Warn("notify admin about payment",
				zap.Int64("admin_id", adminID),
				zap.Int64("payment_id", payment.ID),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) PaymentApproved(ctx context.Context, userID int64, plan rules.TariffPlan) {
	text := fmt.Sprintf(
		"To'lovingiz tasdiqlandi ✅\n%s tarifi faollashtirildi: %d ta so'rov, %d kun e'lon.",
		plan.Name, plan.Requests, plan.ListingDays,
	)
	s.sendToUser(ctx, userID, text)
}

func (s *Service) PaymentRejected(ctx context.Context, userID int64) {
	s.sendToUser(ctx, userID, "To'lovingiz rad etildi. Kvitansiyani tekshirib, qaytadan yuboring.")
}

func (s *Service) RequestReceived(ctx context.Context, receiverID int64, senderName string) {
	text := "Sizga yangi tanishuv so'rovi keldi."
	if senderName != "" {
		text = fmt.Sprintf("%s sizga tanishuv so'rovi yubordi.", senderName)
	}
	s.sendToUser(ctx, receiverID, text)
}

func (s *Service) RequestAccepted(ctx context.Context, senderID int64, chat model.ChatSession) {
	text := fmt.Sprintf(
		"So'rovingiz qabul qilindi! Suhbat ochildi va %s gacha amal qiladi.",
		chat.ExpiresAt.Format("02.01.2006"),
	)
	s.sendToUser(ctx, senderID, text)
}

func (s *Service) MessageReceived(ctx context.Context, recipientID int64, chatID string) {
	_ = chatID
	s.sendToUser(ctx, recipientID, "Sizga yangi xabar keldi.")
}

func (s *Service) sendToUser(ctx context.Context, userID int64, text string) {
	if s == nil || s.sender == nil || s.users == nil || userID <= 0 {
		return
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgrepo.ErrUserNotFound) {
			s.logger.Warn("resolve notification recipient", zap.Int64("user_id", userID), zap.Error(err))
		}
		return
	}

	if err := s.sender.SendText(ctx, user.TelegramID, text); err != nil {
		s.logger.Warn("send bot notification",
			zap.Int64("user_id", userID),
			zap.Int64("telegram_id", user.TelegramID),
			zap.Error(err),
		)
	}
}
