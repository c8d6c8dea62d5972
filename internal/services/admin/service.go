package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/domain/rules"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrSelfAction   = errors.New("cannot act on yourself")
	ErrUserNotFound = errors.New("user not found")
)

type StatsStore interface {
	Totals(ctx context.Context, now time.Time) (pgrepo.StatsRecord, error)
}

type UserStore interface {
	ListRecent(ctx context.Context, limit int) ([]pgrepo.AdminUserRecord, error)
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
}

// PaymentReviewer is the payment-resolution slice of the tariffs service.
type PaymentReviewer interface {
	ListPending(ctx context.Context, limit int) ([]pgrepo.PendingPaymentRecord, error)
	Approve(ctx context.Context, paymentID int64) (model.PaymentRequest, model.UserTariff, error)
	Reject(ctx context.Context, paymentID int64) (model.PaymentRequest, error)
}

type Dependencies struct {
	Stats    StatsStore
	Users    UserStore
	Payments PaymentReviewer
}

type Service struct {
	stats    StatsStore
	users    UserStore
	payments PaymentReviewer
	now      func() time.Time
}

// PaymentDecision is the outcome of a payment review. Tariff is set only on
// approval.
type PaymentDecision struct {
	Payment model.PaymentRequest
	Tariff  *model.UserTariff
}

func NewService(deps Dependencies) *Service {
	return &Service{
		stats:    deps.Stats,
		users:    deps.Users,
		payments: deps.Payments,
		now:      time.Now,
	}
}

func (s *Service) Stats(ctx context.Context) (pgrepo.StatsRecord, error) {
	if s.stats == nil {
		return pgrepo.StatsRecord{}, fmt.Errorf("stats store is nil")
	}
	return s.stats.Totals(ctx, s.now().UTC())
}

func (s *Service) ListPendingPayments(ctx context.Context, limit int) ([]pgrepo.PendingPaymentRecord, error) {
	if s.payments == nil {
		return nil, fmt.Errorf("payment reviewer is nil")
	}
	return s.payments.ListPending(ctx, limit)
}

// ResolvePayment applies an admin verdict to a pending bank transfer.
func (s *Service) ResolvePayment(ctx context.Context, paymentID int64, action string) (PaymentDecision, error) {
	if paymentID <= 0 {
		return PaymentDecision{}, ErrValidation
	}
	if s.payments == nil {
		return PaymentDecision{}, fmt.Errorf("payment reviewer is nil")
	}

	switch action {
	case "approve":
		payment, tariff, err := s.payments.Approve(ctx, paymentID)
		if err != nil {
			return PaymentDecision{}, err
		}
		return PaymentDecision{Payment: payment, Tariff: &tariff}, nil
	case "reject":
		payment, err := s.payments.Reject(ctx, paymentID)
		if err != nil {
			return PaymentDecision{}, err
		}
		return PaymentDecision{Payment: payment}, nil
	default:
		return PaymentDecision{}, fmt.Errorf("unknown payment action %q: %w", action, ErrValidation)
	}
}

func (s *Service) ListUsers(ctx context.Context, limit int) ([]pgrepo.AdminUserRecord, error) {
	if s.users == nil {
		return nil, fmt.Errorf("user store is nil")
	}
	return s.users.ListRecent(ctx, limit)
}

// SetBlocked blocks or unblocks a user. Blocking also drops their profile
// out of the feed.
func (s *Service) SetBlocked(ctx context.Context, adminUserID, targetUserID int64, blocked bool) error {
	if adminUserID <= 0 || targetUserID <= 0 {
		return ErrValidation
	}
	if adminUserID == targetUserID {
		return ErrSelfAction
	}
	if s.users == nil {
		return fmt.Errorf("user store is nil")
	}

	if err := s.users.SetBlocked(ctx, targetUserID, blocked); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return nil
}

// TariffPlans exposes the catalog for the admin payment screen.
func (s *Service) TariffPlans() []rules.TariffPlan {
	return rules.TariffPlans()
}
