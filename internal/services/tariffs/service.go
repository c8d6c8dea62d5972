package tariffs

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
	ErrValidation      = errors.New("validation error")
	ErrUnknownTariff   = errors.New("unknown tariff")
	ErrPendingExists   = errors.New("pending payment already exists")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentResolved = errors.New("payment already resolved")
)

type PaymentStore interface {
	CreatePending(ctx context.Context, userID int64, tariffID string, amount int64) (model.PaymentRequest, error)
	FindByID(ctx context.Context, paymentID int64) (model.PaymentRequest, error)
	FindPendingByUser(ctx context.Context, userID int64) (model.PaymentRequest, error)
	AttachReceipt(ctx context.Context, userID int64, fileID string) (model.PaymentRequest, error)
	ListPending(ctx context.Context, limit int) ([]pgrepo.PendingPaymentRecord, error)
	Approve(ctx context.Context, paymentID int64, plan rules.TariffPlan, now time.Time) (model.PaymentRequest, model.UserTariff, error)
	Reject(ctx context.Context, paymentID int64, now time.Time) (model.PaymentRequest, error)
}

type TariffStore interface {
	CurrentValid(ctx context.Context, userID int64, now time.Time) (model.UserTariff, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.UserTariff, error)
}

// grantListLimit caps the grant history pulled for the tariff screen.
const grantListLimit = 20

// Notifier delivers best-effort Telegram notifications. Implementations must
// not fail the payment flow.
type Notifier interface {
	PaymentSubmitted(ctx context.Context, payment model.PaymentRequest, plan rules.TariffPlan)
	PaymentApproved(ctx context.Context, userID int64, plan rules.TariffPlan)
	PaymentRejected(ctx context.Context, userID int64)
}

type Config struct {
	CardNumber string
	CardHolder string
}

type Service struct {
	payments PaymentStore
	tariffs  TariffStore
	notifier Notifier
	cfg      Config
	now      func() time.Time
}

type Dependencies struct {
	Payments PaymentStore
	Tariffs  TariffStore
	Notifier Notifier
}

// Overview is the tariff screen payload: the catalog, the caller's current
// grant, every grant still running, any open payment, and the transfer
// requisites.
type Overview struct {
	Plans      []rules.TariffPlan
	Current    *model.UserTariff
	Active     []model.UserTariff
	Pending    *model.PaymentRequest
	CardNumber string
	CardHolder string
}

func NewService(deps Dependencies, cfg Config) *Service {
	return &Service{
		payments: deps.Payments,
		tariffs:  deps.Tariffs,
		notifier: deps.Notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CardNumber is the bank card users transfer to.
func (s *Service) CardNumber() string { return s.cfg.CardNumber }

// CardHolder is the display name on that card.
func (s *Service) CardHolder() string { return s.cfg.CardHolder }

func (s *Service) Overview(ctx context.Context, userID int64) (Overview, error) {
	if userID <= 0 {
		return Overview{}, ErrValidation
	}
	if s.payments == nil || s.tariffs == nil {
		return Overview{}, fmt.Errorf("tariffs dependencies are not configured")
	}

	overview := Overview{
		Plans:      rules.TariffPlans(),
		CardNumber: s.cfg.CardNumber,
		CardHolder: s.cfg.CardHolder,
	}

	now := s.now().UTC()
	current, err := s.tariffs.CurrentValid(ctx, userID, now)
	switch {
	case err == nil:
		overview.Current = &current
	case errors.Is(err, pgrepo.ErrTariffNotFound):
	default:
		return Overview{}, err
	}

	grants, err := s.tariffs.ListForUser(ctx, userID, grantListLimit)
	if err != nil {
		return Overview{}, err
	}
	for _, grant := range grants {
		if grant.IsActive && !grant.ListingExpires.Before(now) {
			overview.Active = append(overview.Active, grant)
		}
	}

	pending, err := s.payments.FindPendingByUser(ctx, userID)
	switch {
	case err == nil:
		overview.Pending = &pending
	case errors.Is(err, pgrepo.ErrPaymentNotFound):
	default:
		return Overview{}, err
	}

	return overview, nil
}

// Purchase opens a payment request priced from the catalog. One open request
// per account.
func (s *Service) Purchase(ctx context.Context, userID int64, tariffID string) (model.PaymentRequest, rules.TariffPlan, error) {
	if userID <= 0 {
		return model.PaymentRequest{}, rules.TariffPlan{}, ErrValidation
	}
	if s.payments == nil {
		return model.PaymentRequest{}, rules.TariffPlan{}, fmt.Errorf("payment store is nil")
	}

	plan, ok := rules.TariffPlanByID(tariffID)
	if !ok {
		return model.PaymentRequest{}, rules.TariffPlan{}, ErrUnknownTariff
	}

	payment, err := s.payments.CreatePending(ctx, userID, plan.ID, plan.Price)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPendingPaymentExists) {
			return model.PaymentRequest{}, rules.TariffPlan{}, ErrPendingExists
		}
		return model.PaymentRequest{}, rules.TariffPlan{}, err
	}

	if s.notifier != nil {
		s.notifier.PaymentSubmitted(ctx, payment, plan)
	}

	return payment, plan, nil
}

// AttachReceipt stores the transfer receipt sent to the bot.
func (s *Service) AttachReceipt(ctx context.Context, userID int64, fileID string) (model.PaymentRequest, error) {
	if userID <= 0 || fileID == "" {
		return model.PaymentRequest{}, ErrValidation
	}
	if s.payments == nil {
		return model.PaymentRequest{}, fmt.Errorf("payment store is nil")
	}

	payment, err := s.payments.AttachReceipt(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPaymentNotFound) {
			return model.PaymentRequest{}, ErrPaymentNotFound
		}
		return model.PaymentRequest{}, err
	}

	return payment, nil
}

func (s *Service) ListPending(ctx context.Context, limit int) ([]pgrepo.PendingPaymentRecord, error) {
	if s.payments == nil {
		return nil, fmt.Errorf("payment store is nil")
	}
	return s.payments.ListPending(ctx, limit)
}

// Approve resolves the payment and grants its tariff. Resolution is
// terminal: a second call reports ErrPaymentResolved.
func (s *Service) Approve(ctx context.Context, paymentID int64) (model.PaymentRequest, model.UserTariff, error) {
	if paymentID <= 0 {
		return model.PaymentRequest{}, model.UserTariff{}, ErrValidation
	}
	if s.payments == nil {
		return model.PaymentRequest{}, model.UserTariff{}, fmt.Errorf("payment store is nil")
	}

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPaymentNotFound) {
			return model.PaymentRequest{}, model.UserTariff{}, ErrPaymentNotFound
		}
		return model.PaymentRequest{}, model.UserTariff{}, err
	}

	plan, ok := rules.TariffPlanByID(payment.TariffID)
	if !ok {
		return model.PaymentRequest{}, model.UserTariff{}, fmt.Errorf("payment %d references unknown tariff %q", paymentID, payment.TariffID)
	}

	approved, tariff, err := s.payments.Approve(ctx, paymentID, plan, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrPaymentNotFound):
			return model.PaymentRequest{}, model.UserTariff{}, ErrPaymentNotFound
		case errors.Is(err, pgrepo.ErrPaymentResolved):
			return model.PaymentRequest{}, model.UserTariff{}, ErrPaymentResolved
		default:
			return model.PaymentRequest{}, model.UserTariff{}, err
		}
	}

	if s.notifier != nil {
		s.notifier.PaymentApproved(ctx, approved.UserID, plan)
	}

	return approved, tariff, nil
}

func (s *Service) Reject(ctx context.Context, paymentID int64) (model.PaymentRequest, error) {
	if paymentID <= 0 {
		return model.PaymentRequest{}, ErrValidation
	}
	if s.payments == nil {
		return model.PaymentRequest{}, fmt.Errorf("payment store is nil")
	}

	rejected, err := s.payments.Reject(ctx, paymentID, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrPaymentNotFound):
			return model.PaymentRequest{}, ErrPaymentNotFound
		case errors.Is(err, pgrepo.ErrPaymentResolved):
			return model.PaymentRequest{}, ErrPaymentResolved
		default:
			return model.PaymentRequest{}, err
		}
	}

	if s.notifier != nil {
		s.notifier.PaymentRejected(ctx, rejected.UserID)
	}

	return rejected, nil
}
