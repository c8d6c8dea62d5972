package tariffs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/domain/rules"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

type fakePaymentStore struct {
	payments map[int64]model.PaymentRequest
	nextID   int64
	granted  []model.UserTariff
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[int64]model.PaymentRequest{}, nextID: 1}
}

func (f *fakePaymentStore) CreatePending(_ context.Context, userID int64, tariffID string, amount int64) (model.PaymentRequest, error) {
	for _, p := range f.payments {
		if p.UserID == userID && p.Status == enums.PaymentPending {
			return model.PaymentRequest{}, pgrepo.ErrPendingPaymentExists
		}
	}
	payment := model.PaymentRequest{
		ID:        f.nextID,
		UserID:    userID,
		TariffID:  tariffID,
		Amount:    amount,
		Status:    enums.PaymentPending,
		CreatedAt: time.Now(),
	}
	f.payments[f.nextID] = payment
	f.nextID++
	return payment, nil
}

func (f *fakePaymentStore) FindByID(_ context.Context, paymentID int64) (model.PaymentRequest, error) {
	payment, ok := f.payments[paymentID]
	if !ok {
		return model.PaymentRequest{}, pgrepo.ErrPaymentNotFound
	}
	return payment, nil
}

func (f *fakePaymentStore) FindPendingByUser(_ context.Context, userID int64) (model.PaymentRequest, error) {
	for _, p := range f.payments {
		if p.UserID == userID && p.Status == enums.PaymentPending {
			return p, nil
		}
	}
	return model.PaymentRequest{}, pgrepo.ErrPaymentNotFound
}

func (f *fakePaymentStore) AttachReceipt(_ context.Context, userID int64, fileID string) (model.PaymentRequest, error) {
	for id, p := range f.payments {
		if p.UserID == userID && p.Status == enums.PaymentPending {
			p.ReceiptFileID = fileID
			f.payments[id] = p
			return p, nil
		}
	}
	return model.PaymentRequest{}, pgrepo.ErrPaymentNotFound
}

func (f *fakePaymentStore) ListPending(context.Context, int) ([]pgrepo.PendingPaymentRecord, error) {
	items := make([]pgrepo.PendingPaymentRecord, 0, len(f.payments))
	for _, p := range f.payments {
		if p.Status == enums.PaymentPending {
			items = append(items, pgrepo.PendingPaymentRecord{Payment: p})
		}
	}
	return items, nil
}

func (f *fakePaymentStore) Approve(_ context.Context, paymentID int64, plan rules.TariffPlan, now time.Time) (model.PaymentRequest, model.UserTariff, error) {
	payment, ok := f.payments[paymentID]
	if !ok {
		return model.PaymentRequest{}, model.UserTariff{}, pgrepo.ErrPaymentNotFound
	}
	if payment.Status != enums.PaymentPending {
		return model.PaymentRequest{}, model.UserTariff{}, pgrepo.ErrPaymentResolved
	}
	payment.Status = enums.PaymentApproved
	payment.ReviewedAt = &now
	f.payments[paymentID] = payment

	var topExpires *time.Time
	if plan.TopDays > 0 {
		t := now.AddDate(0, 0, plan.TopDays)
		topExpires = &t
	}
	tariff := model.UserTariff{
		ID:             paymentID,
		UserID:         payment.UserID,
		TariffID:       plan.ID,
		RequestsLeft:   plan.Requests,
		RequestsTotal:  plan.Requests,
		ListingExpires: now.AddDate(0, 0, plan.ListingDays),
		TopExpires:     topExpires,
		IsActive:       true,
		PaymentID:      &payment.ID,
		CreatedAt:      now,
	}
	f.granted = append(f.granted, tariff)
	return payment, tariff, nil
}

func (f *fakePaymentStore) Reject(_ context.Context, paymentID int64, now time.Time) (model.PaymentRequest, error) {
	payment, ok := f.payments[paymentID]
	if !ok {
		return model.PaymentRequest{}, pgrepo.ErrPaymentNotFound
	}
	if payment.Status != enums.PaymentPending {
		return model.PaymentRequest{}, pgrepo.ErrPaymentResolved
	}
	payment.Status = enums.PaymentRejected
	payment.ReviewedAt = &now
	f.payments[paymentID] = payment
	return payment, nil
}

type fakeTariffStore struct {
	tariff model.UserTariff
	grants []model.UserTariff
	valid  bool
}

func (f *fakeTariffStore) CurrentValid(context.Context, int64, time.Time) (model.UserTariff, error) {
	if !f.valid {
		return model.UserTariff{}, pgrepo.ErrTariffNotFound
	}
	return f.tariff, nil
}

func (f *fakeTariffStore) ListForUser(context.Context, int64, int) ([]model.UserTariff, error) {
	return f.grants, nil
}

type recordingNotifier struct {
	submitted []int64
	approved  []int64
	rejected  []int64
}

func (n *recordingNotifier) PaymentSubmitted(_ context.Context, payment model.PaymentRequest, _ rules.TariffPlan) {
	n.submitted = append(n.submitted, payment.ID)
}

func (n *recordingNotifier) PaymentApproved(_ context.Context, userID int64, _ rules.TariffPlan) {
	n.approved = append(n.approved, userID)
}

func (n *recordingNotifier) PaymentRejected(_ context.Context, userID int64) {
	n.rejected = append(n.rejected, userID)
}

func newTestService(store *fakePaymentStore) (*Service, *recordingNotifier) {
	notifier := &recordingNotifier{}
	svc := NewService(Dependencies{
		Payments: store,
		Tariffs:  &fakeTariffStore{},
		Notifier: notifier,
	}, Config{CardNumber: "8600 1234 5678 0000", CardHolder: "NIKOH"})
	return svc, notifier
}

func TestPurchasePricesFromCatalog(t *testing.T) {
	store := newFakePaymentStore()
	svc, notifier := newTestService(store)

	payment, plan, err := svc.Purchase(context.Background(), 1, "kumush")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if plan.ID != rules.TariffKumush {
		t.Fatalf("unexpected plan: %s", plan.ID)
	}
	if payment.Amount != 50_000 {
		t.Fatalf("unexpected amount: %d", payment.Amount)
	}
	if len(notifier.submitted) != 1 {
		t.Fatalf("expected one submitted notification, got %d", len(notifier.submitted))
	}
}

func TestPurchaseRejectsUnknownTariff(t *testing.T) {
	svc, _ := newTestService(newFakePaymentStore())

	if _, _, err := svc.Purchase(context.Background(), 1, "PLATINUM"); !errors.Is(err, ErrUnknownTariff) {
		t.Fatalf("expected ErrUnknownTariff, got %v", err)
	}
}

func TestPurchaseSecondPendingBlocked(t *testing.T) {
	store := newFakePaymentStore()
	svc, _ := newTestService(store)

	if _, _, err := svc.Purchase(context.Background(), 1, "KUMUSH"); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if _, _, err := svc.Purchase(context.Background(), 1, "OLTIN"); !errors.Is(err, ErrPendingExists) {
		t.Fatalf("expected ErrPendingExists, got %v", err)
	}
}

func TestApproveGrantsKumushValues(t *testing.T) {
	store := newFakePaymentStore()
	svc, notifier := newTestService(store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	payment, _, err := svc.Purchase(context.Background(), 1, "KUMUSH")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	approved, tariff, err := svc.Approve(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != enums.PaymentApproved {
		t.Fatalf("unexpected status: %s", approved.Status)
	}
	if tariff.RequestsLeft != 5 || tariff.RequestsTotal != 5 {
		t.Fatalf("unexpected request quota: %d/%d", tariff.RequestsLeft, tariff.RequestsTotal)
	}
	if !tariff.ListingExpires.Equal(now.AddDate(0, 0, 10)) {
		t.Fatalf("unexpected listing expiry: %s", tariff.ListingExpires)
	}
	if tariff.TopExpires != nil {
		t.Fatalf("kumush must not grant top placement")
	}
	if len(notifier.approved) != 1 {
		t.Fatalf("expected one approved notification, got %d", len(notifier.approved))
	}
}

func TestApproveIsTerminal(t *testing.T) {
	store := newFakePaymentStore()
	svc, _ := newTestService(store)

	payment, _, err := svc.Purchase(context.Background(), 1, "OLTIN")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, _, err := svc.Approve(context.Background(), payment.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	if _, _, err := svc.Approve(context.Background(), payment.ID); !errors.Is(err, ErrPaymentResolved) {
		t.Fatalf("expected ErrPaymentResolved on second approve, got %v", err)
	}
	if _, err := svc.Reject(context.Background(), payment.ID); !errors.Is(err, ErrPaymentResolved) {
		t.Fatalf("expected ErrPaymentResolved on reject after approve, got %v", err)
	}
	if len(store.granted) != 1 {
		t.Fatalf("tariff must be granted exactly once, got %d", len(store.granted))
	}
}

func TestRejectKeepsQuotaUngranted(t *testing.T) {
	store := newFakePaymentStore()
	svc, notifier := newTestService(store)

	payment, _, err := svc.Purchase(context.Background(), 1, "VIP")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	rejected, err := svc.Reject(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enums.PaymentRejected {
		t.Fatalf("unexpected status: %s", rejected.Status)
	}
	if len(store.granted) != 0 {
		t.Fatalf("rejected payment must not grant a tariff")
	}
	if len(notifier.rejected) != 1 {
		t.Fatalf("expected one rejected notification")
	}
}

func TestOverviewListsRunningGrants(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	running := model.UserTariff{
		ID:             1,
		UserID:         7,
		TariffID:       rules.TariffOltin,
		IsActive:       true,
		ListingExpires: now.AddDate(0, 0, 5),
	}
	lapsed := model.UserTariff{
		ID:             2,
		UserID:         7,
		TariffID:       rules.TariffKumush,
		IsActive:       true,
		ListingExpires: now.AddDate(0, 0, -1),
	}
	svc := NewService(Dependencies{
		Payments: newFakePaymentStore(),
		Tariffs: &fakeTariffStore{
			valid:  true,
			tariff: running,
			grants: []model.UserTariff{running, lapsed},
		},
	}, Config{})
	svc.now = func() time.Time { return now }

	overview, err := svc.Overview(context.Background(), 7)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Current == nil || overview.Current.ID != 1 {
		t.Fatalf("unexpected current grant: %+v", overview.Current)
	}
	if len(overview.Active) != 1 || overview.Active[0].ID != 1 {
		t.Fatalf("lapsed grants must be excluded, got %+v", overview.Active)
	}
}

func TestAttachReceiptRequiresPending(t *testing.T) {
	svc, _ := newTestService(newFakePaymentStore())

	if _, err := svc.AttachReceipt(context.Background(), 1, "file-id"); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}
