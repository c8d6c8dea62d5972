package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/domain/rules"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentResolved      = errors.New("payment already resolved")
	ErrPendingPaymentExists = errors.New("pending payment already exists")
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

// PendingPaymentRecord is a pending payment joined with the payer for the
// admin review queue.
type PendingPaymentRecord struct {
	Payment     model.PaymentRequest
	TelegramID  int64
	Username    string
	ProfileName string
}

const paymentColumns = `id, user_id, tariff_id, amount, status, receipt_file_id, created_at, reviewed_at`

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// CreatePending inserts a new payment request. The partial unique index on
// (user_id) WHERE status = 'PENDING' keeps it to one open request per account.
func (r *PaymentRepo) CreatePending(ctx context.Context, userID int64, tariffID string, amount int64) (model.PaymentRequest, error) {
	if r.pool == nil {
		return model.PaymentRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(tariffID) == "" || amount <= 0 {
		return model.PaymentRequest{}, fmt.Errorf("invalid payment create payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO payment_requests (user_id, tariff_id, amount, status, receipt_file_id, created_at, reviewed_at)
VALUES ($1, $2, $3, 'PENDING', '', NOW(), NULL)
RETURNING `+paymentColumns+`
`, userID, strings.ToUpper(strings.TrimSpace(tariffID)), amount)

	payment, err := scanPayment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.PaymentRequest{}, ErrPendingPaymentExists
		}
		return model.PaymentRequest{}, fmt.Errorf("create pending payment: %w", err)
	}

	return payment, nil
}

func (r *PaymentRepo) FindByID(ctx context.Context, paymentID int64) (model.PaymentRequest, error) {
	if r.pool == nil {
		return model.PaymentRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if paymentID <= 0 {
		return model.PaymentRequest{}, fmt.Errorf("invalid payment id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+paymentColumns+`
FROM payment_requests
WHERE id = $1
`, paymentID)

	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentRequest{}, ErrPaymentNotFound
		}
		return model.PaymentRequest{}, fmt.Errorf("find payment by id: %w", err)
	}

	return payment, nil
}

func (r *PaymentRepo) FindPendingByUser(ctx context.Context, userID int64) (model.PaymentRequest, error) {
	if r.pool == nil {
		return model.PaymentRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.PaymentRequest{}, fmt.Errorf("invalid user id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+paymentColumns+`
FROM payment_requests
WHERE user_id = $1 AND status = 'PENDING'
ORDER BY created_at DESC, id DESC
LIMIT 1
`, userID)

	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentRequest{}, ErrPaymentNotFound
		}
		return model.PaymentRequest{}, fmt.Errorf("find pending payment: %w", err)
	}

	return payment, nil
}

// AttachReceipt stores the Telegram file id of the transfer receipt on the
// payer's open payment request.
func (r *PaymentRepo) AttachReceipt(ctx context.Context, userID int64, fileID string) (model.PaymentRequest, error) {
	if r.pool == nil {
		return model.PaymentRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(fileID) == "" {
		return model.PaymentRequest{}, fmt.Errorf("invalid receipt payload")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE payment_requests
SET receipt_file_id = $2
WHERE id = (
	SELECT id
	FROM payment_requests
	WHERE user_id = $1 AND status = 'PENDING'
	ORDER BY created_at DESC, id DESC
	LIMIT 1
)
RETURNING `+paymentColumns+`
`, userID, strings.TrimSpace(fileID))

	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentRequest{}, ErrPaymentNotFound
		}
		return model.PaymentRequest{}, fmt.Errorf("attach payment receipt: %w", err)
	}

	return payment, nil
}

func (r *PaymentRepo) ListPending(ctx context.Context, limit int) ([]PendingPaymentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []PendingPaymentRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	pr.id, pr.user_id, pr.tariff_id, pr.amount, pr.status, pr.receipt_file_id, pr.created_at, pr.reviewed_at,
	u.telegram_id,
	u.username,
	COALESCE(p.name, '')
FROM payment_requests pr
JOIN users u ON u.id = pr.user_id
LEFT JOIN profiles p ON p.user_id = pr.user_id
WHERE pr.status = 'PENDING'
ORDER BY pr.created_at ASC, pr.id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	defer rows.Close()

	items := make([]PendingPaymentRecord, 0, limit)
	for rows.Next() {
		var item PendingPaymentRecord
		var status string
		if err := rows.Scan(
			&item.Payment.ID,
			&item.Payment.UserID,
			&item.Payment.TariffID,
			&item.Payment.Amount,
			&status,
			&item.Payment.ReceiptFileID,
			&item.Payment.CreatedAt,
			&item.Payment.ReviewedAt,
			&item.TelegramID,
			&item.Username,
			&item.ProfileName,
		); err != nil {
			return nil, fmt.Errorf("scan pending payment: %w", err)
		}
		item.Payment.Status = enums.PaymentStatus(status)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate pending payments: %w", rows.Err())
	}

	return items, nil
}

// Approve flips the payment to APPROVED and grants the purchased tariff in
// the same transaction. A payment can only be resolved once.
func (r *PaymentRepo) Approve(ctx context.Context, paymentID int64, plan rules.TariffPlan, now time.Time) (model.PaymentRequest, model.UserTariff, error) {
	if paymentID <= 0 {
		return model.PaymentRequest{}, model.UserTariff{}, fmt.Errorf("invalid payment id")
	}

	var (
		payment model.PaymentRequest
		tariff  model.UserTariff
	)
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
UPDATE payment_requests
SET status = 'APPROVED', reviewed_at = $2
WHERE id = $1 AND status = 'PENDING'
RETURNING `+paymentColumns+`
`, paymentID, now)

		resolved, err := scanPayment(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.classifyMissingPending(ctx, tx, paymentID)
			}
			return fmt.Errorf("approve payment: %w", err)
		}
		payment = resolved

		var topExpires *time.Time
		if plan.TopDays > 0 {
			t := now.AddDate(0, 0, plan.TopDays)
			topExpires = &t
		}

		granted := tx.QueryRow(ctx, `
INSERT INTO user_tariffs (user_id, tariff_id, requests_left, requests_total, listing_expires, top_expires, is_active, payment_id, created_at)
VALUES ($1, $2, $3, $3, $4, $5, TRUE, $6, NOW())
RETURNING `+tariffColumns+`
`, payment.UserID, plan.ID, plan.Requests, now.AddDate(0, 0, plan.ListingDays), topExpires, payment.ID)

		tariff, err = scanTariff(granted)
		if err != nil {
			return fmt.Errorf("grant tariff for approved payment: %w", err)
		}

		return nil
	})
	if err != nil {
		return model.PaymentRequest{}, model.UserTariff{}, err
	}

	return payment, tariff, nil
}

func (r *PaymentRepo) Reject(ctx context.Context, paymentID int64, now time.Time) (model.PaymentRequest, error) {
	if paymentID <= 0 {
		return model.PaymentRequest{}, fmt.Errorf("invalid payment id")
	}

	var payment model.PaymentRequest
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
UPDATE payment_requests
SET status = 'REJECTED', reviewed_at = $2
WHERE id = $1 AND status = 'PENDING'
RETURNING `+paymentColumns+`
`, paymentID, now)

		resolved, err := scanPayment(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.classifyMissingPending(ctx, tx, paymentID)
			}
			return fmt.Errorf("reject payment: %w", err)
		}
		payment = resolved

		return nil
	})
	if err != nil {
		return model.PaymentRequest{}, err
	}

	return payment, nil
}

func (r *PaymentRepo) classifyMissingPending(ctx context.Context, tx pgx.Tx, paymentID int64) error {
	var status string
	err := tx.QueryRow(ctx, `
SELECT status
FROM payment_requests
WHERE id = $1
`, paymentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("lookup payment status: %w", err)
	}
	return ErrPaymentResolved
}

func scanPayment(row rowScanner) (model.PaymentRequest, error) {
	var p model.PaymentRequest
	var status string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.TariffID,
		&p.Amount,
		&status,
		&p.ReceiptFileID,
		&p.CreatedAt,
		&p.ReviewedAt,
	)
	if err != nil {
		return model.PaymentRequest{}, err
	}
	p.Status = enums.PaymentStatus(status)
	return p, nil
}
