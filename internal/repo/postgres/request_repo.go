package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
)

var (
	ErrRequestNotFound  = errors.New("match request not found")
	ErrRequestResolved  = errors.New("match request already resolved")
	ErrDuplicateRequest = errors.New("request for this pair already exists")
	ErrNoQuota          = errors.New("no request quota left")
)

type RequestRepo struct {
	pool *pgxpool.Pool
}

// RequestCardRecord is a request joined with the counterpart's profile card.
type RequestCardRecord struct {
	Request       model.MatchRequest
	CounterpartID int64
	TelegramID    int64
	Name          string
	Gender        string
	BirthYear     int
	Region        string
	Nationality   string
	MaritalStatus string
	Profession    string
	Bio           string
}

const requestColumns = `id, sender_id, receiver_id, message, status, created_at, responded_at`

func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

// CreateWithQuota checks the pair, burns one request from the sender's
// freshest valid tariff, and inserts the request in a single transaction.
// The duplicate check runs first so a repeated pair never costs quota.
func (r *RequestRepo) CreateWithQuota(ctx context.Context, senderID, receiverID int64, message string, now time.Time) (model.MatchRequest, int, error) {
	if senderID <= 0 || receiverID <= 0 || senderID == receiverID {
		return model.MatchRequest{}, 0, fmt.Errorf("invalid request pair")
	}

	var (
		request      model.MatchRequest
		requestsLeft int
	)
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var one int
		err := tx.QueryRow(ctx, `
SELECT 1
FROM match_requests
WHERE sender_id = $1 AND receiver_id = $2
LIMIT 1
`, senderID, receiverID).Scan(&one)
		if err == nil {
			return ErrDuplicateRequest
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lookup existing request pair: %w", err)
		}

		err = tx.QueryRow(ctx, `
UPDATE user_tariffs
SET requests_left = requests_left - 1
WHERE id = (
	SELECT id
	FROM user_tariffs
	WHERE user_id = $1 AND is_active AND listing_expires >= $2 AND requests_left > 0
	ORDER BY created_at DESC, id DESC
	LIMIT 1
)
RETURNING requests_left
`, senderID, now).Scan(&requestsLeft)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNoQuota
			}
			return fmt.Errorf("consume request quota: %w", err)
		}

		row := tx.QueryRow(ctx, `
INSERT INTO match_requests (sender_id, receiver_id, message, status, created_at, responded_at)
VALUES ($1, $2, $3, 'PENDING', NOW(), NULL)
RETURNING `+requestColumns+`
`, senderID, receiverID, message)

		request, err = scanRequest(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateRequest
			}
			return fmt.Errorf("create match request: %w", err)
		}

		return nil
	})
	if err != nil {
		return model.MatchRequest{}, 0, err
	}

	return request, requestsLeft, nil
}

func (r *RequestRepo) FindByID(ctx context.Context, requestID int64) (model.MatchRequest, error) {
	if r.pool == nil {
		return model.MatchRequest{}, fmt.Errorf("postgres pool is nil")
	}
	if requestID <= 0 {
		return model.MatchRequest{}, fmt.Errorf("invalid request id")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+requestColumns+`
FROM match_requests
WHERE id = $1
`, requestID)

	request, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MatchRequest{}, ErrRequestNotFound
		}
		return model.MatchRequest{}, fmt.Errorf("find request by id: %w", err)
	}

	return request, nil
}

func (r *RequestRepo) ListReceivedPending(ctx context.Context, receiverID int64, limit int) ([]RequestCardRecord, error) {
	return r.listCards(ctx, `
SELECT
	mr.id, mr.sender_id, mr.receiver_id, mr.message, mr.status, mr.created_at, mr.responded_at,
	u.id, u.telegram_id,
	COALESCE(p.name, ''), COALESCE(p.gender, ''), COALESCE(p.birth_year, 0),
	COALESCE(p.region, ''), COALESCE(p.nationality, ''), COALESCE(p.marital_status, ''),
	COALESCE(p.profession, ''), COALESCE(p.bio, '')
FROM match_requests mr
JOIN users u ON u.id = mr.sender_id
LEFT JOIN profiles p ON p.user_id = mr.sender_id
WHERE mr.receiver_id = $1 AND mr.status = 'PENDING'
ORDER BY mr.created_at DESC, mr.id DESC
LIMIT $2
`, receiverID, limit)
}

func (r *RequestRepo) ListSent(ctx context.Context, senderID int64, limit int) ([]RequestCardRecord, error) {
	return r.listCards(ctx, `
SELECT
	mr.id, mr.sender_id, mr.receiver_id, mr.message, mr.status, mr.created_at, mr.responded_at,
	u.id, u.telegram_id,
	COALESCE(p.name, ''), COALESCE(p.gender, ''), COALESCE(p.birth_year, 0),
	COALESCE(p.region, ''), COALESCE(p.nationality, ''), COALESCE(p.marital_status, ''),
	COALESCE(p.profession, ''), COALESCE(p.bio, '')
FROM match_requests mr
JOIN users u ON u.id = mr.receiver_id
LEFT JOIN profiles p ON p.user_id = mr.receiver_id
WHERE mr.sender_id = $1
ORDER BY mr.created_at DESC, mr.id DESC
LIMIT $2
`, senderID, limit)
}

func (r *RequestRepo) listCards(ctx context.Context, query string, userID int64, limit int) ([]RequestCardRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []RequestCardRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list request cards: %w", err)
	}
	defer rows.Close()

	items := make([]RequestCardRecord, 0, limit)
	for rows.Next() {
		var item RequestCardRecord
		var status string
		if err := rows.Scan(
			&item.Request.ID,
			&item.Request.SenderID,
			&item.Request.ReceiverID,
			&item.Request.Message,
			&status,
			&item.Request.CreatedAt,
			&item.Request.RespondedAt,
			&item.CounterpartID,
			&item.TelegramID,
			&item.Name,
			&item.Gender,
			&item.BirthYear,
			&item.Region,
			&item.Nationality,
			&item.MaritalStatus,
			&item.Profession,
			&item.Bio,
		); err != nil {
			return nil, fmt.Errorf("scan request card: %w", err)
		}
		item.Request.Status = enums.RequestStatus(status)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate request cards: %w", rows.Err())
	}

	return items, nil
}

// Accept resolves a pending request and opens its chat session atomically.
// Only the receiver may accept, and only once.
func (r *RequestRepo) Accept(ctx context.Context, requestID, receiverID int64, chatID string, now, expiresAt time.Time) (model.MatchRequest, model.ChatSession, error) {
	if requestID <= 0 || receiverID <= 0 || chatID == "" {
		return model.MatchRequest{}, model.ChatSession{}, fmt.Errorf("invalid accept payload")
	}

	var (
		request model.MatchRequest
		chat    model.ChatSession
	)
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
UPDATE match_requests
SET status = 'ACCEPTED', responded_at = $3
WHERE id = $1 AND receiver_id = $2 AND status = 'PENDING'
RETURNING `+requestColumns+`
`, requestID, receiverID, now)

		resolved, err := scanRequest(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.classifyMissingPending(ctx, tx, requestID, receiverID)
			}
			return fmt.Errorf("accept request: %w", err)
		}
		request = resolved

		err = tx.QueryRow(ctx, `
INSERT INTO chats (id, request_id, user1_id, user2_id, is_active, created_at, expires_at)
VALUES ($1, $2, $3, $4, TRUE, $5, $6)
RETURNING id, request_id, user1_id, user2_id, is_active, created_at, expires_at
`, chatID, request.ID, request.SenderID, request.ReceiverID, now, expiresAt).Scan(
			&chat.ID,
			&chat.RequestID,
			&chat.User1ID,
			&chat.User2ID,
			&chat.IsActive,
			&chat.CreatedAt,
			&chat.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("open chat for accepted request: %w", err)
		}

		return nil
	})
	if err != nil {
		return model.MatchRequest{}, model.ChatSession{}, err
	}

	return request, chat, nil
}

func (r *RequestRepo) Reject(ctx context.Context, requestID, receiverID int64, now time.Time) (model.MatchRequest, error) {
	if requestID <= 0 || receiverID <= 0 {
		return model.MatchRequest{}, fmt.Errorf("invalid reject payload")
	}

	var request model.MatchRequest
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
UPDATE match_requests
SET status = 'REJECTED', responded_at = $3
WHERE id = $1 AND receiver_id = $2 AND status = 'PENDING'
RETURNING `+requestColumns+`
`, requestID, receiverID, now)

		resolved, err := scanRequest(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.classifyMissingPending(ctx, tx, requestID, receiverID)
			}
			return fmt.Errorf("reject request: %w", err)
		}
		request = resolved

		return nil
	})
	if err != nil {
		return model.MatchRequest{}, err
	}

	return request, nil
}

// StatusForPair reports whether sender already has a request to receiver.
func (r *RequestRepo) StatusForPair(ctx context.Context, senderID, receiverID int64) (enums.RequestStatus, bool, error) {
	if r.pool == nil {
		return "", false, nil
	}
	if senderID <= 0 || receiverID <= 0 {
		return "", false, fmt.Errorf("invalid request pair")
	}

	var status string
	err := r.pool.QueryRow(ctx, `
SELECT status
FROM match_requests
WHERE sender_id = $1 AND receiver_id = $2
LIMIT 1
`, senderID, receiverID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup request pair status: %w", err)
	}

	return enums.RequestStatus(status), true, nil
}

func (r *RequestRepo) classifyMissingPending(ctx context.Context, tx pgx.Tx, requestID, receiverID int64) error {
	var status string
	err := tx.QueryRow(ctx, `
SELECT status
FROM match_requests
WHERE id = $1 AND receiver_id = $2
`, requestID, receiverID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("lookup request status: %w", err)
	}
	return ErrRequestResolved
}

func scanRequest(row rowScanner) (model.MatchRequest, error) {
	var req model.MatchRequest
	var status string
	err := row.Scan(
		&req.ID,
		&req.SenderID,
		&req.ReceiverID,
		&req.Message,
		&status,
		&req.CreatedAt,
		&req.RespondedAt,
	)
	if err != nil {
		return model.MatchRequest{}, err
	}
	req.Status = enums.RequestStatus(status)
	return req, nil
}
