package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepo struct {
	pool *pgxpool.Pool
}

// StatsRecord is the admin dashboard snapshot.
type StatsRecord struct {
	TotalUsers       int64
	BlockedUsers     int64
	CompleteProfiles int64
	ActiveProfiles   int64
	MaleProfiles     int64
	FemaleProfiles   int64
	PendingPayments  int64
	ApprovedPayments int64
	ApprovedAmount   int64
	ActiveTariffs    int64
	TotalRequests    int64
	AcceptedRequests int64
	ActiveChats      int64
	TotalMessages    int64
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (r *StatsRepo) Totals(ctx context.Context, now time.Time) (StatsRecord, error) {
	if r.pool == nil {
		return StatsRecord{}, nil
	}

	var s StatsRecord
	err := r.pool.QueryRow(ctx, `
SELECT
	(SELECT COUNT(*) FROM users),
	(SELECT COUNT(*) FROM users WHERE is_blocked),
	(SELECT COUNT(*) FROM profiles WHERE is_complete),
	(SELECT COUNT(*) FROM profiles WHERE is_active),
	(SELECT COUNT(*) FROM profiles WHERE gender = 'MALE'),
	(SELECT COUNT(*) FROM profiles WHERE gender = 'FEMALE'),
	(SELECT COUNT(*) FROM payment_requests WHERE status = 'PENDING'),
	(SELECT COUNT(*) FROM payment_requests WHERE status = 'APPROVED'),
	(SELECT COALESCE(SUM(amount), 0) FROM payment_requests WHERE status = 'APPROVED'),
	(SELECT COUNT(*) FROM user_tariffs WHERE is_active AND listing_expires >= $1),
	(SELECT COUNT(*) FROM match_requests),
	(SELECT COUNT(*) FROM match_requests WHERE status = 'ACCEPTED'),
	(SELECT COUNT(*) FROM chats WHERE is_active AND expires_at > $1),
	(SELECT COUNT(*) FROM messages)
`, now).Scan(
		&s.TotalUsers,
		&s.BlockedUsers,
		&s.CompleteProfiles,
		&s.ActiveProfiles,
		&s.MaleProfiles,
		&s.FemaleProfiles,
		&s.PendingPayments,
		&s.ApprovedPayments,
		&s.ApprovedAmount,
		&s.ActiveTariffs,
		&s.TotalRequests,
		&s.AcceptedRequests,
		&s.ActiveChats,
		&s.TotalMessages,
	)
	if err != nil {
		return StatsRecord{}, fmt.Errorf("read stats totals: %w", err)
	}

	return s, nil
}
