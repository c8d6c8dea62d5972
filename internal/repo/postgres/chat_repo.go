package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Usergeee443/nikoh/internal/domain/model"
)

var ErrChatNotFound = errors.New("chat not found")

type ChatRepo struct {
	pool *pgxpool.Pool
}

// ChatListRecord is a chat row joined with the partner card and unread badge.
type ChatListRecord struct {
	Chat              model.ChatSession
	PartnerID         int64
	PartnerTelegramID int64
	PartnerName       string
	UnreadCount       int
	LastMessage       string
	LastMessageAt     *time.Time
}

const chatColumns = `id, request_id, user1_id, user2_id, is_active, created_at, expires_at`

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]ChatListRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []ChatListRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	c.id, c.request_id, c.user1_id, c.user2_id, c.is_active, c.created_at, c.expires_at,
	partner.id,
	partner.telegram_id,
	COALESCE(p.name, ''),
	(
		SELECT COUNT(*)
		FROM messages m
		WHERE m.chat_id = c.id AND m.sender_id <> $1 AND NOT m.is_read
	),
	COALESCE(last.content, ''),
	last.created_at
FROM chats c
JOIN users partner ON partner.id = CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END
LEFT JOIN profiles p ON p.user_id = partner.id
LEFT JOIN LATERAL (
	SELECT content, created_at
	FROM messages m
	WHERE m.chat_id = c.id
	ORDER BY m.created_at DESC, m.id DESC
	LIMIT 1
) last ON TRUE
WHERE c.user1_id = $1 OR c.user2_id = $1
ORDER BY COALESCE(last.created_at, c.created_at) DESC, c.created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	items := make([]ChatListRecord, 0, limit)
	for rows.Next() {
		var item ChatListRecord
		if err := rows.Scan(
			&item.Chat.ID,
			&item.Chat.RequestID,
			&item.Chat.User1ID,
			&item.Chat.User2ID,
			&item.Chat.IsActive,
			&item.Chat.CreatedAt,
			&item.Chat.ExpiresAt,
			&item.PartnerID,
			&item.PartnerTelegramID,
			&item.PartnerName,
			&item.UnreadCount,
			&item.LastMessage,
			&item.LastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat row: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate chats: %w", rows.Err())
	}

	return items, nil
}

func (r *ChatRepo) FindForParticipant(ctx context.Context, chatID string, userID int64) (model.ChatSession, error) {
	if r.pool == nil {
		return model.ChatSession{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(chatID) == "" || userID <= 0 {
		return model.ChatSession{}, fmt.Errorf("invalid chat lookup payload")
	}

	var chat model.ChatSession
	err := r.pool.QueryRow(ctx, `
SELECT `+chatColumns+`
FROM chats
WHERE id = $1 AND (user1_id = $2 OR user2_id = $2)
`, chatID, userID).Scan(
		&chat.ID,
		&chat.RequestID,
		&chat.User1ID,
		&chat.User2ID,
		&chat.IsActive,
		&chat.CreatedAt,
		&chat.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ChatSession{}, ErrChatNotFound
		}
		return model.ChatSession{}, fmt.Errorf("find chat for participant: %w", err)
	}

	return chat, nil
}

// Open loads the chat with its history and marks the partner's messages read,
// all in one transaction so the unread badge never goes stale mid-read.
func (r *ChatRepo) Open(ctx context.Context, chatID string, userID int64, messageLimit int) (model.ChatSession, []model.Message, error) {
	if strings.TrimSpace(chatID) == "" || userID <= 0 {
		return model.ChatSession{}, nil, fmt.Errorf("invalid chat open payload")
	}
	if messageLimit <= 0 {
		messageLimit = 100
	}

	var (
		chat     model.ChatSession
		messages []model.Message
	)
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
SELECT `+chatColumns+`
FROM chats
WHERE id = $1 AND (user1_id = $2 OR user2_id = $2)
`, chatID, userID).Scan(
			&chat.ID,
			&chat.RequestID,
			&chat.User1ID,
			&chat.User2ID,
			&chat.IsActive,
			&chat.CreatedAt,
			&chat.ExpiresAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrChatNotFound
			}
			return fmt.Errorf("find chat: %w", err)
		}

		rows, err := tx.Query(ctx, `
SELECT id, chat_id, sender_id, content, is_read, created_at
FROM messages
WHERE chat_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, chatID, messageLimit)
		if err != nil {
			return fmt.Errorf("list chat messages: %w", err)
		}
		defer rows.Close()

		messages = make([]model.Message, 0, messageLimit)
		for rows.Next() {
			var m model.Message
			if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
				return fmt.Errorf("scan chat message: %w", err)
			}
			messages = append(messages, m)
		}
		if rows.Err() != nil {
			return fmt.Errorf("iterate chat messages: %w", rows.Err())
		}

		if _, err := tx.Exec(ctx, `
UPDATE messages
SET is_read = TRUE
WHERE chat_id = $1 AND sender_id <> $2 AND NOT is_read
`, chatID, userID); err != nil {
			return fmt.Errorf("mark chat messages read: %w", err)
		}

		return nil
	})
	if err != nil {
		return model.ChatSession{}, nil, err
	}

	return chat, messages, nil
}

func (r *ChatRepo) InsertMessage(ctx context.Context, chatID string, senderID int64, content string) (model.Message, error) {
	if r.pool == nil {
		return model.Message{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(chatID) == "" || senderID <= 0 || strings.TrimSpace(content) == "" {
		return model.Message{}, fmt.Errorf("invalid message payload")
	}

	var m model.Message
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (chat_id, sender_id, content, is_read, created_at)
VALUES ($1, $2, $3, FALSE, NOW())
RETURNING id, chat_id, sender_id, content, is_read, created_at
`, chatID, senderID, content).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("insert chat message: %w", err)
	}

	return m, nil
}

// DeactivateExpired closes chats whose window has passed.
func (r *ChatRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE chats
SET is_active = FALSE
WHERE is_active AND expires_at <= $1
`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired chats: %w", err)
	}

	return result.RowsAffected(), nil
}
