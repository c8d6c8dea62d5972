package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	messagesMinuteWindow = time.Minute
	messages10SecWindow  = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter throttles chat messages per sender per chat over two fixed
// windows. Both limits must pass for a message to go through.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// AllowMessage counts the attempt against both windows and reports whether
// it may be sent. When throttled it returns the seconds until the tighter
// window resets.
func (l *Limiter) AllowMessage(ctx context.Context, chatID string, senderID int64) (int64, bool, error) {
	if chatID == "" || senderID <= 0 {
		return 0, false, fmt.Errorf("invalid message rate payload")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(chatID, senderID), messagesMinuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.per10Sec > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, tenSecKey(chatID, senderID), messages10SecWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.per10Sec) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

func minuteKey(chatID string, senderID int64) string {
	return "rate:msgs:min:" + chatID + ":" + strconv.FormatInt(senderID, 10)
}

func tenSecKey(chatID string, senderID int64) string {
	return "rate:msgs:10s:" + chatID + ":" + strconv.FormatInt(senderID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
