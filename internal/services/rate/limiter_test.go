package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/Usergeee443/nikoh/internal/repo/redis"
)

func TestLimiterBlocksOn10SecondWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 100, 2)

	ctx := context.Background()
	chatID := "chat-1"
	senderID := int64(42)

	for i := 0; i < 2; i++ {
		retryAfter, allowed, err := limiter.AllowMessage(ctx, chatID, senderID)
		if err != nil {
			t.Fatalf("allow message #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on allow #%d: allowed=%v retry_after=%d", i+1, allowed, retryAfter)
		}
	}

	retryAfter, allowed, err := limiter.AllowMessage(ctx, chatID, senderID)
	if err != nil {
		t.Fatalf("allow message #3: %v", err)
	}
	if allowed {
		t.Fatalf("expected limiter block on third message in 10s window")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry_after, got %d", retryAfter)
	}

	mr.FastForward(11 * time.Second)

	retryAfter, allowed, err = limiter.AllowMessage(ctx, chatID, senderID)
	if err != nil {
		t.Fatalf("allow message after 10s window: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("unexpected result after fast forward: allowed=%v retry_after=%d", allowed, retryAfter)
	}
}

func TestLimiterBlocksOnMinuteWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 3, 100)

	ctx := context.Background()
	chatID := "chat-2"
	senderID := int64(77)

	for i := 0; i < 3; i++ {
		retryAfter, allowed, err := limiter.AllowMessage(ctx, chatID, senderID)
		if err != nil {
			t.Fatalf("allow message #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on allow #%d: allowed=%v retry_after=%d", i+1, allowed, retryAfter)
		}
	}

	retryAfter, allowed, err := limiter.AllowMessage(ctx, chatID, senderID)
	if err != nil {
		t.Fatalf("allow message #4: %v", err)
	}
	if allowed {
		t.Fatalf("expected limiter block on fourth message in minute window")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry_after, got %d", retryAfter)
	}
}

func TestLimiterScopesWindowsPerChat(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 100, 1)

	ctx := context.Background()
	senderID := int64(42)

	if _, allowed, err := limiter.AllowMessage(ctx, "chat-a", senderID); err != nil || !allowed {
		t.Fatalf("first message in chat-a: allowed=%v err=%v", allowed, err)
	}
	if _, allowed, err := limiter.AllowMessage(ctx, "chat-a", senderID); err != nil || allowed {
		t.Fatalf("second message in chat-a must be blocked: allowed=%v err=%v", allowed, err)
	}

	if _, allowed, err := limiter.AllowMessage(ctx, "chat-b", senderID); err != nil || !allowed {
		t.Fatalf("message in another chat must pass: allowed=%v err=%v", allowed, err)
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}
