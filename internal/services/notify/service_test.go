package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/domain/rules"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	messages []sentMessage
	reviews  []sentMessage
	fail     bool
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	if f.fail {
		return fmt.Errorf("telegram unavailable")
	}
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) SendReviewQueue(_ context.Context, chatID int64, text string, _ int64) error {
	if f.fail {
		return fmt.Errorf("telegram unavailable")
	}
	f.reviews = append(f.reviews, sentMessage{chatID: chatID, text: text})
	return nil
}

type fakeUserStore struct {
	users map[int64]model.User
}

func (f *fakeUserStore) FindByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func newTestService(sender *fakeSender) *Service {
	return NewService(sender, &fakeUserStore{
		users: map[int64]model.User{
			1: {ID: 1, TelegramID: 100001},
		},
	}, nil, Config{AdminIDs: []int64{555, 556}})
}

func TestPaymentSubmittedFansOutToAdmins(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(sender)

	plan, _ := rules.TariffPlanByID("OLTIN")
	svc.PaymentSubmitted(context.Background(), model.PaymentRequest{ID: 9, UserID: 1}, plan)

	if len(sender.reviews) != 2 {
		t.Fatalf("expected review card for each admin, got %d", len(sender.reviews))
	}
	if sender.reviews[0].chatID != 555 || sender.reviews[1].chatID != 556 {
		t.Fatalf("unexpected admin recipients: %+v", sender.reviews)
	}
	if !strings.Contains(sender.reviews[0].text, "100000") {
		t.Fatalf("review card must carry the amount: %q", sender.reviews[0].text)
	}
}

func TestUserNotificationsResolveTelegramID(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(sender)

	plan, _ := rules.TariffPlanByID("KUMUSH")
	svc.PaymentApproved(context.Background(), 1, plan)
	svc.RequestReceived(context.Background(), 1, "Aziza")
	svc.RequestAccepted(context.Background(), 1, model.ChatSession{ExpiresAt: time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)})
	svc.MessageReceived(context.Background(), 1, "chat-1")

	if len(sender.messages) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(sender.messages))
	}
	for _, msg := range sender.messages {
		if msg.chatID != 100001 {
			t.Fatalf("notification sent to wrong chat: %+v", msg)
		}
	}
	if !strings.Contains(sender.messages[1].text, "Aziza") {
		t.Fatalf("request notification must name the sender: %q", sender.messages[1].text)
	}
	if !strings.Contains(sender.messages[2].text, "08.05.2026") {
		t.Fatalf("acceptance notification must carry the chat deadline: %q", sender.messages[2].text)
	}
}

func TestNotificationsSwallowFailures(t *testing.T) {
	sender := &fakeSender{fail: true}
	svc := newTestService(sender)

	// Must not panic or surface errors.
	svc.PaymentRejected(context.Background(), 1)
	svc.MessageReceived(context.Background(), 99, "chat-1")
}
