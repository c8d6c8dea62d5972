package expiry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeDeactivator struct {
	affected int64
	err      error
	calls    []time.Time
}

func (f *fakeDeactivator) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	f.calls = append(f.calls, now)
	return f.affected, f.err
}

func TestRunSweepsChatsAndTariffs(t *testing.T) {
	chats := &fakeDeactivator{affected: 3}
	tariffs := &fakeDeactivator{affected: 1}
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	job := New(chats, tariffs, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chats.calls) != 1 || !chats.calls[0].Equal(now) {
		t.Fatalf("chat sweep calls mismatch: %v", chats.calls)
	}
	if len(tariffs.calls) != 1 || !tariffs.calls[0].Equal(now) {
		t.Fatalf("tariff sweep calls mismatch: %v", tariffs.calls)
	}
}

func TestRunStopsOnChatSweepError(t *testing.T) {
	boom := errors.New("db gone")
	chats := &fakeDeactivator{err: boom}
	tariffs := &fakeDeactivator{}

	job := New(chats, tariffs, nil)

	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected sweep error, got %v", err)
	}
	if len(tariffs.calls) != 0 {
		t.Fatalf("tariff sweep must not run after chat sweep failure")
	}
}

func TestRunToleratesMissingStores(t *testing.T) {
	job := New(nil, nil, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
