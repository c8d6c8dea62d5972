package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
	authsvc "github.com/Usergeee443/nikoh/internal/services/auth"
	feedsvc "github.com/Usergeee443/nikoh/internal/services/feed"
)

type feedStoreStub struct {
	records []pgrepo.FeedCandidateRecord
	total   int64
}

func (s feedStoreStub) ListPage(_ context.Context, _ int64, _ enums.Gender, _, _ int, _ time.Time) ([]pgrepo.FeedCandidateRecord, int64, error) {
	return s.records, s.total, nil
}

func (s feedStoreStub) FindCandidate(_ context.Context, _ int64, _ time.Time) (pgrepo.FeedCandidateRecord, error) {
	return pgrepo.FeedCandidateRecord{}, pgrepo.ErrFeedCandidateNotFound
}

type profileStoreStub struct {
	profile model.Profile
	err     error
}

func (s profileStoreStub) FindByUserID(context.Context, int64) (model.Profile, error) {
	return s.profile, s.err
}

func feedRequest(userID int64, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID:     userID,
		TelegramID: 100000 + userID,
	}))
}

func completeProfile(userID int64, gender enums.Gender) model.Profile {
	return model.Profile{
		UserID:     userID,
		Name:       "Test",
		Gender:     gender,
		BirthYear:  1995,
		Region:     "Toshkent",
		IsComplete: true,
		IsActive:   true,
	}
}

func TestFeedListPaginationUsesEffectivePageSize(t *testing.T) {
	svc := feedsvc.NewService(feedsvc.Dependencies{
		Feed: feedStoreStub{
			records: []pgrepo.FeedCandidateRecord{
				{Profile: completeProfile(5, enums.GenderFemale)},
				{Profile: completeProfile(6, enums.GenderFemale), IsTop: true},
			},
			total: 45,
		},
		Profiles: profileStoreStub{profile: completeProfile(1, enums.GenderMale)},
	}, feedsvc.Config{PageSize: 20, MaxPageSize: 50})
	h := NewFeedHandler(svc)

	rr := httptest.NewRecorder()
	h.List(rr, feedRequest(1, "/v1/feed"))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			Page       int   `json:"page"`
			PageSize   int   `json:"page_size"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(payload.Items) != 2 {
		t.Fatalf("unexpected item count: got %d want %d", len(payload.Items), 2)
	}
	if payload.Pagination.Page != 1 || payload.Pagination.PageSize != 20 {
		t.Fatalf("unexpected pagination: %+v", payload.Pagination)
	}
	if payload.Pagination.Total != 45 || payload.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected totals: %+v", payload.Pagination)
	}
}

func TestFeedListRequiresCompleteProfile(t *testing.T) {
	svc := feedsvc.NewService(feedsvc.Dependencies{
		Feed:     feedStoreStub{},
		Profiles: profileStoreStub{err: pgrepo.ErrProfileNotFound},
	}, feedsvc.Config{})
	h := NewFeedHandler(svc)

	rr := httptest.NewRecorder()
	h.List(rr, feedRequest(1, "/v1/feed"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "PROFILE_INCOMPLETE" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}
