package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrProfileIncomplete = errors.New("profile is not complete")
	ErrNotFound          = errors.New("not found")
)

type FeedStore interface {
	ListPage(ctx context.Context, viewerID int64, gender enums.Gender, offset, limit int, now time.Time) ([]pgrepo.FeedCandidateRecord, int64, error)
	FindCandidate(ctx context.Context, targetUserID int64, now time.Time) (pgrepo.FeedCandidateRecord, error)
}

type ProfileStore interface {
	FindByUserID(ctx context.Context, userID int64) (model.Profile, error)
}

type RequestStore interface {
	StatusForPair(ctx context.Context, senderID, receiverID int64) (enums.RequestStatus, bool, error)
}

type FavoriteStore interface {
	IsFavorite(ctx context.Context, userID, targetID int64) (bool, error)
}

type Config struct {
	PageSize    int
	MaxPageSize int
}

type Dependencies struct {
	Feed      FeedStore
	Profiles  ProfileStore
	Requests  RequestStore
	Favorites FavoriteStore
}

type Service struct {
	feed      FeedStore
	profiles  ProfileStore
	requests  RequestStore
	favorites FavoriteStore
	cfg       Config
	now       func() time.Time
}

// Card is one feed entry: the candidate profile with its boost flag.
type Card struct {
	Profile model.Profile
	Age     int
	IsTop   bool
}

type Page struct {
	Items    []Card
	Total    int64
	Page     int
	PageSize int
	HasMore  bool
}

// Detail is the candidate profile plus the viewer's relation to it.
type Detail struct {
	Card
	IsFavorite    bool
	RequestStatus *enums.RequestStatus
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}

	return &Service{
		feed:      deps.Feed,
		profiles:  deps.Profiles,
		requests:  deps.Requests,
		favorites: deps.Favorites,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns one page of opposite-gender candidates. Boosted profiles are
// lifted to the top of the page; inside each group the recency order stays.
func (s *Service) List(ctx context.Context, viewerID int64, page, pageSize int) (Page, error) {
	if viewerID <= 0 {
		return Page{}, ErrValidation
	}
	if s.feed == nil || s.profiles == nil {
		return Page{}, fmt.Errorf("feed dependencies are not configured")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	viewer, err := s.profiles.FindByUserID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return Page{}, ErrProfileIncomplete
		}
		return Page{}, err
	}
	if !viewer.IsComplete {
		return Page{}, ErrProfileIncomplete
	}

	now := s.now().UTC()
	offset := (page - 1) * pageSize
	records, total, err := s.feed.ListPage(ctx, viewerID, viewer.Gender.Opposite(), offset, pageSize, now)
	if err != nil {
		return Page{}, err
	}

	items := make([]Card, 0, len(records))
	for _, record := range partitionBoosted(records) {
		items = append(items, Card{
			Profile: record.Profile,
			Age:     record.Profile.Age(now),
			IsTop:   record.IsTop,
		})
	}

	return Page{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  int64(offset+len(items)) < total,
	}, nil
}

// Detail loads a candidate with the viewer's favorite mark and the status of
// any request between the pair, in either direction.
func (s *Service) Detail(ctx context.Context, viewerID, targetUserID int64) (Detail, error) {
	if viewerID <= 0 || targetUserID <= 0 || viewerID == targetUserID {
		return Detail{}, ErrValidation
	}
	if s.feed == nil {
		return Detail{}, fmt.Errorf("feed store is nil")
	}

	now := s.now().UTC()
	record, err := s.feed.FindCandidate(ctx, targetUserID, now)
	if err != nil {
		if errors.Is(err, pgrepo.ErrFeedCandidateNotFound) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}
	if !record.Profile.IsActive {
		return Detail{}, ErrNotFound
	}

	detail := Detail{
		Card: Card{
			Profile: record.Profile,
			Age:     record.Profile.Age(now),
			IsTop:   record.IsTop,
		},
	}

	if s.favorites != nil {
		fav, err := s.favorites.IsFavorite(ctx, viewerID, targetUserID)
		if err != nil {
			return Detail{}, err
		}
		detail.IsFavorite = fav
	}

	if s.requests != nil {
		status, ok, err := s.requests.StatusForPair(ctx, viewerID, targetUserID)
		if err != nil {
			return Detail{}, err
		}
		if !ok {
			status, ok, err = s.requests.StatusForPair(ctx, targetUserID, viewerID)
			if err != nil {
				return Detail{}, err
			}
		}
		if ok {
			detail.RequestStatus = &status
		}
	}

	return detail, nil
}

// partitionBoosted is a stable partition: boosted cards keep their relative
// order and move ahead of the rest of the page.
func partitionBoosted(records []pgrepo.FeedCandidateRecord) []pgrepo.FeedCandidateRecord {
	boosted := make([]pgrepo.FeedCandidateRecord, 0, len(records))
	regular := make([]pgrepo.FeedCandidateRecord, 0, len(records))
	for _, record := range records {
		if record.IsTop {
			boosted = append(boosted, record)
			continue
		}
		regular = append(regular, record)
	}
	return append(boosted, regular...)
}
