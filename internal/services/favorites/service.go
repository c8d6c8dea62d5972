package favorites

import (
	"context"
	"errors"
	"fmt"

	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrSelfFavorite = errors.New("cannot favorite yourself")
)

type FavoriteStore interface {
	Toggle(ctx context.Context, userID, targetID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.FavoriteCardRecord, error)
}

type Service struct {
	favorites FavoriteStore
	listLimit int
}

func NewService(favorites FavoriteStore) *Service {
	return &Service{favorites: favorites, listLimit: 200}
}

// Toggle flips the favorite edge and reports the resulting state.
func (s *Service) Toggle(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, ErrValidation
	}
	if userID == targetID {
		return false, ErrSelfFavorite
	}
	if s.favorites == nil {
		return false, fmt.Errorf("favorite store is nil")
	}
	return s.favorites.Toggle(ctx, userID, targetID)
}

// List returns the caller's favorites, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]pgrepo.FavoriteCardRecord, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.favorites == nil {
		return nil, fmt.Errorf("favorite store is nil")
	}
	return s.favorites.ListForUser(ctx, userID, s.listLimit)
}
