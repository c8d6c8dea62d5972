package dto

import "time"

type ToggleFavoriteRequest struct {
	TargetID int64 `json:"target_id"`
}

type ToggleFavoriteResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

type FavoriteItemResponse struct {
	TargetID      int64     `json:"target_id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Region        string    `json:"region"`
	MaritalStatus string    `json:"marital_status"`
	IsActive      bool      `json:"is_active"`
	SavedAt       time.Time `json:"saved_at"`
}

type FavoritesResponse struct {
	Items []FavoriteItemResponse `json:"items"`
}
