package dto

type FeedCardResponse struct {
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Region         string `json:"region"`
	Nationality    string `json:"nationality,omitempty"`
	MaritalStatus  string `json:"marital_status"`
	Profession     string `json:"profession,omitempty"`
	ReligiousLevel string `json:"religious_level,omitempty"`
	IsTop          bool   `json:"is_top"`
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type FeedResponse struct {
	Items      []FeedCardResponse `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

type FeedDetailResponse struct {
	Profile       ProfileResponse `json:"profile"`
	IsTop         bool            `json:"is_top"`
	IsFavorite    bool            `json:"is_favorite"`
	RequestSent   bool            `json:"request_sent"`
	RequestStatus string          `json:"request_status,omitempty"`
}
