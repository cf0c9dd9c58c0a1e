package branches

import (
	"time"
)

// Branch represents a branch entity
type Branch struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilters narrows branch listings.
type ListFilters struct {
	Search  string
	Page    int
	PerPage int
}
