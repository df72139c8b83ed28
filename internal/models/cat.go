package models

import "time"

// Cat represents a cat and its link to the owning user.
type Cat struct {
	ID        int64   `json:"cat_id"`
	Name      string  `json:"cat_name"`
	Birthdate string  `json:"birthdate"` // YYYY-MM-DD
	Weight    float64 `json:"weight"`
	Owner     int64   `json:"owner"`
	Filename  string  `json:"filename,omitempty"`
	// OwnerName is joined from the users table on reads; it is not stored.
	OwnerName string    `json:"owner_name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
