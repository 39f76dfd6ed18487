package models

import "time"

// Contact categories offered by the presentation layer. The column itself is
// open text, so unknown values are kept as-is.
const (
	CategoryFamily = "Family"
	CategoryFriend = "Friend"
	CategoryWork   = "Work"
	CategoryOther  = "Other"
)

// Contact represents a phone book entry owned by a single user
type Contact struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Category  string    `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
