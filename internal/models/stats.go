package models

// ContactStats represents the per-user contact statistics view
type ContactStats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	Recent     []Contact      `json:"recent"` // newest first, at most five
}
