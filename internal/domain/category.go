package domain

import "time"

// Category is a user-defined spending/income bucket. Transactions
// reference categories by name key, not by ID, so renames do not
// rewrite history.
type Category struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
