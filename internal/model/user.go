package model

import "time"

// User owns ledger and holding rows. Authentication is handled outside this
// service; no credentials are stored here. Demo users are created with seeded
// data and reaped once they expire.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsDemo    bool      `json:"isDemo"`
	CreatedAt time.Time `json:"createdAt"`
}
