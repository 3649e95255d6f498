package domain

import "time"

// User is the identity of a signed-in person.
// Only ID and Email are consumed by the bookmark side of the system.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is an issued login session. The signed token handed to the
// client only carries SID; the session is live while SID is stored.
type Session struct {
	SID       string
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
