package model

import "time"

// User is the profile record for an account. Authentication (passwords,
// sessions) lives outside this service; the only identity contract here is
// that two callers with equal IDs are the same owner.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	AvatarKey    string    `json:"avatar_key,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}
