package model

import "time"

// User is the persisted user record. The password hash never crosses the
// service boundary; outward-facing code works with PublicUser instead.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the wire representation of a user. It carries no password
// field at all, so a serialization bug cannot leak the hash.
type PublicUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public strips the password hash from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// LoginResult is what a successful login yields: the stripped user plus a
// fresh token pair. The refresh token travels only via cookie, never JSON.
type LoginResult struct {
	User         PublicUser
	AccessToken  string
	RefreshToken string
}

// TokenPair holds a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
