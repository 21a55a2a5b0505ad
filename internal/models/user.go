package models

import "github.com/google/uuid"

// User is an account row. Guests are minted automatically for players who
// arrive without a token and can later claim the account with credentials.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`

	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`

	IsGuest bool `json:"is_guest"`
}

// FirstName returns the leading word of the display name, which is what
// rooms and leaderboards show. Falls back to "Anonymous".
func (u *User) FirstName() string {
	return FirstName(u.DisplayName)
}

// FirstName trims a display name down to its leading word, falling back to
// "Anonymous" for empty names.
func FirstName(name string) string {
	if name == "" {
		return "Anonymous"
	}
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}
