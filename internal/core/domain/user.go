package domain

import "time"

type User struct {
	ID        UserID    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	LastSeen  time.Time `json:"lastSeen,omitempty"`
}

func (u User) Key() UserID { return u.ID }

func (u User) Validate() error {
	if u.ID.IsZero() {
		return invalidf("user id is required")
	}
	if u.Name == "" {
		return invalidf("user name is required")
	}
	return nil
}
