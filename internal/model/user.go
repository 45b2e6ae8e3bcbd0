package model

import "time"

const (
	UserTypeOrdinary  = 0
	UserTypeAdmin     = 1
	UserTypeModerator = 2
)

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Type      int       `json:"type"`
	Status    int       `json:"status"`
	HeaderURL string    `json:"header_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}
