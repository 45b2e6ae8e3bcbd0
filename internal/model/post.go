package model

import "time"

const (
	PostTypeNormal = 0
	PostTypeTop    = 1

	PostStatusNormal  = 0
	PostStatusFeature = 1
	PostStatusBlocked = 2
)

type DiscussPost struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Type         int       `json:"type"`
	Status       int       `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	CommentCount int       `json:"comment_count"`
	Score        float64   `json:"score"`
}

type PostWithAuthor struct {
	Post   DiscussPost `json:"post"`
	Author *User       `json:"author,omitempty"`
}
