package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
