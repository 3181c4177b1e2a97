package model

import "time"

// Note is a free-form HTML note with optional tags, images and links.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID string    `json:"categoryId,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Images     []string  `json:"images,omitempty"`
	Links      []string  `json:"links,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
