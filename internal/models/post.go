// Package models contains the board's domain types.
package models

import "time"

// PostedOnLayout renders timestamps as DD-MM-YYYY HH:MM:SS.
const PostedOnLayout = "02-01-2006 15:04:05"

// Post is a top-level board entry, stored as a Redis hash under its id.
type Post struct {
	ID       string `redis:"id"`
	Author   string `redis:"author"`
	Title    string `redis:"title"`
	Text     string `redis:"text"`
	PostedOn string `redis:"posted_on"`
}

// NewPost builds a post stamped with the given time.
func NewPost(id, author, title, text string, now time.Time) *Post {
	return &Post{
		ID:       id,
		Author:   author,
		Title:    title,
		Text:     text,
		PostedOn: now.Format(PostedOnLayout),
	}
}

// Comment is a reply attached to a post. Comments are stored as JSON in one shared list.
type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	PostID string `json:"post_id"`
}

// PostForm is the new-post form submission.
type PostForm struct {
	Author string `form:"author" validate:"required"`
	Title  string `form:"title" validate:"required"`
	Text   string `form:"text" validate:"required"`
}

// CommentForm is the comment form submission on a post page.
type CommentForm struct {
	Author string `form:"author" validate:"required"`
	Text   string `form:"text" validate:"required"`
}
