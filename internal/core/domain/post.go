package domain

import "time"

const (
	TitleMinLen   = 3
	TitleMaxLen   = 200
	ContentMinLen = 10
	ContentMaxLen = 5000
)

// Post is a piece of content authored by exactly one user. UserID is set at
// creation and never changes; a post's existence is tied to its author
// (deleting the user deletes the post).
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidatePostContent checks the title and content length constraints.
func ValidatePostContent(title, content string) error {
	var fields []FieldError
	if n := len(title); n < TitleMinLen || n > TitleMaxLen {
		fields = append(fields, FieldError{Field: "title", Message: "title must be between 3 and 200 characters"})
	}
	if n := len(content); n < ContentMinLen || n > ContentMaxLen {
		fields = append(fields, FieldError{Field: "content", Message: "content must be between 10 and 5000 characters"})
	}
	if len(fields) > 0 {
		return NewValidationError(fields...)
	}
	return nil
}
