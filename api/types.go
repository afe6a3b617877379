package api

import "time"

// Envelope is the wrapper every API response is sent in.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// User is the author of an article, also returned by /current_user.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

// Category groups articles. Articles may carry several.
type Category struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Tag is a free-form label attached to articles.
type Tag struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Article is a published post with its author and taxonomy embedded.
type Article struct {
	ID         int64      `json:"id"`
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	Image      string     `json:"image"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	User       User       `json:"user"`
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
}

// WasUpdated reports whether the article was edited after publication.
// Equal timestamps count as never updated.
func (a Article) WasUpdated() bool {
	return a.UpdatedAt.After(a.CreatedAt)
}

// ArticleQuery filters GET /articles. Zero-valued filters are not sent;
// Offset and Limit always are.
type ArticleQuery struct {
	Related  string
	Category string
	Tag      string
	Offset   int
	Limit    int
}

// LoginRequest is posted to /login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// Credentials is returned by a successful login.
type Credentials struct {
	Token string `json:"token"`
}
