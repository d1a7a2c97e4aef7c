package post

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Post is a user-authored entry. AuthorEmail is attached on read from the
// owning user.
type Post struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event is the payload broadcast to stream subscribers when a post is
// created. Delivery is fire-and-forget, at-least-once, unordered across
// subscribers.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	// ErrNotFound indicates the post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrAuthorNotFound indicates the post references a missing user.
	ErrAuthorNotFound = errors.New("post author not found")
)
