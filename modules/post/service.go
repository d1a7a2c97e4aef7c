package post

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/saasbase/handler"
	"github.com/dmitrymomot/saasbase/pkg/broadcast"
)

// Service manages posts and fans creation events out to stream subscribers.
type Service struct {
	store       Store
	broadcaster broadcast.Broadcaster[Event]
	log         *slog.Logger
}

// NewService creates the post service. Panics on nil dependencies.
func NewService(store Store, broadcaster broadcast.Broadcaster[Event], log *slog.Logger) *Service {
	if store == nil {
		panic("post: Store is required")
	}
	if broadcaster == nil {
		panic("post: Broadcaster is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, broadcaster: broadcaster, log: log}
}

// List returns all posts newest first.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	return s.store.List(ctx)
}

// Create validates and persists a post, then broadcasts the creation event.
// The broadcast is fire-and-forget after the write commits; a failed publish
// is logged, never surfaced.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, body string) (Post, error) {
	valErr := handler.NewValidationError()
	if strings.TrimSpace(title) == "" {
		valErr.Add("title", "title is required")
	}
	if strings.TrimSpace(body) == "" {
		valErr.Add("body", "body is required")
	}
	if !valErr.IsEmpty() {
		return Post{}, valErr
	}

	created, err := s.store.Create(ctx, Post{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		Body:      strings.TrimSpace(body),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Post{}, err
	}

	// Publish after commit, detached from the request lifetime.
	pubCtx := context.WithoutCancel(ctx)
	if err := s.broadcaster.Broadcast(pubCtx, broadcast.Message[Event]{Data: Event{
		ID:          created.ID,
		Title:       created.Title,
		Body:        created.Body,
		AuthorEmail: created.AuthorEmail,
		CreatedAt:   created.CreatedAt,
	}}); err != nil {
		s.log.ErrorContext(ctx, "failed to broadcast post event",
			slog.String("post_id", created.ID.String()),
			slog.Any("error", err),
		)
	}

	return created, nil
}

// Subscribe registers a stream subscriber for post creation events.
func (s *Service) Subscribe(ctx context.Context) broadcast.Subscriber[Event] {
	return s.broadcaster.Subscribe(ctx)
}
