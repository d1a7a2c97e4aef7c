package post

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/saasbase/pkg/pg"
)

// Store persists posts.
type Store interface {
	// Create persists the post and returns it with the author email attached.
	Create(ctx context.Context, p Post) (Post, error)
	// List returns all posts newest first, author email attached.
	List(ctx context.Context) ([]Post, error)
}

// PGStore is the PostgreSQL-backed post store.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Create(ctx context.Context, p Post) (Post, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, title, body, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING created_at, (SELECT email FROM users WHERE id = $2)`,
		p.ID, p.UserID, p.Title, p.Body,
	)

	var email *string
	if err := row.Scan(&p.CreatedAt, &email); err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return Post{}, ErrAuthorNotFound
		}
		return Post{}, err
	}
	if email != nil {
		p.AuthorEmail = *email
	}
	return p, nil
}

func (s *PGStore) List(ctx context.Context) ([]Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.user_id, p.title, p.body, u.email, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.AuthorEmail, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// MemStore is an in-memory Store for tests and local development.
type MemStore struct {
	mu      sync.RWMutex
	posts   []Post
	authors map[uuid.UUID]string
}

func NewMemStore() *MemStore {
	return &MemStore{authors: make(map[uuid.UUID]string)}
}

// RegisterAuthor seeds the user id to email mapping used on reads.
func (s *MemStore) RegisterAuthor(userID uuid.UUID, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authors[userID] = email
}

func (s *MemStore) Create(ctx context.Context, p Post) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.authors[p.UserID]
	if !ok {
		return Post{}, ErrAuthorNotFound
	}
	p.AuthorEmail = email
	s.posts = append(s.posts, p)
	return p, nil
}

func (s *MemStore) List(ctx context.Context) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, len(s.posts))
	copy(out, s.posts)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
