// Package member keeps the owner records that reviews point to.
package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Member is an authenticated trip reviewer. ID is the token subject.
type Member struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a member does not exist.
var ErrNotFound = errors.New("member not found")

// Repository handles all member database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Ensure inserts the member if missing and refreshes a non-empty nickname.
func (r *Repository) Ensure(ctx context.Context, id, nickname string) (*Member, error) {
	m := &Member{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO members (id, nickname)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE
		   SET nickname = COALESCE(NULLIF(EXCLUDED.nickname, ''), members.nickname)
		 RETURNING id, nickname, created_at`,
		id, nickname,
	).Scan(&m.ID, &m.Nickname, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure member: %w", err)
	}
	return m, nil
}

// GetByID fetches a member by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Member, error) {
	m := &Member{}
	err := r.db.QueryRow(ctx,
		`SELECT id, nickname, created_at FROM members WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Nickname, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member by id: %w", err)
	}
	return m, nil
}
