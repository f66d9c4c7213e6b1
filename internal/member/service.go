package member

import (
	"context"
	"errors"
	"fmt"
)

// Store is the persistence the member Service depends on.
type Store interface {
	Ensure(ctx context.Context, id, nickname string) (*Member, error)
	GetByID(ctx context.Context, id string) (*Member, error)
}

// Service contains business logic for members.
type Service struct {
	repo Store
}

// NewService creates a new member Service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Ensure registers the member on first use.
func (s *Service) Ensure(ctx context.Context, id, nickname string) (*Member, error) {
	if id == "" {
		return nil, errors.New("ensure member: empty id")
	}
	m, err := s.repo.Ensure(ctx, id, nickname)
	if err != nil {
		return nil, fmt.Errorf("ensure member %s: %w", id, err)
	}
	return m, nil
}

// GetByID returns a member by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

// IsNotFound returns true when the error indicates a member was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
