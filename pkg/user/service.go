package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// UserService exposes the account management operations that sit outside
// the auth flows.
type UserService struct {
	repo Repository
}

// NewUserService creates a new UserService
func NewUserService(repo Repository) *UserService {
	return &UserService{repo: repo}
}

// GetUser returns the user with the given id
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// DeleteUser removes a user account and returns the deleted record
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("failed to delete user: %w", err)
	}
	slog.Info("User deleted", "userID", id)
	return u, nil
}
