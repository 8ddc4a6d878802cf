package service

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/ownership"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Identity is what a verified bearer token says about its holder.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Roles    []domain.Role
}

// UserService mirrors identity-provider users into the local store.
type UserService interface {
	// Provision returns the stored user for id, creating it on first sight.
	Provision(ctx context.Context, id Identity) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	logger *slog.Logger
	now    Clock
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) UserService {
	return &userService{users: users, logger: logger, now: utcNow}
}

func (s *userService) Provision(ctx context.Context, id Identity) (*domain.User, error) {
	if id.UserID == uuid.Nil {
		return nil, domain.ErrMissingIdentity
	}
	user, err := s.users.GetByID(ctx, id.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	roles := id.Roles
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}
	user = &domain.User{
		ID:        id.UserID,
		Username:  id.Username,
		Email:     id.Email,
		Roles:     roles,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// Either a concurrent first request of the same user won, or the email
		// belongs to another account.
		if existing, getErr := s.users.GetByID(ctx, id.UserID); getErr == nil {
			return existing, nil
		}
		if owner, getErr := s.users.GetByEmail(ctx, id.Email); getErr == nil {
			s.logger.Warn("token email belongs to another user", "userId", id.UserID, "ownerId", owner.ID)
		}
		return nil, fmt.Errorf("email %q is already in use: %w", id.Email, domain.ErrConflict)
	}
	s.logger.Info("user provisioned", "userId", user.ID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if err := ownership.RequireIDs(userID); err != nil {
		return nil, err
	}
	user, err := optional(s.users.GetByID(ctx, userID))
	if err != nil {
		return nil, err
	}
	if err := ownership.User(userID, user); err != nil {
		return nil, err
	}
	return user, nil
}
