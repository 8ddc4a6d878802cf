package memory

import (
	"alcyxob/gymtracker/internal/domain"
	"alcyxob/gymtracker/internal/repository"
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.ToLower(u.Email)
	return r.s.write(ctx, func(st *state) error {
		if _, exists := st.users[u.ID]; exists {
			return repository.ErrDuplicate
		}
		for _, existing := range st.users {
			if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
				return repository.ErrDuplicate
			}
		}
		row := *u
		row.Roles = slices.Clone(u.Roles)
		st.users[row.ID] = row
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := r.s.read(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		u.Roles = slices.Clone(u.Roles)
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.s.read(ctx, func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u.Roles = slices.Clone(u.Roles)
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}
