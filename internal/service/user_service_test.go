package service

import (
	"alcyxob/gymtracker/internal/domain"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionCreatesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := Identity{UserID: uuid.New(), Username: "ana", Email: "ana@example.com"}

	first, err := env.users.Provision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleUser}, first.Roles)

	id.Username = "renamed"
	second, err := env.users.Provision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ana", second.Username)

	got, err := env.users.GetUser(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
}

func TestProvisionRejectsMissingIdentityAndTakenEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.Provision(ctx, Identity{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.users.Provision(ctx, Identity{UserID: uuid.New(), Email: "shared@example.com"})
	require.NoError(t, err)
	_, err = env.users.Provision(ctx, Identity{UserID: uuid.New(), Email: "shared@example.com"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.users.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
