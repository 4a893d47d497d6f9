package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDefaultsDisplayName(t *testing.T) {
	svc := NewUserService(newMemUsers())

	user, err := svc.Create(context.Background(), CreateUserInput{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.DisplayName)
	assert.False(t, user.ID.IsZero())
}

func TestCreateUserRejectsBadHandles(t *testing.T) {
	svc := NewUserService(newMemUsers())

	_, err := svc.Create(context.Background(), CreateUserInput{})
	assertValidationError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Username: "has spaces"})
	assertValidationError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Username: "way_too_long_for_a_handle_12345"})
	assertValidationError(t, err)
}

func TestCreateUserDuplicateConflicts(t *testing.T) {
	svc := NewUserService(newMemUsers("alice"))

	_, err := svc.Create(context.Background(), CreateUserInput{Username: "alice"})
	assertErrorCode(t, err, "CONFLICT")
}

func TestGetUser(t *testing.T) {
	svc := NewUserService(newMemUsers("alice"))

	user, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Get(context.Background(), "ghost")
	assertNotFoundError(t, err)

	_, err = svc.Get(context.Background(), "")
	assertValidationError(t, err)
}
