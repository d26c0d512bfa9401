package users_test

import (
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/users"
	fakeuserrepo "github.com/jrsteele09/go-auth-client/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestNewUserHashesPassword(t *testing.T) {
	u, err := users.NewUser("alice", "s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", u.PasswordHash)
	require.True(t, u.CheckPassword("s3cret-pass"))
	require.False(t, u.CheckPassword("wrong"))
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	u, err := users.NewUser("alice", "s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	byName, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byID, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	now := time.Now()
	require.NoError(t, repo.SetLastLogin("alice", now))
	require.NoError(t, repo.SetBlocked("alice", true))
	byName, _ = repo.GetByUsername("alice")
	require.True(t, byName.Blocked)
	require.True(t, now.Equal(byName.LastLogin))

	require.NoError(t, repo.Delete("alice"))
	_, err = repo.GetByUsername("alice")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.ErrorIs(t, repo.SetBlocked("alice", false), apperrors.ErrNotFound)
}
