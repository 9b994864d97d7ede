package identity

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestNewUser(t *testing.T) {
	t.Run("creates user and hashes password", func(t *testing.T) {
		u, err := NewUser(" Jane@Example.com ", "Jane", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", u.Email)
		assert.NotEqual(t, "secret123", u.PasswordHash)
		assert.True(t, u.VerifyPassword("secret123"))
		assert.False(t, u.VerifyPassword("wrong"))
		assert.True(t, u.CanLogin())
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewUser("jane@example.com", "Jane", "password")
		assert.Error(t, err)
		_, err = NewUser("jane@example.com", "Jane", "a1")
		assert.Error(t, err)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "Jane", "secret123")
		assert.Error(t, err)
		_, err = NewUser("", "Jane", "secret123")
		assert.Error(t, err)
	})
}

func TestUserLoginTracking(t *testing.T) {
	u, err := NewUser("jane@example.com", "Jane", "secret123")
	require.NoError(t, err)

	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.False(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.RecordLoginFailure(3, time.Minute))
	assert.True(t, u.IsLocked())
	assert.False(t, u.CanLogin())

	u.RecordLoginSuccess()
	assert.Equal(t, 0, u.FailedAttempts)
	assert.Equal(t, UserStatusActive, u.Status)
	assert.NotNil(t, u.LastLoginAt)
}

func TestUserChangePassword(t *testing.T) {
	u, err := NewUser("jane@example.com", "Jane", "secret123")
	require.NoError(t, err)

	assert.Error(t, u.ChangePassword("wrong123", "newsecret1"))
	require.NoError(t, u.ChangePassword("secret123", "newsecret1"))
	assert.True(t, u.VerifyPassword("newsecret1"))

	require.NoError(t, u.Deactivate())
	assert.False(t, u.CanLogin())
}

func TestNewMembership(t *testing.T) {
	m, err := NewMembership(uuid.New(), uuid.New(), MemberRoleAdmin)
	require.NoError(t, err)
	assert.True(t, m.Role.CanApprove())
	assert.False(t, MemberRoleStaff.CanApprove())

	_, err = NewMembership(uuid.New(), uuid.New(), MemberRole("guest"))
	assert.Error(t, err)
	_, err = NewMembership(uuid.Nil, uuid.New(), MemberRoleStaff)
	assert.Error(t, err)
}
