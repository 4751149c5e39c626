package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleAtLeast(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleAtLeast(RoleSuperadmin, RoleTech))
	assert.True(t, RoleAtLeast(RolePartner, RolePartner))
	assert.True(t, RoleAtLeast(RoleCustomerSupport, RoleLabOwner))
	assert.False(t, RoleAtLeast(RoleTech, RoleReception))
	assert.False(t, RoleAtLeast(RoleLabOwner, RoleSuperadmin))

	// Unknown roles rank below everything.
	assert.False(t, RoleAtLeast("INTERN", RoleTech))
	assert.True(t, RoleAtLeast(RoleTech, "INTERN"))
}

func TestUser_IsLocked(t *testing.T) {
	t.Parallel()

	now := time.Now()

	u := &User{}
	assert.False(t, u.IsLocked(now))

	until := now.Add(time.Hour)
	u.LockUntil = &until
	assert.True(t, u.IsLocked(now))

	// An elapsed window no longer locks.
	past := now.Add(-time.Minute)
	u.LockUntil = &past
	assert.False(t, u.IsLocked(now))
}

func TestUser_PasswordRoundTrip(t *testing.T) {
	t.Parallel()

	u := &User{}
	require.NoError(t, u.SetPassword("s3cret-password"))
	assert.NotEqual(t, "s3cret-password", u.Password)

	assert.True(t, u.CheckPassword("s3cret-password"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.False(t, (&User{}).CheckPassword("anything"))
}

func TestUser_RegisterFailedLogin(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 11, 29, 10, 0, 0, 0, time.UTC)
	u := &User{}

	// Failures below the threshold only move the counter.
	for i := 1; i < MaxLoginAttempts; i++ {
		updates := u.RegisterFailedLogin(now)
		assert.Equal(t, i, updates["login_attempts"])
		_, hasLock := updates["lock_until"]
		assert.False(t, hasLock, "attempt %d must not touch the lock", i)
		assert.Nil(t, u.LockUntil)
	}

	// The fifth consecutive failure opens the lock window.
	updates := u.RegisterFailedLogin(now)
	assert.Equal(t, MaxLoginAttempts, updates["login_attempts"])
	require.Equal(t, now.Add(LockDuration), updates["lock_until"])
	require.NotNil(t, u.LockUntil)
	assert.True(t, u.IsLocked(now))
	assert.False(t, u.IsLocked(now.Add(LockDuration)))
}

func TestUser_RegisterFailedLogin_ExpiredWindowResets(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 11, 29, 10, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)
	u := &User{LoginAttempts: MaxLoginAttempts, LockUntil: &expired}

	// A failure after the lock window lapsed counts as the first of a fresh
	// run, and the stale lock timestamp is cleared rather than extended.
	updates := u.RegisterFailedLogin(now)
	assert.Equal(t, 1, updates["login_attempts"])
	lock, hasLock := updates["lock_until"]
	require.True(t, hasLock)
	assert.Nil(t, lock)
	assert.Nil(t, u.LockUntil)
	assert.Equal(t, 1, u.LoginAttempts)
}

func TestStaffRole(t *testing.T) {
	t.Parallel()

	for _, role := range []string{RoleTech, RoleReception, RoleLabOwner, RoleCustomerSupport, RolePartner, RoleSuperadmin} {
		assert.True(t, StaffRole(role), role)
	}
	assert.False(t, StaffRole("PATIENT"))
	assert.False(t, StaffRole(""))
}

func TestUser_Validate(t *testing.T) {
	t.Parallel()

	email := "tech@lab.example"
	u := &User{Name: "R Gupta", Email: &email, Role: RoleTech}
	assert.NoError(t, u.Validate())

	bad := "not-an-email"
	u.Email = &bad
	assert.Error(t, u.Validate())

	u.Email = &email
	u.Role = "OWNER"
	assert.Error(t, u.Validate())
}
