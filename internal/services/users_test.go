package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/store"
	"github.com/powercards/powercards-api/pkg/utils"
)

func newUserService(t *testing.T) (*UserService, *SessionManager, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	sessions := NewSessionManager(st)
	return NewUserService(st, sessions), sessions, st
}

func TestSignUp(t *testing.T) {
	svc, sessions, st := newUserService(t)

	u, tok, err := svc.SignUp("alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Empty(t, u.Collections)
	assert.Empty(t, u.Sets)

	// The stored hash verifies, the plaintext is not stored.
	stored := getUser(t, st, "alice")
	assert.NotEqual(t, "hunter22", stored.Password)
	ok, err := utils.VerifyPassword("hunter22", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	// The signup token is immediately usable.
	resolved, err := sessions.Authenticate(tok.Secret)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)
}

func TestSignUp_UsernameTaken(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, _, err := svc.SignUp("alice", "a@example.com", "pw1")
	require.NoError(t, err)

	_, _, err = svc.SignUp("alice", "b@example.com", "pw2")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, sessions, _ := newUserService(t)
	_, signupTok, err := svc.SignUp("alice", "a@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Login("ghost", "hunter22")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	u, loginTok, err := svc.Login("alice", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	// Multi-device: both tokens stay live.
	_, err = sessions.Authenticate(signupTok.Secret)
	assert.NoError(t, err)
	_, err = sessions.Authenticate(loginTok.Secret)
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, sessions, _ := newUserService(t)
	user, oldTok, err := svc.SignUp("alice", "a@example.com", "oldpass")
	require.NoError(t, err)

	_, _, err = svc.ChangePassword(user, "nope", "newpass")
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	_, newTok, err := svc.ChangePassword(user, "oldpass", "newpass")
	require.NoError(t, err)

	// Every other device is logged out; only the fresh token works.
	_, err = sessions.Authenticate(oldTok.Secret)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = sessions.Authenticate(newTok.Secret)
	assert.NoError(t, err)

	_, _, err = svc.Login("alice", "oldpass")
	assert.ErrorIs(t, err, ErrIncorrectPassword)
	_, _, err = svc.Login("alice", "newpass")
	assert.NoError(t, err)
}

func TestGet_Projection(t *testing.T) {
	svc, _, _ := newUserService(t)
	_, _, err := svc.SignUp("alice", "a@example.com", "pw")
	require.NoError(t, err)

	pub, err := svc.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", pub.Username)
	assert.Equal(t, "a@example.com", pub.Email)

	_, err = svc.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_EmailAndName(t *testing.T) {
	svc, _, st := newUserService(t)
	user, _, err := svc.SignUp("alice", "a@example.com", "pw")
	require.NoError(t, err)

	updated, err := svc.Update(user, UserPatch{Email: "new@example.com", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "Alice", updated.Name)

	// Empty fields leave stored values alone.
	updated, err = svc.Update(user, UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	stored := getUser(t, st, "alice")
	assert.Equal(t, "Alice", stored.Name)
}

func TestUpdate_Rename(t *testing.T) {
	svc, sessions, st := newUserService(t)
	user, tok, err := svc.SignUp("alice", "a@example.com", "pw")
	require.NoError(t, err)

	updated, err := svc.Update(user, UserPatch{Username: "alice2"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)

	// The old document is gone, the new one resolves.
	_, err = svc.Get("alice")
	assert.ErrorIs(t, err, ErrNotFound)
	var gone models.User
	assert.ErrorIs(t, st.Get(store.Users, "alice", &gone), store.ErrNotFound)

	pub, err := svc.Get("alice2")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", pub.Email)

	// Live sessions follow the rename.
	resolved, err := sessions.Authenticate(tok.Secret)
	require.NoError(t, err)
	assert.Equal(t, "alice2", resolved.Username)
}

func TestUpdate_RenameToTakenUsername(t *testing.T) {
	svc, _, _ := newUserService(t)
	alice, _, err := svc.SignUp("alice", "a@example.com", "pw")
	require.NoError(t, err)
	_, _, err = svc.SignUp("bob", "b@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Update(alice, UserPatch{Username: "bob"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Renaming to the current name hits the taken check too.
	_, err = svc.Update(alice, UserPatch{Username: "alice"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
