package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return st
}

// putUser writes a user document directly, bypassing signup so tests do
// not pay for password hashing.
func putUser(t *testing.T, st *store.Store, u *models.User) {
	t.Helper()
	require.NoError(t, st.Put(store.Users, u.Username, u))
}

func getUser(t *testing.T, st *store.Store, username string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, st.Get(store.Users, username, &u))
	return &u
}

func TestIssueThenResolve(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice"})

	tok, err := m.Issue("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Secret)
	assert.True(t, tok.Valid(time.Now()))

	u, ok := m.Resolve(tok.Secret)
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
}

func TestIssue_UnknownUser(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)

	_, err := m.Issue("ghost")
	assert.Error(t, err)
}

func TestResolve_EmptyAndUnknown(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice"})

	_, ok := m.Resolve("")
	assert.False(t, ok)

	_, ok = m.Resolve("no-such-secret")
	assert.False(t, ok)
}

func TestResolve_IsCaseSensitive(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice", Sessions: []models.SessionToken{
		{Secret: "SecretValue", ExpiresAt: time.Now().Add(time.Hour)},
	}})

	_, ok := m.Resolve("secretvalue")
	assert.False(t, ok)

	_, ok = m.Resolve("SecretValue")
	assert.True(t, ok)
}

func TestResolve_ExpiredTokenRejectedAndPruned(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice", Sessions: []models.SessionToken{
		{Secret: "stale", ExpiresAt: time.Now().Add(-time.Minute)},
		{Secret: "live", ExpiresAt: time.Now().Add(time.Hour)},
	}})

	_, ok := m.Resolve("stale")
	assert.False(t, ok)

	// The failed lookup rewrote the owner without the expired token.
	u := getUser(t, st, "alice")
	require.Len(t, u.Sessions, 1)
	assert.Equal(t, "live", u.Sessions[0].Secret)

	_, ok = m.Resolve("live")
	assert.True(t, ok)
}

func TestResolve_PrunesUnrelatedUsersDuringScan(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice", Sessions: []models.SessionToken{
		{Secret: "wanted", ExpiresAt: time.Now().Add(time.Hour)},
	}})
	putUser(t, st, &models.User{Username: "bob", Sessions: []models.SessionToken{
		{Secret: "expired", ExpiresAt: time.Now().Add(-time.Hour)},
	}})

	_, ok := m.Resolve("wanted")
	assert.True(t, ok)

	bob := getUser(t, st, "bob")
	assert.Empty(t, bob.Sessions, "scan prunes expired tokens it passes over")
}

func TestResolve_ExpiryViaClock(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice"})

	tok, err := m.Issue("alice")
	require.NoError(t, err)

	// Jump past the 21-day TTL.
	m.now = func() time.Time { return time.Now().Add(SessionDuration + time.Minute) }

	_, ok := m.Resolve(tok.Secret)
	assert.False(t, ok)
	assert.Empty(t, getUser(t, st, "alice").Sessions)
}

func TestReset_LogsOutOtherDevices(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice"})

	first, err := m.Issue("alice")
	require.NoError(t, err)
	second, err := m.Issue("alice")
	require.NoError(t, err)

	fresh, err := m.Reset("alice")
	require.NoError(t, err)

	for _, dead := range []string{first.Secret, second.Secret} {
		_, ok := m.Resolve(dead)
		assert.False(t, ok)
	}
	u, ok := m.Resolve(fresh.Secret)
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
	require.Len(t, u.Sessions, 1)
}

func TestResolve_SurvivesRestart(t *testing.T) {
	st := newTestStore(t)
	putUser(t, st, &models.User{Username: "alice"})

	tok, err := NewSessionManager(st).Issue("alice")
	require.NoError(t, err)

	// A fresh manager has an empty index and must fall back to the scan.
	fresh := NewSessionManager(st)
	u, ok := fresh.Resolve(tok.Secret)
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)
}

func TestAuthenticate(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice"})
	tok, err := m.Issue("alice")
	require.NoError(t, err)

	_, err = m.Authenticate("")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.Authenticate("bogus")
	assert.ErrorIs(t, err, ErrUnauthorized)

	u, err := m.Authenticate(tok.Secret)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestMultipleLiveTokensPerUser(t *testing.T) {
	st := newTestStore(t)
	m := NewSessionManager(st)
	putUser(t, st, &models.User{Username: "alice"})

	first, err := m.Issue("alice")
	require.NoError(t, err)
	second, err := m.Issue("alice")
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	_, ok := m.Resolve(first.Secret)
	assert.True(t, ok, "earlier token stays valid after a second login")
	_, ok = m.Resolve(second.Secret)
	assert.True(t, ok)
}
