package services

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/store"
)

// SessionDuration is how long an issued token stays valid: 21 days.
const SessionDuration = 21 * 24 * time.Hour

// SessionManager issues and resolves bearer tokens. Tokens live inside
// their owner's user document; an in-memory secret->username index makes
// resolution O(1) after the first scan. Expired tokens are pruned lazily
// whenever resolution touches their owner.
type SessionManager struct {
	store *store.Store
	now   func() time.Time

	mu    sync.Mutex
	index map[string]string // secret -> username
}

func NewSessionManager(st *store.Store) *SessionManager {
	return &SessionManager{
		store: st,
		now:   time.Now,
		index: make(map[string]string),
	}
}

func (m *SessionManager) newToken() (models.SessionToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return models.SessionToken{}, err
	}
	return models.SessionToken{
		Secret:    base64.RawURLEncoding.EncodeToString(buf),
		ExpiresAt: m.now().Add(SessionDuration),
	}, nil
}

// Attach generates a fresh token, appends it to the user's session list
// and records it in the index. The caller persists the user document
// under its own store lock.
func (m *SessionManager) Attach(u *models.User) (models.SessionToken, error) {
	tok, err := m.newToken()
	if err != nil {
		return models.SessionToken{}, err
	}
	u.Sessions = append(u.Sessions, tok)
	m.mu.Lock()
	m.index[tok.Secret] = u.Username
	m.mu.Unlock()
	return tok, nil
}

// Replace swaps the user's whole session list for one fresh token,
// logging out every other device. The caller persists the document.
func (m *SessionManager) Replace(u *models.User) (models.SessionToken, error) {
	tok, err := m.newToken()
	if err != nil {
		return models.SessionToken{}, err
	}
	m.mu.Lock()
	for _, old := range u.Sessions {
		delete(m.index, old.Secret)
	}
	m.index[tok.Secret] = u.Username
	m.mu.Unlock()
	u.Sessions = []models.SessionToken{tok}
	return tok, nil
}

// Issue creates and persists a new token for an existing user.
func (m *SessionManager) Issue(username string) (models.SessionToken, error) {
	unlock := m.store.Lock(store.Users, username)
	defer unlock()

	var u models.User
	if err := m.store.Get(store.Users, username, &u); err != nil {
		return models.SessionToken{}, err
	}
	tok, err := m.Attach(&u)
	if err != nil {
		return models.SessionToken{}, err
	}
	if err := m.store.Put(store.Users, username, &u); err != nil {
		return models.SessionToken{}, err
	}
	return tok, nil
}

// Reset replaces an existing user's sessions with a single fresh token
// (used on password change).
func (m *SessionManager) Reset(username string) (models.SessionToken, error) {
	unlock := m.store.Lock(store.Users, username)
	defer unlock()

	var u models.User
	if err := m.store.Get(store.Users, username, &u); err != nil {
		return models.SessionToken{}, err
	}
	tok, err := m.Replace(&u)
	if err != nil {
		return models.SessionToken{}, err
	}
	if err := m.store.Put(store.Users, username, &u); err != nil {
		return models.SessionToken{}, err
	}
	return tok, nil
}

// Resolve maps a secret to its owning user. A miss is not an error:
// the second return is false when no live token matches. Any expired
// token encountered along the way is removed from its owner's document.
func (m *SessionManager) Resolve(secret string) (*models.User, bool) {
	if secret == "" {
		return nil, false
	}

	m.mu.Lock()
	username, ok := m.index[secret]
	m.mu.Unlock()

	if ok {
		if u, found := m.check(username, secret); found {
			return u, true
		}
		// Stale index entry (expired, replaced, or renamed away under us).
		m.mu.Lock()
		if m.index[secret] == username {
			delete(m.index, secret)
		}
		m.mu.Unlock()
	}

	return m.scan(secret)
}

// check loads one user and looks for a live token with the given secret,
// pruning expired tokens as a side effect.
func (m *SessionManager) check(username, secret string) (*models.User, bool) {
	unlock := m.store.Lock(store.Users, username)
	defer unlock()

	var u models.User
	if err := m.store.Get(store.Users, username, &u); err != nil {
		return nil, false
	}
	found := m.pruneAndMatch(&u, secret)
	return &u, found
}

// scan walks every user document, pruning expired tokens and rebuilding
// the index, and returns the owner of the first live matching token.
// This is the slow path, hit only when the index has no answer (for
// example right after a restart).
func (m *SessionManager) scan(secret string) (*models.User, bool) {
	usernames, err := m.store.ListIDs(store.Users)
	if err != nil {
		return nil, false
	}

	var match *models.User
	for _, username := range usernames {
		unlock := m.store.Lock(store.Users, username)
		var u models.User
		if err := m.store.Get(store.Users, username, &u); err != nil {
			unlock()
			continue
		}
		found := m.pruneAndMatch(&u, secret)
		unlock()
		if found && match == nil {
			match = &u
		}
	}
	return match, match != nil
}

// pruneAndMatch drops expired tokens from u (persisting the document if
// anything was removed), refreshes the index for the remaining tokens,
// and reports whether a live token with the given secret survives.
// The caller must hold the user's store lock.
func (m *SessionManager) pruneAndMatch(u *models.User, secret string) bool {
	now := m.now()
	live := u.Sessions[:0]
	var pruned []string
	found := false
	for _, tok := range u.Sessions {
		if !tok.Valid(now) {
			pruned = append(pruned, tok.Secret)
			continue
		}
		live = append(live, tok)
		if tok.Secret == secret {
			found = true
		}
	}
	changed := len(pruned) > 0
	u.Sessions = live

	m.mu.Lock()
	for _, s := range pruned {
		delete(m.index, s)
	}
	for _, tok := range u.Sessions {
		m.index[tok.Secret] = u.Username
	}
	m.mu.Unlock()

	if changed {
		// Lazy pruning: rewrite the owner without its expired tokens.
		m.store.Put(store.Users, u.Username, u)
	}
	return found
}

// Authenticate resolves a request's session id to a user. A missing or
// unknown id fails with ErrUnauthorized.
func (m *SessionManager) Authenticate(sessionID string) (*models.User, error) {
	u, ok := m.Resolve(sessionID)
	if !ok {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// Rename repoints a user's index entries after a username re-key.
func (m *SessionManager) Rename(oldName, newName string) {
	m.mu.Lock()
	for secret, username := range m.index {
		if username == oldName {
			m.index[secret] = newName
		}
	}
	m.mu.Unlock()
}
