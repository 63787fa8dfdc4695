package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/store"
	"github.com/powercards/powercards-api/pkg/utils"
)

// UserService owns signup, login, password change and profile updates.
// Users are created at signup and never deleted; a rename re-keys the
// document under the new username.
type UserService struct {
	store    *store.Store
	sessions *SessionManager
}

func NewUserService(st *store.Store, sessions *SessionManager) *UserService {
	return &UserService{store: st, sessions: sessions}
}

// UserPatch carries the optional fields of a profile update. Empty
// strings mean "leave unchanged".
type UserPatch struct {
	Username string
	Email    string
	Name     string
}

// SignUp creates a user and logs them in. Fails with ErrUsernameTaken
// when the username already has a document.
func (s *UserService) SignUp(username, email, password string) (*models.User, models.SessionToken, error) {
	unlock := s.store.Lock(store.Users, username)
	defer unlock()

	var existing models.User
	err := s.store.Get(store.Users, username, &existing)
	if err == nil {
		return nil, models.SessionToken{}, ErrUsernameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		if errors.Is(err, store.ErrInvalidID) {
			return nil, models.SessionToken{}, ErrInvalidID
		}
		return nil, models.SessionToken{}, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, models.SessionToken{}, fmt.Errorf("hashing password: %w", err)
	}

	u := models.User{
		Username:    username,
		Name:        username,
		Email:       email,
		Collections: []string{},
		Sets:        []string{},
		Password:    hash,
	}
	tok, err := s.sessions.Attach(&u)
	if err != nil {
		return nil, models.SessionToken{}, err
	}
	if err := s.store.Put(store.Users, username, &u); err != nil {
		return nil, models.SessionToken{}, err
	}
	return &u, tok, nil
}

// Login verifies credentials and issues an additional token, so other
// devices stay logged in.
func (s *UserService) Login(username, password string) (*models.User, models.SessionToken, error) {
	unlock := s.store.Lock(store.Users, username)
	defer unlock()

	var u models.User
	if err := s.store.Get(store.Users, username, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			return nil, models.SessionToken{}, ErrUserNotFound
		}
		return nil, models.SessionToken{}, err
	}

	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil || !ok {
		return nil, models.SessionToken{}, ErrIncorrectPassword
	}

	tok, err := s.sessions.Attach(&u)
	if err != nil {
		return nil, models.SessionToken{}, err
	}
	if err := s.store.Put(store.Users, username, &u); err != nil {
		return nil, models.SessionToken{}, err
	}
	return &u, tok, nil
}

// ChangePassword verifies the old password, stores the new hash and
// resets the session list to a single fresh token, logging out every
// other device.
func (s *UserService) ChangePassword(user *models.User, oldPassword, newPassword string) (*models.User, models.SessionToken, error) {
	unlock := s.store.Lock(store.Users, user.Username)
	defer unlock()

	var u models.User
	if err := s.store.Get(store.Users, user.Username, &u); err != nil {
		return nil, models.SessionToken{}, err
	}

	ok, err := utils.VerifyPassword(oldPassword, u.Password)
	if err != nil || !ok {
		return nil, models.SessionToken{}, ErrIncorrectPassword
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, models.SessionToken{}, fmt.Errorf("hashing password: %w", err)
	}
	u.Password = hash

	tok, err := s.sessions.Replace(&u)
	if err != nil {
		return nil, models.SessionToken{}, err
	}
	if err := s.store.Put(store.Users, u.Username, &u); err != nil {
		return nil, models.SessionToken{}, err
	}
	return &u, tok, nil
}

// Get returns the public-safe projection of a user.
func (s *UserService) Get(username string) (models.PublicUser, error) {
	var u models.User
	if err := s.store.Get(store.Users, username, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			return models.PublicUser{}, ErrNotFound
		}
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

// Update applies a profile patch. A username change re-keys the document:
// the new name must be free (a document under it, including the caller's
// own, means ErrUsernameTaken), the old document is deleted after the new
// one is written, and live session tokens follow the user.
func (s *UserService) Update(user *models.User, patch UserPatch) (*models.User, error) {
	if patch.Username != "" {
		return s.rename(user, patch)
	}

	unlock := s.store.Lock(store.Users, user.Username)
	defer unlock()

	var u models.User
	if err := s.store.Get(store.Users, user.Username, &u); err != nil {
		return nil, err
	}
	applyProfile(&u, patch)
	if err := s.store.Put(store.Users, u.Username, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) rename(user *models.User, patch UserPatch) (*models.User, error) {
	oldName, newName := user.Username, patch.Username

	// Both documents are locked in sorted order so two overlapping
	// renames cannot deadlock. Renaming to the current name locks once
	// and then fails the taken check against the caller's own document.
	names := []string{oldName}
	if newName != oldName {
		names = append(names, newName)
		sort.Strings(names)
	}
	for _, n := range names {
		unlock := s.store.Lock(store.Users, n)
		defer unlock()
	}

	var taken models.User
	err := s.store.Get(store.Users, newName, &taken)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		if errors.Is(err, store.ErrInvalidID) {
			return nil, ErrInvalidID
		}
		return nil, err
	}

	var u models.User
	if err := s.store.Get(store.Users, oldName, &u); err != nil {
		return nil, err
	}
	u.Username = newName
	applyProfile(&u, patch)

	if err := s.store.Put(store.Users, newName, &u); err != nil {
		return nil, err
	}
	if err := s.store.Delete(store.Users, oldName); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	s.sessions.Rename(oldName, newName)
	return &u, nil
}

func applyProfile(u *models.User, patch UserPatch) {
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Name != "" {
		u.Name = patch.Name
	}
}
