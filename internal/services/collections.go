package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/store"
)

// CollectionService is the CRU service for card collections (there is no
// delete). All callers are already authenticated; visibility and
// ownership checks happen here.
type CollectionService struct {
	store *store.Store
}

func NewCollectionService(st *store.Store) *CollectionService {
	return &CollectionService{store: st}
}

// CollectionPatch carries the optional fields of an upsert. Nil slices
// and nil pointers mean "field absent"; empty strings also count as
// absent, mirroring how clients omit fields.
type CollectionPatch struct {
	ID          string
	Name        string
	Description string
	Cards       [][]string
	Version     *int
	Public      *bool
	Sets        []string
}

// Get returns one collection, applying the visibility rule. Existence
// leaks to any authenticated caller (not-found is checked first),
// content does not.
func (s *CollectionService) Get(user *models.User, id string) (*models.Collection, error) {
	var c models.Collection
	if err := s.store.Get(store.Collections, id, &c); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !CanRead(&c, user) {
		return nil, ErrForbidden
	}
	return &c, nil
}

// GetMany applies the Get logic to each id independently. Failures never
// abort the batch: unreadable ids turn into per-id error strings, in
// input order, alongside whatever succeeded.
func (s *CollectionService) GetMany(user *models.User, ids []string) (map[string]*models.Collection, []string) {
	data := make(map[string]*models.Collection)
	errs := []string{}
	for _, id := range ids {
		c, err := s.Get(user, id)
		switch {
		case errors.Is(err, ErrNotFound):
			errs = append(errs, fmt.Sprintf("%s not found.", id))
		case err != nil:
			errs = append(errs, fmt.Sprintf("%s forbidden.", id))
		default:
			data[id] = c
		}
	}
	return data, errs
}

// Upsert creates or updates a collection.
//
// Without an id it creates: name and cards are required, the caller
// becomes the author, an id is generated and appended to the caller's
// owned list. With an id that exists it updates after the author check,
// merging the patch over the stored document. With an id that does not
// exist it creates under the caller's id — without touching the caller's
// owned list, which only the generated-id path maintains.
//
// The returned bool is true when a document was created.
func (s *CollectionService) Upsert(user *models.User, patch CollectionPatch) (*models.Collection, string, bool, error) {
	id := patch.ID
	generated := id == ""
	if generated {
		id = uuid.NewString()
	}

	unlock := s.store.Lock(store.Collections, id)
	defer unlock()

	var prev models.Collection
	err := s.store.Get(store.Collections, id, &prev)
	switch {
	case err == nil:
		if !CanWrite(&prev, user) {
			return nil, "", false, ErrForbidden
		}
		next := mergeCollection(&prev, patch, user.Username)
		if err := s.store.Put(store.Collections, id, next); err != nil {
			return nil, "", false, err
		}
		return next, id, false, nil

	case errors.Is(err, store.ErrInvalidID):
		return nil, "", false, ErrInvalidID

	case errors.Is(err, store.ErrNotFound):
		if patch.Name == "" || patch.Cards == nil {
			return nil, "", false, ErrMissingFields
		}
		next := mergeCollection(nil, patch, user.Username)
		if err := s.store.Put(store.Collections, id, next); err != nil {
			return nil, "", false, err
		}
		if generated {
			if err := s.addToOwnedList(user, id); err != nil {
				return nil, "", false, err
			}
		}
		return next, id, true, nil

	default:
		return nil, "", false, err
	}
}

// addToOwnedList appends a freshly created collection id to the author's
// own list and persists the user document.
func (s *CollectionService) addToOwnedList(user *models.User, id string) error {
	unlock := s.store.Lock(store.Users, user.Username)
	defer unlock()

	var u models.User
	if err := s.store.Get(store.Users, user.Username, &u); err != nil {
		return err
	}
	u.Collections = append(u.Collections, id)
	if err := s.store.Put(store.Users, u.Username, &u); err != nil {
		return err
	}
	user.Collections = u.Collections
	return nil
}

// mergeCollection builds the next document with the precedence
// patch > previous document > zero default ("", empty slice, false,
// version 1). The author is always the current caller; it is never
// copied from the stored document.
func mergeCollection(prev *models.Collection, patch CollectionPatch, author string) *models.Collection {
	next := &models.Collection{
		Name:        patch.Name,
		Description: patch.Description,
		Cards:       patch.Cards,
		Sets:        patch.Sets,
		Author:      author,
		Version:     1,
	}
	if patch.Version != nil {
		next.Version = *patch.Version
	}
	if patch.Public != nil {
		next.Public = *patch.Public
	}
	if prev != nil {
		if patch.Name == "" {
			next.Name = prev.Name
		}
		if patch.Description == "" {
			next.Description = prev.Description
		}
		if patch.Cards == nil {
			next.Cards = prev.Cards
		}
		if patch.Sets == nil {
			next.Sets = prev.Sets
		}
		if patch.Version == nil && prev.Version != 0 {
			next.Version = prev.Version
		}
		if patch.Public == nil {
			next.Public = prev.Public
		}
	}
	if next.Cards == nil {
		next.Cards = [][]string{}
	}
	if next.Sets == nil {
		next.Sets = []string{}
	}
	return next
}
