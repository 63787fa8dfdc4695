package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/store"
)

// LearningSetService mirrors CollectionService for learning sets, which
// group collections instead of holding cards.
type LearningSetService struct {
	store *store.Store
}

func NewLearningSetService(st *store.Store) *LearningSetService {
	return &LearningSetService{store: st}
}

// LearningSetPatch carries the optional fields of an upsert; absence
// conventions match CollectionPatch.
type LearningSetPatch struct {
	ID          string
	Name        string
	Description string
	Collections []string
	Version     *int
	Public      *bool
}

func (s *LearningSetService) Get(user *models.User, id string) (*models.LearningSet, error) {
	var set models.LearningSet
	if err := s.store.Get(store.Sets, id, &set); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !CanRead(&set, user) {
		return nil, ErrForbidden
	}
	return &set, nil
}

func (s *LearningSetService) GetMany(user *models.User, ids []string) (map[string]*models.LearningSet, []string) {
	data := make(map[string]*models.LearningSet)
	errs := []string{}
	for _, id := range ids {
		set, err := s.Get(user, id)
		switch {
		case errors.Is(err, ErrNotFound):
			errs = append(errs, fmt.Sprintf("%s not found.", id))
		case err != nil:
			errs = append(errs, fmt.Sprintf("%s forbidden.", id))
		default:
			data[id] = set
		}
	}
	return data, errs
}

// Upsert follows the collection upsert contract: create without an id
// requires name and collections and appends to the caller's owned sets,
// update requires authorship and merges, create under a caller-supplied
// id skips the owned-list append.
func (s *LearningSetService) Upsert(user *models.User, patch LearningSetPatch) (*models.LearningSet, string, bool, error) {
	id := patch.ID
	generated := id == ""
	if generated {
		id = uuid.NewString()
	}

	unlock := s.store.Lock(store.Sets, id)
	defer unlock()

	var prev models.LearningSet
	err := s.store.Get(store.Sets, id, &prev)
	switch {
	case err == nil:
		if !CanWrite(&prev, user) {
			return nil, "", false, ErrForbidden
		}
		next := mergeLearningSet(&prev, patch, user.Username)
		if err := s.store.Put(store.Sets, id, next); err != nil {
			return nil, "", false, err
		}
		return next, id, false, nil

	case errors.Is(err, store.ErrInvalidID):
		return nil, "", false, ErrInvalidID

	case errors.Is(err, store.ErrNotFound):
		if patch.Name == "" || patch.Collections == nil {
			return nil, "", false, ErrMissingFields
		}
		next := mergeLearningSet(nil, patch, user.Username)
		if err := s.store.Put(store.Sets, id, next); err != nil {
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

func (s *LearningSetService) addToOwnedList(user *models.User, id string) error {
	unlock := s.store.Lock(store.Users, user.Username)
	defer unlock()

	var u models.User
	if err := s.store.Get(store.Users, user.Username, &u); err != nil {
		return err
	}
	u.Sets = append(u.Sets, id)
	if err := s.store.Put(store.Users, u.Username, &u); err != nil {
		return err
	}
	user.Sets = u.Sets
	return nil
}

func mergeLearningSet(prev *models.LearningSet, patch LearningSetPatch, author string) *models.LearningSet {
	next := &models.LearningSet{
		Name:        patch.Name,
		Description: patch.Description,
		Collections: patch.Collections,
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
		if patch.Collections == nil {
			next.Collections = prev.Collections
		}
		if patch.Version == nil && prev.Version != 0 {
			next.Version = prev.Version
		}
		if patch.Public == nil {
			next.Public = prev.Public
		}
	}
	if next.Collections == nil {
		next.Collections = []string{}
	}
	return next
}
