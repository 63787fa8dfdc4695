package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Collection names used by the services.
const (
	Users       = "users"
	Collections = "collections"
	Sets        = "sets"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)

// Store persists one JSON file per document under <dir>/<collection>/<id>.json.
// Writes are atomic (temp file + rename). Lock serializes read-modify-write
// cycles per document so concurrent updates cannot clobber each other.
type Store struct {
	dir   string
	locks *keyLock
}

// Open creates the data directory and its collections if needed.
func Open(dir string) (*Store, error) {
	for _, coll := range []string{Users, Collections, Sets} {
		if err := os.MkdirAll(filepath.Join(dir, coll), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s collection: %w", coll, err)
		}
	}
	return &Store{dir: dir, locks: newKeyLock()}, nil
}

func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\")
}

func (s *Store) path(collection, id string) string {
	return filepath.Join(s.dir, collection, id+".json")
}

// Get unmarshals the document into v. Returns ErrNotFound when absent.
func (s *Store) Get(collection, id string, v any) error {
	if !validID(id) {
		return ErrInvalidID
	}
	data, err := os.ReadFile(s.path(collection, id))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return nil
}

// Put overwrites the document atomically.
func (s *Store) Put(collection, id string, v any) error {
	if !validID(id) {
		return ErrInvalidID
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	path := s.path(collection, id)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+id+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes the document. Deleting an absent document is ErrNotFound.
func (s *Store) Delete(collection, id string) error {
	if !validID(id) {
		return ErrInvalidID
	}
	if err := os.Remove(s.path(collection, id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// ListIDs returns every document id in the collection, sorted.
func (s *Store) ListIDs(collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, collection))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Lock takes the mutation lock for one document and returns its unlock.
// Every read-modify-write against a document must run under its lock.
func (s *Store) Lock(collection, id string) func() {
	return s.locks.lock(collection + "/" + id)
}
