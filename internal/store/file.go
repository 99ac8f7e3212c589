package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	cerrors "catalogsvc/internal/errors"
)

// FileStore implements ProductStore on a single JSON document holding
// the whole catalog as an array. Every write re-encodes the full array
// and swaps it in with a rename, so readers never observe a half-written
// file. A process-wide mutex serializes mutations: load-modify-write has
// no transactional isolation on its own, and without the lock two
// concurrent updates would silently drop one writer's change.
//
// Queries are emulated by loading everything and filtering in memory,
// which is O(n) per query. That is acceptable at catalog scale; swap in
// the mongo variant when it is not.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed store at path, seeding an empty
// catalog document if none exists yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, unavailable("stat catalog file", err)
		}
		if err := s.writeAll([]Product{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Ping verifies the backing document is readable.
func (s *FileStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.readAll()
	return err
}

// LoadAll returns every persisted product.
func (s *FileStore) LoadAll(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAll()
}

// ReplaceAll overwrites the entire record set.
func (s *FileStore) ReplaceAll(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(products)
}

// FindByID retrieves a product by its unique identifier.
func (s *FileStore) FindByID(ctx context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, cerrors.ErrProductNotFound
}

// Insert appends a new product to the catalog document.
func (s *FileStore) Insert(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readAll()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == p.ID {
			return fmt.Errorf("insert product %s: %w", p.ID, cerrors.ErrDuplicateID)
		}
	}
	return s.writeAll(append(products, p))
}

// Replace swaps the stored product with the same ID in place, so the
// record count is unchanged and no concurrent reader sees the id absent.
func (s *FileStore) Replace(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readAll()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == p.ID {
			products[i] = p
			return s.writeAll(products)
		}
	}
	return cerrors.ErrProductNotFound
}

// DeleteByID removes a product by its ID.
func (s *FileStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.readAll()
	if err != nil {
		return err
	}
	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return cerrors.ErrProductNotFound
	}
	return s.writeAll(kept)
}

// Query emulates the document-database listing: load all records, apply
// the shared filter predicate, apply the shared price comparator, then
// slice out [skip, skip+limit). O(n) per query.
func (s *FileStore) Query(ctx context.Context, f Filter, order SortOrder, skip, limit int64) ([]Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.readAll()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]Product, 0, len(products))
	for i := range products {
		if f.Matches(&products[i]) {
			matched = append(matched, products[i])
		}
	}
	sortByPrice(matched, order)
	return pageOf(matched, skip, limit), int64(len(matched)), nil
}

func (s *FileStore) readAll() ([]Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, unavailable("read catalog file", err)
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, unavailable("decode catalog file", err)
	}
	return products, nil
}

// writeAll encodes the full catalog into a temp file in the same
// directory and renames it over the document, so the swap is atomic.
func (s *FileStore) writeAll(products []Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return unavailable("encode catalog", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return unavailable("create temp catalog file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return unavailable("write temp catalog file", err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("close temp catalog file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return unavailable("swap catalog file", err)
	}
	return nil
}
