package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "catalogsvc/internal/errors"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)
	return s
}

func testProduct(id string, price float64) Product {
	return Product{
		ID:           id,
		Name:         "Widget " + id,
		Description:  "A widget",
		Code:         "W-" + id,
		Price:        price,
		Stock:        3,
		Category:     "widgets",
		Availability: "in_stock",
	}
}

func seed(t *testing.T, s *FileStore, products ...Product) {
	t.Helper()
	for _, p := range products {
		require.NoError(t, s.Insert(context.Background(), p))
	}
}

func TestNewFileStore_SeedsEmptyCatalog(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "products.json")
	// when
	s, err := NewFileStore(path)
	// then
	require.NoError(t, err)
	all, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewFileStore_KeepsExistingCatalog(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "products.json")
	first, err := NewFileStore(path)
	require.NoError(t, err)
	seed(t, first, testProduct("p-1", 10))
	// when
	second, err := NewFileStore(path)
	// then
	require.NoError(t, err)
	all, err := second.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileStore_InsertAndFindByID(t *testing.T) {
	// given
	s := newTestFileStore(t)
	want := testProduct("p-1", 10)
	seed(t, s, want)
	// when
	got, err := s.FindByID(context.Background(), "p-1")
	// then
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = s.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
}

func TestFileStore_Insert_DuplicateID(t *testing.T) {
	// given
	s := newTestFileStore(t)
	seed(t, s, testProduct("p-1", 10))
	// when
	err := s.Insert(context.Background(), testProduct("p-1", 20))
	// then
	assert.ErrorIs(t, err, cerrors.ErrDuplicateID)
	all, loadErr := s.LoadAll(context.Background())
	require.NoError(t, loadErr)
	assert.Len(t, all, 1)
}

func TestFileStore_Replace(t *testing.T) {
	// given
	s := newTestFileStore(t)
	seed(t, s, testProduct("p-1", 10), testProduct("p-2", 20))
	updated := testProduct("p-1", 99)
	updated.Name = "Renamed"
	// when
	err := s.Replace(context.Background(), updated)
	// then
	require.NoError(t, err)
	got, err := s.FindByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	all, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2, "replace must not change the record count")

	err = s.Replace(context.Background(), testProduct("missing", 1))
	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)
}

func TestFileStore_DeleteByID_Twice(t *testing.T) {
	// given
	s := newTestFileStore(t)
	seed(t, s, testProduct("p-1", 10), testProduct("p-2", 20))
	// when
	err := s.DeleteByID(context.Background(), "p-1")
	// then
	require.NoError(t, err)
	err = s.DeleteByID(context.Background(), "p-1")
	assert.ErrorIs(t, err, cerrors.ErrProductNotFound)

	all, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFileStore_ReplaceAll(t *testing.T) {
	// given
	s := newTestFileStore(t)
	seed(t, s, testProduct("p-1", 10))
	next := []Product{testProduct("p-2", 20), testProduct("p-3", 30)}
	// when
	err := s.ReplaceAll(context.Background(), next)
	// then
	require.NoError(t, err)
	all, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, next, all)
}

func queryIDs(t *testing.T, s *FileStore, f Filter, order SortOrder, skip, limit int64) ([]string, int64) {
	t.Helper()
	products, total, err := s.Query(context.Background(), f, order, skip, limit)
	require.NoError(t, err)
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids, total
}

func TestFileStore_Query_SortsByPrice(t *testing.T) {
	// given: inserted out of price order
	s := newTestFileStore(t)
	seed(t, s, testProduct("p-1", 30), testProduct("p-2", 10), testProduct("p-3", 20))
	// when / then
	asc, total := queryIDs(t, s, Filter{}, SortAsc, 0, 0)
	assert.Equal(t, []string{"p-2", "p-3", "p-1"}, asc)
	assert.Equal(t, int64(3), total)

	desc, _ := queryIDs(t, s, Filter{}, SortDesc, 0, 0)
	assert.Equal(t, []string{"p-1", "p-3", "p-2"}, desc)
}

func TestFileStore_Query_EqualPricesTieBreakOnID(t *testing.T) {
	// given
	s := newTestFileStore(t)
	seed(t, s, testProduct("p-3", 10), testProduct("p-1", 10), testProduct("p-2", 10))
	// when / then: deterministic id order in both directions
	asc, _ := queryIDs(t, s, Filter{}, SortAsc, 0, 0)
	assert.Equal(t, []string{"p-1", "p-2", "p-3"}, asc)
	desc, _ := queryIDs(t, s, Filter{}, SortDesc, 0, 0)
	assert.Equal(t, []string{"p-1", "p-2", "p-3"}, desc)
}

func TestFileStore_Query_Filters(t *testing.T) {
	// given
	s := newTestFileStore(t)
	gadget := testProduct("p-2", 20)
	gadget.Category = "gadgets"
	soldOut := testProduct("p-3", 30)
	soldOut.Availability = "sold_out"
	seed(t, s, testProduct("p-1", 10), gadget, soldOut)

	testCases := []struct {
		name        string
		filter      Filter
		expectIDs   []string
		expectTotal int64
	}{
		{
			name:        "No filter matches everything",
			filter:      Filter{},
			expectIDs:   []string{"p-1", "p-2", "p-3"},
			expectTotal: 3,
		},
		{
			name:        "Category exact match",
			filter:      Filter{Category: "gadgets"},
			expectIDs:   []string{"p-2"},
			expectTotal: 1,
		},
		{
			name:        "Availability exact match",
			filter:      Filter{Availability: "sold_out"},
			expectIDs:   []string{"p-3"},
			expectTotal: 1,
		},
		{
			name:        "Filters are ANDed",
			filter:      Filter{Category: "widgets", Availability: "sold_out"},
			expectIDs:   []string{"p-3"},
			expectTotal: 1,
		},
		{
			name:        "AND with no intersection",
			filter:      Filter{Category: "gadgets", Availability: "sold_out"},
			expectIDs:   []string{},
			expectTotal: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids, total := queryIDs(t, s, tc.filter, SortAsc, 0, 0)
			assert.Equal(t, tc.expectIDs, ids)
			assert.Equal(t, tc.expectTotal, total)
		})
	}
}

func TestFileStore_Query_Search(t *testing.T) {
	// given
	s := newTestFileStore(t)
	red := testProduct("p-1", 10)
	red.Description = "Red Widget"
	blue := testProduct("p-2", 20)
	blue.Description = "Blue Gadget"
	seed(t, s, red, blue)

	testCases := []struct {
		name      string
		search    string
		expectIDs []string
	}{
		{name: "Case-insensitive match", search: "red", expectIDs: []string{"p-1"}},
		{name: "Substring match", search: "wid", expectIDs: []string{"p-1"}},
		{name: "No match", search: "green", expectIDs: []string{}},
		{name: "Empty search matches everything", search: "", expectIDs: []string{"p-1", "p-2"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids, _ := queryIDs(t, s, Filter{Search: tc.search}, SortAsc, 0, 0)
			assert.Equal(t, tc.expectIDs, ids)
		})
	}
}

func TestFileStore_Query_Paging(t *testing.T) {
	// given: 25 records with ascending prices
	s := newTestFileStore(t)
	for i := 1; i <= 25; i++ {
		seed(t, s, testProduct(fmt.Sprintf("p-%02d", i), float64(i)))
	}

	// when / then
	page1, total := queryIDs(t, s, Filter{}, SortAsc, 0, 10)
	assert.Len(t, page1, 10)
	assert.Equal(t, int64(25), total)
	assert.Equal(t, "p-01", page1[0])

	page3, _ := queryIDs(t, s, Filter{}, SortAsc, 20, 10)
	assert.Len(t, page3, 5)
	assert.Equal(t, "p-25", page3[4])

	beyond, total := queryIDs(t, s, Filter{}, SortAsc, 30, 10)
	assert.Empty(t, beyond)
	assert.Equal(t, int64(25), total, "total ignores paging")

	unlimited, _ := queryIDs(t, s, Filter{}, SortAsc, 20, 0)
	assert.Len(t, unlimited, 5, "limit <= 0 returns everything from skip onward")
}

func TestFileStore_CorruptDocument(t *testing.T) {
	// given
	s := newTestFileStore(t)
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0o644))
	// when
	_, err := s.LoadAll(context.Background())
	// then
	assert.ErrorIs(t, err, cerrors.ErrStorageUnavailable)
}

func TestNewFileStore_UnwritableLocation(t *testing.T) {
	// given: parent directory does not exist
	path := filepath.Join(t.TempDir(), "missing", "products.json")
	// when
	_, err := NewFileStore(path)
	// then
	assert.ErrorIs(t, err, cerrors.ErrStorageUnavailable)
}

// Two concurrent updates on the same id must end with exactly one of
// the payloads persisted, and no concurrent reader may observe the id
// as absent in between.
func TestFileStore_ConcurrentReplaceAndRead(t *testing.T) {
	// given
	s := newTestFileStore(t)
	seed(t, s, testProduct("p-1", 10))

	const writers = 8
	const readsPerReader = 25
	errs := make(chan error, writers*2*readsPerReader)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := testProduct("p-1", float64(i))
			p.Name = fmt.Sprintf("writer-%d", i)
			if err := s.Replace(context.Background(), p); err != nil {
				errs <- err
			}
		}(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < readsPerReader; j++ {
				if _, err := s.FindByID(context.Background(), "p-1"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	// then
	for err := range errs {
		require.NoError(t, err)
	}
	all, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1, "no duplicate record for the id")
	assert.True(t, strings.HasPrefix(all[0].Name, "writer-"), "exactly one writer's payload survives")
}
