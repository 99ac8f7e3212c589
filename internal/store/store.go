// Package store provides an interface for product storage operations
// and its two implementations: a flat JSON file document and a mongo
// collection. Both variants must answer Query with identical ordering
// and identical page contents for identical inputs and data.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	cerrors "catalogsvc/internal/errors"
)

// SortOrder is the direction of the price sort. The numeric values
// match the mongo sort specification (1 ascending, -1 descending).
type SortOrder int

const (
	SortAsc  SortOrder = 1
	SortDesc SortOrder = -1
)

// Filter selects products for listing queries. Empty fields apply no
// constraint; all provided constraints are ANDed together.
type Filter struct {
	// Category and Availability are exact-match filters.
	Category     string
	Availability string
	// Search is a case-insensitive substring match against Description.
	Search string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing the file-backed and
// mongo-backed implementations to be swapped per deployment.
//
// Point operations (FindByID, Insert, Replace, DeleteByID) are atomic
// with respect to concurrent readers: no caller may observe a product
// as absent while a Replace for its id is in flight.
type ProductStore interface {
	// Ping reports whether the storage medium is reachable.
	Ping(ctx context.Context) error

	// LoadAll returns every persisted product.
	// Returns ErrStorageUnavailable if the medium cannot be read.
	LoadAll(ctx context.Context) ([]Product, error)

	// ReplaceAll overwrites the entire record set. Implementations must
	// never expose an empty or half-written catalog to concurrent readers.
	ReplaceAll(ctx context.Context, products []Product) error

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*Product, error)

	// Insert adds a new product. Returns ErrDuplicateID if a product
	// with the same ID is already persisted.
	Insert(ctx context.Context, p Product) error

	// Replace swaps the stored product with the same ID for p, leaving
	// the total record count unchanged.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Replace(ctx context.Context, p Product) error

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error

	// Query returns one page of products matching the filter, sorted by
	// price in the given order, plus the total count of matching records
	// ignoring paging. A limit <= 0 returns all matches from skip onward.
	Query(ctx context.Context, f Filter, sort SortOrder, skip, limit int64) ([]Product, int64, error)
}

// Matches reports whether p satisfies every constraint of the filter.
// This predicate is the reference semantics for both variants: the file
// store applies it in memory and the mongo store compiles the same
// constraints into its native query.
func (f Filter) Matches(p *Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Availability != "" && p.Availability != f.Availability {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// sortByPrice orders products by price in the given direction, with the
// immutable id as tie-break so pagination is deterministic and both
// store variants produce the same order.
func sortByPrice(products []Product, order SortOrder) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Price != products[j].Price {
			if order == SortDesc {
				return products[i].Price > products[j].Price
			}
			return products[i].Price < products[j].Price
		}
		return products[i].ID < products[j].ID
	})
}

// pageOf slices [skip, skip+limit) out of products. A limit <= 0 means
// no limit. Out-of-range pages yield an empty, non-nil slice.
func pageOf(products []Product, skip, limit int64) []Product {
	total := int64(len(products))
	if skip < 0 {
		skip = 0
	}
	if skip >= total {
		return []Product{}
	}
	end := total
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return products[skip:end]
}

// unavailable wraps a medium I/O failure into the storage error taxonomy.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, cerrors.ErrStorageUnavailable, err)
}
