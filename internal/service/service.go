// Package service provides the implementation of catalog business logic:
// CRUD with repository-assigned ids and the listing query engine.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	cerrors "catalogsvc/internal/errors"
	"catalogsvc/internal/store"
)

// defaultPageSize is applied when a listing request carries no limit.
const defaultPageSize = 10

// CatalogService defines the methods for managing the product catalog.
type CatalogService interface {
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Exists returns the product and true when the id is persisted, and
	// (nil, false) when it is absent. Absence is a normal outcome, not
	// an error.
	Exists(ctx context.Context, id string) (*ProductDto, bool, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// Create assigns a fresh unique id, persists the record and returns
	// it. Returns ErrInvalidProduct if the record violates the field
	// invariants.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update replaces the record under the given id wholesale, keeping
	// the id. Returns ErrProductNotFound if the id is absent and
	// ErrInvalidProduct if the new record violates the field invariants.
	Update(ctx context.Context, id string, product ProductCreateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID. The id is retired and
	// never reused. Returns ErrProductNotFound if the id is absent.
	DeleteByID(ctx context.Context, id string) error

	// List answers a paginated, filtered, price-sorted listing.
	// Returns ErrInvalidQuery on a malformed limit or sort order.
	List(ctx context.Context, params ListParams) (*Listing, error)

	// Search returns all products whose description contains the query
	// text, case-insensitively, without paging.
	Search(ctx context.Context, query string) ([]ProductDto, error)
}

// Service implements CatalogService on top of a ProductStore.
// It holds no product cache: the backing store is the sole source of
// truth shared by all concurrent requests.
type Service struct {
	repository store.ProductStore
	validate   *validator.Validate
}

// NewService creates a new CatalogService with the provided store.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
		validate:   validator.New(),
	}
}

// ProductCreateDto carries the caller-supplied fields of a product for
// both create and update: an update is a full replace, never a partial
// merge. The id is never accepted from the caller.
type ProductCreateDto struct {
	Name         string  `json:"name"         validate:"required"`
	Description  string  `json:"description"  validate:"required"`
	Code         string  `json:"code"         validate:"required"`
	Category     string  `json:"category"     validate:"required"`
	Price        float64 `json:"price"        validate:"gte=0"`
	Stock        int     `json:"stock"        validate:"gte=0"`
	Availability string  `json:"availability"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
}

// ProductDto represents a persisted product returned to callers.
type ProductDto struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Code         string  `json:"code"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stock"`
	Availability string  `json:"availability"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
}

// ListParams are the listing query parameters. Zero values select the
// documented defaults: page 1, limit 10, no filters, ascending sort.
type ListParams struct {
	Page         int64
	Limit        int64
	Category     string
	Availability string
	Search       string
	Sort         string
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}

// Exists looks the id up and reports absence as (nil, false, nil).
func (s *Service) Exists(ctx context.Context, id string) (*ProductDto, bool, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, cerrors.ErrProductNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up product %s: %w", id, err)
	}
	return toDto(product), true, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// Create validates the record, assigns a fresh random id and persists it.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := s.validate.Struct(product); err != nil {
		return nil, fmt.Errorf("%w: %w", cerrors.ErrInvalidProduct, err)
	}

	record := toRecord(uuid.NewString(), product)
	if err := s.repository.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(&record), nil
}

// Update validates the record and replaces the stored one under the same
// id in a single store operation, so no concurrent reader observes the
// id as absent in between.
func (s *Service) Update(ctx context.Context, id string, product ProductCreateDto) (*ProductDto, error) {
	if err := s.validate.Struct(product); err != nil {
		return nil, fmt.Errorf("%w: %w", cerrors.ErrInvalidProduct, err)
	}

	record := toRecord(id, product)
	if err := s.repository.Replace(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return toDto(&record), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	if err := s.repository.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	return nil
}

// List normalizes the listing parameters, fetches the matching page and
// total count in one store query, and assembles the paginated envelope.
func (s *Service) List(ctx context.Context, params ListParams) (*Listing, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	limit := params.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", cerrors.ErrInvalidQuery, limit)
	}
	order, err := parseSortOrder(params.Sort)
	if err != nil {
		return nil, err
	}

	filter := store.Filter{
		Category:     params.Category,
		Availability: params.Availability,
		Search:       params.Search,
	}
	skip := (page - 1) * limit

	products, total, err := s.repository.Query(ctx, filter, order, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return NewListing(toDtos(products), page, limit, total), nil
}

// Search returns every product whose description contains the query
// text. An empty query matches everything.
func (s *Service) Search(ctx context.Context, query string) ([]ProductDto, error) {
	products, _, err := s.repository.Query(ctx, store.Filter{Search: query}, store.SortAsc, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return toDtos(products), nil
}

// parseSortOrder maps the sort parameter onto a store.SortOrder. The
// empty string defaults to ascending; anything else than asc/desc is a
// caller error, never a silent default.
func parseSortOrder(sort string) (store.SortOrder, error) {
	switch sort {
	case "", "asc":
		return store.SortAsc, nil
	case "desc":
		return store.SortDesc, nil
	default:
		return 0, fmt.Errorf("%w: sort order must be \"asc\" or \"desc\", got %q", cerrors.ErrInvalidQuery, sort)
	}
}

func toRecord(id string, dto ProductCreateDto) store.Product {
	return store.Product{
		ID:           id,
		Name:         dto.Name,
		Description:  dto.Description,
		Code:         dto.Code,
		Category:     dto.Category,
		Price:        dto.Price,
		Stock:        dto.Stock,
		Availability: dto.Availability,
		Thumbnail:    dto.Thumbnail,
	}
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		Code:         product.Code,
		Category:     product.Category,
		Price:        product.Price,
		Stock:        product.Stock,
		Availability: product.Availability,
		Thumbnail:    product.Thumbnail,
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}
