// Package rest provides HTTP handlers for the catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	cerrors "catalogsvc/internal/errors"
	"catalogsvc/internal/service"
	"catalogsvc/pkg/web"
)

type Handler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new catalog HTTP handler with the provided service.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/search", h.Search)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadyCheck)
}

// List answers the paginated listing with optional category,
// availability, sort and paging parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	params := service.ListParams{
		Category:     r.URL.Query().Get("category"),
		Availability: r.URL.Query().Get("availability"),
		Search:       r.URL.Query().Get("search"),
		Sort:         r.URL.Query().Get("sort"),
	}
	// A non-positive page is coerced to 1 downstream; a non-positive
	// limit is a caller error.
	page, ok := parseIntParam(w, r, mLogger, "page")
	if !ok {
		return
	}
	limit, ok := parseIntParam(w, r, mLogger, "limit")
	if !ok {
		return
	}
	if r.URL.Query().Get("limit") != "" && limit <= 0 {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid limit number: %d", limit))
		return
	}
	params.Page = page
	params.Limit = limit

	mLogger.DebugContext(r.Context(), "Received request to list products",
		"page", params.Page, "limit", params.Limit, "category", params.Category,
		"availability", params.Availability, "sort", params.Sort)

	listing, err := h.service.List(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to list products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, listing)
}

// Search returns all products whose description matches the q parameter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query := r.URL.Query().Get("q")

	mLogger.DebugContext(r.Context(), "Received request to search products", "q", query)
	found, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to search products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)

	var dto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to create product", "product", dto)
	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces the product under the given id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	var dto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadyCheck reports readiness by pinging the active storage backend.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if err := h.service.Ping(r.Context()); err != nil {
		mLogger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Storage is not reachable")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the request body into dst and validates it,
// answering field-level validation errors the way the caller can act on.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondServiceError maps the catalog error taxonomy onto HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, cerrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Product not found")
	case errors.Is(err, cerrors.ErrInvalidQuery), errors.Is(err, cerrors.ErrInvalidProduct):
		mLogger.WarnContext(r.Context(), "Invalid request", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	case errors.Is(err, cerrors.ErrStorageUnavailable):
		mLogger.ErrorContext(r.Context(), "Storage unavailable", "error", err)
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Storage is temporarily unavailable")
	default:
		mLogger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

// parseIntParam reads an optional integer query parameter. Absent means
// "use the default" and is returned as zero; a non-numeric value is a
// caller error.
func parseIntParam(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, key string) (int64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, true
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
