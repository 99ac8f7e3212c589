// Package errors provides custom error types for catalog operations.
package errors

import "errors"

// ErrProductNotFound signals that the requested id is absent. This is a
// normal, recoverable outcome, not a fault.
var ErrProductNotFound = errors.New("product not found")

// ErrInvalidProduct signals a record that violates the field invariants
// (missing required text fields, negative price or stock).
var ErrInvalidProduct = errors.New("invalid product")

// ErrInvalidQuery signals malformed pagination or sort parameters.
var ErrInvalidQuery = errors.New("invalid query parameters")

// ErrDuplicateID signals an insert whose id is already persisted.
var ErrDuplicateID = errors.New("duplicate product id")

// ErrStorageUnavailable signals that the storage medium could not be
// read or written. The failed operation has made no partial change.
var ErrStorageUnavailable = errors.New("storage unavailable")
