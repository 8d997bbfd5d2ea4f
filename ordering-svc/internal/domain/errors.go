package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")

	ErrOrderNotFound  = fmt.Errorf("order %w", ErrNotFound)
	ErrDishNotFound   = fmt.Errorf("dish %w", ErrNotFound)
	ErrChefNotFound   = fmt.Errorf("chef %w", ErrNotFound)
	ErrRatingNotFound = fmt.Errorf("rating %w", ErrNotFound)

	ErrOrderNotPending   = fmt.Errorf("only pending orders can be cancelled: %w", ErrConflict)
	ErrDuplicateOrder    = fmt.Errorf("order already exists: %w", ErrConflict)
	ErrDuplicateRating   = fmt.Errorf("order has already been rated: %w", ErrConflict)
	ErrDuplicateDish     = fmt.Errorf("dish id already taken: %w", ErrConflict)
	ErrStatusRaceLost    = fmt.Errorf("order status changed concurrently: %w", ErrConflict)
	ErrInvalidTransition = fmt.Errorf("invalid status transition: %w", ErrValidation)

	ErrNoFile          = fmt.Errorf("no file uploaded: %w", ErrValidation)
	ErrTooManyFiles    = fmt.Errorf("only one file may be uploaded: %w", ErrValidation)
	ErrFileTooLarge    = fmt.Errorf("file too large: %w", ErrValidation)
	ErrUnsupportedType = fmt.Errorf("unsupported file type: %w", ErrValidation)
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every failing field of one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil lets callers return a ValidationError only when something failed.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DishInUseError names the unfinished orders that still reference a dish.
type DishInUseError struct {
	DishID   int
	OrderIDs []string
}

func (e *DishInUseError) Error() string {
	return fmt.Sprintf("dish %d is referenced by unfinished orders: %s", e.DishID, strings.Join(e.OrderIDs, ", "))
}

func (e *DishInUseError) Unwrap() error {
	return ErrConflict
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *storageError) Unwrap() []error {
	return []error{ErrStorage, e.err}
}

// StorageError wraps an I/O failure so that callers can match ErrStorage
// while the cause stays available for logs.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storageError{op: op, err: err}
}
