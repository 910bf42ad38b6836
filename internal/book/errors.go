package book

import "errors"

// Domain errors for the book package.
//
//	if errors.Is(err, book.ErrBookNotFound) {
//	    // 404
//	}
var (
	// ErrBookNotFound is returned when no book matches an id or name.
	ErrBookNotFound = errors.New("book: not found")

	// ErrBookExists is returned when inserting an id that is already stored.
	ErrBookExists = errors.New("book: already exists")

	// ErrInvalidBook is returned when input fails validation.
	ErrInvalidBook = errors.New("book: invalid")

	// ErrInvalidName is returned when the name is missing or out of range.
	ErrInvalidName = errors.New("book: invalid name")

	// ErrInvalidYear is returned when the year is missing, fractional or out of range.
	ErrInvalidYear = errors.New("book: invalid year")
)

// ValidationError carries a client-facing message alongside the sentinel it wraps.
type ValidationError struct {
	Field   string
	Message string
	err     error
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap exposes the field sentinel and ErrInvalidBook to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return []error{e.err, ErrInvalidBook}
}

// IsValidationError reports whether err came from input validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBook)
}
