package book

import (
	"context"
)

// Repository defines the storage operations the Registry builds on.
// Implementations keep books in insertion order.
type Repository interface {
	// List returns every book in insertion order.
	List(ctx context.Context) ([]Book, error)

	// Insert appends a book.
	// Returns ErrBookExists if the id is already stored.
	Insert(ctx context.Context, b Book) error

	// Replace overwrites the book with the same id, keeping its position.
	// Returns ErrBookNotFound if the id is not stored.
	Replace(ctx context.Context, b Book) error

	// Remove deletes the book with the given id and returns it.
	// Returns ErrBookNotFound if the id is not stored.
	Remove(ctx context.Context, id int) (Book, error)

	// HighWaterMark returns the largest id ever inserted, including deleted ones.
	HighWaterMark(ctx context.Context) (int, error)
}

// MemoryRepository keeps books in an ordered slice.
//
// It is not safe for concurrent mutation on its own; the Registry
// serialises writers.
type MemoryRepository struct {
	books   []Book
	highest int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// List returns a copy of the stored books.
func (m *MemoryRepository) List(_ context.Context) ([]Book, error) {
	out := make([]Book, len(m.books))
	copy(out, m.books)
	return out, nil
}

// Insert appends b.
func (m *MemoryRepository) Insert(_ context.Context, b Book) error {
	if m.indexOf(b.ID) >= 0 {
		return ErrBookExists
	}
	m.books = append(m.books, b)
	if b.ID > m.highest {
		m.highest = b.ID
	}
	return nil
}

// Replace overwrites the stored book with b.ID in place.
func (m *MemoryRepository) Replace(_ context.Context, b Book) error {
	idx := m.indexOf(b.ID)
	if idx < 0 {
		return ErrBookNotFound
	}
	m.books[idx] = b
	return nil
}

// Remove deletes the book with id, preserving the order of the rest.
func (m *MemoryRepository) Remove(_ context.Context, id int) (Book, error) {
	idx := m.indexOf(id)
	if idx < 0 {
		return Book{}, ErrBookNotFound
	}
	removed := m.books[idx]
	m.books = append(m.books[:idx], m.books[idx+1:]...)
	return removed, nil
}

// HighWaterMark returns the largest id inserted so far.
func (m *MemoryRepository) HighWaterMark(_ context.Context) (int, error) {
	return m.highest, nil
}

// indexOf returns the slice position of id, or -1.
func (m *MemoryRepository) indexOf(id int) int {
	for i := range m.books {
		if m.books[i].ID == id {
			return i
		}
	}
	return -1
}
