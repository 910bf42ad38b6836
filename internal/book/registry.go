package book

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the single writer for the book collection.
//
// Mutations hold the write lock for the whole read-modify-write, so two
// concurrent creates can never observe the same next id and an update can
// never land on a book that a concurrent delete just removed.
//
// All public methods are thread-safe.
type Registry struct {
	repo   Repository
	mu     sync.RWMutex // serialises writers, shares readers
	lastID int          // highest id handed out; guarded by mu
	logger Logger

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewRegistry creates a registry over repo. Call Load before serving requests.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Subscribe registers a listener for committed changes.
func (r *Registry) Subscribe(l Listener) {
	r.listenersMu.Lock()
	r.listeners = append(r.listeners, l)
	r.listenersMu.Unlock()
}

// Load initialises the id counter from the repository and, when seed is true
// and the collection is empty, inserts the starter books.
func (r *Registry) Load(ctx context.Context, seed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	books, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing books: %w", err)
	}

	if seed && len(books) == 0 {
		for _, b := range Seed() {
			if err := r.repo.Insert(ctx, b); err != nil {
				return fmt.Errorf("seeding book %d: %w", b.ID, err)
			}
		}
		r.logger.Info("book collection seeded", "count", len(Seed()))
	}

	hw, err := r.repo.HighWaterMark(ctx)
	if err != nil {
		return fmt.Errorf("loading id sequence: %w", err)
	}
	r.lastID = hw

	return nil
}

// List returns the whole collection in order.
func (r *Registry) List(ctx context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.repo.List(ctx)
}

// Count returns the number of books.
func (r *Registry) Count(ctx context.Context) (int, error) {
	books, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(books), nil
}

// Get returns the book with id.
// Returns ErrBookNotFound if no book has that id.
func (r *Registry) Get(ctx context.Context, id int) (Book, error) {
	books, err := r.List(ctx)
	if err != nil {
		return Book{}, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("%w: id %d", ErrBookNotFound, id)
}

// FindByName returns the first book, in collection order, whose name equals
// name exactly.
func (r *Registry) FindByName(ctx context.Context, name string) (Book, error) {
	books, err := r.List(ctx)
	if err != nil {
		return Book{}, err
	}
	for _, b := range books {
		if b.Name == name {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("%w: name %q", ErrBookNotFound, name)
}

// Create validates in and appends a new book with the next id.
func (r *Registry) Create(ctx context.Context, in Input) (Book, error) {
	if err := ValidateInput(in); err != nil {
		return Book{}, err
	}

	r.mu.Lock()
	b := Book{ID: r.lastID + 1, Name: *in.Name, Year: int(*in.Year)}
	if err := r.repo.Insert(ctx, b); err != nil {
		r.mu.Unlock()
		return Book{}, fmt.Errorf("inserting book: %w", err)
	}
	r.lastID = b.ID
	r.mu.Unlock()

	r.logger.Info("book created", "id", b.ID, "name", b.Name)
	r.notify(Event{Type: EventCreated, Book: b})
	return b, nil
}

// Update validates in and replaces the book with id in place.
// Returns ErrBookNotFound, leaving the collection untouched, if id is unknown.
func (r *Registry) Update(ctx context.Context, id int, in Input) (Book, error) {
	if err := ValidateInput(in); err != nil {
		return Book{}, err
	}

	b := Book{ID: id, Name: *in.Name, Year: int(*in.Year)}

	r.mu.Lock()
	err := r.repo.Replace(ctx, b)
	r.mu.Unlock()
	if err != nil {
		return Book{}, fmt.Errorf("updating book %d: %w", id, err)
	}

	r.logger.Info("book updated", "id", b.ID, "name", b.Name)
	r.notify(Event{Type: EventUpdated, Book: b})
	return b, nil
}

// Delete removes the book with id and returns the remaining collection.
// Returns ErrBookNotFound, leaving the collection untouched, if id is unknown.
func (r *Registry) Delete(ctx context.Context, id int) ([]Book, error) {
	r.mu.Lock()
	removed, err := r.repo.Remove(ctx, id)
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("deleting book %d: %w", id, err)
	}
	remaining, err := r.repo.List(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	r.logger.Info("book deleted", "id", removed.ID, "remaining", len(remaining))
	r.notify(Event{Type: EventDeleted, Book: removed})
	return remaining, nil
}

// notify delivers ev to every listener. Called without r.mu held.
func (r *Registry) notify(ev Event) {
	r.listenersMu.RLock()
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.listenersMu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}
