package book

import "strings"

// Book is a single record in the collection.
type Book struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

// Input carries the client-supplied fields of a create or update.
// Nil pointers mean the field was absent from the request.
type Input struct {
	Name *string
	Year *float64
}

// NewInput builds an Input with both fields present.
func NewInput(name string, year int) Input {
	y := float64(year)
	return Input{Name: &name, Year: &y}
}

// EventType names a change to the collection.
type EventType string

// Event types published after successful mutations.
const (
	EventCreated EventType = "book.created"
	EventUpdated EventType = "book.updated"
	EventDeleted EventType = "book.deleted"
)

// Action returns the verb of the event type, e.g. "created".
func (t EventType) Action() string {
	return strings.TrimPrefix(string(t), "book.")
}

// AllEventTypes returns every event type in publication order.
func AllEventTypes() []EventType {
	return []EventType{EventCreated, EventUpdated, EventDeleted}
}

// Event describes one committed change.
type Event struct {
	Type EventType `json:"type"`
	Book Book      `json:"book"`
}

// Listener receives events after the registry lock is released.
// Listeners must not block; slow consumers should hand off to a goroutine.
type Listener func(Event)

// Seed returns the starter collection.
func Seed() []Book {
	return []Book{
		{ID: 1, Name: "Atomic habits", Year: 2000},
		{ID: 2, Name: "Harry potter", Year: 2008},
		{ID: 3, Name: "Rich dad and poor dad", Year: 2010},
	}
}
