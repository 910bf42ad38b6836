// Package book owns the book collection.
//
// A Registry is the single writer for the collection: every create, update
// and delete runs under one lock, so the HTTP layer never touches shared
// state directly. Storage sits behind the Repository interface with an
// in-memory implementation (the default) and a SQLite one.
//
// Ids come from a monotonic counter seeded from the repository's high-water
// mark, so an id is never handed out twice, even after deletes.
package book
