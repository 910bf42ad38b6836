package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteRepository implements Repository using SQLite.
// The books table is created by the embedded migrations.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// List returns every book ordered by id. Ids are monotonic, so id order is
// insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, year FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	books := make([]Book, 0)
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Name, &b.Year); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// Insert stores b with its explicit id.
func (r *SQLiteRepository) Insert(ctx context.Context, b Book) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO books (id, name, year, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Year, now, now,
	)
	if err != nil {
		if isConstraintError(err) {
			return ErrBookExists
		}
		return fmt.Errorf("inserting book: %w", err)
	}
	return nil
}

// Replace updates the name and year of b.ID.
func (r *SQLiteRepository) Replace(ctx context.Context, b Book) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books SET name = ?, year = ?, updated_at = ? WHERE id = ?`,
		b.Name, b.Year, time.Now().UTC().Format(time.RFC3339), b.ID,
	)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	return requireOneRow(result)
}

// Remove deletes the book with id and returns what was stored.
func (r *SQLiteRepository) Remove(ctx context.Context, id int) (Book, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Book{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	var b Book
	err = tx.QueryRowContext(ctx, `SELECT id, name, year FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrBookNotFound
	}
	if err != nil {
		return Book{}, fmt.Errorf("loading book: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return Book{}, fmt.Errorf("deleting book: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Book{}, fmt.Errorf("committing delete: %w", err)
	}
	return b, nil
}

// HighWaterMark reads the AUTOINCREMENT sequence, which survives deletes.
func (r *SQLiteRepository) HighWaterMark(ctx context.Context) (int, error) {
	var hw int
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT seq FROM sqlite_sequence WHERE name = 'books'), 0),
			COALESCE((SELECT MAX(id) FROM books), 0)
		)`).Scan(&hw)
	if err != nil {
		return 0, fmt.Errorf("reading id sequence: %w", err)
	}
	return hw, nil
}

// requireOneRow maps a zero-row update to ErrBookNotFound.
func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// isConstraintError reports a primary key or unique violation.
func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
