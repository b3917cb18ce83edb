// Package postgres provides a PostgreSQL implementation of driven.WasteStore
// using the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

const schema = `
CREATE TABLE IF NOT EXISTS waste_items (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    category    TEXT NOT NULL CHECK (category IN ('Organik', 'Non-Organik', 'B3')),
    description TEXT NOT NULL DEFAULT ''
)`

const pingTimeout = 5 * time.Second

// Ensure Store implements the interface.
var _ driven.WasteStore = (*Store)(nil)

// Store is the PostgreSQL seed store.
type Store struct {
	db *sql.DB
}

// NewStore connects to dsn, checks the connection and creates the schema if absent.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: postgres DSN is empty", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreFromDB wraps an existing connection. The schema must already exist.
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM waste_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting waste items: %w", err)
	}
	return n, nil
}

// InsertMany inserts all items in a single transaction.
func (s *Store) InsertMany(ctx context.Context, items []domain.WasteItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO waste_items (name, category, description) VALUES ($1, $2, $3)`,
			item.Name, string(item.Category), item.Description)
		if err != nil {
			return fmt.Errorf("inserting %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns all rows ordered by id.
func (s *Store) List(ctx context.Context) ([]domain.WasteItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category, description FROM waste_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying waste items: %w", err)
	}
	defer rows.Close()

	var items []domain.WasteItem
	for rows.Next() {
		var item domain.WasteItem
		var category string
		if err := rows.Scan(&item.ID, &item.Name, &category, &item.Description); err != nil {
			return nil, fmt.Errorf("scanning waste item: %w", err)
		}
		item.Category = domain.Category(category)
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get returns one row by id.
func (s *Store) Get(ctx context.Context, id int64) (*domain.WasteItem, error) {
	var item domain.WasteItem
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, description FROM waste_items WHERE id = $1`, id).
		Scan(&item.ID, &item.Name, &category, &item.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting waste item %d: %w", id, err)
	}
	item.Category = domain.Category(category)
	return &item, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
