package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pilah-labs/pilah/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
)

// DatabaseFile is the seed database name inside the data directory.
const DatabaseFile = "pilah.db"

// Ensure Store implements the interface.
var _ driven.WasteStore = (*Store)(nil)

// Store is the SQLite seed store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the seed database in dataDir and applies pending migrations.
// If dataDir is empty, defaults to ~/.pilah/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pilah", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// openDB opens a SQLite file in WAL mode.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
// Each migration runs in its own transaction together with its version row.
func migrate(db *sql.DB, fsys fs.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Waste Store ====================

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM waste_items").Scan(&n); err != nil {
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

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO waste_items (name, category, description) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, item.Name, string(item.Category), item.Description); err != nil {
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
		"SELECT id, name, category, description FROM waste_items ORDER BY id")
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
		"SELECT id, name, category, description FROM waste_items WHERE id = ?", id).
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
