package sqlite

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilah-labs/pilah/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestNewStore_RecordsMigrationVersion(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.InsertMany(ctx, []domain.WasteItem{
		{Name: "Kardus", Category: domain.CategoryNonOrganic, Description: "Karton kering"},
	}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	n, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_InsertListGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	items := []domain.WasteItem{
		{Name: "Kulit pisang", Category: domain.CategoryOrganic, Description: "Mudah terurai"},
		{Name: "Botol plastik", Category: domain.CategoryNonOrganic, Description: "PET"},
		{Name: "Baterai bekas", Category: domain.CategoryB3, Description: "Logam berat"},
	}
	require.NoError(t, store.InsertMany(ctx, items))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, item := range items {
		assert.Equal(t, int64(i+1), got[i].ID)
		assert.Equal(t, item.Name, got[i].Name)
		assert.Equal(t, item.Category, got[i].Category)
		assert.Equal(t, item.Description, got[i].Description)
	}

	one, err := store.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Baterai bekas", one.Name)

	_, err = store.Get(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_InsertMany_IsAtomic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.InsertMany(ctx, []domain.WasteItem{
		{Name: "Kardus", Category: domain.CategoryNonOrganic},
		{Name: "", Category: domain.CategoryB3},
	})
	require.Error(t, err)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_CategoryConstraint(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.db.Exec("INSERT INTO waste_items (name, category) VALUES ('x', 'Kaca')")
	assert.Error(t, err)
}

func TestMigrate_AppliesOnlyNewer(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"001_waste_items.up.sql": {Data: []byte("SELECT 1")},
		"002_extra.up.sql":       {Data: []byte("CREATE TABLE extra (id INTEGER)")},
		"002_extra.down.sql":     {Data: []byte("DROP TABLE extra")},
		"README.md":              {Data: []byte("ignored")},
	}
	require.NoError(t, migrate(store.db, fsys))
	require.NoError(t, migrate(store.db, fsys))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	_, err := store.db.Exec("INSERT INTO extra (id) VALUES (1)")
	assert.NoError(t, err)
}
