package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	files, err := CreateMigration(dir, "Add Shipments Table")
	require.NoError(t, err)

	assert.Contains(t, files.UpPath, "add_shipments_table.up.sql")
	assert.Contains(t, files.DownPath, "add_shipments_table.down.sql")

	for _, path := range []string{files.UpPath, files.DownPath} {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, os.WriteFile(dir+"/000001_init.up.sql", []byte("--"), 0o644))
	require.NoError(t, os.WriteFile(dir+"/000001_init.down.sql", []byte("--"), 0o644))

	names, err = ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init"}, names)
}

func TestListMigrationsMissingDir(t *testing.T) {
	names, err := ListMigrations("/nonexistent/migrations")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_shipments_table", sanitizeName("Add Shipments  Table"))
	assert.Equal(t, "fix_index", sanitizeName("fix-index-"))
	assert.Equal(t, "v2_charges", sanitizeName("V2 charges"))
}
