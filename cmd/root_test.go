package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no tabula env set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"TABULA_DB", "TABULA_TABLE", "TABULA_QUERY", "TABULA_PAGE_LENGTH", "TABULA_LOG"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestParseFlagsDefaults(t *testing.T) {
	isolate(t)

	config, err := ParseFlags([]string{"-demo"})
	require.NoError(t, err)
	assert.True(t, config.Demo)
	assert.Equal(t, 10, config.PageLength)
	assert.Equal(t, []int{10, 25, 50, 100, -1}, config.Lengths)
	assert.False(t, config.NoSort)
	assert.Empty(t, config.Source())
}

func TestParseFlagsSources(t *testing.T) {
	dir := isolate(t)
	dbPath := touch(t, filepath.Join(dir, "data.db"))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no source", args: nil, wantErr: "no data source"},
		{name: "db", args: []string{"-db", dbPath}},
		{name: "positional db", args: []string{dbPath}},
		{name: "db and demo", args: []string{"-db", dbPath, "-demo"}, wantErr: "cannot be combined"},
		{name: "missing db", args: []string{"-db", filepath.Join(dir, "nope.db")}, wantErr: "failed to open database"},
		{name: "table and query", args: []string{"-demo", "-table", "t", "-query", "SELECT 1"}, wantErr: "cannot be combined"},
		{name: "bad length", args: []string{"-demo", "-length", "0"}, wantErr: "invalid page length"},
		{name: "bad menu", args: []string{"-demo", "-lengths", "10,abc"}, wantErr: "-lengths"},
		{name: "empty menu", args: []string{"-demo", "-lengths", " , "}, wantErr: "empty length menu"},
		{name: "unknown flag", args: []string{"-demo", "-colour"}, wantErr: "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseFlags(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, dbPath, config.DBPath)
		})
	}
}

func TestParseFlagsLengthMenu(t *testing.T) {
	isolate(t)

	config, err := ParseFlags([]string{"-demo", "-length", "15", "-lengths", "-1, 50,10,10"})
	require.NoError(t, err)
	assert.Equal(t, 15, config.PageLength)
	assert.Equal(t, []int{10, 15, 50, -1}, config.Lengths)

	config, err = ParseFlags([]string{"-demo", "-length", "-1", "-no-paging"})
	require.NoError(t, err)
	assert.Equal(t, -1, config.PageLength)
	assert.True(t, config.NoPaging)
}

func TestParseFlagsEnv(t *testing.T) {
	dir := isolate(t)
	dbPath := touch(t, filepath.Join(dir, "env.db"))
	t.Setenv("TABULA_DB", dbPath)
	t.Setenv("TABULA_PAGE_LENGTH", "25")
	t.Setenv("TABULA_QUERY", "SELECT 1")

	config, err := ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, dbPath, config.DBPath)
	assert.Equal(t, 25, config.PageLength)
	assert.Equal(t, "SELECT 1", config.Source().Query)

	config, err = ParseFlags([]string{"-length", "50"})
	require.NoError(t, err)
	assert.Equal(t, 50, config.PageLength, "flags win over env")

	t.Setenv("TABULA_PAGE_LENGTH", "many")
	_, err = ParseFlags(nil)
	assert.ErrorContains(t, err, "TABULA_PAGE_LENGTH")
}

func TestParseFlagsDotEnv(t *testing.T) {
	dir := isolate(t)
	touch(t, filepath.Join(dir, "local.db"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(`
# data source
TABULA_DB=local.db
export TABULA_TABLE="visits"
not a pair
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("TABULA_TABLE=restaurants\nTABULA_PAGE_LENGTH='5'\n"), 0o600))

	config, err := ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "local.db", config.DBPath)
	assert.Equal(t, "visits", config.Table, ".env is read first and existing values win")
	assert.Equal(t, 5, config.PageLength)
}

func TestParseFlagsVersion(t *testing.T) {
	isolate(t)

	config, err := ParseFlags([]string{"-version"})
	require.NoError(t, err)
	assert.True(t, config.ShowVersion)
}
