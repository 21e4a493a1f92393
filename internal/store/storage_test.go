package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// backends returns a fresh instance of every Storage implementation.
func backends(t *testing.T) map[string]Storage {
	t.Helper()
	dir := t.TempDir()
	fs, err := OpenFile(filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	sq, err := OpenSQLite(filepath.Join(dir, "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fs,
		"sqlite": sq,
	}
}

func TestStorageContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.GetItem(ctx, "dev.deviceType")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, s.SetItem(ctx, "dev.deviceType", "pulse"))
			require.NoError(t, s.SetItem(ctx, "dev.deviceType", "temp"))
			v, ok, err := s.GetItem(ctx, "dev.deviceType")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "temp", v)

			require.NoError(t, s.RemoveItem(ctx, "dev.deviceType"))
			require.NoError(t, s.RemoveItem(ctx, "dev.deviceType"))
			_, ok, err = s.GetItem(ctx, "dev.deviceType")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestMemoryKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.SetItem(ctx, "b.configuration", "10"))
	require.NoError(t, s.SetItem(ctx, "a.deviceType", "dc"))
	require.NoError(t, s.SetItem(ctx, "b.deviceType", "dc"))
	require.Equal(t, []string{"a.deviceType", "b.configuration", "b.deviceType"}, s.Keys(""))
	require.Equal(t, []string{"b.configuration", "b.deviceType"}, s.Keys("b."))
}

func TestFileStoragePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, "dev.configuration", "1000"))

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := reopened.GetItem(ctx, "dev.configuration")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1000", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := OpenFile(path)
	require.Error(t, err)
}

func TestSQLiteReopenKeepsSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, "dev.deviceType", "comfort"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, nil)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.schemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(1), v)
	got, ok, err := s.GetItem(ctx, "dev.deviceType")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "comfort", got)
}
