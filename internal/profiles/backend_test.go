package profiles

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, backend Backend) {
	t.Helper()
	ctx := context.Background()

	data, err := backend.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, backend.Set(ctx, StorageKey, []byte(`[1]`)))
	require.NoError(t, backend.Set(ctx, StorageKey, []byte(`[1,2]`)))

	data, err = backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), data)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	value := []byte("abc")
	require.NoError(t, backend.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "brandvoice")
	backend := NewFileBackend(dir)
	exerciseBackend(t, backend)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, StorageKey+".json", entries[0].Name())
}

func TestFileBackend_InvalidKey(t *testing.T) {
	backend := NewFileBackend(t.TempDir())
	for _, key := range []string{"", "../escape", "a/b", `a\b`} {
		_, err := backend.Get(context.Background(), key)
		assert.Error(t, err, "key %q", key)
		assert.Error(t, backend.Set(context.Background(), key, []byte("x")), "key %q", key)
	}
}

func TestFileBackend_WithStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := NewStore(NewFileBackend(dir)).Save(ctx, "Acme", testProfile("bold"))
	require.NoError(t, err)

	saved, err := NewStore(NewFileBackend(dir)).List(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "bold", saved[0].Profile.Tone)
}

func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.db")

	backend, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseBackend(t, backend)
	require.NoError(t, backend.Close())

	// Reopening reruns migrations as a no-op and keeps data
	backend, err = OpenSQLite(path)
	require.NoError(t, err)
	defer backend.Close()

	data, err := backend.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), data)
}

func TestSQLiteBackend_WithStore(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	defer backend.Close()

	store := NewStore(backend)
	_, err = store.Save(ctx, "Acme", testProfile("bold"))
	require.NoError(t, err)
	_, err = store.Save(ctx, "Beta", testProfile("soft"))
	require.NoError(t, err)

	_, err = store.Delete(ctx, 0)
	require.NoError(t, err)

	saved, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Beta", saved[0].Name)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}
