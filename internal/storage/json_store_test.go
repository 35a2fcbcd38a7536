package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestJSONStore_SeedsEmptyCollection(t *testing.T) {
	dir := t.TempDir()

	store, err := NewJSONStore(dir, "things")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "things.json"), store.Path())
	assert.True(t, store.Exists())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), "things")
	require.NoError(t, err)

	in := []record{{ID: "1", Name: "first"}, {ID: "2", Name: "second"}}
	require.NoError(t, store.Save(in))

	out := []record{}
	require.NoError(t, store.Load(&out))
	assert.Equal(t, in, out)
}

func TestJSONStore_LoadMissingFileIsEmpty(t *testing.T) {
	store, err := NewJSONStore(t.TempDir(), "things")
	require.NoError(t, err)
	require.NoError(t, os.Remove(store.Path()))

	out := []record{}
	require.NoError(t, store.Load(&out))
	assert.Empty(t, out)
}

func TestJSONStore_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir, "things")
	require.NoError(t, err)

	require.NoError(t, store.Save([]record{{ID: "1"}}))

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
