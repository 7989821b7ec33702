package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestPutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	type payload struct {
		Token string   `json:"token"`
		IDs   []string `json:"ids"`
	}
	in := payload{Token: "abc", IDs: []string{"a", "b"}}
	require.NoError(t, store.Put("session", in))

	var out payload
	ok, err := store.Get("session", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)
}

func TestGetMissingKeyIsNotError(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	var out string
	ok, err := store.Get("missing", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetCorruptFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o600))

	var out map[string]string
	_, err = store.Get("bad", &out)
	assert.Error(t, err)
}

func TestPutOverwrites(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("k", []string{"a"}))
	require.NoError(t, store.Put("k", []string{"b", "c"}))

	var out []string
	ok, err := store.Get("k", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, out)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("k", "v"))
	require.NoError(t, store.Delete("k"))
	require.NoError(t, store.Delete("k"))

	var out string
	ok, err := store.Get("k", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}
