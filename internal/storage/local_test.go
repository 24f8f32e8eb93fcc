package storage

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files",
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return store
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()
	key := "sites/u1/abc.html"
	content := []byte("<!DOCTYPE html><html><body>hi</body></html>")

	require.NoError(t, store.Store(ctx, key, content, "text/html"))

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := store.Retrieve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	url, err := store.URL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/sites/u1/abc.html", url)

	require.NoError(t, store.Delete(ctx, key))

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageRetrieveMissing(t *testing.T) {
	store := newTestLocalStorage(t)

	_, err := store.Retrieve(context.Background(), "sites/u1/missing.html")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestLocalStorageDeleteIsIdempotent(t *testing.T) {
	store := newTestLocalStorage(t)
	assert.NoError(t, store.Delete(context.Background(), "never/stored.html"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "a/../../b"} {
		err := store.Store(ctx, key, []byte("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestLocalStorageOverwrite(t *testing.T) {
	store := newTestLocalStorage(t)
	ctx := context.Background()
	key := "sites/u1/abc.html"

	require.NoError(t, store.Store(ctx, key, []byte("v1"), "text/html"))
	require.NoError(t, store.Store(ctx, key, []byte("v2"), "text/html"))

	data, err := store.Retrieve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}
