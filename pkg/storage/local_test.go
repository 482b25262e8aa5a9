package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageReadWriteDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Read(ctx, "a/b.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Write(ctx, "a/b.yaml", []byte("x: 1")))
	data, err := s.Read(ctx, "a/b.yaml")
	require.NoError(t, err)
	assert.Equal(t, "x: 1", string(data))

	exists, err := s.Exists(ctx, "a/b.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	// Overwrite replaces content atomically.
	require.NoError(t, s.Write(ctx, "a/b.yaml", []byte("x: 2")))
	data, err = s.Read(ctx, "a/b.yaml")
	require.NoError(t, err)
	assert.Equal(t, "x: 2", string(data))

	require.NoError(t, s.Delete(ctx, "a/b.yaml"))
	err = s.Delete(ctx, "a/b.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStorageList(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Listing a prefix that was never written is empty, not an error.
	paths, err := s.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, paths)

	require.NoError(t, s.Write(ctx, "a/one.yaml", nil))
	require.NoError(t, s.Write(ctx, "a/two.yaml", nil))
	require.NoError(t, s.Write(ctx, "b/three.yaml", nil))

	paths, err = s.List(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/one.yaml", "a/two.yaml"}, paths)
}
