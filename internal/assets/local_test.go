package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "customers/a-photo.png", []byte("png"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "customers", "a-photo.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	objects, err := store.List(ctx, CustomerPrefix)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "customers/a-photo.png", objects[0].Key)
	assert.EqualValues(t, 3, objects[0].Size)

	require.NoError(t, store.Delete(ctx, "customers/a-photo.png"))
	require.NoError(t, store.Delete(ctx, "customers/a-photo.png"))

	objects, err = store.List(ctx, CustomerPrefix)
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocalStoreRejectsBadInput(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, store.Put(ctx, "../escape.png", []byte("x"), ""), ErrInvalidKey)
	assert.ErrorIs(t, store.Put(ctx, "customers/empty.png", nil, ""), ErrEmptyPayload)
}

func TestLocalStoreListMissingPrefix(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)

	objects, err := store.List(context.Background(), CustomerPrefix)
	require.NoError(t, err)
	assert.Empty(t, objects)
}
