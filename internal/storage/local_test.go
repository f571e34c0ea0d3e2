package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, "/media/")
	require.NoError(t, err)

	ctx := context.Background()
	key := "uploads/recipe/abc.png"

	require.NoError(t, store.Save(ctx, key, []byte("png-bytes"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "uploads", "recipe", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.NoFileExists(t, filepath.Join(root, "uploads", "recipe", "abc.png.tmp"))

	assert.Equal(t, "/media/uploads/recipe/abc.png", store.URL(key))

	require.NoError(t, store.Delete(ctx, key))
	assert.NoFileExists(t, filepath.Join(root, "uploads", "recipe", "abc.png"))

	// Deleting twice is fine.
	require.NoError(t, store.Delete(ctx, key))
}

func TestLocal_RejectsBadInput(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media")
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../escape.png", "a//b.png", "a/./b.png", `a\b.png`} {
		assert.ErrorIs(t, store.Save(ctx, key, []byte("x"), "image/png"), ErrInvalidKey, key)
		assert.ErrorIs(t, store.Delete(ctx, key), ErrInvalidKey, key)
	}

	assert.Error(t, store.Save(ctx, "ok.png", nil, "image/png"))

	_, err = NewLocal("", "/media")
	assert.Error(t, err)
}
