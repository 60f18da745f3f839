package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreUpload(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	res, err := store.Upload(context.Background(), []byte("hello"), "cover.png", "image/png")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ContentID)
	assert.True(t, strings.HasPrefix(res.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(res.URL, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, res.ContentID+".png"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalStoreDropsUnknownExtensions(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	res, err := store.Upload(context.Background(), []byte("x"), "evil.exe", "application/octet-stream")
	require.NoError(t, err)
	assert.False(t, strings.Contains(res.URL, ".exe"))

	res, err = store.Upload(context.Background(), []byte("x"), "noext", "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+res.ContentID, res.URL)
}
