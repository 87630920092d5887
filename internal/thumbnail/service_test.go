package thumbnail

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biffcrash1/image-viewer/storage/local"
)

func setupService(t *testing.T) (*Service, string) {
	libraryDir := t.TempDir()
	library, err := local.NewStorage(libraryDir)
	require.NoError(t, err)
	store, err := local.NewStorage(t.TempDir())
	require.NoError(t, err)

	service, err := NewService(library, store, nil, []int{16, 32, 64}, 85)
	require.NoError(t, err)
	return service, libraryDir
}

func writePNG(t *testing.T, path string, w, h int) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func TestSnapWidth(t *testing.T) {
	service, _ := setupService(t)

	assert.Equal(t, 16, service.SnapWidth(0))
	assert.Equal(t, 16, service.SnapWidth(10))
	assert.Equal(t, 16, service.SnapWidth(20))
	assert.Equal(t, 32, service.SnapWidth(30))
	assert.Equal(t, 64, service.SnapWidth(500))
}

func TestGetRendersAndScales(t *testing.T) {
	service, libraryDir := setupService(t)
	writePNG(t, filepath.Join(libraryDir, "big.png"), 100, 50)

	data, width, err := service.Get(context.Background(), "big.png", 30)
	require.NoError(t, err)
	assert.Equal(t, 32, width)

	decoded, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 32, decoded.Bounds().Dx())
	assert.Equal(t, 16, decoded.Bounds().Dy())
}

func TestGetKeepsSmallOriginalsUnscaled(t *testing.T) {
	service, libraryDir := setupService(t)
	writePNG(t, filepath.Join(libraryDir, "small.png"), 10, 10)

	data, width, err := service.Get(context.Background(), "small.png", 64)
	require.NoError(t, err)
	assert.Equal(t, 64, width)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 10, decoded.Bounds().Dx())
}

func TestGetServesFromDiskStore(t *testing.T) {
	service, libraryDir := setupService(t)
	writePNG(t, filepath.Join(libraryDir, "a.png"), 100, 100)

	first, _, err := service.Get(context.Background(), "a.png", 16)
	require.NoError(t, err)

	// The original disappearing no longer matters once rendered.
	require.NoError(t, os.Remove(filepath.Join(libraryDir, "a.png")))

	second, _, err := service.Get(context.Background(), "a.png", 16)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPrecomputeAndRemove(t *testing.T) {
	service, libraryDir := setupService(t)
	writePNG(t, filepath.Join(libraryDir, "a.png"), 100, 100)
	ctx := context.Background()

	service.Precompute(ctx, "a.png")
	for _, width := range service.Widths() {
		exists, err := service.store.Exists(ctx, StoreIdentifier("a.png", width))
		require.NoError(t, err)
		assert.True(t, exists, "width %d", width)
	}

	service.Remove(ctx, "a.png")
	for _, width := range service.Widths() {
		exists, err := service.store.Exists(ctx, StoreIdentifier("a.png", width))
		require.NoError(t, err)
		assert.False(t, exists, "width %d", width)
	}
}

func TestStoreIdentifier(t *testing.T) {
	a := StoreIdentifier("sub/a.png", 128)
	b := StoreIdentifier("sub/a.png", 128)
	c := StoreIdentifier("sub/b.png", 128)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^[0-9a-f]{64}_128\.jpg$`, a)
}

func TestGetMissingOriginal(t *testing.T) {
	service, _ := setupService(t)

	_, _, err := service.Get(context.Background(), "missing.png", 16)
	assert.Error(t, err)
}
