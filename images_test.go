package blogcatalog

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessCover_ResizesWideImages(t *testing.T) {
	out, err := processCover(bytes.NewReader(pngBytes(t, 1600, 400)))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, maxImageWidth, cfg.Width)
	require.Equal(t, 200, cfg.Height)
}

func TestProcessCover_KeepsNarrowImages(t *testing.T) {
	out, err := processCover(bytes.NewReader(pngBytes(t, 300, 100)))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 300, cfg.Width)
}

func TestProcessCover_RejectsGarbage(t *testing.T) {
	_, err := processCover(bytes.NewReader([]byte("not an image")))
	require.Error(t, err)
}

func TestCoverCache(t *testing.T) {
	fsys := fstest.MapFS{
		"post/index.md":  doc("---\ntitle: P\n---\n"),
		"post/cover.png": &fstest.MapFile{Data: pngBytes(t, 10, 10)},
	}
	store := NewContentStore(fsys)
	cache := newCoverCache()

	first, err := cache.get(store, "post", "cover.png")
	require.NoError(t, err)
	delete(fsys, "post/cover.png")
	second, err := cache.get(store, "post", "cover.png")
	require.NoError(t, err, "served from cache")
	require.Equal(t, first, second)

	cache.Invalidate()
	_, err = cache.get(store, "post", "cover.png")
	require.Error(t, err)
}
