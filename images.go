package blogcatalog

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxCoverSize  = 10 << 20 // 10MB
)

// CoverOpener opens the cover image stored next to a post's document.
type CoverOpener interface {
	OpenCover(defaultSlug, cover string) (fs.File, error)
}

// processCover decodes an image from src, resizes it to maxImageWidth when
// wider, and encodes it as JPEG.
func processCover(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(io.LimitReader(src, maxCoverSize))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// coverCache keeps encoded covers keyed by directory and file name until the
// catalog is invalidated.
type coverCache struct {
	mu     sync.RWMutex
	images map[string][]byte
}

func newCoverCache() *coverCache {
	return &coverCache{images: make(map[string][]byte)}
}

func (c *coverCache) get(opener CoverOpener, defaultSlug, cover string) ([]byte, error) {
	key := defaultSlug + "/" + cover
	c.mu.RLock()
	data, ok := c.images[key]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	f, err := opener.OpenCover(defaultSlug, cover)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err = processCover(f)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.images[key] = data
	c.mu.Unlock()
	return data, nil
}

// Invalidate drops every encoded cover.
func (c *coverCache) Invalidate() {
	c.mu.Lock()
	c.images = make(map[string][]byte)
	c.mu.Unlock()
}
