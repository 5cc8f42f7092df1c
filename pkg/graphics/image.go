package graphics

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/gogpu/gg"
	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a bitmap placed on the canvas. W and H of zero use the natural size.
type Image struct {
	Path      string
	Img       image.Image
	X, Y      float64
	W, H      float64
	Alpha     float64
	Transform gg.Matrix
}

// Draw implements Grob.
func (im *Image) Draw(r Renderer) error {
	return r.DrawImage(im)
}

// Size returns the drawn size.
func (im *Image) Size() (float64, float64) {
	b := im.Img.Bounds()
	w, h := im.W, im.H
	if w <= 0 && h <= 0 {
		return float64(b.Dx()), float64(b.Dy())
	}
	if w <= 0 {
		w = h * float64(b.Dx()) / float64(b.Dy())
	}
	if h <= 0 {
		h = w * float64(b.Dy()) / float64(b.Dx())
	}
	return w, h
}

// ImageCache decodes each image file once per run.
type ImageCache struct {
	mu     sync.Mutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{images: make(map[string]image.Image)}
}

// Load returns the decoded image at path.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.images[path]; ok {
		return img, nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	c.images[path] = img
	return img, nil
}

// LoadImage reads and decodes an image file. The content is sniffed first
// so that a non-image is rejected with ErrNotAnImage instead of a decoder error.
func LoadImage(path string) (image.Image, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, path)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}
