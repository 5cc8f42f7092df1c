package sink

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Kind groups formats by the render context that produces them.
type Kind int

const (
	Raster Kind = iota
	Vector
	Paged
)

func (k Kind) String() string {
	switch k {
	case Raster:
		return "raster"
	case Vector:
		return "vector"
	case Paged:
		return "paged"
	}
	return "unknown"
}

// Format describes one output format.
type Format struct {
	Name string
	Ext  string
	Kind Kind
	// encode writes a finished raster frame. Nil for non-raster formats.
	encode func(w io.Writer, img image.Image) error
}

// Encode writes img in this format. Only raster formats can encode images.
func (f Format) Encode(w io.Writer, img image.Image) error {
	if f.encode == nil {
		return fmt.Errorf("%s is not a raster format", f.Name)
	}
	return f.encode(w, img)
}

const jpegQuality = 90

var formats = map[string]Format{
	"png":  {Name: "png", Ext: ".png", Kind: Raster, encode: png.Encode},
	"jpg":  {Name: "jpg", Ext: ".jpg", Kind: Raster, encode: encodeJPEG},
	"jpeg": {Name: "jpeg", Ext: ".jpg", Kind: Raster, encode: encodeJPEG},
	"bmp":  {Name: "bmp", Ext: ".bmp", Kind: Raster, encode: bmp.Encode},
	"tiff": {Name: "tiff", Ext: ".tiff", Kind: Raster, encode: encodeTIFF},
	"tif":  {Name: "tif", Ext: ".tif", Kind: Raster, encode: encodeTIFF},
	"svg":  {Name: "svg", Ext: ".svg", Kind: Vector},
	"pdf":  {Name: "pdf", Ext: ".pdf", Kind: Paged},
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// LookupFormat returns the table entry for name (case-insensitive, with or
// without a leading dot).
func LookupFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if key == "" {
		return Format{}, ErrFormatRequired
	}
	f, ok := formats[key]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// FormatFromPath infers the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Format{}, fmt.Errorf("%w: %s has no extension", ErrFormatRequired, path)
	}
	return LookupFormat(ext)
}

// Formats returns the names of all supported formats.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	return names
}
