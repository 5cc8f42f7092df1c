package graphics

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFont is the font name used when a sketch never calls font().
const DefaultFont = "sans"

var builtinFonts = map[string][]byte{
	"sans":      goregular.TTF,
	"goregular": goregular.TTF,
	"mono":      gomono.TTF,
	"gomono":    gomono.TTF,
	"bold":      gobold.TTF,
	"gobold":    gobold.TTF,
}

// FontBook resolves font names to parsed font sources. Builtin names map to
// the Go fonts; a name ending in .ttf or .otf is loaded from disk.
type FontBook struct {
	mu      sync.Mutex
	sources map[string]*text.FontSource
}

// NewFontBook creates an empty font book.
func NewFontBook() *FontBook {
	return &FontBook{sources: make(map[string]*text.FontSource)}
}

var (
	defaultBook     *FontBook
	defaultBookOnce sync.Once
)

// Fonts returns the process-wide font book.
func Fonts() *FontBook {
	defaultBookOnce.Do(func() {
		defaultBook = NewFontBook()
	})
	return defaultBook
}

// Known reports whether name can be resolved without touching the disk.
func (b *FontBook) Known(name string) bool {
	_, ok := builtinFonts[strings.ToLower(name)]
	return ok || isFontFile(name)
}

// Source returns the parsed font for name.
func (b *FontBook) Source(name string) (*text.FontSource, error) {
	if name == "" {
		name = DefaultFont
	}
	key := strings.ToLower(name)

	b.mu.Lock()
	defer b.mu.Unlock()
	if src, ok := b.sources[key]; ok {
		return src, nil
	}

	var (
		src *text.FontSource
		err error
	)
	if data, ok := builtinFonts[key]; ok {
		src, err = text.NewFontSource(data)
	} else if isFontFile(name) {
		path, perr := homedir.Expand(name)
		if perr != nil {
			return nil, perr
		}
		src, err = text.NewFontSourceFromFile(path)
	} else {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFont, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", name, err)
	}
	b.sources[key] = src
	return src, nil
}

// Face returns a face of the given size.
func (b *FontBook) Face(name string, size float64) (text.Face, error) {
	src, err := b.Source(name)
	if err != nil {
		return nil, err
	}
	return src.Face(size), nil
}

// Measure returns the advance width and line height of s.
func (b *FontBook) Measure(s, name string, size float64) (float64, float64, error) {
	face, err := b.Face(name, size)
	if err != nil {
		return 0, 0, err
	}
	w, h := text.Measure(s, face)
	return w, h, nil
}

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf", ".ttc":
		return true
	}
	return false
}
