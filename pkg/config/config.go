// Package config reads the optional inkbot configuration file.
//
// Example (~/.config/inkbot/config.toml):
//
//	[output]
//	format = "svg"
//
//	[run]
//	grammar = "nodebox"
//	iterations = 1
//
//	[canvas]
//	width = 600
//	height = 400
//	background = "#ffffff"
//
//	[text]
//	font = "mono"
//	size = 18
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/zurustar/inkbot/pkg/canvas"
	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/sink"
)

// DefaultPath is searched when no config file is given.
const DefaultPath = "~/.config/inkbot/config.toml"

// Config is the content of a config file. Zero values mean "not set".
type Config struct {
	Output Output `toml:"output"`
	Run    Run    `toml:"run"`
	Canvas Canvas `toml:"canvas"`
	Text   Text   `toml:"text"`
}

type Output struct {
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type Run struct {
	Grammar    string `toml:"grammar"`
	Iterations int    `toml:"iterations"`
	Watch      bool   `toml:"watch"`
}

type Canvas struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
}

type Text struct {
	Font       string  `toml:"font"`
	Size       float64 `toml:"size"`
	LineHeight float64 `toml:"lineheight"`
}

// Read decodes a config from r. Unknown keys are an error so typos surface.
func Read(r io.Reader) (*Config, error) {
	var c Config
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(expanded), err)
	}
	return c, nil
}

// LoadDefault reads DefaultPath. A missing file yields an empty config.
func LoadDefault() (*Config, error) {
	c, err := Load(DefaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return c, err
}

// Validate checks values that can be checked without running a sketch.
func (c *Config) Validate() error {
	if c.Output.Format != "" {
		if _, err := sink.LookupFormat(c.Output.Format); err != nil {
			return fmt.Errorf("[output] format: %w", err)
		}
	}
	if c.Run.Iterations < 0 {
		return fmt.Errorf("[run] iterations must not be negative, got %d", c.Run.Iterations)
	}
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 {
		return fmt.Errorf("[canvas] size must not be negative, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.Background != "" {
		if _, err := graphics.ParseHex(c.Canvas.Background); err != nil {
			return fmt.Errorf("[canvas] background: %w", err)
		}
	}
	if c.Text.Font != "" && !graphics.Fonts().Known(c.Text.Font) {
		return fmt.Errorf("[text] font: %w: %s", graphics.ErrUnknownFont, c.Text.Font)
	}
	if c.Text.Size < 0 || c.Text.LineHeight < 0 {
		return fmt.Errorf("[text] size and lineheight must not be negative")
	}
	return nil
}

// Apply overlays the [canvas] and [text] sections on canvas defaults.
func (c *Config) Apply(s canvas.Settings, size sink.Size) (canvas.Settings, sink.Size) {
	if c == nil {
		return s, size
	}
	if c.Canvas.Width > 0 {
		size.Width = c.Canvas.Width
	}
	if c.Canvas.Height > 0 {
		size.Height = c.Canvas.Height
	}
	if bg, err := graphics.ParseHex(c.Canvas.Background); c.Canvas.Background != "" && err == nil {
		s.Background = bg
	}
	if c.Text.Font != "" {
		s.Font = c.Text.Font
	}
	if c.Text.Size > 0 {
		s.FontSize = c.Text.Size
	}
	if c.Text.LineHeight > 0 {
		s.LineHeight = c.Text.LineHeight
	}
	return s, size
}
