package variable

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// LoadPresets reads a YAML mapping of variable names to initial values.
//
//	radius: 40
//	title: hello
//	filled: true
func LoadPresets(path string) (map[string]any, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand preset path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}

	presets := make(map[string]any, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case int:
			presets[k] = float64(n)
		case uint64:
			presets[k] = float64(n)
		case nil:
			continue
		default:
			presets[k] = n
		}
	}
	return presets, nil
}

// ParsePresets reads inline presets of the form "a=1,b=text,c=true".
// Numeric-looking values become float64, true/false become bool.
func ParsePresets(s string) (map[string]any, error) {
	presets := make(map[string]any)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid preset %q (want name=value)", pair)
		}
		value = strings.TrimSpace(value)
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			presets[name] = f
			continue
		}
		if b, err := strconv.ParseBool(value); err == nil {
			presets[name] = b
			continue
		}
		presets[name] = value
	}
	return presets, nil
}

// ReadPresets accepts either a preset file path or inline pairs.
func ReadPresets(arg string) (map[string]any, error) {
	if arg == "" {
		return nil, nil
	}
	lower := strings.ToLower(arg)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return LoadPresets(arg)
	}
	return ParsePresets(arg)
}
