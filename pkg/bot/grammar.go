package bot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zurustar/inkbot/pkg/graphics"
)

// Grammar is a dialect of the drawing vocabulary: extra names for the
// builtins and the defaults a generation starts with.
type Grammar struct {
	Name          string
	Aliases       map[string]string // alias -> builtin name
	ColorRange    float64
	TransformMode graphics.TransformMode
}

// DefaultGrammar is used when no grammar is given.
const DefaultGrammar = "bot"

var grammars = map[string]Grammar{
	"bot": {
		Name:       "bot",
		Aliases:    map[string]string{"oval": "ellipse"},
		ColorRange: 1,
	},
	// NodeBox 1 は図形の中心を基準に回転する
	"nodebox": {
		Name:          "nodebox",
		Aliases:       map[string]string{"oval": "ellipse"},
		ColorRange:    1,
		TransformMode: graphics.Center,
	},
	"drawbot": {
		Name: "drawbot",
		Aliases: map[string]string{
			"newPath":     "beginpath",
			"moveTo":      "moveto",
			"lineTo":      "lineto",
			"curveTo":     "curveto",
			"qCurveTo":    "quadto",
			"closePath":   "closepath",
			"drawPath":    "drawpath",
			"oval":        "ellipse",
			"fontSize":    "fontsize",
			"lineHeight":  "lineheight",
			"strokeWidth": "strokewidth",
			"saveImage":   "snapshot",
		},
		ColorRange: 1,
	},
}

// LookupGrammar returns the grammar with the given name.
// An empty name selects DefaultGrammar.
func LookupGrammar(name string) (Grammar, error) {
	if name == "" {
		name = DefaultGrammar
	}
	g, ok := grammars[strings.ToLower(name)]
	if !ok {
		return Grammar{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownGrammar, name, strings.Join(Grammars(), ", "))
	}
	return g, nil
}

// Grammars returns the known grammar names, sorted.
func Grammars() []string {
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
