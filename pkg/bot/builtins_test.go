package bot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/zurustar/inkbot/pkg/graphics"
	"github.com/zurustar/inkbot/pkg/variable"
)

func TestBuiltinResults(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"colormode", `print(colormode()); colormode(HSB, 360); print(colormode(), colorrange());`, "RGB\nHSB 360\n"},
		{"hsb color", `colormode(HSB); c = color(0, 1, 1); fill(c); print(fill() == c);`, "true\n"},
		{"fill state", `print(fill() == color(0)); nofill(); print(fill());`, "true\nnil\n"},
		{"stroke state", `print(stroke()); stroke(1); print(strokewidth(3), strokewidth());`, "nil\n3 3\n"},
		{"color range", `colorrange(255); fill(255, 0, 0); print(fill() == color(255, 0, 0));`, "true\n"},
		{"hex color", `background("#ff0000"); print(background() == color(1, 0, 0));`, "true\n"},
		{"array color", `print(color([1, 0, 0]) == color(1, 0, 0));`, "true\n"},
		{"transform mode", `print(transform()); print(transform(CENTER));`, "corner\ncenter\n"},
		{"align", `print(align()); print(align(RIGHT)); print(align(CENTER));`, "left\nright\ncenter\n"},
		{"font", `print(font()); print(font("mono", 12), fontsize()); print(lineheight(2));`, "sans\nmono 12\n2\n"},
		{"text size", `fontsize(10); print(textwidth("") == 0, textheight("a") == 10, textheight("a\nb") > 20);`, "true true true\n"},
		{"var returns value", `print(var("n", NUMBER, 3, 0, 10), var("s", TEXT, "a", 0, 0, "b"));`, "3 b\n"},
		{"var clamps", `print(var("n", NUMBER, 30, 0, 10));`, "10\n"},
		{"var fourth argument is min", `print(var("n", NUMBER, 5, 7), var("m", NUMBER, 500, 0));`, "7 500\n"},
		{"var explicit value", `print(var("n", NUMBER, 1, 0, 10, 4));`, "4\n"},
		{"var bounds ignored for text", `print(var("t", TEXT, "a", 0, 1));`, "a\n"},
		{"shapes return paths", `p = rect(0, 0, 1, 1); drawpath(p); print(len([star(0, 0), arrow(0, 0), polygon(0, 0, 5, 6), circle(0, 0, 5), line(0, 0, 1, 1)]));`, "5\n"},
		{"push pop", `push(); translate(1, 2); rotate(45); scale(2); skew(10); pop(); reset(); print("ok");`, "ok\n"},
		{"constants", `print(RGB, HSB, CENTER, CORNER, LEFT, RIGHT, NUMBER, TEXT, BOOLEAN, BUTTON);`, "RGB HSB center corner left right NUMBER TEXT BOOLEAN BUTTON\n"},
		{"units and constants", `print(inch, cm, mm, CORNERS, JUSTIFY);`, "72 28.3465 2.8346 corners justify\n"},
		{"shape modes", `print(rectmode(), rectmode(CORNERS), ellipsemode(CENTER), rectmode());`, "corner corners center corners\n"},
		{"align justify", `print(align(JUSTIFY));`, "justify\n"},
		{"grid", `print(grid(2, 2, 10, 5));`, "[[0, 0], [10, 0], [0, 5], [10, 5]]\n"},
		{"grid defaults", `print(len(grid(3, 4)), grid(1, 1), grid(0, 3));`, "12 [[0, 0]] []\n"},
		{"grid shuffled keeps cells", `g = grid(3, 3, 1, 1, true); s = 0; for (i = 0; i < len(g); i += 1) { s += g[i][0] + 10 * g[i][1]; } print(len(g), s);`, "9 99\n"},
		{"math builtins still exist", `print(floor(PI), max(1, 2));`, "3 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, out := newTestBot(t, tt.source)
			frames(t, b, 1)
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		is     error // 期待するエラー、nil なら *ArgumentError
	}{
		{"rect arity", `rect(1, 2);`, nil},
		{"rect type", `rect("a", 0, 1, 1);`, nil},
		{"fill type", `fill(true);`, nil},
		{"color arity", `color(1, 2, 3, 4, 5);`, nil},
		{"bad hex", `fill("#xyz");`, nil},
		{"colormode", `colormode("CMYK");`, nil},
		{"colorrange", `colorrange(0);`, nil},
		{"speed", `speed(-1);`, nil},
		{"strokewidth", `strokewidth(-1);`, nil},
		{"star points", `star(0, 0, 1.5);`, nil},
		{"polygon sides", `polygon(0, 0, 10, 2);`, nil},
		{"align", `align("middle");`, nil},
		{"rectmode", `rectmode("middle");`, nil},
		{"ellipsemode type", `ellipsemode(1);`, nil},
		{"grid negative", `grid(-1, 2);`, nil},
		{"grid fractional", `grid(1.5, 2);`, nil},
		{"beginclip type", `beginclip(1);`, nil},
		{"endclip without beginclip", `endclip();`, nil},
		{"transform", `transform("middle");`, nil},
		{"fontsize", `fontsize(0);`, nil},
		{"endpath without path", `endpath();`, nil},
		{"drawpath type", `drawpath(1);`, nil},
		{"drawpath without path", `drawpath();`, nil},
		{"var bound not a number", `var("n", NUMBER, 1, "lo");`, nil},
		{"var empty name", `var("", NUMBER, 1);`, nil},
		{"pop underflow", `pop();`, graphics.ErrTransformUnderflow},
		{"lineto before moveto", `beginpath(); lineto(1, 1);`, graphics.ErrNoCurrentPoint},
		{"unknown font", `font("comic");`, graphics.ErrUnknownFont},
		{"unknown var type", `var("c", "COLOR", 1);`, variable.ErrUnknownType},
		{"var type mismatch", `var("n", NUMBER, "five");`, variable.ErrTypeMismatch},
		{"missing image", `image("missing.png", 0, 0);`, os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBot(t, tt.source, WithScriptPath(filepath.Join(t.TempDir(), "sketch.ink")))
			err := b.Frame(context.Background(), &recordingSink{}, 0)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.is == nil {
				var ae *ArgumentError
				if !errors.As(err, &ae) {
					t.Errorf("error is not an *ArgumentError: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	b, _ := newTestBot(t, `
	beginpath(10, 10);
	lineto(20, 10);
	curveto(20, 20, 10, 20, 10, 10);
	quadto(5, 5, 0, 0);
	closepath();
	endpath();
	moveto(0, 0);
	lineto(5, 5);
	hidden = endpath(false);
	`)
	s := frames(t, b, 1)
	paths := s.last().paths
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
	x0, y0, x1, y1 := paths[0].Bounds()
	if x0 != 0 || y0 != 0 || x1 != 20 || y1 != 20 {
		t.Errorf("bounds = %v %v %v %v", x0, y0, x1, y1)
	}
}

func TestShapeModes(t *testing.T) {
	b, _ := newTestBot(t, `
	rectmode(CENTER);
	rect(50, 50, 20, 10);
	rectmode(CORNERS);
	rect(30, 60, 10, 20);
	ellipsemode(CORNERS);
	ellipse(0, 0, 40, 20);
	circle(10, 10, 4);
	ellipsemode(CENTER);
	circle(10, 10, 4);
	`)
	s := frames(t, b, 1)
	paths := s.last().paths
	want := [][4]float64{
		{40, 45, 60, 55},
		{10, 20, 30, 60},
		{0, 0, 40, 20},
		{10, 10, 14, 14},
		{8, 8, 12, 12},
	}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths, want %d", len(paths), len(want))
	}
	for i, w := range want {
		x0, y0, x1, y1 := paths[i].Bounds()
		got := [4]float64{x0, y0, x1, y1}
		for j := range got {
			if math.Abs(got[j]-w[j]) > 1e-6 {
				t.Errorf("path %d bounds = %v, want %v", i, got, w)
				break
			}
		}
	}
}

func TestClipping(t *testing.T) {
	b, _ := newTestBot(t, `
	beginpath(0, 0);
	lineto(10, 0);
	lineto(10, 10);
	closepath();
	p = endpath(false);
	beginclip(p);
	rect(0, 0, 50, 50);
	endclip();
	rect(1, 1, 2, 2);
	beginclip(p);
	rect(0, 0, 5, 5);
	`)
	s := frames(t, b, 1)
	r := s.last()
	if len(r.clips) != 2 || len(r.paths) != 3 {
		t.Fatalf("got %d clips and %d paths, want 2 and 3", len(r.clips), len(r.paths))
	}
	// 閉じていないクリップはフレームの終わりで閉じられる
	if r.unclips != 2 {
		t.Errorf("got %d clips ended, want 2", r.unclips)
	}
	if x0, y0, x1, y1 := r.clips[0].Bounds(); x0 != 0 || y0 != 0 || x1 != 10 || y1 != 10 {
		t.Errorf("clip bounds = %v %v %v %v", x0, y0, x1, y1)
	}
}

func TestTransformsApplyToShapes(t *testing.T) {
	b, _ := newTestBot(t, `
	translate(10, 20);
	rect(0, 0, 5, 5);
	push();
	rotate(90);
	rect(0, 0, 5, 5);
	pop();
	rect(0, 0, 5, 5);
	`)
	s := frames(t, b, 1)
	paths := s.last().paths
	if len(paths) != 3 {
		t.Fatalf("got %d paths", len(paths))
	}
	if m := paths[0].Transform; m.C != 10 || m.F != 20 {
		t.Errorf("translate = %+v", m)
	}
	if m := paths[1].Transform; math.Abs(m.A) > 1e-9 || math.Abs(math.Abs(m.B)-1) > 1e-9 {
		t.Errorf("rotate = %+v", m)
	}
	if paths[2].Transform != paths[0].Transform {
		t.Errorf("pop did not restore: %+v", paths[2].Transform)
	}
}

func TestText(t *testing.T) {
	b, _ := newTestBot(t, `
	font("mono", 16);
	lineheight(1.5);
	align(RIGHT);
	fill(0, 0, 1);
	text("hello", 100, 50);
	text(42, 0, 0, 200);
	nofill();
	text("invisible", 0, 0);
	`)
	s := frames(t, b, 1)
	texts := s.last().texts
	if len(texts) != 2 {
		t.Fatalf("got %d texts, want 2", len(texts))
	}
	first := texts[0]
	if first.Content != "hello" || first.Font != "mono" || first.Size != 16 || first.LineHeight != 1.5 {
		t.Errorf("text = %+v", first)
	}
	if first.Align != graphics.Right || first.Fill != (graphics.Color{B: 1, A: 1}) {
		t.Errorf("align = %v, fill = %+v", first.Align, first.Fill)
	}
	if texts[1].Content != "42" || texts[1].Width != 200 {
		t.Errorf("second text = %+v", texts[1])
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(0, 0, color.NRGBA{R: 0xFF, A: 0xFF})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Photo.png"), 40, 20)
	if err := os.WriteFile(filepath.Join(dir, "notes.png"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	b, out := newTestBot(t, `
	print(imagesize("Photo.png"));
	image("photo.png", 1, 2);
	image("Photo.png", 0, 0, 20);
	image("Photo.png", 0, 0, 10, 10, 0.5);
	`, WithScriptPath(filepath.Join(dir, "sketch.ink")))
	s := frames(t, b, 1)

	if got := out.String(); got != "[40, 20]\n" {
		t.Errorf("output = %q", got)
	}
	images := s.last().images
	if len(images) != 3 {
		t.Fatalf("got %d images", len(images))
	}
	if images[0].X != 1 || images[0].Y != 2 || images[0].Alpha != 1 {
		t.Errorf("first image = %+v", images[0])
	}
	if w, h := images[1].Size(); w != 20 || h != 10 {
		t.Errorf("width-only image is %vx%v, want 20x10", w, h)
	}
	if images[2].Alpha != 0.5 {
		t.Errorf("alpha = %v", images[2].Alpha)
	}

	b, _ = newTestBot(t, `image("notes.png", 0, 0);`, WithScriptPath(filepath.Join(dir, "sketch.ink")))
	err := b.Frame(context.Background(), &recordingSink{}, 0)
	if !errors.Is(err, graphics.ErrNotAnImage) {
		t.Errorf("loading a text file = %v", err)
	}
}

func TestArgumentError(t *testing.T) {
	err := argErrorf("rect", "takes %d arguments, got %d", 4, 2)
	if got := err.Error(); got != "rect: takes 4 arguments, got 2" {
		t.Errorf("Error() = %q", got)
	}
	if got := fmt.Sprint(args{fn: "f", list: []any{1.0}}.counts(0, 2)); got != "f: takes [0 2] arguments, got 1" {
		t.Errorf("counts error = %q", got)
	}
}
