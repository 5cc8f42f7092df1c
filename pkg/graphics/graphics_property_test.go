package graphics

import (
	"math"
	"testing"

	"github.com/gogpu/gg"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// HSB から RGB に変換して戻すと元の値に戻る（彩度と明度が十分にある場合）
func TestProperty_HSBRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("HSBToRGB と RGBToHSB は互いに逆変換", prop.ForAll(
		func(h, s, v float64) bool {
			c := HSBToRGB(h, s, v)
			h2, s2, v2 := RGBToHSB(c)
			hueDiff := math.Abs(h - h2)
			hueDiff = math.Min(hueDiff, 1-hueDiff)
			return hueDiff < 1e-6 && math.Abs(s-s2) < 1e-6 && math.Abs(v-v2) < 1e-6
		},
		gen.Float64Range(0, 0.999),
		gen.Float64Range(0.05, 1),
		gen.Float64Range(0.05, 1),
	))

	properties.TestingRun(t)
}

// push と pop が対応していれば変換行列は元に戻る
func TestProperty_TransformPushPopRestores(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("push/pop で行列が復元される", prop.ForAll(
		func(tx, ty, deg, sx float64) bool {
			ts := NewTransformStack()
			ts.Translate(tx, ty)
			before := ts.Matrix()

			ts.Push()
			ts.Rotate(deg)
			ts.Scale(sx, sx)
			ts.Translate(ty, tx)
			if err := ts.Pop(); err != nil {
				return false
			}
			return ts.Matrix() == before && ts.Depth() == 0
		},
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
		gen.Float64Range(-360, 360),
		gen.Float64Range(0.1, 10),
	))

	properties.TestingRun(t)
}

// 回転は行列式を変えないので線幅の倍率は拡大率だけで決まる
func TestProperty_StrokeScaleIgnoresRotation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("回転後も StrokeScale は拡大率と一致", prop.ForAll(
		func(deg, s float64) bool {
			ts := NewTransformStack()
			ts.Rotate(deg)
			ts.Scale(s, s)
			return math.Abs(StrokeScale(ts.Matrix())-s) < 1e-9
		},
		gen.Float64Range(-720, 720),
		gen.Float64Range(0.01, 20),
	))

	properties.TestingRun(t)
}

// キューは追加順を保つ
func TestProperty_QueueOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("PopAll は FIFO 順", prop.ForAll(
		func(xs []float64) bool {
			q := NewQueue()
			for _, x := range xs {
				q.Push(NewPath(Rect(x, 0, 1, 1, 0), DefaultStyle()))
			}
			got := q.PopAll()
			if len(got) != len(xs) {
				return false
			}
			for i, g := range got {
				x0, _, _, _ := g.(*Path).Bounds()
				if x0 != xs[i] {
					return false
				}
			}
			return q.Len() == 0
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

// 星形のすべての頂点は外接円の内側にある
func TestProperty_StarWithinRadius(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Star の頂点は outer 以内", prop.ForAll(
		func(points int, outer float64) bool {
			p := Star(0, 0, points, outer, outer/2)
			ok := true
			p.Iterate(func(verb gg.PathVerb, c []float64) {
				if verb != gg.MoveTo && verb != gg.LineTo {
					return
				}
				if math.Hypot(c[0], c[1]) > outer+1e-9 {
					ok = false
				}
			})
			return ok
		},
		gen.IntRange(2, 50),
		gen.Float64Range(1, 500),
	))

	properties.TestingRun(t)
}
