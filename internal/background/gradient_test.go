package background

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

var neutral = colorful.Color{R: 0, G: 0, B: 0}

func uniform(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.02
}

func TestFromEdges_UniformImage(t *testing.T) {
	img := uniform(100, 100, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	g := FromEdges(img, Left, Right, neutral)
	for _, c := range []colorful.Color{g.Start, g.End} {
		if !near(c.R, 1) || !near(c.G, 0) || !near(c.B, 0) {
			t.Errorf("edge color = %v, want pure red", c)
		}
	}
}

func TestFromEdges_DistinctHalves(t *testing.T) {
	// Left half blue, right half green: the two edges must differ.
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	draw.Draw(img, image.Rect(0, 0, 50, 50), image.NewUniform(color.RGBA{B: 255, A: 255}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(50, 0, 100, 50), image.NewUniform(color.RGBA{G: 255, A: 255}), image.Point{}, draw.Src)

	g := FromEdges(img, Left, Right, neutral)
	if !near(g.Start.B, 1) || !near(g.Start.G, 0) {
		t.Errorf("left edge = %v, want blue", g.Start)
	}
	if !near(g.End.G, 1) || !near(g.End.B, 0) {
		t.Errorf("right edge = %v, want green", g.End)
	}
}

func TestFromEdges_TopBottom(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 100))
	draw.Draw(img, image.Rect(0, 0, 50, 50), image.NewUniform(color.RGBA{R: 255, A: 255}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 50, 50, 100), image.NewUniform(color.RGBA{G: 255, A: 255}), image.Point{}, draw.Src)

	g := FromEdges(img, Top, Bottom, neutral)
	if !near(g.Start.R, 1) {
		t.Errorf("top edge = %v, want red", g.Start)
	}
	if !near(g.End.G, 1) {
		t.Errorf("bottom edge = %v, want green", g.End)
	}
}

func TestFromEdges_DegenerateInputs(t *testing.T) {
	n := colorful.Color{R: 0.5, G: 0.5, B: 0.5}

	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil image", nil},
		{"zero-size image", image.NewRGBA(image.Rect(0, 0, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := FromEdges(tt.img, Left, Right, n)
			if g.Start != n || g.End != n {
				t.Errorf("gradient = %+v, want neutral on both ends", g)
			}
		})
	}
}

func TestFromEdges_TinyImage(t *testing.T) {
	// Fewer pixels than sample points must not panic or divide by zero.
	img := uniform(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	g := FromEdges(img, Left, Right, neutral)
	if !near(g.Start.R, 1) || !near(g.End.R, 1) {
		t.Errorf("gradient = %+v, want white", g)
	}
}

func TestCSS(t *testing.T) {
	g := Gradient{
		Start: colorful.Color{R: 1, G: 0, B: 0},
		End:   colorful.Color{R: 0, G: 0, B: 1},
	}
	start, end := g.CSS()
	if start != "#ff0000" || end != "#0000ff" {
		t.Errorf("CSS() = %q, %q", start, end)
	}
}
