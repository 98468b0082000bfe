package background

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// maxSamples caps how many pixels are read per edge. Twenty evenly
// spaced points is plenty to get a stable mean.
const maxSamples = 20

// Edge names a side of an image.
type Edge string

const (
	Left   Edge = "left"
	Right  Edge = "right"
	Top    Edge = "top"
	Bottom Edge = "bottom"
)

// Gradient holds the two endpoint colors derived from a cover image,
// ready to paint behind it.
type Gradient struct {
	Start colorful.Color
	End   colorful.Color
}

// CSS returns the gradient endpoints as hex strings, e.g. "#1a2b3c".
func (g Gradient) CSS() (string, string) {
	return g.Start.Hex(), g.End.Hex()
}

// FromEdges derives a gradient from the mean colors of two edges of
// img. Each edge contributes up to 20 evenly spaced sample points,
// averaged per channel.
//
// A nil or zero-size image yields a gradient of the neutral color on
// both ends, so callers always get something paintable.
func FromEdges(img image.Image, a, b Edge, neutral colorful.Color) Gradient {
	return Gradient{
		Start: edgeMean(img, a, neutral),
		End:   edgeMean(img, b, neutral),
	}
}

func edgeMean(img image.Image, edge Edge, neutral colorful.Color) colorful.Color {
	if img == nil {
		return neutral
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return neutral
	}

	// Edge length determines the sampling axis.
	length := h
	if edge == Top || edge == Bottom {
		length = w
	}
	n := length
	if n > maxSamples {
		n = maxSamples
	}

	var rSum, gSum, bSum float64
	for i := 0; i < n; i++ {
		pos := i * length / n

		var x, y int
		switch edge {
		case Left:
			x, y = bounds.Min.X, bounds.Min.Y+pos
		case Right:
			x, y = bounds.Max.X-1, bounds.Min.Y+pos
		case Top:
			x, y = bounds.Min.X+pos, bounds.Min.Y
		case Bottom:
			x, y = bounds.Min.X+pos, bounds.Max.Y-1
		default:
			return neutral
		}

		r, g, b, _ := img.At(x, y).RGBA()
		rSum += float64(r) / 0xffff
		gSum += float64(g) / 0xffff
		bSum += float64(b) / 0xffff
	}

	return colorful.Color{
		R: rSum / float64(n),
		G: gSum / float64(n),
		B: bSum / float64(n),
	}
}
