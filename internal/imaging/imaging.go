package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // decoder registration
	_ "image/jpeg" // decoder registration
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Service provides the image processing operations the jukebox needs
// for cover art.
//
// Service is used to:
//   - Decode cover art bytes regardless of source format
//   - Downscale images to a display-friendly thumbnail size
//   - Generate a solid placeholder when no artwork exists anywhere
//   - Mirror the current artwork to disk as PNG
//
// Example usage:
//
//	svc := imaging.NewService()
//
//	img, _ := svc.Decode(artworkBytes)
//	thumb := svc.Fit(img, 500, 500)
//	_ = svc.WritePNG("/run/jukelight/art.png", thumb)
type Service struct{}

// NewService creates a new Service.
func NewService() *Service {
	return &Service{}
}

// Decode parses image bytes in any registered format (JPEG, PNG, GIF).
func (s *Service) Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	return img, nil
}

// Fit downscales img to fit within maxWidth x maxHeight, preserving
// aspect ratio. Images already within bounds are returned unchanged;
// artwork is never upscaled.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 750x500
//	// A 400x400 image is returned as-is
//	thumb := svc.Fit(img, 500, 500)
func (s *Service) Fit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	// Calculate new dimensions maintaining aspect ratio
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Solid returns a size x size image filled with the given color.
// Used as the artwork of last resort.
func (s *Service) Solid(size int, c color.RGBA) image.Image {
	if size < 1 {
		size = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// EncodePNG encodes img as PNG bytes.
func (s *Service) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePNG writes img to path as PNG, creating parent directories.
//
// The write goes through a temp file and rename so readers of the
// path (a wallpaper daemon, a web frontend) never see a half-written
// image.
func (s *Service) WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := s.EncodePNG(img)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
