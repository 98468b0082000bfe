package artwork

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"go.uber.org/zap"

	"github.com/jukelight/jukelight/internal/imaging"
	"github.com/jukelight/jukelight/internal/model"
)

type fakeReader struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeReader) ReadPicture(uri string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testConfig(library string) Config {
	return Config{
		Library:          library,
		CoverFilenames:   []string{"cover.jpg", "folder.jpg", "folder.png", "folder.jpeg", "cover.jpeg", "cover.png"},
		MaxSize:          500,
		PlaceholderPath:  filepath.Join(library, "placeholder.png"),
		PlaceholderSize:  64,
		PlaceholderColor: color.RGBA{A: 255},
	}
}

func newTestResolver(t *testing.T, library string, reader PictureReader) *Resolver {
	t.Helper()
	return NewResolver(testConfig(library), reader, imaging.NewService(), zap.NewNop())
}

func writeTrackFile(t *testing.T, library, rel string) model.Track {
	t.Helper()
	path := filepath.Join(library, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return model.Track{File: rel, Artist: "A", Title: "T", Album: "L"}
}

func TestResolve_DaemonStrategyWins(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")
	reader := &fakeReader{data: pngBytes(t, 10, 10, color.RGBA{R: 255, A: 255})}

	r := newTestResolver(t, library, reader)
	art, err := r.Resolve(track)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if art.Source != "daemon" || art.Placeholder {
		t.Errorf("art = {source %q placeholder %v}, want daemon strategy", art.Source, art.Placeholder)
	}
	if art.Image == nil {
		t.Error("decoded image missing")
	}
}

func TestResolve_SidecarFallback(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")
	cover := pngBytes(t, 10, 10, color.RGBA{G: 255, A: 255})
	if err := os.WriteFile(filepath.Join(library, "album", "folder.png"), cover, 0644); err != nil {
		t.Fatal(err)
	}

	// Daemon has nothing, the file carries no tag art: the sidecar wins.
	r := newTestResolver(t, library, &fakeReader{})
	art, _ := r.Resolve(track)
	if art.Source != "sidecar" {
		t.Errorf("Source = %q, want sidecar", art.Source)
	}
	if !bytes.Equal(art.Bytes, cover) {
		t.Error("sidecar bytes not returned verbatim")
	}
}

func TestResolve_SidecarPreferenceOrder(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")
	first := pngBytes(t, 4, 4, color.RGBA{R: 255, A: 255})
	second := pngBytes(t, 4, 4, color.RGBA{B: 255, A: 255})
	os.WriteFile(filepath.Join(library, "album", "cover.jpg"), first, 0644)
	os.WriteFile(filepath.Join(library, "album", "folder.png"), second, 0644)

	r := newTestResolver(t, library, &fakeReader{})
	art, _ := r.Resolve(track)
	if !bytes.Equal(art.Bytes, first) {
		t.Error("cover.jpg should win over folder.png")
	}
}

func TestResolve_EmbeddedID3Art(t *testing.T) {
	library := t.TempDir()
	rel := "album/song.mp3"
	path := filepath.Join(library, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	pic := pngBytes(t, 10, 10, color.RGBA{B: 255, A: 255})
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/png",
		PictureType: id3v2.PTFrontCover,
		Picture:     pic,
	})
	if err := tag.Save(); err != nil {
		t.Fatal(err)
	}
	tag.Close()

	r := newTestResolver(t, library, &fakeReader{})
	art, _ := r.Resolve(model.Track{File: rel})
	if art.Source != "embedded" {
		t.Fatalf("Source = %q, want embedded", art.Source)
	}
	if !bytes.Equal(art.Bytes, pic) {
		t.Error("embedded picture bytes not returned verbatim")
	}
}

func TestResolve_UndecodableBytesFallThrough(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")
	cover := pngBytes(t, 4, 4, color.RGBA{A: 255})
	os.WriteFile(filepath.Join(library, "album", "cover.jpg"), cover, 0644)

	// Daemon returns garbage; the ladder must continue to the sidecar.
	r := newTestResolver(t, library, &fakeReader{data: []byte("junk, not an image")})
	art, _ := r.Resolve(track)
	if art.Source != "sidecar" {
		t.Errorf("Source = %q, want sidecar after undecodable daemon bytes", art.Source)
	}
}

func TestResolve_PlaceholderIsTotal(t *testing.T) {
	library := t.TempDir()
	// Track file does not even exist; daemon errors out.
	track := model.Track{File: "missing/song.flac", Artist: "A", Title: "T"}

	r := newTestResolver(t, library, &fakeReader{err: errors.New("daemon down")})
	art, err := r.Resolve(track)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want total resolution", err)
	}
	if !art.Placeholder || art.Source != "placeholder" {
		t.Errorf("art = {source %q placeholder %v}, want placeholder", art.Source, art.Placeholder)
	}
	// Generated solid at the configured size.
	if b := art.Image.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("placeholder size = %v, want 64x64", b)
	}
}

func TestResolve_PlaceholderFile(t *testing.T) {
	library := t.TempDir()
	os.WriteFile(filepath.Join(library, "placeholder.png"), pngBytes(t, 32, 32, color.RGBA{R: 7, A: 255}), 0644)

	r := newTestResolver(t, library, &fakeReader{})
	art, _ := r.Resolve(model.Track{File: "missing/song.flac"})
	if !art.Placeholder {
		t.Fatal("expected placeholder")
	}
	if b := art.Image.Bounds(); b.Dx() != 32 {
		t.Errorf("placeholder from file has bounds %v, want 32x32", b)
	}
}

func TestResolve_CacheHitSkipsStrategies(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")
	reader := &fakeReader{data: pngBytes(t, 10, 10, color.RGBA{A: 255})}

	r := newTestResolver(t, library, reader)
	first, _ := r.Resolve(track)
	second, _ := r.Resolve(track)

	if reader.calls != 1 {
		t.Errorf("reader called %d times, want 1 (second resolve from cache)", reader.calls)
	}
	if first != second {
		t.Error("cache hit should return the identical entry")
	}
}

func TestResolve_InvalidateForcesReresolve(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")
	reader := &fakeReader{data: pngBytes(t, 10, 10, color.RGBA{A: 255})}

	r := newTestResolver(t, library, reader)
	r.Resolve(track)
	r.Invalidate(r.Fingerprint(track))
	r.Resolve(track)
	if reader.calls != 2 {
		t.Errorf("reader called %d times, want 2 after invalidation", reader.calls)
	}

	r.InvalidateAll()
	r.Resolve(track)
	if reader.calls != 3 {
		t.Errorf("reader called %d times, want 3 after InvalidateAll", reader.calls)
	}
}

func TestFingerprint(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")

	r := newTestResolver(t, library, nil)
	fp1 := r.Fingerprint(track)
	if fp1 == "" {
		t.Fatal("empty fingerprint")
	}
	if fp2 := r.Fingerprint(track); fp2 != fp1 {
		t.Error("fingerprint not stable for unchanged file")
	}

	// Unstattable file falls back to tag identity.
	ghost := model.Track{File: "gone.flac", Artist: "A", Title: "T", Album: "L"}
	if fp := r.Fingerprint(ghost); fp != "tag|"+ghost.TagFingerprint() {
		t.Errorf("fingerprint for missing file = %q, want tag fallback", fp)
	}
}

func TestResolve_ScalesDownLargeArt(t *testing.T) {
	library := t.TempDir()
	track := writeTrackFile(t, library, "album/song.flac")
	reader := &fakeReader{data: pngBytes(t, 900, 600, color.RGBA{A: 255})}

	r := newTestResolver(t, library, reader)
	art, _ := r.Resolve(track)
	if b := art.Image.Bounds(); b.Dx() > 500 || b.Dy() > 500 {
		t.Errorf("image bounds %v exceed 500x500", b)
	}
}
