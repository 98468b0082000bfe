package artwork

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bogem/id3v2"
	mtag "github.com/dhowden/tag"
	"go.uber.org/zap"

	"github.com/jukelight/jukelight/internal/imaging"
	"github.com/jukelight/jukelight/internal/model"
)

// Art is resolved, display-ready artwork for one track.
type Art struct {
	// Image is the decoded artwork, scaled to fit the configured
	// maximum dimensions.
	Image image.Image
	// Bytes is the artwork as produced by the winning strategy,
	// before scaling. PNG-encoded for a generated placeholder.
	Bytes []byte
	// Source names the strategy that produced the artwork.
	Source string
	// Placeholder is true when no real artwork was found anywhere.
	Placeholder bool
}

// PictureReader fetches artwork bytes for a library URI. Implemented
// by daemon.Session. Empty data with a nil error means "no artwork".
type PictureReader interface {
	ReadPicture(uri string) ([]byte, error)
}

// Config collects the resolver's tunables.
type Config struct {
	// Library is the music library root; track paths are relative to it.
	Library string
	// CoverFilenames are the sidecar cover files to look for, in
	// preference order. Case-sensitive.
	CoverFilenames []string
	// MaxSize bounds the resolved image's width and height.
	MaxSize int
	// PlaceholderPath points at the image used when every strategy
	// fails. When the file is missing a solid-color image of
	// PlaceholderSize and PlaceholderColor is generated instead.
	PlaceholderPath  string
	PlaceholderSize  int
	PlaceholderColor color.RGBA
}

// Resolver finds artwork for tracks, trying a fixed ladder of
// strategies and caching results by track fingerprint.
//
// The ladder, first hit wins:
//  1. ask the daemon (readpicture, then albumart)
//  2. read embedded tag art from the file itself
//  3. scan the track's directory for a sidecar cover file
//  4. the placeholder, which never fails
//
// A strategy whose bytes do not decode as an image counts as a miss
// and the ladder continues. Cached entries are immutable; they leave
// the cache only through Invalidate or InvalidateAll.
//
// Resolver is safe for concurrent use.
type Resolver struct {
	cfg    Config
	reader PictureReader
	img    *imaging.Service
	log    *zap.Logger

	mu    sync.RWMutex
	cache map[string]*Art
}

// NewResolver creates a resolver. reader may be nil, which skips the
// daemon strategy.
func NewResolver(cfg Config, reader PictureReader, img *imaging.Service, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		cfg:    cfg,
		reader: reader,
		img:    img,
		log:    log,
		cache:  make(map[string]*Art),
	}
}

// Fingerprint identifies the artwork-relevant state of a track: the
// library path plus file mtime and size, so retagged files miss the
// cache. Tracks without a stattable file fall back to their tag
// identity.
func (r *Resolver) Fingerprint(track model.Track) string {
	if track.File != "" {
		if fi, err := os.Stat(r.abs(track.File)); err == nil {
			return fmt.Sprintf("file|%s|%d|%d", track.File, fi.ModTime().UnixNano(), fi.Size())
		}
	}
	if fp := track.TagFingerprint(); fp != "" {
		return "tag|" + fp
	}
	return "file|" + track.File
}

// Resolve returns artwork for track, from cache when possible.
// It is total: when every strategy fails the placeholder is returned,
// so the error is reserved for future use and currently always nil.
func (r *Resolver) Resolve(track model.Track) (*Art, error) {
	fp := r.Fingerprint(track)

	r.mu.RLock()
	art, hit := r.cache[fp]
	r.mu.RUnlock()
	if hit {
		return art, nil
	}

	art = r.resolve(track)

	r.mu.Lock()
	r.cache[fp] = art
	r.mu.Unlock()
	return art, nil
}

// Invalidate drops the cache entry for the given fingerprint.
func (r *Resolver) Invalidate(fingerprint string) {
	r.mu.Lock()
	delete(r.cache, fingerprint)
	r.mu.Unlock()
}

// InvalidateAll empties the cache. Called after a library rescan.
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[string]*Art)
	r.mu.Unlock()
}

func (r *Resolver) resolve(track model.Track) *Art {
	type strategy struct {
		name string
		fn   func(model.Track) ([]byte, error)
	}
	strategies := []strategy{
		{"daemon", r.fromDaemon},
		{"embedded", r.fromEmbeddedTag},
		{"sidecar", r.fromSidecar},
	}

	for _, s := range strategies {
		data, err := s.fn(track)
		if err != nil || len(data) == 0 {
			if err != nil {
				r.log.Debug("artwork strategy failed",
					zap.String("strategy", s.name),
					zap.String("file", track.File),
					zap.Error(err))
			}
			continue
		}
		img, err := r.img.Decode(data)
		if err != nil {
			r.log.Debug("artwork bytes do not decode",
				zap.String("strategy", s.name),
				zap.String("file", track.File),
				zap.Error(err))
			continue
		}
		return &Art{
			Image:  r.img.Fit(img, r.cfg.MaxSize, r.cfg.MaxSize),
			Bytes:  data,
			Source: s.name,
		}
	}

	return r.placeholder()
}

func (r *Resolver) fromDaemon(track model.Track) ([]byte, error) {
	if r.reader == nil || track.File == "" {
		return nil, nil
	}
	return r.reader.ReadPicture(track.File)
}

func (r *Resolver) fromEmbeddedTag(track model.Track) ([]byte, error) {
	if track.File == "" {
		return nil, nil
	}
	path := r.abs(track.File)
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		return mp3Picture(path)
	}
	return taggedPicture(path)
}

func mp3Picture(path string) ([]byte, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Attached picture"}})
	if err != nil {
		return nil, err
	}
	defer t.Close()

	for _, frame := range t.GetFrames(t.CommonID("Attached picture")) {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if len(pic.Picture) > 0 {
			return pic.Picture, nil
		}
	}
	return nil, nil
}

func taggedPicture(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mtag.ReadFrom(f)
	if err != nil {
		return nil, err
	}
	pic := m.Picture()
	if pic == nil {
		return nil, nil
	}
	return pic.Data, nil
}

func (r *Resolver) fromSidecar(track model.Track) ([]byte, error) {
	if track.File == "" {
		return nil, nil
	}
	dir := filepath.Dir(r.abs(track.File))
	for _, name := range r.cfg.CoverFilenames {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil && len(data) > 0 {
			return data, nil
		}
	}
	return nil, nil
}

// placeholder never fails: a missing or broken placeholder file
// degrades to a generated solid-color image.
func (r *Resolver) placeholder() *Art {
	if data, err := os.ReadFile(r.cfg.PlaceholderPath); err == nil {
		if img, err := r.img.Decode(data); err == nil {
			return &Art{
				Image:       r.img.Fit(img, r.cfg.MaxSize, r.cfg.MaxSize),
				Bytes:       data,
				Source:      "placeholder",
				Placeholder: true,
			}
		}
	}

	img := r.img.Solid(r.cfg.PlaceholderSize, r.cfg.PlaceholderColor)
	data, _ := r.img.EncodePNG(img)
	return &Art{
		Image:       img,
		Bytes:       data,
		Source:      "placeholder",
		Placeholder: true,
	}
}

func (r *Resolver) abs(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.cfg.Library, file)
}
