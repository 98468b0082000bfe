package model

import "path/filepath"

// Track identifies one song known to the music daemon.
//
// A Track is constructed either from a daemon status update or from a
// song-index lookup, and is never mutated afterwards: a track change
// always produces a new Track value that supersedes the previous one.
//
// File is the path exactly as the daemon reports it, relative to the
// music library root. Artist, Title and Album are the daemon-reported
// tags and may be empty for untagged files.
type Track struct {
	// File is the song path relative to the music library root.
	File string

	// Artist is the daemon-reported artist tag, if any.
	Artist string

	// Title is the daemon-reported title tag, if any.
	Title string

	// Album is the daemon-reported album tag, if any.
	Album string
}

// IsZero reports whether the track carries no file identity at all,
// which is how "nothing is playing" is represented.
func (t Track) IsZero() bool {
	return t.File == ""
}

// DisplayTitle returns the title tag, falling back to the file's base
// name for untagged tracks.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return filepath.Base(t.File)
}

// DisplayLine returns a one-line "Artist - Title" description suitable
// for notifications, degrading to whatever metadata is available.
func (t Track) DisplayLine() string {
	title := t.DisplayTitle()
	if t.Artist == "" {
		return title
	}
	return t.Artist + " - " + title
}

// TagFingerprint returns an identity string built from the daemon tags.
// It is used as the cache-key fallback when the underlying file cannot
// be inspected (e.g. the library is remote to this process).
func (t Track) TagFingerprint() string {
	return t.Artist + "\x00" + t.Album + "\x00" + t.Title
}
