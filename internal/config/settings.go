package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// MPD connection
	MPDHost     string `json:"mpd_host"`
	MPDPort     int    `json:"mpd_port"`
	MPDPassword string `json:"mpd_password"`

	// Library and asset paths
	MusicLibrary    string `json:"music_library"`
	SongListPath    string `json:"song_list_path"`
	PlaceholderPath string `json:"placeholder_path"`
	AlbumArtPath    string `json:"album_art_path"` // resolved art is mirrored here as PNG; empty disables

	// Artwork resolution
	CoverFilenames  []string `json:"cover_filenames"`
	ArtworkMaxSize  int      `json:"artwork_max_size"`
	PlaceholderSize int      `json:"placeholder_size"`

	// PlaceholderColor is the RGB fill used when the placeholder file is
	// missing and a solid image has to be generated instead.
	PlaceholderColor [3]uint8 `json:"placeholder_color"`

	// Background gradient
	GradientEdges        [2]string `json:"gradient_edges"` // "left","right","top","bottom"
	GradientNeutralColor [3]uint8  `json:"gradient_neutral_color"`

	// Keypad input
	InputWidth          int     `json:"input_width"`
	InputTimeoutSeconds float64 `json:"input_timeout_seconds"`

	// Notification display durations
	SongInfoSeconds float64 `json:"song_info_seconds"`
	QueuedSeconds   float64 `json:"queued_seconds"`
	CommandSeconds  float64 `json:"command_seconds"`

	// Reconnect behavior
	ReconnectMaxBackoffSeconds float64 `json:"reconnect_max_backoff_seconds"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		MPDHost: "localhost",
		MPDPort: 6600,

		MusicLibrary:    filepath.Join(homeDir, "Music"),
		SongListPath:    filepath.Join(homeDir, "Music", "song_list.txt"),
		PlaceholderPath: filepath.Join(homeDir, ".local", "share", "jukelight", "placeholder.png"),
		AlbumArtPath:    "",

		CoverFilenames: []string{
			"cover.jpg", "folder.jpg", "folder.png",
			"folder.jpeg", "cover.jpeg", "cover.png",
		},
		ArtworkMaxSize:   500,
		PlaceholderSize:  500,
		PlaceholderColor: [3]uint8{0, 0, 0},

		GradientEdges:        [2]string{"left", "right"},
		GradientNeutralColor: [3]uint8{0, 0, 0},

		InputWidth:          4,
		InputTimeoutSeconds: 5,

		SongInfoSeconds: 10,
		QueuedSeconds:   5,
		CommandSeconds:  5,

		ReconnectMaxBackoffSeconds: 10,
	}
}

// Load reads settings from a JSON file.
//
// A missing file is not an error: defaults are returned so a fresh
// install works without any configuration.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, settings.Validate()
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the rest of the program cannot work with.
func (s *Settings) Validate() error {
	if s.MPDPort <= 0 || s.MPDPort > 65535 {
		return fmt.Errorf("invalid mpd_port %d", s.MPDPort)
	}
	if s.InputWidth < 1 {
		return fmt.Errorf("input_width must be at least 1, got %d", s.InputWidth)
	}
	if s.ArtworkMaxSize < 1 {
		return fmt.Errorf("artwork_max_size must be positive, got %d", s.ArtworkMaxSize)
	}
	for _, edge := range s.GradientEdges {
		switch edge {
		case "left", "right", "top", "bottom":
		default:
			return fmt.Errorf("unknown gradient edge %q", edge)
		}
	}
	return nil
}

// MPDAddr returns the host:port dial address for the daemon.
func (s *Settings) MPDAddr() string {
	return fmt.Sprintf("%s:%d", s.MPDHost, s.MPDPort)
}

// InputTimeout returns the keypad inactivity timeout as a duration.
func (s *Settings) InputTimeout() time.Duration {
	return time.Duration(s.InputTimeoutSeconds * float64(time.Second))
}

// ReconnectMaxBackoff returns the backoff ceiling as a duration.
func (s *Settings) ReconnectMaxBackoff() time.Duration {
	return time.Duration(s.ReconnectMaxBackoffSeconds * float64(time.Second))
}

// SongInfoDuration returns how long track metadata stays on screen.
func (s *Settings) SongInfoDuration() time.Duration {
	return time.Duration(s.SongInfoSeconds * float64(time.Second))
}

// QueuedDuration returns how long a queued-song confirmation stays on screen.
func (s *Settings) QueuedDuration() time.Duration {
	return time.Duration(s.QueuedSeconds * float64(time.Second))
}

// CommandDuration returns how long command and failure notices stay on screen.
func (s *Settings) CommandDuration() time.Duration {
	return time.Duration(s.CommandSeconds * float64(time.Second))
}
