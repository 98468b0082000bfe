// Package config provides configuration management for jukelight.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation of the handful of settings that can brick the jukebox
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// MPD at localhost:6600
//	// Song list at ~/Music/song_list.txt
//	// 4-digit keypad input, 5 second inactivity timeout
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Configuration Options
//
// Settings includes options for:
//   - MPD host, port, and password
//   - Music library, song list, and placeholder image paths
//   - Recognized sidecar cover filenames
//   - Keypad input width and timeout
//   - Notification display durations
//   - Reconnect backoff ceiling
package config
