// Package model defines the core data structures shared across the
// jukebox, chiefly the immutable Track identity.
//
// # Track
//
// Track represents the currently playing (or selected) song:
//
//	track := model.Track{File: "Artist/Album/01 Song.flac", Artist: "Artist", Title: "Song"}
//	fmt.Println(track.DisplayLine()) // "Artist - Song"
//
// Tracks are value types. State transitions replace the whole Track
// rather than mutating fields, which is what makes stale-artwork
// suppression a simple identity comparison.
package model
