// Package controller runs the jukebox's central event loop.
//
// One goroutine owns all mutable state. Keypad digits, daemon state
// changes, artwork results and notification expiry all arrive as
// events on a single channel, so no mutation ever races another.
//
// The loop's outputs are DisplayState snapshots pushed through a
// callback after every change, numeric echoes pushed to the seg.Sink,
// and commands issued to the daemon session.
//
// Artwork resolution is the only slow operation, so it runs on one
// background worker. Each result is stamped with the fingerprint of
// the track it was resolved for; a result arriving after the player
// has moved on is discarded, which keeps the displayed artwork in
// lockstep with the displayed track no matter how fast songs change.
package controller
