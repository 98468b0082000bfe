// Package background derives a display background gradient from the
// edge colors of the current cover art.
//
// Two edges of the image (left and right by default) are sampled at
// up to 20 evenly spaced points each and averaged per channel. The
// resulting pair of colors makes a gradient that blends the artwork
// into the rest of the screen. Degenerate input falls back to a
// caller-supplied neutral color, so the derivation never fails.
package background
