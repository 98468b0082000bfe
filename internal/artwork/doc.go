// Package artwork finds cover art for tracks.
//
// Resolution walks a fixed ladder of strategies and stops at the
// first one that yields a decodable image:
//
//  1. the music daemon's artwork commands (readpicture, albumart)
//  2. art embedded in the audio file's tags (ID3v2 APIC for MP3,
//     FLAC/MP4 pictures for everything else)
//  3. a sidecar cover file next to the track (cover.jpg, folder.png, ...)
//  4. a placeholder image, generated on the fly if the configured
//     placeholder file is missing
//
// The final rung makes resolution total: every track gets an image.
// Results are cached by a fingerprint of the track's file path, mtime
// and size, so a retagged file resolves fresh while an unchanged one
// costs a map lookup.
package artwork
