// Package songindex maps keypad song numbers to library file paths.
//
// The mapping comes from a plain text file with one path per line; the
// line number (1-based, counting only non-blank, non-comment lines) is
// the number a listener punches in.
//
// # Usage
//
//	idx, err := songindex.Load("/home/pi/Music/song_list.txt")
//	if err != nil {
//	    // empty or unreadable list
//	}
//
//	path, err := idx.Resolve(42)
//	if errors.Is(err, songindex.ErrOutOfRange) {
//	    // number not on the list
//	}
//
// The index never guesses: a number either maps to exactly the path on
// that line of the file, or resolution fails.
package songindex
