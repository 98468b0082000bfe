// Package input turns raw keypad digits into song selections and
// transport commands.
//
// A Machine buffers digits up to a fixed width (4 by default). An
// entry commits when it reaches full width, or earlier via Commit
// (the enter key); an entry left idle past the timeout is discarded.
//
// Full-width entries matching a reserved code become transport
// commands instead of selections:
//
//	9999  skip to the next song
//	8888  stop playback
//	7777  start or resume playback
//	6666  clear the queue
//
// # Usage
//
//	m := input.NewMachine(4, 5*time.Second)
//	res := m.Digit('4', time.Now())
//	if res.Action == input.ActionSelect {
//	    // res.Number holds the song number
//	}
package input
