// Package seg abstracts the jukebox's auxiliary numeric display, the
// little 7-segment panel that echoes keypad input and queue length.
//
// The core only talks to the Sink interface; what sits behind it (a
// serial driver, a GPIO expander, a log line) is the binary's choice.
package seg

import "go.uber.org/zap"

// Sink receives the two numbers the jukebox shows on its auxiliary
// display. Implementations own formatting and transport; values
// arrive as plain integers.
type Sink interface {
	// ShowInput displays the keypad entry in progress. blank means
	// nothing is being typed and the digits should go dark.
	ShowInput(value int, blank bool)
	// ShowQueue displays the number of songs waiting in the queue.
	ShowQueue(length int)
}

// LogSink writes display updates to the log. It stands in for real
// display hardware during development and headless operation.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a LogSink. A nil logger discards everything.
func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) ShowInput(value int, blank bool) {
	if blank {
		s.log.Debug("display input blank")
		return
	}
	s.log.Debug("display input", zap.Int("value", value))
}

func (s *LogSink) ShowQueue(length int) {
	s.log.Debug("display queue", zap.Int("length", length))
}

// Nop discards display updates. Useful in tests.
type Nop struct{}

func (Nop) ShowInput(value int, blank bool) {}
func (Nop) ShowQueue(length int)            {}
