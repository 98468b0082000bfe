package input

import (
	"strconv"
	"time"
)

// Reserved keypad codes. Typing one of these as a complete entry
// triggers a transport command instead of a song selection.
const (
	CodeSkip  = 9999
	CodeStop  = 8888
	CodePlay  = 7777
	CodeClear = 6666
)

// Action is what a completed keypad entry asks for.
type Action int

const (
	// ActionNone means the digit was absorbed and the entry is still
	// being typed.
	ActionNone Action = iota
	// ActionSelect means a song number is ready; see Result.Number.
	ActionSelect
	ActionSkip
	ActionStop
	ActionPlay
	ActionClear
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSelect:
		return "select"
	case ActionSkip:
		return "skip"
	case ActionStop:
		return "stop"
	case ActionPlay:
		return "play"
	case ActionClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Result is the outcome of feeding a digit or committing the buffer.
type Result struct {
	Action Action
	// Number is the selected song number. Only meaningful when Action
	// is ActionSelect.
	Number int
}

// Machine accumulates keypad digits into song numbers.
//
// Digits accumulate up to a fixed width. Reaching full width commits
// the entry automatically, so a listener who mistypes can simply keep
// typing: every further block of digits forms a fresh entry. Shorter
// entries commit on an explicit Commit (the enter key) or are
// discarded after a period of inactivity, checked both on the next
// keypress and by periodic Expire calls.
//
// Machine is not safe for concurrent use. The controller owns it and
// feeds it from a single goroutine.
type Machine struct {
	width   int
	timeout time.Duration

	buf  []byte
	last time.Time
}

// NewMachine returns a machine accepting entries of the given digit
// width. Entries idle longer than timeout are discarded, checked on
// each keypress and on Expire; a timeout of zero disables expiry.
func NewMachine(width int, timeout time.Duration) *Machine {
	if width < 1 {
		width = 1
	}
	return &Machine{
		width:   width,
		timeout: timeout,
		buf:     make([]byte, 0, width),
	}
}

// Digit feeds one keypad digit (0-9) at time now.
//
// Non-digit bytes are ignored. The returned Result reports whether the
// entry auto-committed by reaching full width.
func (m *Machine) Digit(d byte, now time.Time) Result {
	if d < '0' || d > '9' {
		return Result{Action: ActionNone}
	}

	m.Expire(now)
	m.last = now

	m.buf = append(m.buf, d)
	if len(m.buf) == m.width {
		return m.commit()
	}
	return Result{Action: ActionNone}
}

// Commit finishes the current entry early, as the enter key does.
// Committing an empty buffer is a no-op.
func (m *Machine) Commit(now time.Time) Result {
	m.Expire(now)
	if len(m.buf) == 0 {
		return Result{Action: ActionNone}
	}
	return m.commit()
}

// Value returns the number currently in the buffer and whether the
// buffer holds anything. Used to echo the entry in progress.
func (m *Machine) Value() (int, bool) {
	if len(m.buf) == 0 {
		return 0, false
	}
	n, _ := strconv.Atoi(string(m.buf))
	return n, true
}

// Reset discards the entry in progress.
func (m *Machine) Reset() {
	m.buf = m.buf[:0]
}

// Expire discards the entry in progress once it has been idle longer
// than the timeout. It reports whether anything was discarded. Driven
// by a periodic tick so an abandoned entry goes dark without waiting
// for the next keypress.
func (m *Machine) Expire(now time.Time) bool {
	if m.timeout <= 0 || len(m.buf) == 0 {
		return false
	}
	if now.Sub(m.last) > m.timeout {
		m.buf = m.buf[:0]
		return true
	}
	return false
}

func (m *Machine) commit() Result {
	n, _ := strconv.Atoi(string(m.buf))
	full := len(m.buf) == m.width
	m.buf = m.buf[:0]

	// Reserved codes only fire as full-width entries; a short entry
	// that happens to spell one is an ordinary selection.
	if full {
		switch n {
		case CodeSkip:
			return Result{Action: ActionSkip}
		case CodeStop:
			return Result{Action: ActionStop}
		case CodePlay:
			return Result{Action: ActionPlay}
		case CodeClear:
			return Result{Action: ActionClear}
		}
	}
	return Result{Action: ActionSelect, Number: n}
}
