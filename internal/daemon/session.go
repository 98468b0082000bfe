package daemon

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"go.uber.org/zap"

	"github.com/jukelight/jukelight/internal/model"
)

// ErrUnavailable is returned by commands while the daemon connection
// is down. Callers surface it as a notification and move on; the
// session keeps reconnecting in the background.
var ErrUnavailable = errors.New("music daemon unavailable")

// ChangeKind classifies a daemon-side state change.
type ChangeKind int

const (
	// Player: playback started, stopped, paused, or moved to another song.
	Player ChangeKind = iota
	// Queue: the play queue was modified.
	Queue
	// Tags: the music database changed underneath us.
	Tags
)

func (k ChangeKind) String() string {
	switch k {
	case Player:
		return "player"
	case Queue:
		return "queue"
	case Tags:
		return "tags"
	default:
		return "unknown"
	}
}

// Change is one daemon-side state change, delivered via Events.
type Change struct {
	Kind ChangeKind
}

// QueueSnapshot is a point-in-time view of the play queue.
type QueueSnapshot struct {
	Length int
	// State is "play", "pause", or "stop".
	State string
	// Pos is the queue position of the current song, -1 when none.
	Pos int
}

// client is the command surface the session needs from the daemon.
// *mpd.Client satisfies it directly; tests substitute a fake.
type client interface {
	Status() (mpd.Attrs, error)
	CurrentSong() (mpd.Attrs, error)
	Add(uri string) error
	Next() error
	Stop() error
	Play(pos int) error
	Clear() error
	ReadPicture(uri string) ([]byte, error)
	AlbumArt(uri string) ([]byte, error)
	Close() error
}

// watcher delivers idle notifications. Wraps *mpd.Watcher in
// production; tests substitute a fake.
type watcher interface {
	Events() <-chan string
	Errors() <-chan error
	Close() error
}

type mpdWatcher struct{ w *mpd.Watcher }

func (m mpdWatcher) Events() <-chan string { return m.w.Event }
func (m mpdWatcher) Errors() <-chan error  { return m.w.Error }
func (m mpdWatcher) Close() error          { return m.w.Close() }

// Session maintains the connection to the music daemon: one command
// client plus one idle watcher, reconnecting both with capped
// exponential backoff whenever the daemon goes away.
//
// Commands are serialized by an internal mutex and fail fast with
// ErrUnavailable while disconnected. State changes stream out of
// Events; after every (re)connect a synthetic Player change is
// emitted so consumers re-sync against whatever happened while the
// connection was down.
//
// Example usage:
//
//	sess := daemon.NewSession("localhost:6600", "", 10*time.Second, log)
//	go sess.Run(ctx)
//
//	for change := range sess.Events() {
//	    // react to change.Kind
//	}
type Session struct {
	addr       string
	password   string
	maxBackoff time.Duration
	log        *zap.Logger

	// Dial seams, replaced in tests.
	dialClient  func() (client, error)
	dialWatcher func() (watcher, error)

	mu sync.Mutex
	c  client

	events chan Change
}

// NewSession creates a session for the daemon at addr (host:port).
// password may be empty. maxBackoff caps the reconnect delay.
func NewSession(addr, password string, maxBackoff time.Duration, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		addr:       addr,
		password:   password,
		maxBackoff: maxBackoff,
		log:        log,
		events:     make(chan Change, 16),
	}
	s.dialClient = func() (client, error) {
		if s.password != "" {
			return mpd.DialAuthenticated("tcp", s.addr, s.password)
		}
		return mpd.Dial("tcp", s.addr)
	}
	s.dialWatcher = func() (watcher, error) {
		w, err := mpd.NewWatcher("tcp", s.addr, s.password, "player", "playlist", "database")
		if err != nil {
			return nil, err
		}
		return mpdWatcher{w: w}, nil
	}
	return s
}

// Events returns the stream of daemon-side changes. The channel is
// closed when Run returns.
func (s *Session) Events() <-chan Change { return s.events }

// Run connects to the daemon and pumps idle notifications into
// Events until ctx is cancelled. Connection loss triggers reconnect
// attempts delayed by min(2^n, maxBackoff) seconds.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.events)
	defer s.dropClient()

	attempt := 0
	for {
		c, w, err := s.connect()
		if err != nil {
			delay := backoff(attempt, s.maxBackoff)
			attempt++
			s.log.Warn("daemon connect failed",
				zap.String("addr", s.addr),
				zap.Duration("retry_in", delay),
				zap.Error(err))
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			continue
		}
		attempt = 0
		s.setClient(c)
		s.log.Info("daemon connected", zap.String("addr", s.addr))

		// Whatever happened while we were away, a Player change makes
		// the consumer fetch fresh state.
		s.emit(ctx, Change{Kind: Player})

		err = s.pump(ctx, w)
		s.dropClient()
		w.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("daemon connection lost", zap.Error(err))
	}
}

// Close tears down the command client. Run's watcher shuts down via
// context cancellation.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil
	}
	err := s.c.Close()
	s.c = nil
	return err
}

// Enqueue appends the song at the given library path to the queue.
func (s *Session) Enqueue(path string) error {
	return s.withClient(func(c client) error { return c.Add(path) })
}

// Skip moves playback to the next queued song.
func (s *Session) Skip() error {
	return s.withClient(func(c client) error { return c.Next() })
}

// Stop halts playback.
func (s *Session) Stop() error {
	return s.withClient(func(c client) error { return c.Stop() })
}

// Play starts or resumes playback at the current queue position.
func (s *Session) Play() error {
	return s.withClient(func(c client) error { return c.Play(-1) })
}

// ClearQueue empties the play queue.
func (s *Session) ClearQueue() error {
	return s.withClient(func(c client) error { return c.Clear() })
}

// Status fetches a snapshot of the play queue.
func (s *Session) Status() (QueueSnapshot, error) {
	snap := QueueSnapshot{Pos: -1}
	err := s.withClient(func(c client) error {
		attrs, err := c.Status()
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		snap.Length, _ = strconv.Atoi(attrs["playlistlength"])
		snap.State = attrs["state"]
		if pos, err := strconv.Atoi(attrs["song"]); err == nil {
			snap.Pos = pos
		}
		return nil
	})
	return snap, err
}

// CurrentSong fetches the song being played. ok is false when the
// daemon reports no current song.
func (s *Session) CurrentSong() (model.Track, bool, error) {
	var track model.Track
	ok := false
	err := s.withClient(func(c client) error {
		attrs, err := c.CurrentSong()
		if err != nil {
			return fmt.Errorf("current song: %w", err)
		}
		if attrs["file"] == "" {
			return nil
		}
		track = model.Track{
			File:   attrs["file"],
			Artist: attrs["Artist"],
			Title:  attrs["Title"],
			Album:  attrs["Album"],
		}
		ok = true
		return nil
	})
	return track, ok, err
}

// ReadPicture asks the daemon for artwork bytes for uri, trying the
// embedded picture first and the directory cover second. Empty data
// with a nil error means the daemon has no artwork for the song.
func (s *Session) ReadPicture(uri string) ([]byte, error) {
	var data []byte
	err := s.withClient(func(c client) error {
		b, err := c.ReadPicture(uri)
		if err == nil && len(b) > 0 {
			data = b
			return nil
		}
		b, err = c.AlbumArt(uri)
		if err != nil {
			// Neither command produced artwork. Not a connection
			// problem, so report "nothing found" rather than failing.
			return nil
		}
		data = b
		return nil
	})
	return data, err
}

func (s *Session) connect() (client, watcher, error) {
	c, err := s.dialClient()
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	w, err := s.dialWatcher()
	if err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("watch: %w", err)
	}
	return c, w, nil
}

func (s *Session) pump(ctx context.Context, w watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case subsystem, open := <-w.Events():
			if !open {
				return errors.New("idle stream closed")
			}
			if kind, relevant := changeKind(subsystem); relevant {
				s.emit(ctx, Change{Kind: kind})
			}
		case err, open := <-w.Errors():
			if !open {
				return errors.New("idle stream closed")
			}
			return err
		}
	}
}

func (s *Session) emit(ctx context.Context, ch Change) {
	select {
	case s.events <- ch:
	case <-ctx.Done():
	}
}

func (s *Session) withClient(fn func(client) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return ErrUnavailable
	}
	return fn(s.c)
}

func (s *Session) setClient(c client) {
	s.mu.Lock()
	s.c = c
	s.mu.Unlock()
}

func (s *Session) dropClient() {
	s.mu.Lock()
	if s.c != nil {
		s.c.Close()
		s.c = nil
	}
	s.mu.Unlock()
}

func changeKind(subsystem string) (ChangeKind, bool) {
	switch subsystem {
	case "player":
		return Player, true
	case "playlist":
		return Queue, true
	case "database":
		return Tags, true
	default:
		return 0, false
	}
}

func backoff(attempt int, max time.Duration) time.Duration {
	if attempt > 6 {
		return max
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > max {
		return max
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
