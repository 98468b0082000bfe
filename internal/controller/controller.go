package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/jukelight/jukelight/internal/artwork"
	"github.com/jukelight/jukelight/internal/background"
	"github.com/jukelight/jukelight/internal/daemon"
	"github.com/jukelight/jukelight/internal/imaging"
	"github.com/jukelight/jukelight/internal/input"
	"github.com/jukelight/jukelight/internal/model"
	"github.com/jukelight/jukelight/internal/seg"
)

// session is the slice of daemon.Session the controller drives.
type session interface {
	Enqueue(path string) error
	Skip() error
	Stop() error
	Play() error
	ClearQueue() error
	Status() (daemon.QueueSnapshot, error)
	CurrentSong() (model.Track, bool, error)
}

// resolver is the slice of artwork.Resolver the controller drives.
type resolver interface {
	Resolve(track model.Track) (*artwork.Art, error)
	Fingerprint(track model.Track) string
	InvalidateAll()
}

// index is the slice of songindex.Index the controller drives.
type index interface {
	Resolve(n int) (string, error)
	Reload() error
	Len() int
}

// Config collects the controller's tunables.
type Config struct {
	// Gradient derivation.
	Edges   [2]background.Edge
	Neutral [3]uint8

	// Notification lifetimes.
	SongInfoFor time.Duration
	QueuedFor   time.Duration
	CommandFor  time.Duration

	// AlbumArtPath, when set, receives the current artwork as a PNG
	// file after every resolution.
	AlbumArtPath string
}

// NotificationKind classifies a transient on-screen message.
type NotificationKind int

const (
	// SongInfo announces the track that just started playing.
	SongInfo NotificationKind = iota
	// Queued confirms a successful selection.
	Queued
	// Command confirms a transport command.
	Command
	// Failure reports a selection or command that went wrong.
	Failure
)

// Notification is a transient message with an expiry stamped by the
// controller.
type Notification struct {
	Kind      NotificationKind
	Text      string
	ExpiresAt time.Time
}

// DisplayState is a point-in-time snapshot of everything a frontend
// renders. Published by value; frontends never share memory with the
// controller.
type DisplayState struct {
	Track    model.Track
	HasTrack bool

	// Art is the resolved artwork for Track, nil while nothing has
	// been resolved yet.
	Art      *artwork.Art
	Gradient background.Gradient
	// Resolving is true between a track change and the arrival of its
	// artwork.
	Resolving bool

	Queue daemon.QueueSnapshot

	// InputValue echoes the keypad entry in progress.
	InputValue  int
	InputActive bool

	Notifications []Notification
}

type event interface{ isEvent() }

type digitEvent struct{ d byte }
type commitEvent struct{}
type reloadEvent struct{}
type artResult struct {
	fingerprint string
	art         *artwork.Art
	gradient    background.Gradient
}

func (digitEvent) isEvent()  {}
func (commitEvent) isEvent() {}
func (reloadEvent) isEvent() {}
func (artResult) isEvent()   {}

// Controller ties the jukebox together: keypad input, the song index,
// the daemon session, and artwork resolution all meet in one event
// loop, whose single goroutine owns all mutable state.
//
// Frontends feed keys in via Digit, Commit and Reload, and receive
// DisplayState snapshots through the OnDisplay callback. Artwork
// resolution runs on one background worker; its results carry the
// track fingerprint they were computed for, and results that arrive
// after the track has moved on are dropped.
type Controller struct {
	cfg     Config
	sess    session
	res     resolver
	idx     index
	machine *input.Machine
	img     *imaging.Service
	sink    seg.Sink
	log     *zap.Logger

	changes <-chan daemon.Change
	events  chan event
	jobs    chan model.Track

	onDisplay func(DisplayState)
	now       func() time.Time

	// Loop-owned state.
	state     DisplayState
	currentFP string
}

// New creates a controller. sink may be nil (display updates are
// dropped), onDisplay may be nil (snapshots are dropped).
func New(cfg Config, sess session, res resolver, idx index, machine *input.Machine,
	changes <-chan daemon.Change, sink seg.Sink, onDisplay func(DisplayState), log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = seg.Nop{}
	}
	if onDisplay == nil {
		onDisplay = func(DisplayState) {}
	}
	return &Controller{
		cfg:       cfg,
		sess:      sess,
		res:       res,
		idx:       idx,
		machine:   machine,
		img:       imaging.NewService(),
		sink:      sink,
		log:       log,
		changes:   changes,
		events:    make(chan event, 32),
		jobs:      make(chan model.Track, 1),
		onDisplay: onDisplay,
		now:       time.Now,
	}
}

// Digit feeds one keypad digit into the controller.
func (c *Controller) Digit(d byte) { c.events <- digitEvent{d: d} }

// Commit finishes the keypad entry in progress, as the confirm key.
func (c *Controller) Commit() { c.events <- commitEvent{} }

// Reload re-reads the song index and flushes the artwork cache.
// Wired to the library-rescan key.
func (c *Controller) Reload() { c.events <- reloadEvent{} }

// Run drives the event loop until ctx is cancelled. It starts the
// artwork worker and performs an initial sync against the daemon.
func (c *Controller) Run(ctx context.Context) error {
	go c.artworkWorker(ctx)

	c.syncPlayer()
	c.syncQueue()
	c.publish()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ev)
			c.publish()
		case ch, open := <-c.changes:
			if !open {
				c.changes = nil
				continue
			}
			c.handleChange(ch)
			c.publish()
		case <-ticker.C:
			changed := c.expireNotifications()
			if c.machine.Expire(c.now()) {
				c.echoInput()
				changed = true
			}
			if changed {
				c.publish()
			}
		}
	}
}

func (c *Controller) handle(ev event) {
	switch ev := ev.(type) {
	case digitEvent:
		res := c.machine.Digit(ev.d, c.now())
		c.applyInput(res)
	case commitEvent:
		res := c.machine.Commit(c.now())
		c.applyInput(res)
	case reloadEvent:
		c.reload()
	case artResult:
		c.applyArt(ev)
	}
}

func (c *Controller) applyInput(res input.Result) {
	switch res.Action {
	case input.ActionNone:
	case input.ActionSelect:
		c.selectSong(res.Number)
	case input.ActionSkip:
		c.command("Skipping", c.sess.Skip)
	case input.ActionStop:
		c.command("Stopping playback", c.sess.Stop)
	case input.ActionPlay:
		c.command("Starting playback", c.sess.Play)
	case input.ActionClear:
		c.command("Clearing queue", c.sess.ClearQueue)
	}
	c.echoInput()
}

func (c *Controller) selectSong(n int) {
	path, err := c.idx.Resolve(n)
	if err != nil {
		c.log.Info("selection rejected", zap.Int("song", n), zap.Error(err))
		c.notify(Failure, fmt.Sprintf("No song %d", n), c.cfg.CommandFor)
		return
	}
	if err := c.sess.Enqueue(path); err != nil {
		c.log.Warn("enqueue failed", zap.Int("song", n), zap.String("path", path), zap.Error(err))
		c.notify(Failure, fmt.Sprintf("Could not queue song %d", n), c.cfg.CommandFor)
		return
	}
	c.log.Info("song queued", zap.Int("song", n), zap.String("path", path))
	c.notify(Queued, fmt.Sprintf("Queued song %d", n), c.cfg.QueuedFor)
	c.syncQueue()
}

func (c *Controller) command(text string, fn func() error) {
	if err := fn(); err != nil {
		c.log.Warn("command failed", zap.String("command", text), zap.Error(err))
		c.notify(Failure, "Jukebox unavailable", c.cfg.CommandFor)
		return
	}
	c.notify(Command, text, c.cfg.CommandFor)
	c.syncQueue()
}

func (c *Controller) handleChange(ch daemon.Change) {
	switch ch.Kind {
	case daemon.Player, daemon.Tags:
		c.syncPlayer()
		c.syncQueue()
	case daemon.Queue:
		c.syncQueue()
	}
}

// syncPlayer refreshes the current track and kicks off artwork
// resolution when the track actually changed.
func (c *Controller) syncPlayer() {
	track, ok, err := c.sess.CurrentSong()
	if err != nil {
		c.log.Warn("current song fetch failed", zap.Error(err))
		return
	}
	if !ok {
		c.state.Track = model.Track{}
		c.state.HasTrack = false
		c.state.Art = nil
		c.state.Resolving = false
		c.state.Gradient = c.neutralGradient()
		c.currentFP = ""
		return
	}

	fp := c.res.Fingerprint(track)
	if fp == c.currentFP {
		return
	}
	c.currentFP = fp
	c.state.Track = track
	c.state.HasTrack = true
	c.state.Resolving = true
	c.notify(SongInfo, track.DisplayLine(), c.cfg.SongInfoFor)
	c.dispatchArtwork(track)
}

func (c *Controller) syncQueue() {
	snap, err := c.sess.Status()
	if err != nil {
		c.log.Warn("status fetch failed", zap.Error(err))
		return
	}
	c.state.Queue = snap
	c.sink.ShowQueue(snap.Length)
}

// dispatchArtwork hands the track to the worker, replacing any job
// still waiting. Only the newest track is worth resolving.
func (c *Controller) dispatchArtwork(track model.Track) {
	for {
		select {
		case c.jobs <- track:
			return
		default:
			select {
			case <-c.jobs:
			default:
			}
		}
	}
}

func (c *Controller) artworkWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case track := <-c.jobs:
			fp := c.res.Fingerprint(track)
			art, err := c.res.Resolve(track)
			if err != nil || art == nil {
				c.log.Warn("artwork resolution failed", zap.String("file", track.File), zap.Error(err))
				continue
			}
			grad := background.FromEdges(art.Image, c.cfg.Edges[0], c.cfg.Edges[1], c.neutralColor())
			select {
			case c.events <- artResult{fingerprint: fp, art: art, gradient: grad}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *Controller) applyArt(res artResult) {
	// Results for a track we have already moved past are stale.
	if res.fingerprint != c.currentFP {
		c.log.Debug("stale artwork result dropped", zap.String("fingerprint", res.fingerprint))
		return
	}
	c.state.Art = res.art
	c.state.Gradient = res.gradient
	c.state.Resolving = false

	if c.cfg.AlbumArtPath != "" {
		if err := c.img.WritePNG(c.cfg.AlbumArtPath, res.art.Image); err != nil {
			c.log.Warn("album art mirror failed", zap.String("path", c.cfg.AlbumArtPath), zap.Error(err))
		}
	}
}

func (c *Controller) reload() {
	if err := c.idx.Reload(); err != nil {
		c.log.Warn("song list reload failed", zap.Error(err))
		c.notify(Failure, "Song list reload failed", c.cfg.CommandFor)
		return
	}
	c.res.InvalidateAll()
	c.notify(Command, fmt.Sprintf("Song list reloaded, %d songs", c.idx.Len()), c.cfg.CommandFor)

	// The cached art for the current track is gone; resolve it again.
	if c.state.HasTrack {
		c.state.Resolving = true
		c.dispatchArtwork(c.state.Track)
	}
}

func (c *Controller) notify(kind NotificationKind, text string, ttl time.Duration) {
	c.state.Notifications = append(c.state.Notifications, Notification{
		Kind:      kind,
		Text:      text,
		ExpiresAt: c.now().Add(ttl),
	})
}

func (c *Controller) expireNotifications() bool {
	now := c.now()
	kept := c.state.Notifications[:0]
	for _, n := range c.state.Notifications {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		}
	}
	changed := len(kept) != len(c.state.Notifications)
	c.state.Notifications = kept
	return changed
}

func (c *Controller) echoInput() {
	v, active := c.machine.Value()
	c.state.InputValue = v
	c.state.InputActive = active
	c.sink.ShowInput(v, !active)
}

func (c *Controller) publish() {
	snapshot := c.state
	snapshot.Notifications = append([]Notification(nil), c.state.Notifications...)
	c.onDisplay(snapshot)
}

func (c *Controller) neutralColor() colorful.Color {
	return colorful.Color{
		R: float64(c.cfg.Neutral[0]) / 255,
		G: float64(c.cfg.Neutral[1]) / 255,
		B: float64(c.cfg.Neutral[2]) / 255,
	}
}

func (c *Controller) neutralGradient() background.Gradient {
	n := c.neutralColor()
	return background.Gradient{Start: n, End: n}
}
