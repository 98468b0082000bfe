package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jukelight/jukelight/internal/artwork"
	"github.com/jukelight/jukelight/internal/background"
	"github.com/jukelight/jukelight/internal/config"
	"github.com/jukelight/jukelight/internal/controller"
	"github.com/jukelight/jukelight/internal/daemon"
	"github.com/jukelight/jukelight/internal/imaging"
	"github.com/jukelight/jukelight/internal/input"
	"github.com/jukelight/jukelight/internal/seg"
	"github.com/jukelight/jukelight/internal/songindex"
	"github.com/jukelight/jukelight/internal/tui"
)

func main() {
	// Command line flags
	var (
		configFlag   = flag.String("config", "", "Path to config file")
		mpdFlag      = flag.String("mpd", "", "MPD address host:port (overrides config)")
		passwordFlag = flag.String("password", "", "MPD password (overrides config)")
		songsFlag    = flag.String("songs", "", "Path to song list file (overrides config)")
		libraryFlag  = flag.String("library", "", "Music library root (overrides config)")
		headlessFlag = flag.Bool("headless", false, "Run without the terminal UI, log instead")
		logFlag      = flag.String("log", "", "Write logs to this file (default: stderr when headless, discarded otherwise)")
		debugFlag    = flag.Bool("debug", false, "Enable debug logging")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *mpdFlag != "" {
		host, port, err := splitAddr(*mpdFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -mpd address: %v\n", err)
			os.Exit(1)
		}
		settings.MPDHost, settings.MPDPort = host, port
	}
	if *passwordFlag != "" {
		settings.MPDPassword = *passwordFlag
	}
	if *songsFlag != "" {
		settings.SongListPath = *songsFlag
	}
	if *libraryFlag != "" {
		settings.MusicLibrary = *libraryFlag
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(*logFlag, *headlessFlag, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("interrupted, shutting down")
		cancel()
	}()

	if err := run(ctx, cancel, settings, *headlessFlag, log); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc, settings *config.Settings, headless bool, log *zap.Logger) error {
	index, err := songindex.Load(settings.SongListPath)
	if err != nil {
		return fmt.Errorf("song list %s: %w", settings.SongListPath, err)
	}
	log.Info("song list loaded",
		zap.String("path", settings.SongListPath),
		zap.Int("songs", index.Len()))

	sess := daemon.NewSession(settings.MPDAddr(), settings.MPDPassword,
		settings.ReconnectMaxBackoff(), log.Named("daemon"))
	defer sess.Close()

	resolver := artwork.NewResolver(artwork.Config{
		Library:         settings.MusicLibrary,
		CoverFilenames:  settings.CoverFilenames,
		MaxSize:         settings.ArtworkMaxSize,
		PlaceholderPath: settings.PlaceholderPath,
		PlaceholderSize: settings.PlaceholderSize,
		PlaceholderColor: color.RGBA{
			R: settings.PlaceholderColor[0],
			G: settings.PlaceholderColor[1],
			B: settings.PlaceholderColor[2],
			A: 255,
		},
	}, sess, imaging.NewService(), log.Named("artwork"))

	machine := input.NewMachine(settings.InputWidth, settings.InputTimeout())
	sink := seg.NewLogSink(log.Named("seg"))

	// The UI gets snapshots through a channel that never blocks the
	// controller: when the UI lags, old frames are dropped.
	displayCh := make(chan controller.DisplayState, 64)
	onDisplay := func(s controller.DisplayState) {
		for {
			select {
			case displayCh <- s:
				return
			default:
				select {
				case <-displayCh:
				default:
				}
			}
		}
	}

	ctrl := controller.New(controller.Config{
		Edges: [2]background.Edge{
			background.Edge(settings.GradientEdges[0]),
			background.Edge(settings.GradientEdges[1]),
		},
		Neutral:      settings.GradientNeutralColor,
		SongInfoFor:  settings.SongInfoDuration(),
		QueuedFor:    settings.QueuedDuration(),
		CommandFor:   settings.CommandDuration(),
		AlbumArtPath: settings.AlbumArtPath,
	}, sess, resolver, index, machine, sess.Events(), sink, onDisplay, log.Named("controller"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(ctx) })
	g.Go(func() error { return ctrl.Run(ctx) })

	if headless {
		log.Info("running headless", zap.String("mpd", settings.MPDAddr()))
		g.Go(func() error {
			// Drain snapshots so the drop-oldest path stays quiet.
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-displayCh:
				}
			}
		})
	} else {
		g.Go(func() error {
			defer cancel()
			return tui.Run(ctrl, displayCh)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func buildLogger(path string, headless, debug bool) (*zap.Logger, error) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	switch {
	case path != "":
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	case headless:
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	default:
		// The TUI owns the terminal; unrouted logs would corrupt it.
		return zap.NewNop(), nil
	}
	return cfg.Build()
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// Bare hostname, default port.
		return addr, 6600, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("bad port %q", portStr)
	}
	return host, port, nil
}
