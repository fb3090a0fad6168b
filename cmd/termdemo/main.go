// Command termdemo renders a two-pane termtext terminal offscreen while a
// writer goroutine streams text into the panes.
//
// Usage:
//
//	termdemo [-config term.toml] [-frames 300] [-backend vulkan] [-watch]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/termtext"
)

const sample = "the quick brown fox jumps over the lazy dog; " +
	"pack my box with five dozen liquor jugs. " +
	"sphinx of black quartz, judge my vow! 0123456789 "

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		frames     = flag.Int("frames", 300, "frames to render, 0 renders until interrupted")
		interval   = flag.Duration("interval", 16*time.Millisecond, "time between frames")
		backend    = flag.String("backend", "", "HAL backend: vulkan, metal, dx12, gl or empty")
		width      = flag.Int("width", 0, "viewport width in pixels")
		height     = flag.Int("height", 0, "viewport height in pixels")
		fontPath   = flag.String("font", "", "TrueType/OpenType font file")
		atlasPNG   = flag.String("atlas-png", "", "write the font atlas to this PNG")
		level      = flag.String("log-level", "info", "log level: debug, info, warn, error")
		watch      = flag.Bool("watch", false, "reload cursor and FPS settings when the config file changes")
		dump       = flag.Bool("dump-config", false, "print the effective config as TOML and exit")
	)
	flag.Parse()

	lvl, err := log.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "termdemo",
		Level:           lvl,
	})
	termtext.SetLogger(slog.New(logger))

	cfg := termtext.DefaultConfig()
	if *configPath != "" {
		cfg, err = termtext.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("load config", "err", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "font":
			cfg.FontPath = *fontPath
		case "atlas-png":
			cfg.AtlasSnapshot = *atlasPNG
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", "err", err)
	}
	if *dump {
		if err := cfg.WriteTOML(os.Stdout); err != nil {
			logger.Fatal("dump config", "err", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := <-termtext.SpawnTerminal(cfg)
	if res.Err != nil {
		logger.Fatal("start terminal", "err", res.Err)
	}
	term := res.Terminal
	defer term.Close()

	if *watch && *configPath != "" {
		go func() {
			if err := termtext.WatchConfig(ctx, *configPath, term.ApplyConfig); err != nil {
				logger.Warn("config watch stopped", "err", err)
			}
		}()
	}

	go stream(ctx, term)

	if err := run(ctx, term, *frames, *interval); err != nil {
		logger.Error("render", "err", err)
		term.Close()
		os.Exit(1)
	}
	logger.Info("done", "frames", term.Frames())
}

// run renders frames until n are done or ctx is cancelled.
func run(ctx context.Context, term *termtext.Terminal, n int, interval time.Duration) error {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for i := 0; n == 0 || i < n; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
		if err := term.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// stream writes slices of sample text into the panes in turn.
func stream(ctx context.Context, term *termtext.Terminal) {
	text := strings.Repeat(sample, 4)
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Millisecond):
		}
		start := (i * 50) % len(sample)
		pane := i % term.Panes()
		if _, err := fmt.Fprintln(term.Window(pane), text[start:start+50]); err != nil {
			termtext.Logger().Warn("write pane", "pane", pane, "err", err)
			return
		}
	}
}
