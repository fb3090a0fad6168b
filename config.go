package termtext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/termtext/text"
)

// Config is the configuration of a Terminal and its Renderer. It is read
// from TOML by LoadConfig; every field has a default.
type Config struct {
	// Width and Height are the viewport size in pixels.
	// Default: 800 x 400
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// FontPath is a TrueType or OpenType file. Empty selects the built-in
	// Go Mono face.
	FontPath string `toml:"font_path"`

	// Backend names the HAL backend: "vulkan", "metal", "dx12", "gl" or
	// "empty".
	// Default: "vulkan"
	Backend string `toml:"backend"`

	// AtlasSnapshot is a PNG path the atlas is written to after it is
	// built. Empty disables the snapshot.
	AtlasSnapshot string `toml:"atlas_snapshot"`

	// Panes is the number of side-by-side text panes.
	// Default: 2
	Panes int `toml:"panes"`

	// Greeting is the initial text of every pane.
	// Default: "hello world"
	Greeting string `toml:"greeting"`

	Atlas  text.AtlasConfig `toml:"atlas"`
	Cursor CursorConfig     `toml:"cursor"`
	FPS    FPSConfig        `toml:"fps"`
}

// CursorConfig controls the blinking cursor drawn after each pane's text.
type CursorConfig struct {
	// Width in pixels. The height is the font line height.
	// Default: 10
	Width int `toml:"width"`

	// BlinkStep is added to the blink clock every frame. The clock wraps
	// at 256 and the cursor shows On while it is above 127.
	// Default: 5
	BlinkStep uint8 `toml:"blink_step"`

	// Default: [255, 255, 255, 255]
	On [4]uint8 `toml:"on"`
	// Default: [60, 60, 60, 255]
	Off [4]uint8 `toml:"off"`
	// Initial is the color before the first frame.
	// Default: [100, 100, 100, 255]
	Initial [4]uint8 `toml:"initial"`
}

// FPSConfig controls FPSCounter.
type FPSConfig struct {
	// ReportEvery is the frame interval between FPS log lines.
	// Default: 100
	ReportEvery uint64 `toml:"report_every"`

	// ResetEvery is the frame interval after which the average restarts.
	// Default: 180
	ResetEvery uint64 `toml:"reset_every"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Width:    800,
		Height:   400,
		Backend:  "vulkan",
		Panes:    2,
		Greeting: "hello world",
		Atlas:    text.DefaultAtlasConfig(),
		Cursor: CursorConfig{
			Width:     10,
			BlinkStep: 5,
			On:        [4]uint8{255, 255, 255, 255},
			Off:       [4]uint8{60, 60, 60, 255},
			Initial:   [4]uint8{100, 100, 100, 255},
		},
		FPS: FPSConfig{ReportEvery: 100, ResetEvery: 180},
	}
}

var backendNames = map[string]gputypes.Backend{
	"empty":  gputypes.BackendEmpty,
	"noop":   gputypes.BackendEmpty,
	"vulkan": gputypes.BackendVulkan,
	"metal":  gputypes.BackendMetal,
	"dx12":   gputypes.BackendDX12,
	"gl":     gputypes.BackendGL,
}

// ParseBackend maps a backend name to its HAL identifier. Names are case
// insensitive.
func ParseBackend(name string) (gputypes.Backend, error) {
	b, ok := backendNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, name)
	}
	return b, nil
}

// Validate reports the first field that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.Panes <= 0:
		return fmt.Errorf("%w: panes %d", ErrInvalidConfig, c.Panes)
	case c.Cursor.Width < 0:
		return fmt.Errorf("%w: cursor width %d", ErrInvalidConfig, c.Cursor.Width)
	case c.FPS.ReportEvery == 0 || c.FPS.ResetEvery == 0:
		return fmt.Errorf("%w: fps intervals %d/%d", ErrInvalidConfig, c.FPS.ReportEvery, c.FPS.ResetEvery)
	}
	if _, err := ParseBackend(c.Backend); err != nil {
		return err
	}
	if err := c.Atlas.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a TOML file over DefaultConfig. Keys the file leaves out
// keep their defaults; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("termtext: open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		return cfg, fmt.Errorf("termtext: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WriteTOML encodes c in the format LoadConfig reads.
func (c Config) WriteTOML(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("termtext: encode config: %w", err)
	}
	return nil
}

// WatchConfig calls onChange with the new configuration every time the
// file at path is written or re-created, until ctx is done. A reload that
// fails to parse or validate is logged and skipped.
//
// The parent directory is watched, so editors that replace the file on
// save are followed.
func WatchConfig(ctx context.Context, path string, onChange func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("termtext: watch config: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("termtext: watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("termtext: watch config: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := LoadConfig(abs)
			if err != nil {
				Logger().Warn("config reload rejected", "path", abs, "err", err)
				continue
			}
			Logger().Info("config reloaded", "path", abs)
			onChange(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			Logger().Warn("config watcher error", "err", err)
		}
	}
}
