package termtext

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gpucontext"
)

func TestNewTerminalPanes(t *testing.T) {
	term := newTestTerminal(t, testConfig())

	if term.Panes() != 2 {
		t.Fatalf("Panes = %d, want 2", term.Panes())
	}
	wantTopLeft := []image.Point{image.Pt(10, 390), image.Pt(420, 390)}
	for i, want := range wantTopLeft {
		s, err := term.Text(i)
		if err != nil || s != "hello world" {
			t.Errorf("pane %d text = %q, %v", i, s, err)
		}
		tl, err := term.TopLeft(i)
		if err != nil || tl != want {
			t.Errorf("pane %d top-left = %v, %v; want %v", i, tl, err, want)
		}
		c, err := term.Cursor(i)
		if err != nil {
			t.Fatal(err)
		}
		if c.Color != [4]uint8{100, 100, 100, 255} || c.W != 10 {
			t.Errorf("pane %d initial cursor = %+v", i, c)
		}
	}
	if _, ok := term.Stats(0); ok {
		t.Error("Stats available before the first frame")
	}
}

func TestNewTerminalErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Panes = 0
	if _, err := NewTerminal(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero panes: err = %v, want ErrInvalidConfig", err)
	}

	cfg = testConfig()
	cfg.FontPath = filepath.Join(t.TempDir(), "missing.ttf")
	if _, err := NewTerminal(cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing font: err = %v, want ErrNotExist", err)
	}
}

func TestTerminalWindow(t *testing.T) {
	term := newTestTerminal(t, testConfig())

	fmt.Fprintln(term.Window(1), "line one")
	fmt.Fprint(term.Window(1), "two")
	got, err := term.Text(1)
	if err != nil {
		t.Fatal(err)
	}
	if want := "hello worldline one\rtwo"; got != want {
		t.Errorf("pane 1 = %q, want %q", got, want)
	}
	if s, _ := term.Text(0); s != "hello world" {
		t.Errorf("pane 0 changed to %q", s)
	}

	if err := term.Clear(1); err != nil {
		t.Fatal(err)
	}
	if s, _ := term.Text(1); s != "" {
		t.Errorf("pane 1 after Clear = %q", s)
	}

	n, err := term.Window(7).Write([]byte("x"))
	if !errors.Is(err, ErrNoPane) || n != 0 {
		t.Errorf("Write to pane 7 = %d, %v; want 0, ErrNoPane", n, err)
	}
}

func TestTerminalFrameCursor(t *testing.T) {
	term := newTestTerminal(t, testConfig())

	if err := term.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if term.Frames() != 1 {
		t.Errorf("Frames = %d, want 1", term.Frames())
	}
	for i := range term.Panes() {
		st, ok := term.Stats(i)
		if !ok {
			t.Fatalf("pane %d has no stats after a frame", i)
		}
		c, _ := term.Cursor(i)
		if c.X != st.Max.X.Floor() || c.Y != st.Max.Y.Floor() {
			t.Errorf("pane %d cursor at (%d,%d), want text end (%d,%d)",
				i, c.X, c.Y, st.Max.X.Floor(), st.Max.Y.Floor())
		}
		if c.Color != [4]uint8{60, 60, 60, 255} {
			t.Errorf("pane %d cursor color after 1 frame = %v, want off", i, c.Color)
		}
	}

	// The blink clock passes 127 on frame 26.
	for range 25 {
		if err := term.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	if c, _ := term.Cursor(0); c.Color != [4]uint8{255, 255, 255, 255} {
		t.Errorf("cursor color after 26 frames = %v, want on", c.Color)
	}
}

func TestTerminalAutoScroll(t *testing.T) {
	term := newTestTerminal(t, testConfig())
	lineHeight := term.renderer.Atlas().LineHeight()

	if err := term.Append(0, strings.Repeat("\r", 60)); err != nil {
		t.Fatal(err)
	}
	if err := term.Frame(); err != nil {
		t.Fatal(err)
	}
	st, _ := term.Stats(0)
	if st.Max.Y >= lineHeight {
		t.Fatalf("test text does not reach the bottom: max y %v", st.Max.Y)
	}

	if err := term.Frame(); err != nil {
		t.Fatal(err)
	}
	tl, _ := term.TopLeft(0)
	if want := 390 + (lineHeight - st.Max.Y).Floor(); tl.Y != want {
		t.Errorf("pane 0 top after scroll = %d, want %d", tl.Y, want)
	}
	st, _ = term.Stats(0)
	if st.Max.Y <= lineHeight-64 {
		t.Errorf("last baseline %v still off screen", st.Max.Y)
	}
	if tl, _ := term.TopLeft(1); tl.Y != 390 {
		t.Errorf("pane 1 scrolled to %d", tl.Y)
	}
}

func TestTerminalInput(t *testing.T) {
	term := newTestTerminal(t, testConfig())
	in := term.Input()

	in.TypeText("Hi")
	in.KeyPress(gpucontext.KeyEnter, 0)
	in.KeyPress(gpucontext.KeyA, gpucontext.ModShift)
	in.TypeText("q")
	if err := term.Frame(); err != nil {
		t.Fatal(err)
	}
	if s, _ := term.Text(0); s != "hello worldhi\rQ" {
		t.Errorf("pane 0 = %q", s)
	}

	// Scroll goes to the pane under the mouse.
	in.MoveMouse(500, 20)
	in.Scroll(0, 15)
	if err := term.Frame(); err != nil {
		t.Fatal(err)
	}
	if tl, _ := term.TopLeft(1); tl.Y != 405 {
		t.Errorf("pane 1 top = %d, want 405", tl.Y)
	}
	if tl, _ := term.TopLeft(0); tl.Y != 390 {
		t.Errorf("pane 0 top = %d, want 390", tl.Y)
	}

	if err := term.SetActivePane(1); err != nil {
		t.Fatal(err)
	}
	in.KeyRelease(gpucontext.KeyLeftShift, 0)
	in.TypeText("z")
	if err := term.Frame(); err != nil {
		t.Fatal(err)
	}
	if s, _ := term.Text(1); !strings.HasSuffix(s, "z") {
		t.Errorf("typed text not in active pane: %q", s)
	}
	if err := term.SetActivePane(2); !errors.Is(err, ErrNoPane) {
		t.Errorf("SetActivePane(2) = %v, want ErrNoPane", err)
	}
}

func TestTerminalApplyConfig(t *testing.T) {
	term := newTestTerminal(t, testConfig())

	cfg := testConfig()
	cfg.Cursor.Off = [4]uint8{1, 2, 3, 4}
	cfg.Cursor.Width = 4
	term.ApplyConfig(cfg)
	if err := term.Frame(); err != nil {
		t.Fatal(err)
	}
	c, _ := term.Cursor(0)
	if c.Color != cfg.Cursor.Off || c.W != 4 {
		t.Errorf("cursor after reload = %+v", c)
	}
}

func TestTerminalConcurrentWriters(t *testing.T) {
	term := newTestTerminal(t, testConfig())

	var wg sync.WaitGroup
	for pane := range term.Panes() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				fmt.Fprintf(term.Window(pane), "%d\n", i)
			}
		}()
	}
	for range 10 {
		if err := term.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	if err := term.Frame(); err != nil {
		t.Fatal(err)
	}
	for pane := range term.Panes() {
		s, _ := term.Text(pane)
		if n := strings.Count(s, "\r"); n != 50 {
			t.Errorf("pane %d has %d lines, want 50", pane, n)
		}
	}
}

func TestTerminalAtlasSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.AtlasSnapshot = filepath.Join(t.TempDir(), "atlas.png")
	newTestTerminal(t, cfg)

	data, err := os.ReadFile(cfg.AtlasSnapshot)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "\x89PNG") {
		t.Error("snapshot is not a PNG")
	}
}

func TestTerminalClose(t *testing.T) {
	term, err := NewTerminal(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	term.Close()
	term.Close()
	if err := term.Frame(); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Frame after Close = %v, want ErrRendererClosed", err)
	}
}
