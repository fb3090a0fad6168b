package termtext

import (
	"fmt"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/termtext/internal/slotmap"
	"github.com/gogpu/termtext/text"
)

// Terminal is a row of side-by-side text panes, each with a blinking
// cursor after its last glyph. Text arrives through the io.Writer of each
// pane and from host input; Frame draws the current state.
//
// All methods are safe for concurrent use.
type Terminal struct {
	mu sync.Mutex

	cfg      Config
	renderer *Renderer
	input    *InputState
	fps      *FPSCounter
	panes    []pane
	active   int
	clock    uint8
}

type pane struct {
	text   slotmap.Handle
	cursor slotmap.Handle
	left   int
	right  int
}

// NewTerminal builds the font atlas, opens a device on cfg.Backend and
// lays out cfg.Panes panes showing cfg.Greeting.
func NewTerminal(cfg Config) (*Terminal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	atlas, err := LoadFontAtlas(cfg)
	if err != nil {
		return nil, err
	}
	r, err := NewRenderer(cfg, atlas)
	if err != nil {
		return nil, err
	}
	return newTerminal(cfg, r), nil
}

// NewTerminalFromProvider is NewTerminal drawing with a host
// application's device.
func NewTerminalFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Terminal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	atlas, err := LoadFontAtlas(cfg)
	if err != nil {
		return nil, err
	}
	r, err := NewRendererFromProvider(provider, cfg, atlas)
	if err != nil {
		return nil, err
	}
	return newTerminal(cfg, r), nil
}

func newTerminal(cfg Config, r *Renderer) *Terminal {
	t := &Terminal{
		cfg:      cfg,
		renderer: r,
		input:    NewInputState(),
		fps:      NewFPSCounter(cfg.FPS),
	}
	lineHeight := r.Atlas().LineHeight().Floor()
	col := cfg.Width / cfg.Panes
	for i := range cfg.Panes {
		topLeft := image.Pt(i*col+10*(i+1), cfg.Height-10)
		obj := text.NewTextObject(cfg.Greeting, topLeft, col-10)
		cursor := RectObject{W: cfg.Cursor.Width, H: lineHeight, Color: cfg.Cursor.Initial}
		t.panes = append(t.panes, pane{
			text:   r.Texts().AddText(*obj),
			cursor: r.Rects().AddRect(cursor),
			left:   i * col,
			right:  (i + 1) * col,
		})
	}
	return t
}

// Panes returns the number of panes.
func (t *Terminal) Panes() int { return len(t.panes) }

// Input returns the state host events are fed into.
func (t *Terminal) Input() *InputState { return t.input }

// AttachEvents feeds host events from src into the terminal's input.
func (t *Terminal) AttachEvents(src gpucontext.EventSource) { t.input.Attach(src) }

func (t *Terminal) pane(n int) (*pane, error) {
	if n < 0 || n >= len(t.panes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoPane, n, len(t.panes))
	}
	return &t.panes[n], nil
}

// Append adds s to the end of pane n.
func (t *Terminal) Append(n int, s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pane(n)
	if err != nil {
		return err
	}
	return t.renderer.Texts().AppendText(p.text, s)
}

// SetText replaces the text of pane n.
func (t *Terminal) SetText(n int, s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pane(n)
	if err != nil {
		return err
	}
	return t.renderer.Texts().SetText(p.text, s)
}

// Clear empties pane n.
func (t *Terminal) Clear(n int) error { return t.SetText(n, "") }

// Text returns the text of pane n.
func (t *Terminal) Text(n int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pane(n)
	if err != nil {
		return "", err
	}
	obj, err := t.renderer.Texts().Text(p.text)
	if err != nil {
		return "", err
	}
	return obj.Text, nil
}

// TopLeft returns where pane n's text currently starts.
func (t *Terminal) TopLeft(n int) (image.Point, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pane(n)
	if err != nil {
		return image.Point{}, err
	}
	obj, err := t.renderer.Texts().Text(p.text)
	if err != nil {
		return image.Point{}, err
	}
	return obj.TopLeft, nil
}

// Stats returns the extent of pane n's text as of the last frame.
func (t *Terminal) Stats(n int) (text.TextInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pane(n)
	if err != nil {
		return text.TextInfo{}, false
	}
	return t.renderer.Texts().Stats(p.text)
}

// Cursor returns the cursor rectangle of pane n.
func (t *Terminal) Cursor(n int) (RectObject, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pane(n)
	if err != nil {
		return RectObject{}, err
	}
	r, err := t.renderer.Rects().Rect(p.cursor)
	if err != nil {
		return RectObject{}, err
	}
	return *r, nil
}

// Scroll moves pane n by d pixels, y up.
func (t *Terminal) Scroll(n int, d image.Point) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.pane(n)
	if err != nil {
		return err
	}
	return t.renderer.Texts().AddOffset(p.text, d)
}

// SetActivePane selects the pane typed text goes to.
func (t *Terminal) SetActivePane(n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.pane(n); err != nil {
		return err
	}
	t.active = n
	return nil
}

// ApplyConfig takes over the cursor and FPS settings of cfg. The other
// fields only take effect in a new Terminal.
func (t *Terminal) ApplyConfig(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.Cursor = cfg.Cursor
	if cfg.FPS != t.cfg.FPS {
		t.cfg.FPS = cfg.FPS
		t.fps = NewFPSCounter(cfg.FPS)
	}
}

// paneAt returns the pane whose column contains x.
func (t *Terminal) paneAt(x int) int {
	for i, p := range t.panes {
		if x < p.right {
			return i
		}
	}
	return len(t.panes) - 1
}

// Frame applies pending input, keeps every pane's last line on screen,
// lays out the text, moves the cursors and renders.
func (t *Terminal) Frame() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp := t.renderer.Texts()
	in := t.input.Drain()
	if in.Typed != "" {
		if err := tp.AppendText(t.panes[t.active].text, in.Typed); err != nil {
			return err
		}
	}
	if err := t.autoScroll(); err != nil {
		return err
	}
	if in.Scroll != (image.Point{}) {
		if err := tp.AddOffset(t.panes[t.paneAt(in.Mouse.X)].text, in.Scroll); err != nil {
			return err
		}
	}

	if err := t.renderer.Update(); err != nil {
		return err
	}
	if err := t.updateCursors(); err != nil {
		return err
	}
	if err := t.renderer.Render(); err != nil {
		return err
	}
	t.fps.Frame()
	t.fps.Report()
	return nil
}

// autoScroll shifts up every pane whose last baseline, as of the previous
// layout, fell below one line height from the bottom edge.
func (t *Terminal) autoScroll() error {
	tp := t.renderer.Texts()
	lineHeight := t.renderer.Atlas().LineHeight()
	for _, p := range t.panes {
		st, ok := tp.Stats(p.text)
		if !ok || st.Max.Y >= lineHeight {
			continue
		}
		if err := tp.AddOffset(p.text, image.Pt(0, (lineHeight-st.Max.Y).Floor())); err != nil {
			return err
		}
	}
	return nil
}

func (t *Terminal) updateCursors() error {
	t.clock += t.cfg.Cursor.BlinkStep
	color := t.cfg.Cursor.Off
	if t.clock > 127 {
		color = t.cfg.Cursor.On
	}
	for _, p := range t.panes {
		st, ok := t.renderer.Texts().Stats(p.text)
		if !ok {
			continue
		}
		r, err := t.renderer.Rects().Rect(p.cursor)
		if err != nil {
			return err
		}
		r.X = st.Max.X.Floor()
		r.Y = st.Max.Y.Floor()
		r.W = t.cfg.Cursor.Width
		r.Color = color
	}
	return nil
}

// Frames returns the number of frames rendered.
func (t *Terminal) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderer.Frames()
}

// Window returns a writer that appends to pane n. Newlines are written as
// line breaks. Writes to a pane the terminal does not have fail with
// ErrNoPane.
func (t *Terminal) Window(n int) io.Writer {
	return paneWriter{t: t, n: n}
}

type paneWriter struct {
	t *Terminal
	n int
}

func (w paneWriter) Write(p []byte) (int, error) {
	if err := w.t.Append(w.n, strings.ReplaceAll(string(p), "\n", "\r")); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close releases the renderer. The terminal must not be used afterwards.
func (t *Terminal) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer.Close()
}
