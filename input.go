package termtext

import (
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// InputState collects host input between frames: typed text, scroll and
// the mouse position. Event callbacks may arrive on any goroutine; the
// terminal drains the state once per frame.
type InputState struct {
	mu     sync.Mutex
	typed  []rune
	shift  bool
	mouse  image.Point
	scroll [2]float64

	upper cases.Caser
	lower cases.Caser
}

// NewInputState returns an empty InputState.
func NewInputState() *InputState {
	return &InputState{
		upper: cases.Upper(language.Und),
		lower: cases.Lower(language.Und),
	}
}

// Attach registers the state's handlers on src.
func (s *InputState) Attach(src gpucontext.EventSource) {
	src.OnTextInput(s.TypeText)
	src.OnKeyPress(s.KeyPress)
	src.OnKeyRelease(s.KeyRelease)
	src.OnMouseMove(s.MoveMouse)
	src.OnScroll(s.Scroll)
}

// KeyPress tracks Shift and turns Enter into a line break.
func (s *InputState) KeyPress(key gpucontext.Key, mods gpucontext.Modifiers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shift = mods.HasShift()
	if key == gpucontext.KeyEnter {
		s.typed = append(s.typed, '\r')
	}
}

// KeyRelease samples the modifiers left held after a key goes up. Shift
// stays in effect until a release or press reports it cleared.
func (s *InputState) KeyRelease(_ gpucontext.Key, mods gpucontext.Modifiers) {
	s.mu.Lock()
	s.shift = mods.HasShift()
	s.mu.Unlock()
}

// TypeText buffers committed text. Full-width forms are folded to their
// narrow equivalents, then the text is upper-cased while Shift is held and
// lower-cased otherwise.
func (s *InputState) TypeText(str string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	str = width.Fold.String(str)
	if s.shift {
		str = s.upper.String(str)
	} else {
		str = s.lower.String(str)
	}
	s.typed = append(s.typed, []rune(str)...)
}

// MoveMouse records the cursor position in pixels from the top-left of the
// window.
func (s *InputState) MoveMouse(x, y float64) {
	s.mu.Lock()
	s.mouse = image.Pt(int(x), int(y))
	s.mu.Unlock()
}

// Scroll accumulates a scroll delta.
func (s *InputState) Scroll(dx, dy float64) {
	s.mu.Lock()
	s.scroll[0] += dx
	s.scroll[1] += dy
	s.mu.Unlock()
}

// Mouse returns the last cursor position.
func (s *InputState) Mouse() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mouse
}

// InputFrame is the input drained for one frame.
type InputFrame struct {
	Typed  string
	Scroll image.Point
	Mouse  image.Point
}

// Drain returns the buffered input and resets text and scroll. Scroll is
// truncated to whole pixels.
func (s *InputState) Drain() InputFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := InputFrame{
		Typed:  string(s.typed),
		Scroll: image.Pt(int(s.scroll[0]), int(s.scroll[1])),
		Mouse:  s.mouse,
	}
	s.typed = s.typed[:0]
	s.scroll = [2]float64{}
	return f
}
