package text

import (
	"image"

	"golang.org/x/image/math/fixed"
)

// TextObject is a string placed on the viewport.
type TextObject struct {
	// Text is the string to draw. Runes outside the atlas range are skipped.
	Text string

	// TopLeft is the top-left corner in pixels, y measured up from the
	// bottom of the viewport.
	TopLeft image.Point

	// MaxWidth is the line width in pixels at which the pen wraps.
	MaxWidth int

	// Dirty is set by every mutation and cleared by a layout pass.
	Dirty bool
}

// NewTextObject returns a dirty TextObject.
func NewTextObject(s string, topLeft image.Point, maxWidth int) *TextObject {
	return &TextObject{Text: s, TopLeft: topLeft, MaxWidth: maxWidth, Dirty: true}
}

// TextInfo is the extent of a laid out TextObject in 1/64 pixel.
type TextInfo struct {
	// Min is the object's top-left corner.
	Min fixed.Point26_6

	// Max is the pen position after the last rune. Its y is the baseline
	// of the last line.
	Max fixed.Point26_6
}

// Lines returns the number of lines the pen visited, given the line
// height the object was laid out with.
func (ti TextInfo) Lines(lineHeight fixed.Int26_6) int {
	if lineHeight <= 0 {
		return 0
	}
	return int((ti.Min.Y - ti.Max.Y) / lineHeight)
}

// GlyphVertex is one corner of a glyph quad. Position is normalized to the
// viewport, TexCoord to the atlas.
type GlyphVertex struct {
	Position [2]float32
	TexCoord [2]float32
}

// GlyphQuad is a glyph's four corners in the order top-left, top-right,
// bottom-left, bottom-right.
type GlyphQuad [4]GlyphVertex

// Layout walks obj.Text and calls emit with one quad per glyph that has
// ink. The pen starts one line below obj.TopLeft. Before each rune it
// returns to the left edge and moves down one line if the rune is '\r' or
// the current line holds something and is already MaxWidth wide. Runes
// outside the atlas do not move the pen; glyphs without ink do.
func Layout(obj *TextObject, atlas *FontAtlas, viewport image.Point, emit func(GlyphQuad)) TextInfo {
	lineHeight := atlas.LineHeight()
	origin := fixed.Point26_6{X: fixed.I(obj.TopLeft.X), Y: fixed.I(obj.TopLeft.Y)}
	maxWidth := fixed.I(obj.MaxWidth)
	pen := fixed.Point26_6{X: origin.X, Y: origin.Y - lineHeight}

	vw := float64(viewport.X) * 64
	vh := float64(viewport.Y) * 64
	aw := float64(atlas.Width())
	ah := float64(atlas.Height())

	for _, c := range obj.Text {
		if c == '\r' || (pen.X > origin.X && pen.X-origin.X >= maxWidth) {
			pen.X = origin.X
			pen.Y -= lineHeight
		}
		g, ok := atlas.Glyph(c)
		if !ok {
			continue
		}
		if !g.Empty() && emit != nil {
			left := pen.X + g.Bearing.X
			top := pen.Y + g.Bearing.Y
			right := left + g.Size.X
			bottom := top - g.Size.Y

			x0, y0 := float32(float64(left)/vw), float32(float64(top)/vh)
			x1, y1 := float32(float64(right)/vw), float32(float64(bottom)/vh)

			u0 := float32(float64(g.Origin.X) / aw)
			v0 := float32(float64(g.Origin.Y) / ah)
			u1 := float32(float64(g.Origin.X+g.Size.X.Round()) / aw)
			v1 := float32(float64(g.Origin.Y+g.Size.Y.Round()) / ah)

			emit(GlyphQuad{
				{Position: [2]float32{x0, y0}, TexCoord: [2]float32{u0, v0}},
				{Position: [2]float32{x1, y0}, TexCoord: [2]float32{u1, v0}},
				{Position: [2]float32{x0, y1}, TexCoord: [2]float32{u0, v1}},
				{Position: [2]float32{x1, y1}, TexCoord: [2]float32{u1, v1}},
			})
		}
		pen.X += g.Advance
	}

	return TextInfo{Min: origin, Max: pen}
}

// LayoutQuads is Layout collecting the quads into a slice.
func LayoutQuads(obj *TextObject, atlas *FontAtlas, viewport image.Point) ([]GlyphQuad, TextInfo) {
	var quads []GlyphQuad
	info := Layout(obj, atlas, viewport, func(q GlyphQuad) {
		quads = append(quads, q)
	})
	return quads, info
}
