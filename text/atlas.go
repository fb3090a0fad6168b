package text

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// AtlasConfig controls how BuildAtlas rasterizes and packs glyphs.
type AtlasConfig struct {
	// Size is the font size in points.
	// Default: 16
	Size float64 `toml:"size"`

	// DPI is the rasterization resolution.
	// Default: 72
	DPI float64 `toml:"dpi"`

	// FirstRune and LastRune bound the packed range, inclusive.
	// Default: 32 ('space') and 126 ('~')
	FirstRune rune `toml:"first_rune"`
	LastRune  rune `toml:"last_rune"`

	// Gutter is the number of empty columns after every glyph.
	// Default: 2
	Gutter int `toml:"gutter"`

	// Margin is the number of empty rows above and below the glyph row.
	// Default: 1
	Margin int `toml:"margin"`

	// Hinting is the hinting mode of the rasterizer.
	// Default: HintingFull
	Hinting Hinting `toml:"hinting"`
}

// DefaultAtlasConfig returns default configuration.
func DefaultAtlasConfig() AtlasConfig {
	return AtlasConfig{
		Size:      16,
		DPI:       72,
		FirstRune: ' ',
		LastRune:  '~',
		Gutter:    2,
		Margin:    1,
		Hinting:   HintingFull,
	}
}

// Validate reports whether the config can produce an atlas.
func (c AtlasConfig) Validate() error {
	switch {
	case c.Size <= 0:
		return fmt.Errorf("%w: size %v", ErrInvalidAtlasConfig, c.Size)
	case c.DPI <= 0:
		return fmt.Errorf("%w: dpi %v", ErrInvalidAtlasConfig, c.DPI)
	case c.FirstRune < 0 || c.LastRune < c.FirstRune:
		return fmt.Errorf("%w: rune range %U..%U", ErrInvalidAtlasConfig, c.FirstRune, c.LastRune)
	case c.Gutter < 0 || c.Margin < 0:
		return fmt.Errorf("%w: gutter %d, margin %d", ErrInvalidAtlasConfig, c.Gutter, c.Margin)
	}
	return nil
}

// GlyphInfo is the placement of one glyph. All lengths except Origin are
// in 1/64 pixel.
type GlyphInfo struct {
	// Advance is the horizontal pen displacement after the glyph.
	Advance fixed.Int26_6

	// Bearing is the offset from the pen to the top-left of the ink box,
	// x to the right and y up.
	Bearing fixed.Point26_6

	// Size is the ink box width and height.
	Size fixed.Point26_6

	// Origin is the top-left texel of the glyph in the atlas.
	Origin image.Point
}

// Empty reports whether the glyph has no ink.
func (g GlyphInfo) Empty() bool {
	return g.Size.X <= 0 || g.Size.Y <= 0
}

// FontAtlas is a single-row packed bitmap of a rune range together with
// the metrics of every glyph in it. It is immutable once built.
type FontAtlas struct {
	img        *image.RGBA
	glyphs     []GlyphInfo
	first      rune
	lineHeight fixed.Int26_6
	family     string
}

// rasterized is a glyph measured in the first pass of BuildAtlas.
type rasterized struct {
	bounds   image.Rectangle
	coverage []byte
	advance  fixed.Int26_6
}

// LoadAtlas reads a font file and builds its atlas.
func LoadAtlas(path string, cfg AtlasConfig) (*FontAtlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: load font: %w", err)
	}
	return BuildAtlas(data, cfg)
}

// BuildAtlas rasterizes every rune of cfg's range from the TrueType or
// OpenType font data and packs the glyphs left to right into one row.
//
// Every rune must be covered by the font's cmap; the first one that is not
// fails the build with *MissingGlyphError. A glyph the rasterizer rejects
// fails it with *RasterizeError. No partial atlas is ever returned.
func BuildAtlas(data []byte, cfg AtlasConfig) (*FontAtlas, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	family, err := checkCoverage(data, cfg.FirstRune, cfg.LastRune)
	if err != nil {
		return nil, err
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    cfg.Size,
		DPI:     cfg.DPI,
		Hinting: mapHinting(cfg.Hinting),
	})
	if err != nil {
		return nil, fmt.Errorf("text: create face: %w", err)
	}
	defer func() {
		_ = face.Close()
	}()

	// Measure every glyph before allocating the bitmap.
	glyphs := make([]rasterized, 0, cfg.LastRune-cfg.FirstRune+1)
	width, maxHeight := 0, 0
	for r := cfg.FirstRune; r <= cfg.LastRune; r++ {
		g, err := rasterize(face, r)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, g)
		width += g.bounds.Dx() + cfg.Gutter
		maxHeight = max(maxHeight, g.bounds.Dy())
	}
	height := maxHeight + 2*cfg.Margin

	atlas := &FontAtlas{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		glyphs:     make([]GlyphInfo, len(glyphs)),
		first:      cfg.FirstRune,
		lineHeight: face.Metrics().Height,
		family:     family,
	}

	x := 0
	for i, g := range glyphs {
		w, h := g.bounds.Dx(), g.bounds.Dy()
		origin := image.Pt(x, cfg.Margin)
		atlas.glyphs[i] = GlyphInfo{
			Advance: g.advance,
			Bearing: fixed.Point26_6{
				X: fixed.I(g.bounds.Min.X),
				Y: fixed.I(-g.bounds.Min.Y),
			},
			Size:   fixed.Point26_6{X: fixed.I(w), Y: fixed.I(h)},
			Origin: origin,
		}
		if w > 0 && h > 0 {
			atlas.blit(origin, w, h, g.coverage)
		}
		x += w + cfg.Gutter
	}
	return atlas, nil
}

// checkCoverage verifies that the font maps every rune of first..last to a
// glyph and returns the font family name.
func checkCoverage(data []byte, first, last rune) (string, error) {
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("text: parse font: %w", err)
	}
	family := face.Describe().Family
	for r := first; r <= last; r++ {
		if _, ok := face.NominalGlyph(r); !ok {
			return "", &MissingGlyphError{Rune: r, Family: family}
		}
	}
	return family, nil
}

// rasterize renders r with the pen at the origin and copies its coverage
// out of the face, which reuses its mask between calls.
func rasterize(face font.Face, r rune) (rasterized, error) {
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return rasterized{}, &RasterizeError{Rune: r}
	}
	w, h := dr.Dx(), dr.Dy()
	g := rasterized{bounds: dr, advance: advance}
	if w <= 0 || h <= 0 {
		return g, nil
	}
	if mask == nil {
		return rasterized{}, &RasterizeError{Rune: r, Err: fmt.Errorf("no mask for %dx%d glyph", w, h)}
	}
	g.coverage = make([]byte, w*h)
	for y := range h {
		for x := range w {
			g.coverage[y*w+x] = coverageAt(mask, maskp.X+x, maskp.Y+y)
		}
	}
	return g, nil
}

// coverageAt returns the coverage of one mask pixel. Alpha masks are read
// directly; any other image contributes its alpha channel.
func coverageAt(mask image.Image, x, y int) uint8 {
	if m, ok := mask.(*image.Alpha); ok {
		return m.AlphaAt(x, y).A
	}
	_, _, _, a := mask.At(x, y).RGBA()
	return uint8(a >> 8)
}

// blit writes coverage into the atlas as opaque RGB.
func (a *FontAtlas) blit(origin image.Point, w, h int, coverage []byte) {
	for y := range h {
		for x := range w {
			c := coverage[y*w+x]
			a.img.SetRGBA(origin.X+x, origin.Y+y, color.RGBA{R: c, G: c, B: c, A: 255})
		}
	}
}

// Glyph returns the metrics of r. ok is false for runes outside the atlas
// range.
func (a *FontAtlas) Glyph(r rune) (GlyphInfo, bool) {
	i := int(r - a.first)
	if r < a.first || i >= len(a.glyphs) {
		return GlyphInfo{}, false
	}
	return a.glyphs[i], true
}

// Range returns the first and last rune of the atlas.
func (a *FontAtlas) Range() (first, last rune) {
	return a.first, a.first + rune(len(a.glyphs)) - 1
}

// Bounds returns the bitmap bounds. Min is always the zero point.
func (a *FontAtlas) Bounds() image.Rectangle { return a.img.Bounds() }

// Width returns the bitmap width in pixels.
func (a *FontAtlas) Width() int { return a.img.Bounds().Dx() }

// Height returns the bitmap height in pixels.
func (a *FontAtlas) Height() int { return a.img.Bounds().Dy() }

// LineHeight returns the distance between baselines in 1/64 pixel.
func (a *FontAtlas) LineHeight() fixed.Int26_6 { return a.lineHeight }

// Family returns the font family name.
func (a *FontAtlas) Family() string { return a.family }

// Pixels returns the RGBA bytes of the bitmap, rows packed back to back.
// The slice must not be modified.
func (a *FontAtlas) Pixels() []byte { return a.img.Pix }

// Image returns the bitmap. It must not be modified.
func (a *FontAtlas) Image() *image.RGBA { return a.img }

// EncodePNG writes the bitmap to w as PNG.
func (a *FontAtlas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, a.img); err != nil {
		return fmt.Errorf("text: encode atlas: %w", err)
	}
	return nil
}

// SavePNG writes the bitmap to a PNG file.
func (a *FontAtlas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("text: save atlas: %w", err)
	}
	if err := a.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
