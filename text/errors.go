package text

import (
	"errors"
	"fmt"
)

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrInvalidAtlasConfig is returned by BuildAtlas for a config that
	// cannot produce an atlas.
	ErrInvalidAtlasConfig = errors.New("text: invalid atlas config")
)

// MissingGlyphError is returned when the font has no glyph for a rune of
// the atlas range.
type MissingGlyphError struct {
	Rune   rune
	Family string
}

func (e *MissingGlyphError) Error() string {
	return fmt.Sprintf("text: font %q has no glyph for %U", e.Family, e.Rune)
}

// RasterizeError is returned when a glyph of the atlas range cannot be
// rasterized.
type RasterizeError struct {
	Rune rune
	Err  error
}

func (e *RasterizeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("text: rasterize %U failed", e.Rune)
	}
	return fmt.Sprintf("text: rasterize %U: %v", e.Rune, e.Err)
}

func (e *RasterizeError) Unwrap() error { return e.Err }
