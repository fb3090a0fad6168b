// Package text turns strings into textured glyph quads.
//
// A FontAtlas is built once at startup: every rune of a fixed range
// (printable ASCII by default) is rasterized with golang.org/x/image and
// packed left to right into a single RGBA bitmap, and its metrics are kept
// in 26.6 fixed point.
//
//	atlas, err := text.BuildAtlas(gomono.TTF, text.DefaultAtlasConfig())
//	if err != nil {
//	    return err
//	}
//
// Layout then walks a TextObject's string with a pen that starts one line
// below the object's top-left corner and wraps when the line reaches
// MaxWidth or on '\r'. Each glyph with ink produces one GlyphQuad whose
// positions are normalized to the viewport and whose texture coordinates
// are normalized to the atlas:
//
//	obj := &text.TextObject{Text: "hello world", TopLeft: image.Pt(10, 390), MaxWidth: 390}
//	info := text.Layout(obj, atlas, image.Pt(800, 400), func(q text.GlyphQuad) {
//	    glyphs.Extend(q)
//	})
//
// Coordinates follow the y-up convention: TopLeft.Y is measured from the
// bottom of the viewport, and lines advance toward smaller y.
//
// Runes outside the atlas range are skipped. There is no shaping, kerning
// or fallback between fonts.
package text
