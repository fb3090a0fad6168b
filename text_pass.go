package termtext

import (
	"fmt"
	"image"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/termtext/internal/gpu"
	"github.com/gogpu/termtext/internal/slotmap"
	"github.com/gogpu/termtext/text"
)

// textEntry is a registered TextObject and the extent of its last layout.
type textEntry struct {
	obj     text.TextObject
	info    text.TextInfo
	laidOut bool
}

// TextPass lays out every registered TextObject against one font atlas
// and draws the glyphs.
//
// Any change to an object marks the pass dirty. Update lays everything out
// again and uploads it; Record refuses to draw a dirty pass.
type TextPass struct {
	objects  *slotmap.Map[textEntry]
	atlas    *text.FontAtlas
	texture  *gpu.AtlasTexture
	geometry *gpu.GeometryBuffer[gpu.GlyphVertex]
	pipeline *gpu.QuadPipeline
	viewport image.Point
	dirty    bool
}

// newTextPass uploads atlas and creates the glyph pipeline.
func newTextPass(ctx *gpu.Context, atlas *text.FontAtlas, viewport image.Point) (*TextPass, error) {
	texture, err := gpu.NewAtlasTexture(ctx, "font_atlas", atlas.Image())
	if err != nil {
		return nil, fmt.Errorf("termtext: text pass: %w", err)
	}
	pipeline, err := gpu.NewGlyphPipeline(ctx, texture)
	if err != nil {
		texture.Destroy()
		return nil, fmt.Errorf("termtext: text pass: %w", err)
	}
	geometry, err := gpu.NewGeometryBuffer(ctx, "glyph", gpu.GlyphFormat)
	if err != nil {
		pipeline.Destroy()
		texture.Destroy()
		return nil, fmt.Errorf("termtext: text pass: %w", err)
	}
	return &TextPass{
		objects:  slotmap.New[textEntry](4),
		atlas:    atlas,
		texture:  texture,
		geometry: geometry,
		pipeline: pipeline,
		viewport: viewport,
		dirty:    true,
	}, nil
}

// AddText registers obj and returns its handle.
func (p *TextPass) AddText(obj text.TextObject) slotmap.Handle {
	obj.Dirty = true
	p.dirty = true
	return p.objects.Insert(textEntry{obj: obj})
}

// Text returns a copy of the object addressed by h.
func (p *TextPass) Text(h slotmap.Handle) (text.TextObject, error) {
	e, err := p.objects.Get(h)
	if err != nil {
		return text.TextObject{}, err
	}
	return e.obj, nil
}

// RemoveText unregisters the object addressed by h.
func (p *TextPass) RemoveText(h slotmap.Handle) error {
	if _, err := p.objects.Remove(h); err != nil {
		return err
	}
	p.dirty = true
	return nil
}

// SetText replaces the string of the object addressed by h.
func (p *TextPass) SetText(h slotmap.Handle, s string) error {
	return p.mutate(h, func(o *text.TextObject) { o.Text = s })
}

// AppendText appends s to the string of the object addressed by h.
func (p *TextPass) AppendText(h slotmap.Handle, s string) error {
	return p.mutate(h, func(o *text.TextObject) { o.Text += s })
}

// AddOffset moves the object addressed by h by d pixels, y up.
func (p *TextPass) AddOffset(h slotmap.Handle, d image.Point) error {
	return p.mutate(h, func(o *text.TextObject) { o.TopLeft = o.TopLeft.Add(d) })
}

// SetMaxWidth changes the wrap width of the object addressed by h.
func (p *TextPass) SetMaxWidth(h slotmap.Handle, w int) error {
	return p.mutate(h, func(o *text.TextObject) { o.MaxWidth = w })
}

func (p *TextPass) mutate(h slotmap.Handle, fn func(*text.TextObject)) error {
	e, err := p.objects.Get(h)
	if err != nil {
		return err
	}
	fn(&e.obj)
	e.obj.Dirty = true
	p.dirty = true
	return nil
}

// Stats returns the extent of the object addressed by h as of the last
// Update. ok is false before the object's first layout.
func (p *TextPass) Stats(h slotmap.Handle) (info text.TextInfo, ok bool) {
	e, err := p.objects.Get(h)
	if err != nil || !e.laidOut {
		return text.TextInfo{}, false
	}
	return e.info, true
}

// Update lays out every object, caches its extent and uploads the glyph
// geometry. The pass is clean afterwards.
func (p *TextPass) Update() error {
	p.geometry.Clear()
	emit := func(q text.GlyphQuad) { p.geometry.Extend(q) }
	for _, e := range p.objects.All() {
		e.info = text.Layout(&e.obj, p.atlas, p.viewport, emit)
		e.laidOut = true
		e.obj.Dirty = false
	}
	if err := p.geometry.Flush(); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

// Dirty reports whether an object changed after the last Update.
func (p *TextPass) Dirty() bool { return p.dirty }

// Record draws the glyphs uploaded by the last Update. It fails with
// ErrTextPassDirty when Update has not run since the last change.
func (p *TextPass) Record(rp hal.RenderPassEncoder) error {
	if p.dirty {
		return ErrTextPassDirty
	}
	return gpu.Record(rp, p.pipeline, p.geometry)
}

// SetTranslate offsets every glyph, in viewport-normalized units.
func (p *TextPass) SetTranslate(t [2]float32) error { return p.pipeline.SetTranslate(t) }

// SetViewport changes the size positions are normalized by and marks the
// pass dirty.
func (p *TextPass) SetViewport(size image.Point) {
	p.viewport = size
	p.dirty = true
}

// Len returns the number of registered objects.
func (p *TextPass) Len() int { return p.objects.Len() }

// Atlas returns the font atlas the pass lays out with.
func (p *TextPass) Atlas() *text.FontAtlas { return p.atlas }

// Geometry returns the pass's glyph geometry buffer.
func (p *TextPass) Geometry() *gpu.GeometryBuffer[gpu.GlyphVertex] { return p.geometry }

// Destroy releases the GPU objects of the pass.
func (p *TextPass) Destroy() {
	p.geometry.Destroy()
	p.pipeline.Destroy()
	p.texture.Destroy()
}
