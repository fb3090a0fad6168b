package termtext

import (
	"fmt"
	"image"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/termtext/internal/gpu"
	"github.com/gogpu/termtext/internal/slotmap"
)

// RectObject is a solid-color rectangle in viewport pixels, y measured up
// from the bottom edge.
type RectObject struct {
	X, Y  int
	W, H  int
	Color [4]uint8
}

// RectPass draws every registered RectObject as one quad per frame.
type RectPass struct {
	rects    *slotmap.Map[RectObject]
	geometry *gpu.GeometryBuffer[gpu.ColoredVertex]
	pipeline *gpu.QuadPipeline
	viewport image.Point
}

// newRectPass creates the rect pipeline and its geometry buffer.
func newRectPass(ctx *gpu.Context, viewport image.Point) (*RectPass, error) {
	pipeline, err := gpu.NewRectPipeline(ctx)
	if err != nil {
		return nil, fmt.Errorf("termtext: rect pass: %w", err)
	}
	geometry, err := gpu.NewGeometryBuffer(ctx, "rect", gpu.ColoredFormat)
	if err != nil {
		pipeline.Destroy()
		return nil, fmt.Errorf("termtext: rect pass: %w", err)
	}
	return &RectPass{
		rects:    slotmap.New[RectObject](8),
		geometry: geometry,
		pipeline: pipeline,
		viewport: viewport,
	}, nil
}

// AddRect registers r and returns its handle.
func (p *RectPass) AddRect(r RectObject) slotmap.Handle {
	return p.rects.Insert(r)
}

// Rect returns the rectangle addressed by h for in-place changes. The
// change is drawn from the next Prepare on.
func (p *RectPass) Rect(h slotmap.Handle) (*RectObject, error) {
	return p.rects.Get(h)
}

// RemoveRect unregisters the rectangle addressed by h.
func (p *RectPass) RemoveRect(h slotmap.Handle) error {
	_, err := p.rects.Remove(h)
	return err
}

// Len returns the number of registered rectangles.
func (p *RectPass) Len() int { return p.rects.Len() }

// SetViewport changes the size positions are normalized by.
func (p *RectPass) SetViewport(size image.Point) { p.viewport = size }

// SetTranslate offsets every rectangle, in viewport-normalized units.
func (p *RectPass) SetTranslate(t [2]float32) error { return p.pipeline.SetTranslate(t) }

// Prepare rebuilds the geometry from every registered rectangle and
// uploads it.
func (p *RectPass) Prepare() error {
	p.geometry.Clear()
	p.geometry.Reserve(p.rects.Len())
	for _, r := range p.rects.All() {
		p.geometry.Extend(rectQuad(*r, p.viewport))
	}
	return p.geometry.Flush()
}

// Record draws the geometry uploaded by the last Prepare.
func (p *RectPass) Record(rp hal.RenderPassEncoder) error {
	return gpu.Record(rp, p.pipeline, p.geometry)
}

// Geometry returns the pass's geometry buffer.
func (p *RectPass) Geometry() *gpu.GeometryBuffer[gpu.ColoredVertex] { return p.geometry }

// Destroy releases the GPU objects of the pass.
func (p *RectPass) Destroy() {
	p.geometry.Destroy()
	p.pipeline.Destroy()
}

// rectQuad converts r to a viewport-normalized quad. Negative sizes are
// drawn as zero area.
func rectQuad(r RectObject, viewport image.Point) [4]gpu.ColoredVertex {
	w, h := max(r.W, 0), max(r.H, 0)
	vw, vh := float32(viewport.X), float32(viewport.Y)

	x0, y0 := float32(r.X)/vw, float32(r.Y)/vh
	x1, y1 := float32(r.X+w)/vw, float32(r.Y+h)/vh

	return [4]gpu.ColoredVertex{
		{Position: [2]float32{x0, y0}, Color: r.Color},
		{Position: [2]float32{x1, y0}, Color: r.Color},
		{Position: [2]float32{x0, y1}, Color: r.Color},
		{Position: [2]float32{x1, y1}, Color: r.Color},
	}
}
