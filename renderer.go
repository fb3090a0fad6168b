package termtext

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/gogpu/termtext/internal/gpu"
	"github.com/gogpu/termtext/text"
)

// Renderer draws a RectPass and a TextPass into an offscreen target, one
// frame at a time. Rectangles are drawn first, text on top.
//
// A Renderer is not safe for concurrent use; Terminal serializes access.
type Renderer struct {
	ctx      *gpu.Context
	target   *gpu.RenderTarget
	rects    *RectPass
	texts    *TextPass
	atlas    *text.FontAtlas
	viewport image.Point
	clear    gputypes.Color
	frames   uint64
	closed   bool
}

// NewRenderer opens a device on the configured backend and creates the
// passes for atlas.
func NewRenderer(cfg Config, atlas *text.FontAtlas) (*Renderer, error) {
	backend, err := ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	gcfg := gpu.DefaultContextConfig()
	gcfg.Backend = backend
	ctx, err := gpu.NewContext(gcfg)
	if err != nil {
		return nil, fmt.Errorf("termtext: %w", err)
	}
	r, err := newRenderer(ctx, atlas, image.Pt(cfg.Width, cfg.Height))
	if err != nil {
		ctx.Destroy()
		return nil, err
	}
	return r, nil
}

// NewRendererFromProvider draws with a host application's device. The
// device is left open by Close.
func NewRendererFromProvider(provider gpucontext.DeviceProvider, cfg Config, atlas *text.FontAtlas) (*Renderer, error) {
	ctx, err := gpu.NewContextFromProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("termtext: %w", err)
	}
	return newRenderer(ctx, atlas, image.Pt(cfg.Width, cfg.Height))
}

func newRenderer(ctx *gpu.Context, atlas *text.FontAtlas, viewport image.Point) (*Renderer, error) {
	if atlas == nil {
		return nil, fmt.Errorf("termtext: renderer needs a font atlas")
	}
	target, err := gpu.NewRenderTarget(ctx, viewport.X, viewport.Y)
	if err != nil {
		return nil, fmt.Errorf("termtext: %w", err)
	}
	rects, err := newRectPass(ctx, viewport)
	if err != nil {
		target.Destroy()
		return nil, err
	}
	texts, err := newTextPass(ctx, atlas, viewport)
	if err != nil {
		rects.Destroy()
		target.Destroy()
		return nil, err
	}
	Logger().Info("renderer ready",
		"adapter", ctx.AdapterName(),
		"viewport", fmt.Sprintf("%dx%d", viewport.X, viewport.Y),
		"font", atlas.Family())
	return &Renderer{
		ctx:      ctx,
		target:   target,
		rects:    rects,
		texts:    texts,
		atlas:    atlas,
		viewport: viewport,
		clear:    gpu.ClearWhite,
	}, nil
}

// Rects returns the rectangle pass.
func (r *Renderer) Rects() *RectPass { return r.rects }

// Texts returns the text pass.
func (r *Renderer) Texts() *TextPass { return r.texts }

// Atlas returns the font atlas the text pass lays out with.
func (r *Renderer) Atlas() *text.FontAtlas { return r.atlas }

// Viewport returns the target size in pixels.
func (r *Renderer) Viewport() image.Point { return r.viewport }

// Frames returns the number of frames submitted.
func (r *Renderer) Frames() uint64 { return r.frames }

// Update lays out the text pass. TextPass.Stats reflects this frame's text
// afterwards.
func (r *Renderer) Update() error {
	if r.closed {
		return ErrRendererClosed
	}
	return r.texts.Update()
}

// Render uploads the rectangles, records both passes into a frame cleared
// to white and submits it.
func (r *Renderer) Render() error {
	if r.closed {
		return ErrRendererClosed
	}
	if err := r.rects.Prepare(); err != nil {
		return err
	}
	frame, err := r.ctx.NewFrame(r.target, r.clear)
	if err != nil {
		return fmt.Errorf("termtext: %w", err)
	}
	if err := r.rects.Record(frame.Pass()); err != nil {
		frame.Discard()
		return err
	}
	if err := r.texts.Record(frame.Pass()); err != nil {
		frame.Discard()
		return err
	}
	if err := frame.Submit(); err != nil {
		return fmt.Errorf("termtext: %w", err)
	}
	r.frames++
	Logger().Debug("frame submitted",
		"frame", r.frames,
		"rect_vertices", r.rects.Geometry().Len(),
		"glyph_vertices", r.texts.Geometry().Len())
	return nil
}

// Frame runs Update then Render.
func (r *Renderer) Frame() error {
	if err := r.Update(); err != nil {
		return err
	}
	return r.Render()
}

// Close releases every GPU object and the device if the renderer opened
// it. Safe to call more than once.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.texts.Destroy()
	r.rects.Destroy()
	r.target.Destroy()
	r.ctx.Destroy()
}

// LoadFontAtlas builds the atlas cfg describes: cfg.FontPath, or Go Mono
// when it is empty. The atlas is also written to cfg.AtlasSnapshot when
// set.
func LoadFontAtlas(cfg Config) (*text.FontAtlas, error) {
	var (
		atlas *text.FontAtlas
		err   error
	)
	if cfg.FontPath == "" {
		atlas, err = text.BuildAtlas(gomono.TTF, cfg.Atlas)
	} else {
		atlas, err = text.LoadAtlas(cfg.FontPath, cfg.Atlas)
	}
	if err != nil {
		return nil, err
	}
	Logger().Info("font atlas built",
		"family", atlas.Family(),
		"size", cfg.Atlas.Size,
		"width", atlas.Width(),
		"height", atlas.Height())

	if cfg.AtlasSnapshot != "" {
		if err := atlas.SavePNG(cfg.AtlasSnapshot); err != nil {
			return nil, err
		}
		Logger().Debug("font atlas snapshot written", "path", cfg.AtlasSnapshot)
	}
	return atlas, nil
}
