package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderTarget is the color attachment a frame renders into.
type RenderTarget struct {
	ctx     *Context
	texture hal.Texture
	view    hal.TextureView
	size    image.Point

	// owned is false for views borrowed from a surface.
	owned bool
}

// NewRenderTarget creates an offscreen color texture in the context's
// format.
func NewRenderTarget(ctx *Context, width, height int) (*RenderTarget, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid render target size %dx%d", width, height)
	}
	w := uint32(width)  //nolint:gosec // checked positive above
	h := uint32(height) //nolint:gosec // checked positive above

	tex, err := ctx.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "termtext_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        ctx.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create render target: %w", err)
	}
	view, err := ctx.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "termtext_target_view",
		Format:        ctx.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		ctx.device.DestroyTexture(tex)
		return nil, fmt.Errorf("gpu: create render target view: %w", err)
	}
	return &RenderTarget{
		ctx:     ctx,
		texture: tex,
		view:    view,
		size:    image.Pt(width, height),
		owned:   true,
	}, nil
}

// WrapRenderTarget uses a view owned by someone else, such as the current
// surface texture of a window. Destroy leaves the view alone.
func WrapRenderTarget(view hal.TextureView, width, height int) *RenderTarget {
	return &RenderTarget{view: view, size: image.Pt(width, height)}
}

// View returns the color attachment view.
func (t *RenderTarget) View() hal.TextureView { return t.view }

// Size returns the target size in pixels.
func (t *RenderTarget) Size() image.Point { return t.size }

// Destroy releases the texture and view if the target owns them.
func (t *RenderTarget) Destroy() {
	if t == nil || !t.owned || t.ctx == nil || t.ctx.device == nil {
		return
	}
	if t.view != nil {
		t.ctx.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.ctx.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
