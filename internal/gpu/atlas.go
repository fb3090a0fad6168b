package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// AtlasTexture is a font atlas bitmap resident on the GPU, together with
// the sampler glyph quads read it through.
type AtlasTexture struct {
	ctx     *Context
	texture hal.Texture
	view    hal.TextureView
	sampler hal.Sampler
	size    image.Point
}

// NewAtlasTexture creates an RGBA8Unorm texture the size of img and uploads
// img into it once. The sampler uses nearest filtering with clamp-to-edge
// addressing.
func NewAtlasTexture(ctx *Context, label string, img *image.RGBA) (*AtlasTexture, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrEmptyAtlas, label, size.X, size.Y)
	}
	w := uint32(size.X) //nolint:gosec // checked positive above
	h := uint32(size.Y) //nolint:gosec // checked positive above

	a := &AtlasTexture{ctx: ctx, size: size}

	tex, err := ctx.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create atlas texture %s: %w", label, err)
	}
	a.texture = tex

	view, err := ctx.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("gpu: create atlas view %s: %w", label, err)
	}
	a.view = view

	sampler, err := ctx.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("gpu: create atlas sampler %s: %w", label, err)
	}
	a.sampler = sampler

	if err := ctx.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		tightRGBA(img),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	); err != nil {
		a.Destroy()
		return nil, fmt.Errorf("gpu: upload atlas %s: %w", label, err)
	}

	slogger().Debug("atlas uploaded", "label", label, "width", w, "height", h)
	return a, nil
}

// tightRGBA returns the pixels of img with rows packed back to back.
func tightRGBA(img *image.RGBA) []byte {
	b := img.Bounds()
	rowBytes := b.Dx() * 4
	if img.Stride == rowBytes && b.Min == (image.Point{}) {
		return img.Pix[:rowBytes*b.Dy()]
	}
	out := make([]byte, 0, rowBytes*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+rowBytes]...)
	}
	return out
}

// Size returns the atlas dimensions in texels.
func (a *AtlasTexture) Size() image.Point { return a.size }

// View returns the texture view bound by the glyph pipeline.
func (a *AtlasTexture) View() hal.TextureView { return a.view }

// Sampler returns the nearest-filter sampler.
func (a *AtlasTexture) Sampler() hal.Sampler { return a.sampler }

// Destroy releases the texture, view and sampler.
func (a *AtlasTexture) Destroy() {
	if a == nil || a.ctx == nil || a.ctx.device == nil {
		return
	}
	d := a.ctx.device
	if a.sampler != nil {
		d.DestroySampler(a.sampler)
		a.sampler = nil
	}
	if a.view != nil {
		d.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.texture != nil {
		d.DestroyTexture(a.texture)
		a.texture = nil
	}
}
