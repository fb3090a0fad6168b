package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// quadUniformSize is the byte size of the Uniforms struct shared by
// rect.wgsl and glyph.wgsl: translate (vec2<f32>) plus padding.
const quadUniformSize = 16

// QuadPipeline draws one kind of quad geometry: solid-color rectangles or
// glyphs sampled from an atlas. It owns its shader, layouts, uniform
// buffer and bind group.
type QuadPipeline struct {
	ctx   *Context
	label string

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	uniform    hal.Buffer
	bindGroup  hal.BindGroup

	translate [2]float32
	uploaded  bool
}

// NewRectPipeline creates the pipeline for ColoredVertex geometry.
func NewRectPipeline(ctx *Context) (*QuadPipeline, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	p := &QuadPipeline{ctx: ctx, label: "rect"}
	entries := []gputypes.BindGroupLayoutEntry{uniformLayoutEntry()}
	if err := p.build(rectShaderSource, entries, ColoredFormat.BufferLayout()); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.bind(nil); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// NewGlyphPipeline creates the pipeline for GlyphVertex geometry sampled
// from atlas.
func NewGlyphPipeline(ctx *Context, atlas *AtlasTexture) (*QuadPipeline, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if atlas == nil {
		return nil, errors.New("gpu: glyph pipeline needs an atlas")
	}
	p := &QuadPipeline{ctx: ctx, label: "glyph"}
	entries := []gputypes.BindGroupLayoutEntry{
		uniformLayoutEntry(),
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
	}
	if err := p.build(glyphShaderSource, entries, GlyphFormat.BufferLayout()); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.bind(atlas); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func uniformLayoutEntry() gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
}

func (p *QuadPipeline) build(source string, entries []gputypes.BindGroupLayoutEntry, buffers []gputypes.VertexBufferLayout) error {
	d := p.ctx.device

	shader, err := createShaderModule(d, p.label+"_shader", source)
	if err != nil {
		return fmt.Errorf("gpu: %w", err)
	}
	p.shader = shader

	bindLayout, err := d.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("gpu: create %s bind layout: %w", p.label, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := d.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create %s pipeline layout: %w", p.label, err)
	}
	p.pipeLayout = pipeLayout

	blend := gputypes.BlendStateAlpha()
	pipeline, err := d.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label + "_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.ctx.format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create %s pipeline: %w", p.label, err)
	}
	p.pipeline = pipeline
	return nil
}

// bind creates the uniform buffer and the bind group. atlas is nil for
// the rect pipeline.
func (p *QuadPipeline) bind(atlas *AtlasTexture) error {
	d := p.ctx.device

	uniform, err := d.CreateBuffer(&hal.BufferDescriptor{
		Label: p.label + "_uniform",
		Size:  quadUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create %s uniform: %w", p.label, err)
	}
	p.uniform = uniform

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: uniform.NativeHandle(), Offset: 0, Size: quadUniformSize,
		}},
	}
	if atlas != nil {
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: atlas.View().NativeHandle(),
			}},
			gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: atlas.Sampler().NativeHandle(),
			}},
		)
	}

	group, err := d.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.label + "_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("gpu: create %s bind group: %w", p.label, err)
	}
	p.bindGroup = group
	return nil
}

// SetTranslate sets the offset added to every vertex position, in
// viewport-normalized units. The uniform is written only when the value
// changes.
func (p *QuadPipeline) SetTranslate(t [2]float32) error {
	if p.uploaded && t == p.translate {
		return nil
	}
	var data [quadUniformSize]byte
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(t[0]))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(t[1]))
	if err := p.ctx.queue.WriteBuffer(p.uniform, 0, data[:]); err != nil {
		return fmt.Errorf("gpu: write %s uniform: %w", p.label, err)
	}
	p.translate = t
	p.uploaded = true
	return nil
}

// Translate returns the last translate written by SetTranslate.
func (p *QuadPipeline) Translate() [2]float32 { return p.translate }

// Bind sets the pipeline and its bind group on rp.
func (p *QuadPipeline) Bind(rp hal.RenderPassEncoder) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
}

// Record draws g with p. Nothing is recorded when g is stale.
func Record[V any](rp hal.RenderPassEncoder, p *QuadPipeline, g *GeometryBuffer[V]) error {
	if g.Stale() {
		return fmt.Errorf("%w: %s", ErrStaleGeometry, g.label)
	}
	if g.IndexLen() == 0 {
		return nil
	}
	if !p.uploaded {
		if err := p.SetTranslate(p.translate); err != nil {
			return err
		}
	}
	p.Bind(rp)
	return g.Draw(rp)
}

// Destroy releases every GPU object of the pipeline.
func (p *QuadPipeline) Destroy() {
	if p == nil || p.ctx == nil || p.ctx.device == nil {
		return
	}
	d := p.ctx.device
	if p.bindGroup != nil {
		d.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniform != nil {
		d.DestroyBuffer(p.uniform)
		p.uniform = nil
	}
	if p.pipeline != nil {
		d.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		d.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		d.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		d.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
