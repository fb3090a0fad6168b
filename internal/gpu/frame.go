package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ClearWhite is the color every frame starts from.
var ClearWhite = gputypes.Color{R: 1, G: 1, B: 1, A: 1}

// Frame is one command encoder with one render pass open on a target.
// Passes record into Pass between NewFrame and Submit.
type Frame struct {
	ctx     *Context
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	done    bool
}

// NewFrame begins encoding and opens a render pass that clears target to
// clear.
func (c *Context) NewFrame(target *RenderTarget, clear gputypes.Color) (*Frame, error) {
	if target == nil || target.View() == nil {
		return nil, fmt.Errorf("gpu: frame needs a render target")
	}
	enc, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "termtext_frame"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("termtext_frame"); err != nil {
		enc.Destroy()
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	pass := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "termtext_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target.View(),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	})
	return &Frame{ctx: c, encoder: enc, pass: pass}, nil
}

// Pass returns the open render pass. It is nil after Submit.
func (f *Frame) Pass() hal.RenderPassEncoder {
	if f.done {
		return nil
	}
	return f.pass
}

// Submit ends the render pass and submits the commands.
func (f *Frame) Submit() error {
	if f.done {
		return ErrFrameNotBegun
	}
	f.done = true
	f.pass.End()

	cmd, err := f.encoder.EndEncoding()
	if err != nil {
		f.encoder.Destroy()
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer f.encoder.Destroy()
	defer f.ctx.device.FreeCommandBuffer(cmd)

	if _, err := f.ctx.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("gpu: submit frame: %w", err)
	}
	// The command buffer is freed on return, so the GPU must be done with it.
	if err := f.ctx.device.WaitIdle(); err != nil {
		return fmt.Errorf("gpu: wait for frame: %w", err)
	}
	return nil
}

// Discard abandons the frame without submitting it.
func (f *Frame) Discard() {
	if f.done {
		return
	}
	f.done = true
	f.pass.End()
	f.encoder.DiscardEncoding()
	f.encoder.Destroy()
}
