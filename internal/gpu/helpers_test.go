package gpu

import (
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop"
)

// newTestContext opens a Context on the noop backend, whose buffers keep
// their bytes in memory.
func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(ContextConfig{
		Backend: gputypes.BackendEmpty,
		Format:  gputypes.TextureFormatBGRA8Unorm,
	})
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	t.Cleanup(ctx.Destroy)
	return ctx
}

// readBuffer copies n bytes at offset out of a noop buffer.
func readBuffer(t *testing.T, ctx *Context, buf hal.Buffer, offset, n uint64) []byte {
	t.Helper()
	if n == 0 {
		return nil
	}
	m, err := ctx.Device().MapBuffer(buf, offset, n)
	if err != nil {
		t.Fatalf("MapBuffer failed: %v", err)
	}
	defer func() { _ = ctx.Device().UnmapBuffer(buf) }()
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(m.Ptr), n))
	return out
}

// drawCall is one DrawIndexed recorded by recordingPass.
type drawCall struct {
	indexCount    uint32
	instanceCount uint32
}

// recordingPass captures the commands a pass records. Methods not used by
// termtext fall through to the nil embedded interface.
type recordingPass struct {
	hal.RenderPassEncoder

	pipelines   []hal.RenderPipeline
	bindGroups  map[uint32]hal.BindGroup
	vertexBuf   hal.Buffer
	vertexOff   uint64
	indexBuf    hal.Buffer
	indexOff    uint64
	indexFormat gputypes.IndexFormat
	draws       []drawCall
	ended       bool
}

func (r *recordingPass) End() { r.ended = true }

func (r *recordingPass) SetPipeline(p hal.RenderPipeline) { r.pipelines = append(r.pipelines, p) }

func (r *recordingPass) SetBindGroup(index uint32, group hal.BindGroup, _ []uint32) {
	if r.bindGroups == nil {
		r.bindGroups = make(map[uint32]hal.BindGroup)
	}
	r.bindGroups[index] = group
}

func (r *recordingPass) SetVertexBuffer(_ uint32, buf hal.Buffer, offset uint64) {
	r.vertexBuf, r.vertexOff = buf, offset
}

func (r *recordingPass) SetIndexBuffer(buf hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	r.indexBuf, r.indexFormat, r.indexOff = buf, format, offset
}

func (r *recordingPass) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, _ uint32) {
	r.draws = append(r.draws, drawCall{indexCount: indexCount, instanceCount: instanceCount})
}
