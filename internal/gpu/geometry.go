package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// InitialGeometryBytes is the size of the GPU allocation a new
// GeometryBuffer starts with.
const InitialGeometryBytes = 3000

// geometryUsage is the usage of the shared vertex+index allocation.
const geometryUsage = gputypes.BufferUsageVertex | gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst

// quadIndices is the index pattern of one quad relative to its first
// vertex. Both triangles are counter-clockwise for a quad emitted as
// top-left, top-right, bottom-left, bottom-right in y-up clip space.
var quadIndices = [6]uint32{2, 1, 0, 2, 3, 1}

// BufferSlice is a byte range of a GPU buffer.
type BufferSlice struct {
	Buffer hal.Buffer
	Offset uint64
	Size   uint64
}

// GeometryBuffer batches quads of one vertex type into a single GPU
// allocation holding the vertex block followed by the index block.
//
// The CPU side is rebuilt every frame (Clear, then Extend per quad); Flush
// uploads it. The GPU allocation only grows: when the serialized content no
// longer fits, it is replaced by a new one twice the required size and the
// whole content is written again.
//
// A GeometryBuffer is owned by a single pass and is not safe for concurrent
// use.
type GeometryBuffer[V any] struct {
	ctx    *Context
	label  string
	format VertexFormat[V]

	vertices growable[V]
	indices  growable[uint32]

	buffer   hal.Buffer
	capacity uint64
	staging  []byte

	// Uploaded ranges, valid while !stale.
	vertexBytes uint64
	indexBytes  uint64
	indexCount  uint32

	stale bool
}

// GeometryConfig sizes a new GeometryBuffer.
type GeometryConfig struct {
	// InitialBytes is the size of the first GPU allocation.
	// Default: InitialGeometryBytes
	InitialBytes uint64

	// ReserveQuads is the number of quads CPU storage is pre-sized for.
	// Default: 0
	ReserveQuads int
}

// DefaultGeometryConfig returns default configuration.
func DefaultGeometryConfig() GeometryConfig {
	return GeometryConfig{InitialBytes: InitialGeometryBytes}
}

// NewGeometryBuffer allocates a geometry buffer of InitialGeometryBytes.
func NewGeometryBuffer[V any](ctx *Context, label string, format VertexFormat[V]) (*GeometryBuffer[V], error) {
	return NewGeometryBufferWithConfig(ctx, label, format, DefaultGeometryConfig())
}

// NewGeometryBufferWithConfig allocates a geometry buffer sized by cfg.
func NewGeometryBufferWithConfig[V any](ctx *Context, label string, format VertexFormat[V], cfg GeometryConfig) (*GeometryBuffer[V], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if cfg.InitialBytes == 0 {
		cfg.InitialBytes = InitialGeometryBytes
	}
	g := &GeometryBuffer[V]{
		ctx:    ctx,
		label:  label,
		format: format,
	}
	buf, err := g.allocate(cfg.InitialBytes)
	if err != nil {
		return nil, err
	}
	g.buffer = buf
	g.capacity = cfg.InitialBytes
	if cfg.ReserveQuads > 0 {
		g.Reserve(cfg.ReserveQuads)
	}
	return g, nil
}

// Reserve makes room for n more quads without reallocating CPU storage.
func (g *GeometryBuffer[V]) Reserve(n int) {
	g.vertices.reserve(4 * n)
	g.indices.reserve(6 * n)
}

// Extend appends one quad: four vertices and six indices offset by the
// current vertex count.
func (g *GeometryBuffer[V]) Extend(quad [4]V) {
	base := uint32(g.vertices.len()) //nolint:gosec // vertex count is bounded by the 32-bit index format
	g.vertices.append(quad[:]...)
	g.indices.append(
		base+quadIndices[0], base+quadIndices[1], base+quadIndices[2],
		base+quadIndices[3], base+quadIndices[4], base+quadIndices[5],
	)
	g.stale = true
}

// Clear empties the CPU lists. CPU and GPU capacity are kept.
func (g *GeometryBuffer[V]) Clear() {
	g.vertices.reset()
	g.indices.reset()
	g.stale = true
}

// Flush makes the GPU allocation large enough for the current content and
// uploads all of it: vertices at offset 0, indices right after them.
func (g *GeometryBuffer[V]) Flush() error {
	vertexBytes := uint64(g.vertices.len()) * g.format.Stride
	indexBytes := uint64(g.indices.len()) * indexStride
	required := vertexBytes + indexBytes

	if required > g.capacity {
		newCap := 2 * required
		buf, err := g.allocate(newCap)
		if err != nil {
			return err
		}
		g.ctx.device.DestroyBuffer(g.buffer)
		slogger().Debug("geometry buffer grown",
			"label", g.label, "from", g.capacity, "to", newCap, "required", required)
		g.buffer = buf
		g.capacity = newCap
	}

	if required > 0 {
		data := g.serialize(vertexBytes, indexBytes)
		if vertexBytes > 0 {
			if err := g.ctx.queue.WriteBuffer(g.buffer, 0, data[:vertexBytes]); err != nil {
				return fmt.Errorf("gpu: upload %s vertices: %w", g.label, err)
			}
		}
		if err := g.ctx.queue.WriteBuffer(g.buffer, vertexBytes, data[vertexBytes:required]); err != nil {
			return fmt.Errorf("gpu: upload %s indices: %w", g.label, err)
		}
	}

	g.vertexBytes = vertexBytes
	g.indexBytes = indexBytes
	g.indexCount = uint32(g.indices.len()) //nolint:gosec // bounded by the 32-bit index format
	g.stale = false
	return nil
}

// serialize encodes the CPU content into the reusable staging slice.
func (g *GeometryBuffer[V]) serialize(vertexBytes, indexBytes uint64) []byte {
	total := int(vertexBytes + indexBytes) //nolint:gosec // fits in memory by construction
	if cap(g.staging) < total {
		g.staging = make([]byte, total)
	}
	data := g.staging[:total]

	stride := int(g.format.Stride) //nolint:gosec // stride is a small constant
	off := 0
	for _, v := range g.vertices.view() {
		g.format.Encode(data[off:off+stride], v)
		off += stride
	}
	for _, idx := range g.indices.view() {
		binary.LittleEndian.PutUint32(data[off:], idx)
		off += indexStride
	}
	return data
}

// Draw binds the uploaded ranges and records one indexed draw. The caller
// has already set the pipeline and bind groups. It fails with
// ErrStaleGeometry when the buffer changed after its last Flush.
func (g *GeometryBuffer[V]) Draw(rp hal.RenderPassEncoder) error {
	if g.stale {
		return fmt.Errorf("%w: %s", ErrStaleGeometry, g.label)
	}
	if g.indexCount == 0 {
		return nil
	}
	v := g.VertexSlice()
	i := g.IndexSlice()
	rp.SetVertexBuffer(0, v.Buffer, v.Offset)
	rp.SetIndexBuffer(i.Buffer, gputypes.IndexFormatUint32, i.Offset)
	rp.DrawIndexed(g.indexCount, 1, 0, 0, 0)
	return nil
}

// VertexSlice returns the uploaded vertex range.
func (g *GeometryBuffer[V]) VertexSlice() BufferSlice {
	return BufferSlice{Buffer: g.buffer, Offset: 0, Size: g.vertexBytes}
}

// IndexSlice returns the uploaded index range, which starts right after the
// vertex range.
func (g *GeometryBuffer[V]) IndexSlice() BufferSlice {
	return BufferSlice{Buffer: g.buffer, Offset: g.vertexBytes, Size: g.indexBytes}
}

// Len returns the number of CPU-side vertices.
func (g *GeometryBuffer[V]) Len() int { return g.vertices.len() }

// IndexLen returns the number of CPU-side indices.
func (g *GeometryBuffer[V]) IndexLen() int { return g.indices.len() }

// Vertices returns the CPU-side vertices. The slice is invalidated by the
// next Extend or Clear.
func (g *GeometryBuffer[V]) Vertices() []V { return g.vertices.view() }

// Indices returns the CPU-side indices. The slice is invalidated by the
// next Extend or Clear.
func (g *GeometryBuffer[V]) Indices() []uint32 { return g.indices.view() }

// Capacity returns the size of the GPU allocation in bytes.
func (g *GeometryBuffer[V]) Capacity() uint64 { return g.capacity }

// Stale reports whether the buffer changed after its last Flush.
func (g *GeometryBuffer[V]) Stale() bool { return g.stale }

// Format returns the vertex format of the buffer.
func (g *GeometryBuffer[V]) Format() VertexFormat[V] { return g.format }

// Destroy releases the GPU allocation.
func (g *GeometryBuffer[V]) Destroy() {
	if g.buffer != nil && g.ctx != nil && g.ctx.device != nil {
		g.ctx.device.DestroyBuffer(g.buffer)
	}
	g.buffer = nil
	g.capacity = 0
}

func (g *GeometryBuffer[V]) allocate(size uint64) (hal.Buffer, error) {
	buf, err := g.ctx.device.CreateBuffer(&hal.BufferDescriptor{
		Label: g.label + "_geometry",
		Size:  size,
		Usage: geometryUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: allocate %s geometry buffer (%d bytes): %w", g.label, size, err)
	}
	return buf, nil
}
