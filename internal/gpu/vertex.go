package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/termtext/text"
)

// ColoredVertex is one corner of a solid-color rectangle.
// Matches VertexInput in rect.wgsl:
//
//	position (vec2<f32>)    = 8 bytes (location 0)
//	color    (unorm8x4)     = 4 bytes (location 1)
type ColoredVertex struct {
	Position [2]float32
	Color    [4]uint8
}

// GlyphVertex is one corner of a textured glyph quad, as produced by
// text.Layout. Matches VertexInput in glyph.wgsl:
//
//	position  (vec2<f32>) = 8 bytes (location 0)
//	tex_coord (vec2<f32>) = 8 bytes (location 1)
type GlyphVertex = text.GlyphVertex

const (
	coloredVertexStride = 12
	glyphVertexStride   = 16
	indexStride         = 4
)

// VertexFormat describes how a vertex type is laid out in a GPU buffer.
type VertexFormat[V any] struct {
	// Stride is the byte size of one encoded vertex.
	Stride uint64

	// Attributes are the shader inputs read from one vertex.
	Attributes []gputypes.VertexAttribute

	// Encode writes v into dst[:Stride].
	Encode func(dst []byte, v V)
}

// BufferLayout returns the pipeline vertex buffer layout for the format.
func (f VertexFormat[V]) BufferLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: f.Stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  f.Attributes,
	}}
}

// ColoredFormat is the vertex format of rectangle geometry.
var ColoredFormat = VertexFormat[ColoredVertex]{
	Stride: coloredVertexStride,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
		{Format: gputypes.VertexFormatUnorm8x4, Offset: 8, ShaderLocation: 1},  // color
	},
	Encode: writeColoredVertex,
}

// GlyphFormat is the vertex format of glyph geometry.
var GlyphFormat = VertexFormat[GlyphVertex]{
	Stride: glyphVertexStride,
	Attributes: []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
		{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
	},
	Encode: writeGlyphVertex,
}

func writeColoredVertex(buf []byte, v ColoredVertex) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	copy(buf[8:12], v.Color[:])
}

func writeGlyphVertex(buf []byte, v GlyphVertex) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.TexCoord[1]))
}
