// Package gpu holds the GPU side of termtext: the device context, the
// per-frame geometry buffers, the quad pipelines and the atlas texture.
//
// Everything here talks to the GPU through the gogpu/wgpu HAL, so the same
// code runs on Vulkan, Metal, DX12, GLES, the software rasterizer, and the
// noop backend used in tests.
//
// # Frame model
//
// One frame is:
//
//	GeometryBuffer.Clear -> Extend... -> Flush -> Context.NewFrame -> Record -> Frame.Submit
//
// Flush grows the GPU allocation when the CPU contents no longer fit and
// always rewrites the whole vertex block followed by the index block. A
// buffer that was extended or cleared after its last flush refuses to draw
// (ErrStaleGeometry).
//
// # Context
//
// Context replaces a process-wide device: it is created once, either from a
// registered HAL backend (NewContext) or from a host application's device
// (NewContextFromProvider), and passed to every constructor in this package.
package gpu
