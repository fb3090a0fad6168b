// Package termtext renders a GPU text terminal: panes of wrapped text with
// blinking cursors, drawn as batched quads on gogpu/wgpu.
//
// # Overview
//
// Every frame is rebuilt from scratch. Rectangles (the cursors) and glyph
// quads are appended to CPU-side geometry, uploaded into one vertex+index
// buffer per quad type, and drawn in a single render pass cleared to white.
// Glyphs come from a font atlas built once at startup.
//
// # Quick Start
//
//	import "github.com/gogpu/termtext"
//
//	cfg := termtext.DefaultConfig()
//	term, err := termtext.NewTerminal(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer term.Close()
//
//	fmt.Fprintln(term.Window(0), "hello from pane 0")
//	if err := term.Frame(); err != nil {
//	    log.Fatal(err)
//	}
//
// The HAL backend named by Config.Backend must be linked into the binary,
// for example with a blank import of github.com/gogpu/wgpu/hal/allbackends.
//
// # Architecture
//
//   - Terminal: panes, cursors, scrolling, io.Writer per pane
//   - Renderer: owns the device, the offscreen target and both passes
//   - RectPass, TextPass: registries of objects rebuilt into geometry
//   - text: font atlas and layout
//   - internal/gpu: geometry buffers, pipelines, frames
//
// # Coordinate System
//
// Positions are in pixels with the origin at the bottom-left of the
// viewport and y increasing upward. Text grows downward from its top-left
// corner.
//
// # Concurrency
//
// Terminal methods and pane writers are safe for concurrent use. Renderer
// and the passes are not; Terminal serializes access to them.
package termtext

// Version is the current version of the module.
const Version = "0.1.0"
