package termtext

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/termtext/text"
)

func TestRendererFrame(t *testing.T) {
	r, err := NewRenderer(testConfig(), testAtlas(t))
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	defer r.Close()

	if r.Viewport() != testViewport {
		t.Errorf("Viewport = %v", r.Viewport())
	}
	r.Rects().AddRect(RectObject{X: 10, Y: 10, W: 20, H: 20, Color: [4]uint8{0, 0, 255, 255}})
	h := r.Texts().AddText(text.TextObject{Text: "ab", TopLeft: image.Pt(10, 390), MaxWidth: 390})

	// Render without Update refuses the dirty text pass.
	if err := r.Render(); !errors.Is(err, ErrTextPassDirty) {
		t.Errorf("Render while dirty = %v, want ErrTextPassDirty", err)
	}
	if r.Frames() != 0 {
		t.Errorf("Frames = %d after a failed render", r.Frames())
	}

	for i := range 3 {
		if err := r.Frame(); err != nil {
			t.Fatalf("Frame %d failed: %v", i, err)
		}
	}
	if r.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", r.Frames())
	}
	if _, ok := r.Texts().Stats(h); !ok {
		t.Error("text stats missing after a frame")
	}
	if n := r.Rects().Geometry().Len(); n != 4 {
		t.Errorf("rect geometry = %d vertices, want 4", n)
	}
}

func TestRendererClosed(t *testing.T) {
	r, err := NewRenderer(testConfig(), testAtlas(t))
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	r.Close()
	if err := r.Frame(); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Frame after Close = %v", err)
	}
	if err := r.Render(); !errors.Is(err, ErrRendererClosed) {
		t.Errorf("Render after Close = %v", err)
	}
}

func TestNewRendererErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Backend = "bogus"
	if _, err := NewRenderer(cfg, testAtlas(t)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("bad backend: %v", err)
	}
	if _, err := newRenderer(newTestContext(t), nil, testViewport); err == nil {
		t.Error("nil atlas accepted")
	}
}

// hostProvider shares a device the way a windowing host does.
type hostProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *hostProvider) Device() gpucontext.Device {
	return nil
}

func (p *hostProvider) Queue() gpucontext.Queue {
	return nil
}

func (p *hostProvider) Adapter() gpucontext.Adapter {
	return nil
}

func (p *hostProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func (p *hostProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "host"}
}

func (p *hostProvider) HalDevice() any {
	return p.device
}

func (p *hostProvider) HalQueue() any {
	return p.queue
}

func TestTerminalFromProvider(t *testing.T) {
	host := newTestContext(t)
	term, err := NewTerminalFromProvider(&hostProvider{device: host.Device(), queue: host.Queue()}, testConfig())
	if err != nil {
		t.Fatalf("NewTerminalFromProvider failed: %v", err)
	}
	if err := term.Frame(); err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	term.Close()

	// The host device survives the terminal.
	if _, err := host.Device().CreateBuffer(&hal.BufferDescriptor{Label: "after", Size: 4, Usage: gputypes.BufferUsageCopyDst}); err != nil {
		t.Errorf("host device unusable after Close: %v", err)
	}
}
