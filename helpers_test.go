package termtext

import (
	"image"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/gogpu/termtext/internal/gpu"
	"github.com/gogpu/termtext/text"
)

var testViewport = image.Pt(800, 400)

var monoAtlas = sync.OnceValues(func() (*text.FontAtlas, error) {
	return text.BuildAtlas(gomono.TTF, text.DefaultAtlasConfig())
})

func testAtlas(t *testing.T) *text.FontAtlas {
	t.Helper()
	a, err := monoAtlas()
	if err != nil {
		t.Fatalf("BuildAtlas failed: %v", err)
	}
	return a
}

// testConfig is the default configuration on the noop backend.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = "empty"
	return cfg
}

func newTestContext(t *testing.T) *gpu.Context {
	t.Helper()
	ctx, err := gpu.NewContext(gpu.ContextConfig{Backend: gputypes.BackendEmpty})
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	t.Cleanup(ctx.Destroy)
	return ctx
}

func newTestTerminal(t *testing.T, cfg Config) *Terminal {
	t.Helper()
	term, err := NewTerminal(cfg)
	if err != nil {
		t.Fatalf("NewTerminal failed: %v", err)
	}
	t.Cleanup(term.Close)
	return term
}

// countingPass records the draw calls of a render pass. Methods the passes
// do not call fall through to the nil embedded interface.
type countingPass struct {
	hal.RenderPassEncoder

	pipelines int
	draws     []uint32
}

func (c *countingPass) SetPipeline(hal.RenderPipeline) { c.pipelines++ }

func (c *countingPass) SetBindGroup(uint32, hal.BindGroup, []uint32) {}

func (c *countingPass) SetVertexBuffer(uint32, hal.Buffer, uint64) {}

func (c *countingPass) SetIndexBuffer(hal.Buffer, gputypes.IndexFormat, uint64) {}

func (c *countingPass) DrawIndexed(n, _, _ uint32, _ int32, _ uint32) {
	c.draws = append(c.draws, n)
}
