package termtext

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/termtext/internal/slotmap"
)

func newTestRectPass(t *testing.T) *RectPass {
	t.Helper()
	p, err := newRectPass(newTestContext(t), testViewport)
	if err != nil {
		t.Fatalf("newRectPass failed: %v", err)
	}
	t.Cleanup(p.Destroy)
	return p
}

func TestRectQuad(t *testing.T) {
	red := [4]uint8{255, 0, 0, 255}
	q := rectQuad(RectObject{X: 10, Y: 10, W: 20, H: 20, Color: red}, image.Pt(800, 400))

	want := [4][2]float32{
		{10.0 / 800, 10.0 / 400},
		{30.0 / 800, 10.0 / 400},
		{10.0 / 800, 30.0 / 400},
		{30.0 / 800, 30.0 / 400},
	}
	for i, v := range q {
		if v.Position != want[i] {
			t.Errorf("vertex %d position = %v, want %v", i, v.Position, want[i])
		}
		if v.Color != red {
			t.Errorf("vertex %d color = %v, want %v", i, v.Color, red)
		}
	}
}

func TestRectQuadNegativeSize(t *testing.T) {
	tests := []struct {
		name string
		rect RectObject
	}{
		{"negative width", RectObject{X: 40, Y: 20, W: -5, H: 10}},
		{"negative height", RectObject{X: 40, Y: 20, W: 10, H: -5}},
		{"both negative", RectObject{X: 40, Y: 20, W: -1, H: -1}},
		{"zero", RectObject{X: 40, Y: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := rectQuad(tt.rect, testViewport)
			left, bottom := q[0].Position[0], q[0].Position[1]
			right, top := q[3].Position[0], q[3].Position[1]
			if right < left || top < bottom {
				t.Errorf("inverted quad: %v", q)
			}
			if tt.rect.W <= 0 && right != left {
				t.Errorf("width not clamped: %v..%v", left, right)
			}
			if tt.rect.H <= 0 && top != bottom {
				t.Errorf("height not clamped: %v..%v", bottom, top)
			}
		})
	}
}

func TestRectPassPrepare(t *testing.T) {
	p := newTestRectPass(t)

	a := p.AddRect(RectObject{X: 0, Y: 0, W: 10, H: 10})
	b := p.AddRect(RectObject{X: 100, Y: 100, W: 10, H: 10})
	p.AddRect(RectObject{X: 200, Y: 200, W: 10, H: 10})
	if p.Len() != 3 {
		t.Fatalf("Len = %d, want 3", p.Len())
	}
	if err := p.RemoveRect(b); err != nil {
		t.Fatalf("RemoveRect failed: %v", err)
	}

	if err := p.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	g := p.Geometry()
	if g.Len() != 8 || g.IndexLen() != 12 {
		t.Errorf("geometry = %d vertices, %d indices; want 8, 12", g.Len(), g.IndexLen())
	}
	if g.Stale() {
		t.Error("geometry stale after Prepare")
	}

	// Every frame is rebuilt: a second Prepare does not accumulate.
	r, err := p.Rect(a)
	if err != nil {
		t.Fatalf("Rect failed: %v", err)
	}
	r.X = 400
	if err := p.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if g.Len() != 8 {
		t.Errorf("geometry grew to %d vertices across frames", g.Len())
	}
	if got := g.Vertices()[0].Position[0]; got != 400.0/800 {
		t.Errorf("moved rect x = %v, want %v", got, 400.0/800)
	}
}

func TestRectPassRecord(t *testing.T) {
	p := newTestRectPass(t)

	rp := &countingPass{}
	if err := p.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := p.Record(rp); err != nil {
		t.Fatalf("Record of empty pass failed: %v", err)
	}
	if len(rp.draws) != 0 {
		t.Errorf("empty pass recorded %d draws", len(rp.draws))
	}

	p.AddRect(RectObject{X: 1, Y: 1, W: 5, H: 5})
	p.AddRect(RectObject{X: 9, Y: 9, W: 5, H: 5})
	if err := p.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := p.Record(rp); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if len(rp.draws) != 1 || rp.draws[0] != 12 {
		t.Errorf("draws = %v, want [12]", rp.draws)
	}
	if rp.pipelines != 1 {
		t.Errorf("SetPipeline called %d times, want 1", rp.pipelines)
	}
}

func TestRectPassStaleHandle(t *testing.T) {
	p := newTestRectPass(t)
	h := p.AddRect(RectObject{W: 1, H: 1})
	if err := p.RemoveRect(h); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Rect(h); !errors.Is(err, slotmap.ErrStaleHandle) {
		t.Errorf("Rect(removed) err = %v, want ErrStaleHandle", err)
	}
	if err := p.RemoveRect(h); !errors.Is(err, slotmap.ErrStaleHandle) {
		t.Errorf("RemoveRect(removed) err = %v, want ErrStaleHandle", err)
	}
}
