package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"infinicanvas/internal/domain"
	"infinicanvas/internal/geom"
)

func testConfig(maxWidth float64) Config {
	cfg := DefaultConfig()
	cfg.RowMaxWidth = maxWidth
	return cfg
}

func TestPlace_EmptyCanvasCentersOnViewport(t *testing.T) {
	e := NewEngine(DefaultConfig())
	p := e.Place(Snapshot{Viewport: geom.FromRect(-500, -500, 2000, 1000)}, 600, 400)
	assert.Equal(t, 200.0, p.X)
	assert.Equal(t, -200.0, p.Y)
	assert.Empty(t, p.AnchorID)
	assert.False(t, p.Wrapped)
}

func TestPlace_DefaultRightOfAnchor(t *testing.T) {
	snap := Snapshot{Boards: []domain.Board{{ID: "a", Seq: 1, Width: 1000, Height: 1000}}}
	p := NewEngine(testConfig(3000)).Place(snap, 600, 600)

	assert.Equal(t, 1480.0, p.X)
	assert.Equal(t, 200.0, p.Y, "vertically centred on the anchor")
	assert.Equal(t, "a", p.AnchorID)
	assert.Equal(t, []string{"a"}, p.Row)
	assert.False(t, p.Wrapped)
}

func TestPlace_WrapsWhenRowTooWide(t *testing.T) {
	snap := Snapshot{Boards: []domain.Board{{ID: "a", Seq: 1, Width: 1000, Height: 1000}}}
	p := NewEngine(testConfig(1900)).Place(snap, 600, 600)

	assert.True(t, p.Wrapped)
	assert.Equal(t, 0.0, p.X, "left-aligned under the row")
	assert.Equal(t, 1000.0+DefaultRowGapY, p.Y)
}

func TestPlace_WrapUsesWholeRow(t *testing.T) {
	snap := Snapshot{Boards: []domain.Board{
		{ID: "a", Seq: 1, X: -200, Y: 0, Width: 1000, Height: 1200},
		{ID: "b", Seq: 2, X: 1280, Y: 100, Width: 1000, Height: 1000},
	}}
	// span = 2280 - (-200) = 2480; + 480 + 1000 = 3960
	p := NewEngine(testConfig(3900)).Place(snap, 1000, 1000)
	assert.True(t, p.Wrapped)
	assert.Equal(t, "b", p.AnchorID)
	assert.Equal(t, -200.0, p.X)
	assert.Equal(t, 1200.0+DefaultRowGapY, p.Y, "below the tallest board in the row")
	assert.Equal(t, []string{"a", "b"}, p.Row)

	p = NewEngine(testConfig(4000)).Place(snap, 1000, 1000)
	assert.False(t, p.Wrapped)
	assert.Equal(t, 2760.0, p.X)
}

func TestPlace_EmptyRowFallsBackToAnchorSpan(t *testing.T) {
	// A zero-height anchor never qualifies for its own row.
	snap := Snapshot{Boards: []domain.Board{{ID: "line", Seq: 1, X: 50, Y: 0, Width: 1000, Height: 0}}}
	p := NewEngine(testConfig(1500)).Place(snap, 600, 600)
	assert.Empty(t, p.Row)
	assert.True(t, p.Wrapped)
	assert.Equal(t, 50.0, p.X)
	assert.Equal(t, DefaultRowGapY, p.Y)
}

func TestPlace_Idempotent(t *testing.T) {
	snap := Snapshot{
		Boards: []domain.Board{
			{ID: "a", Seq: 1, Width: 2424, Height: 2424},
			{ID: "b", Seq: 2, X: 2904, Width: 2424, Height: 2424},
		},
		Viewport: geom.FromRect(0, 0, 5000, 3000),
	}
	e := NewEngine(DefaultConfig())
	first := e.Place(snap, 2424, 2424)
	second := e.Place(snap, 2424, 2424)
	assert.Equal(t, first, second)
}

func TestArrange(t *testing.T) {
	boards := []domain.Board{
		{ID: "3", Seq: 3, Width: 1000, Height: 500},
		{ID: "1", Seq: 1, Width: 1000, Height: 800},
		{ID: "2", Seq: 2, Width: 1000, Height: 500},
	}
	cfg := testConfig(2500)
	cfg.BoardGapX = 100
	cfg.RowGapY = 200

	out := NewEngine(cfg).Arrange(boards, 10, 20)

	assert.Equal(t, []string{"1", "2", "3"}, ids(out))
	assert.Equal(t, [2]float64{10, 20}, [2]float64{out[0].X, out[0].Y})
	assert.Equal(t, [2]float64{1110, 20}, [2]float64{out[1].X, out[1].Y})
	assert.Equal(t, [2]float64{10, 20 + 800 + 200}, [2]float64{out[2].X, out[2].Y})

	for i := range out {
		for j := i + 1; j < len(out); j++ {
			assert.False(t, out[i].Bounds().Overlaps(out[j].Bounds()), "%s overlaps %s", out[i].ID, out[j].ID)
		}
	}
}
