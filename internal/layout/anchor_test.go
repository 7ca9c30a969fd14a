package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinicanvas/internal/domain"
)

func TestSelectAnchor_Empty(t *testing.T) {
	assert.Nil(t, SelectAnchor(nil, []string{"x"}, DefaultAnchorRowFuzz))
}

func TestSelectAnchor_SelectionWins(t *testing.T) {
	boards := []domain.Board{
		{ID: "a", Seq: 1},
		{ID: "b", Seq: 2},
		{ID: "c", Seq: 3},
	}
	a := SelectAnchor(boards, []string{"b", "a"}, DefaultAnchorRowFuzz)
	require.NotNil(t, a)
	assert.Equal(t, "a", a.ID, "last selected board is the anchor")

	// Unknown IDs in the selection (non-board shapes) are ignored.
	a = SelectAnchor(boards, []string{"b", "some-asset"}, DefaultAnchorRowFuzz)
	require.NotNil(t, a)
	assert.Equal(t, "b", a.ID)
}

func TestSelectAnchor_HighestSeq(t *testing.T) {
	boards := []domain.Board{
		{ID: "late", Seq: 7, X: 0, Y: 0},
		{ID: "early", Seq: 2, X: 9000, Y: 9000},
	}
	a := SelectAnchor(boards, nil, DefaultAnchorRowFuzz)
	require.NotNil(t, a)
	assert.Equal(t, "late", a.ID)
}

func TestSelectAnchor_SpatialFallback(t *testing.T) {
	boards := []domain.Board{
		board("row2-left", 0, 3000, 100, 100),
		board("row1-right", 5000, 0, 100, 100),
		board("row2-right", 2000, 3050, 100, 100), // within fuzz of row2-left
		board("row1-left", 0, 40, 100, 100),
	}
	a := SelectAnchor(boards, nil, DefaultAnchorRowFuzz)
	require.NotNil(t, a)
	assert.Equal(t, "row2-right", a.ID)

	// Outside the fuzz the lower board starts its own row.
	boards[2].Y = 3200
	a = SelectAnchor(boards, nil, DefaultAnchorRowFuzz)
	require.NotNil(t, a)
	assert.Equal(t, "row2-right", a.ID, "alone in the last row")

	boards[2].Y = 2000
	a = SelectAnchor(boards, nil, DefaultAnchorRowFuzz)
	require.NotNil(t, a)
	assert.Equal(t, "row2-left", a.ID)
}
