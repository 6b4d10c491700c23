package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/patch"
)

func squarePatch(sizeU0, sizeV0 int) *patch.Patch {
	p := patch.NewPatch(sizeU0, sizeV0)
	p.Width = sizeU0 * 16
	p.Height = sizeV0 * 16
	for i := range p.Occupancy {
		p.Occupancy[i] = true
	}
	return p
}

func footprintBlocks(p *patch.Patch, occW int) map[int]bool {
	blocks := make(map[int]bool)
	fu, fv := p.FootprintBlocks()
	for du := 0; du < fu; du++ {
		for dv := 0; dv < fv; dv++ {
			blocks[(p.V0+dv)*occW+(p.U0+du)] = true
		}
	}
	return blocks
}

func TestPackNonOverlapping(t *testing.T) {
	params := DefaultParameters()
	params.Strategy = StrategyFlexible
	params.MinimumImageWidth = 32
	pk := New(params)

	patches := []*patch.Patch{
		squarePatch(2, 2),
		squarePatch(1, 3),
		squarePatch(3, 1),
		squarePatch(1, 1),
	}
	w, h := pk.Pack(patches, nil)
	require.Greater(t, w, 0)
	require.Greater(t, h, 0)

	occW := w / params.OccupancyResolution
	seen := make(map[int]bool)
	for _, p := range patches {
		for block := range footprintBlocks(p, occW) {
			assert.False(t, seen[block], "block %d occupied by more than one patch", block)
			seen[block] = true
		}
	}
}

func TestPackAnchorStrategyKeepsDefaultOrientation(t *testing.T) {
	params := DefaultParameters()
	params.Strategy = StrategyAnchor
	pk := New(params)

	patches := []*patch.Patch{squarePatch(2, 4), squarePatch(3, 1)}
	pk.Pack(patches, nil)

	for _, p := range patches {
		assert.Equal(t, patch.OrientationDefault, p.Orientation)
	}
}

func TestPackMatchedPatchReusesReferencePosition(t *testing.T) {
	params := DefaultParameters()
	params.ThresholdIOU = 0.2
	pk := New(params)

	ref := squarePatch(2, 2)
	ref.U1, ref.V1 = 0, 0
	ref.Width, ref.Height = 32, 32
	pk.Pack([]*patch.Patch{ref}, nil)

	next := squarePatch(2, 2)
	next.U1, next.V1 = 0, 0
	next.Width, next.Height = 32, 32

	pk2 := New(params)
	pk2.Pack([]*patch.Patch{next}, []*patch.Patch{ref})

	assert.Equal(t, ref.U0, next.U0)
	assert.Equal(t, ref.V0, next.V0)
	assert.Equal(t, ref.Orientation, next.Orientation)
	assert.Equal(t, 0, next.BestMatchIdx)
}

func TestPackTetrisFillsGaps(t *testing.T) {
	params := DefaultParameters()
	params.Strategy = StrategyTetris
	params.MinimumImageWidth = 32
	pk := New(params)

	patches := []*patch.Patch{
		squarePatch(2, 1),
		squarePatch(2, 1),
		squarePatch(1, 1),
	}
	w, h := pk.Pack(patches, nil)
	assert.Greater(t, w, 0)
	assert.Greater(t, h, 0)
}

func TestPackGPAReusesTrackAcrossFrames(t *testing.T) {
	params := DefaultParameters()
	params.GlobalPatchAllocation = GPATracks
	gpa := NewGPAState()

	p1 := squarePatch(2, 2)
	p1.U1, p1.V1, p1.Width, p1.Height = 0, 0, 32, 32
	pk := New(params)
	pk.PackGPA([]*patch.Patch{p1}, gpa)

	p2 := squarePatch(2, 2)
	p2.U1, p2.V1, p2.Width, p2.Height = 0, 0, 32, 32
	pk.PackGPA([]*patch.Patch{p2}, gpa)

	assert.Equal(t, p1.U0, p2.U0)
	assert.Equal(t, p1.V0, p2.V0)
	assert.Equal(t, p1.Orientation, p2.Orientation)
	require.Len(t, gpa.Tracks, 1)
}
