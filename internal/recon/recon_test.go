package recon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/imagegen"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// singleBlockPatch builds a 1x1-block patch covering an O x O pixel
// square with a flat D0=0 layer and D1 equal to D0 (every pixel
// occupied), the smallest patch the reconstructor can walk.
func singleBlockPatch(o int) *patch.Patch {
	p := patch.NewPatch(1, 1)
	p.Width, p.Height = o, o
	p.NormalAxis, p.TangentAxis, p.BitangentAxis = 2, 0, 1
	p.ProjectionMode = patch.ProjectionMin
	p.D0Layer = make([]int32, o*o)
	p.D1Layer = make([]int32, o*o)
	p.EDD = make([]uint16, o*o)
	p.PixelOccupancy = make([]bool, o*o)
	for i := range p.PixelOccupancy {
		p.PixelOccupancy[i] = true
	}
	for i := range p.Occupancy {
		p.Occupancy[i] = true
	}
	return p
}

func TestReconstructFrame_FlatPatch(t *testing.T) {
	O := 4
	p := singleBlockPatch(O)
	ctx := frame.NewContext([]*patch.Patch{p}, O, O, O, 1)
	ctx.BuildBlockToPatch()

	r := New(DefaultParameters())
	pc, refs, err := r.ReconstructFrame(ctx, Images{})
	require.NoError(t, err)
	require.Len(t, pc.Points, O*O)
	require.Len(t, refs, O*O)
	for _, pt := range pc.Points {
		require.Equal(t, int32(0), pt.Z)
	}
}

func TestReconstructFrame_SkipsUnoccupied(t *testing.T) {
	O := 4
	p := singleBlockPatch(O)
	// Leave one pixel unoccupied.
	p.PixelOccupancy[0] = false
	ctx := frame.NewContext([]*patch.Patch{p}, O, O, O, 1)
	ctx.BuildBlockToPatch()

	r := New(DefaultParameters())
	pc, _, err := r.ReconstructFrame(ctx, Images{})
	require.NoError(t, err)
	require.Len(t, pc.Points, O*O-1)
}

func TestReconstructFrame_PLRMinD1ForcesDelta(t *testing.T) {
	O := 2
	p := singleBlockPatch(O)
	p.PLRPatch = &patch.PLRMode{MinD1: 2}
	ctx := frame.NewContext([]*patch.Patch{p}, O, O, O, 1)
	ctx.BuildBlockToPatch()

	r := New(DefaultParameters())
	pc, _, err := r.ReconstructFrame(ctx, Images{})
	require.NoError(t, err)

	// Every pixel's flat D0=D1=0 pair is forced apart by the mode's
	// minimum delta: one D0 point plus one D1 point at depth 2.
	require.Len(t, pc.Points, 2*O*O)
	var depths []int32
	for _, pt := range pc.Points {
		if pt.X == 0 && pt.Y == 0 {
			depths = append(depths, pt.Z)
		}
	}
	require.ElementsMatch(t, []int32{0, 2}, depths)
}

func TestReconstructFrame_PLRInterpolateTakesNeighbourhoodDelta(t *testing.T) {
	O := 4
	p := singleBlockPatch(O)
	p.D1Layer[1*O+1] = 3 // one pixel with a real surface thickness
	p.PLRPatch = &patch.PLRMode{Interpolate: true, Fill: true, Neighbor: 1}
	ctx := frame.NewContext([]*patch.Patch{p}, O, O, O, 1)
	ctx.BuildBlockToPatch()

	r := New(DefaultParameters())
	pc, _, err := r.ReconstructFrame(ctx, Images{})
	require.NoError(t, err)

	// (0,0) is within Chebyshev radius 1 of the thick pixel, so its
	// delta interpolates up to 3 and fill emits depths 1 and 2 between.
	var depths []int32
	for _, pt := range pc.Points {
		if pt.X == 0 && pt.Y == 0 {
			depths = append(depths, pt.Z)
		}
	}
	require.ElementsMatch(t, []int32{0, 1, 2, 3}, depths)

	// (3,3) is out of range of it and stays a single flat point.
	var farDepths []int32
	for _, pt := range pc.Points {
		if pt.X == 3 && pt.Y == 3 {
			farDepths = append(farDepths, pt.Z)
		}
	}
	require.ElementsMatch(t, []int32{0}, farDepths)
}

func TestReconstructFrame_EDDExpansion(t *testing.T) {
	O := 2
	p := singleBlockPatch(O)
	p.D1Layer[0] = 4
	p.EDD[0] = 1<<0 | 1<<1 // bits at delta 1 and 2; bit index 3 (delta 4) is D1's own
	ctx := frame.NewContext([]*patch.Patch{p}, O, O, O, 1)
	ctx.BuildBlockToPatch()

	params := DefaultParameters()
	params.EnhancedDeltaDepthCode = true
	r := New(params)
	pc, _, err := r.ReconstructFrame(ctx, Images{})
	require.NoError(t, err)

	var depths []int32
	for i, pt := range pc.Points {
		if pt.X == 0 && pt.Y == 0 {
			_ = i
			depths = append(depths, pt.Z)
		}
	}
	require.Contains(t, depths, int32(0))
	require.Contains(t, depths, int32(1))
	require.Contains(t, depths, int32(2))
	require.Contains(t, depths, int32(4))
	require.NotContains(t, depths, int32(3))
}

func TestEDDCodeAt(t *testing.T) {
	img := imagegen.NewImageGrid(1, 1, 1, 16)
	img.Set(0, 0, 0, 42<<1|1)
	require.Equal(t, uint16(42), EDDCodeAt(img, 4, 0, 0))
	require.Equal(t, uint16(42), EDDCodeAt(img, 4, 3, 3))
}
