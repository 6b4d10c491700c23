package imagegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// oneBlockContext builds a frame with a single 1x1-block patch covering
// the full 16x16 canvas, with the given pixels occupied.
func oneBlockContext(occupied ...[2]int) (*frame.Context, *patch.Patch) {
	const o = 16
	p := patch.NewPatch(1, 1)
	p.Width, p.Height = o, o
	p.PixelOccupancy = make([]bool, o*o)
	p.D0Layer = make([]int32, o*o)
	p.D1Layer = make([]int32, o*o)
	p.EDD = make([]uint16, o*o)
	p.Colors = make([]geom.Color, o*o)
	p.Occupancy[0] = true
	for _, uv := range occupied {
		p.PixelOccupancy[uv[1]*o+uv[0]] = true
	}
	ctx := frame.NewContext([]*patch.Patch{p}, o, o, o, 1)
	ctx.BuildBlockToPatch()
	return ctx, p
}

func TestGenerateOccupancy_SubsamplesTiles(t *testing.T) {
	ctx, _ := oneBlockContext([2]int{0, 0})
	params := DefaultParameters()
	params.OccupancyPrecision = 4
	gen := New(params)

	img := gen.GenerateOccupancy(ctx, ctx.PixelOccupancyMask())
	require.Equal(t, 4, img.Width)
	require.Equal(t, 4, img.Height)
	require.Equal(t, uint16(1), img.At(0, 0, 0))
	require.Equal(t, uint16(0), img.At(1, 0, 0))
	require.Equal(t, uint16(0), img.At(3, 3, 0))
}

func TestGenerateOccupancy_EDDKeepsFlatTilesOccupied(t *testing.T) {
	// A flat pixel has EDD code 0; the stored symbol must still be
	// non-zero so occupancy upsampling does not erase it.
	ctx, _ := oneBlockContext([2]int{0, 0})
	params := DefaultParameters()
	params.OccupancyPrecision = 4
	params.EnhancedDeltaDepthCode = true
	gen := New(params)

	img := gen.GenerateOccupancy(ctx, ctx.PixelOccupancyMask())
	require.Equal(t, uint16(1), img.At(0, 0, 0))

	full := UpsampleOccupancy(img, 4, 16, 16)
	require.True(t, full[0])
}

func TestUpsampleOccupancy_RoundTripsAtFullPrecision(t *testing.T) {
	ctx, _ := oneBlockContext([2]int{3, 5}, [2]int{8, 8})
	params := DefaultParameters()
	params.OccupancyPrecision = 1
	gen := New(params)

	mask := ctx.PixelOccupancyMask()
	img := gen.GenerateOccupancy(ctx, mask)
	require.Equal(t, mask, UpsampleOccupancy(img, 1, 16, 16))
}

func TestGenerateGeometry_WritesDepthAtOccupiedPixels(t *testing.T) {
	ctx, p := oneBlockContext([2]int{2, 2})
	p.D0Layer[2*16+2] = 7
	p.D1Layer[2*16+2] = 9
	gen := New(DefaultParameters())

	d0, d1 := gen.GenerateGeometry(ctx)
	require.Equal(t, uint16(7), d0.At(2, 2, 0))
	require.Equal(t, uint16(9), d1.At(2, 2, 0))
	require.Equal(t, uint16(0), d0.At(3, 3, 0))
}

func TestGenerateTexture_WritesColorsAndRunsTransfer(t *testing.T) {
	ctx, _ := oneBlockContext([2]int{1, 1})
	params := DefaultParameters()
	params.ChromaSubsampling = false
	gen := New(params)
	gen.Transfer = recolorTransfer{}

	img := gen.GenerateTexture(ctx, []PixelColor{
		{X: 1, Y: 1, Color: geom.Color{R: 10, G: 20, B: 30}},
	})
	require.Equal(t, uint16(255), img.At(1, 1, 0))
	require.Equal(t, uint16(20), img.At(1, 1, 1))
	require.Equal(t, uint16(30), img.At(1, 1, 2))
}

// recolorTransfer maxes the red channel of every point, standing in for
// the external colour-transfer library.
type recolorTransfer struct{}

func (recolorTransfer) Transfer(points []PixelColor) []PixelColor {
	for i := range points {
		points[i].Color.R = 255
	}
	return points
}

func TestDilate_FillsNeighboursFromOccupied(t *testing.T) {
	gen := New(DefaultParameters())
	img := NewImageGrid(4, 4, 1, 8)
	occ := make([]bool, 16)
	img.Set(0, 0, 0, 100)
	occ[0] = true

	gen.Dilate(img, occ)

	require.Equal(t, uint16(100), img.At(1, 0, 0))
	require.Equal(t, uint16(100), img.At(3, 3, 0))
	require.True(t, occ[0])
	require.False(t, occ[5])
}

func TestDilateImage_PushPullFillsTextureBackground(t *testing.T) {
	params := DefaultParameters()
	params.Dilation = DilationSmoothedPushPull
	gen := New(params)

	img := NewImageGrid(8, 8, 3, 8)
	occ := make([]bool, 64)
	img.Set(3, 3, 0, 200)
	img.Set(3, 3, 1, 120)
	img.Set(3, 3, 2, 40)
	occ[3*8+3] = true

	gen.DilateImage(img, occ)

	// The occupied pixel itself is untouched, and the fill reaches well
	// beyond its immediate neighbours.
	require.Equal(t, uint16(200), img.At(3, 3, 0))
	require.NotEqual(t, uint16(0), img.At(0, 0, 0))
	filled := 0
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if img.At(x, y, 0) != 0 {
				filled++
			}
		}
	}
	require.Greater(t, filled, 8)
}

func TestDilateImage_GeometryFallsBackToHarmonicFill(t *testing.T) {
	// Geometry grids are single-channel and wider than 8 bits; the
	// push-pull selection must route them through the harmonic fill.
	params := DefaultParameters()
	params.Dilation = DilationSmoothedPushPull
	gen := New(params)

	img := NewImageGrid(8, 8, 1, 10)
	occ := make([]bool, 64)
	img.Set(4, 4, 0, 700)
	occ[4*8+4] = true

	gen.DilateImage(img, occ)

	require.Equal(t, uint16(700), img.At(4, 4, 0))
	require.NotEqual(t, uint16(0), img.At(0, 0, 0))
	require.LessOrEqual(t, img.At(0, 0, 0), uint16(700))
}

func TestDilateImage_NoOccupiedPixelsIsANoOp(t *testing.T) {
	gen := New(DefaultParameters())
	img := NewImageGrid(4, 4, 3, 8)
	occ := make([]bool, 16)

	gen.DilateImage(img, occ)

	for _, v := range img.Data {
		require.Equal(t, uint16(0), v)
	}
}

func TestGroupDilate_AveragesJointlyUnoccupiedPixels(t *testing.T) {
	gen := New(DefaultParameters())
	a := NewImageGrid(2, 1, 1, 8)
	b := NewImageGrid(2, 1, 1, 8)
	a.Set(0, 0, 0, 10)
	b.Set(0, 0, 0, 20)
	a.Set(1, 0, 0, 40)
	b.Set(1, 0, 0, 60)
	occA := []bool{true, false}
	occB := []bool{true, false}

	gen.GroupDilate(a, b, occA, occB)

	// Occupied in either map: left alone.
	require.Equal(t, uint16(10), a.At(0, 0, 0))
	require.Equal(t, uint16(20), b.At(0, 0, 0))
	// Unoccupied in both: replaced by the average.
	require.Equal(t, uint16(50), a.At(1, 0, 0))
	require.Equal(t, uint16(50), b.At(1, 0, 0))
}

func TestChromaSubsamplePatch_PreservesOwnedBlocks(t *testing.T) {
	ctx, _ := oneBlockContext([2]int{0, 0})
	params := DefaultParameters()
	params.ChromaSubsampling = true
	gen := New(params)

	img := NewImageGrid(16, 16, 3, 8)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, 0, 100)
			img.Set(x, y, 1, 110)
			img.Set(x, y, 2, 120)
		}
	}

	out := gen.ChromaSubsamplePatch(ctx, img)
	require.Equal(t, 16, out.Width)
	require.Equal(t, 16, out.Height)
	// A uniform owned block must keep its colour through 4:4:4 -> 4:2:0
	// and back.
	require.Equal(t, uint16(100), out.At(0, 0, 0))
}
