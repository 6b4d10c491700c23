package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

func cubeParams() Parameters {
	p := DefaultParameters()
	p.NNNormalEstimation = 4
	p.MaxNNCountPatchSegmentation = 8
	p.MinPointCountPerCCPatchSegmentation = 4
	p.IterationCountRefineSegmentation = 1
	p.OccupancyResolution = 16
	return p
}

func flatPlaneCloud() *geom.PointCloud {
	// An 8x8 flat patch on the z=0 plane: every point has the same
	// normal axis, so it should end up as a single patch.
	pc := geom.NewPointCloud(64)
	for x := int32(0); x < 8; x++ {
		for y := int32(0); y < 8; y++ {
			pc.Add(geom.Point3D{X: x, Y: y, Z: 0}, geom.Color{R: 200}, geom.PointMeta{})
		}
	}
	return pc
}

func TestSegmentFlatPlaneProducesOnePatch(t *testing.T) {
	pc := flatPlaneCloud()
	seg := New(cubeParams())
	res := seg.Segment(pc)

	require.GreaterOrEqual(t, len(res.Patches), 1)
	total := 0
	for _, p := range res.Patches {
		for _, occ := range p.Occupancy {
			if occ {
				total++
			}
		}
	}
	assert.Greater(t, total, 0)
}

func TestSegmentTwoDisjointCubesProducesTwoRegions(t *testing.T) {
	pc := geom.NewPointCloud(16)
	for x := int32(0); x < 2; x++ {
		for y := int32(0); y < 2; y++ {
			pc.Add(geom.Point3D{X: x, Y: y, Z: 0}, geom.Color{}, geom.PointMeta{})
		}
	}
	for x := int32(64); x < 66; x++ {
		for y := int32(64); y < 66; y++ {
			pc.Add(geom.Point3D{X: x, Y: y, Z: 64}, geom.Color{}, geom.PointMeta{})
		}
	}
	params := cubeParams()
	params.MinPointCountPerCCPatchSegmentation = 2
	params.MaxNNCountPatchSegmentation = 4
	seg := New(params)
	res := seg.Segment(pc)

	// The two cubes are far apart and each holds exactly 4 points, so a
	// 4-nearest-neighbour BFS cannot link them into one component.
	assert.Len(t, res.Patches, 2)
}

func TestSegmentPartialAdditionalPlaneMarksSlabPatches(t *testing.T) {
	// An elongated strip along x: the far half re-segments under the
	// rotated plane set about the x axis.
	pc := geom.NewPointCloud(256)
	for x := int32(0); x < 32; x++ {
		for y := int32(0); y < 8; y++ {
			pc.Add(geom.Point3D{X: x, Y: y, Z: 0}, geom.Color{}, geom.PointMeta{})
		}
	}
	params := cubeParams()
	params.PartialAdditionalProjectionPlane = 0.5
	seg := New(params)
	res := seg.Segment(pc)

	var slabPatches int
	source := make(map[geom.Point3D]bool, pc.Len())
	for _, p := range pc.Points {
		source[p] = true
	}
	for _, p := range res.Patches {
		if p.AxisOfAdditionalPlane == 0 {
			continue
		}
		slabPatches++
		require.Equal(t, 1, p.AxisOfAdditionalPlane)
		// Every occupied D0 pixel must invert back onto a source point.
		for v := 0; v < p.Height; v++ {
			for u := 0; u < p.Width; u++ {
				pos := v*p.Width + u
				if !p.PixelOccupancy[pos] {
					continue
				}
				pt := p.GeneratePoint(int32(u), int32(v), p.D0Layer[pos], params.GeometryBitDepth3D)
				assert.True(t, source[pt], "slab point %+v not in source", pt)
			}
		}
	}
	require.Greater(t, slabPatches, 0)
}

func TestSegmentIsolatedNoisePointRoutesToRaw(t *testing.T) {
	pc := flatPlaneCloud()
	pc.Add(geom.Point3D{X: 500, Y: 500, Z: 500}, geom.Color{}, geom.PointMeta{})

	seg := New(cubeParams())
	res := seg.Segment(pc)

	assert.Contains(t, res.RawIdx, pc.Len()-1)
}
