package smooth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

func TestGridGeometrySmoother_ReplacesOutlierAtPatchBoundary(t *testing.T) {
	pc := geom.NewPointCloud(16)
	// A dense cluster of patch-0 points sharing voxel (0,0,0) at grid=8.
	for z := int32(0); z < 4; z++ {
		for y := int32(0); y < 4; y++ {
			for x := int32(0); x < 4; x++ {
				pc.Add(geom.Point3D{X: x, Y: y, Z: z}, geom.Color{}, geom.PointMeta{PatchIndex: 0})
			}
		}
	}
	// One boundary point from a different patch, same voxel, displaced
	// to the far corner so its squared distance to the cluster centroid
	// exceeds the threshold.
	pc.Add(geom.Point3D{X: 7, Y: 7, Z: 7}, geom.Color{}, geom.PointMeta{PatchIndex: 1, Boundary: true})

	s := NewGridGeometrySmoother(GeometryParameters{GridSize: 8, ThresholdSmoothing: 4})
	s.Smooth(pc)

	last := pc.Points[len(pc.Points)-1]
	require.NotEqual(t, int32(7), last.Z, "outlier boundary point should have been pulled toward the voxel centroid")
	require.Equal(t, geom.KindSmooth, pc.Meta[len(pc.Meta)-1].Kind)
}

func TestGridGeometrySmoother_LeavesSinglePatchVoxelAlone(t *testing.T) {
	pc := geom.NewPointCloud(4)
	pc.Add(geom.Point3D{X: 0, Y: 0, Z: 0}, geom.Color{}, geom.PointMeta{PatchIndex: 0})
	pc.Add(geom.Point3D{X: 1, Y: 1, Z: 1}, geom.Color{}, geom.PointMeta{PatchIndex: 0, Boundary: true})

	s := NewGridGeometrySmoother(GeometryParameters{GridSize: 8, ThresholdSmoothing: 0})
	s.Smooth(pc)

	require.Equal(t, geom.Point3D{X: 1, Y: 1, Z: 1}, pc.Points[1], "single-patch voxel must not trigger do-smooth")
}

func TestKdTreeGeometrySmoother(t *testing.T) {
	pc := geom.NewPointCloud(4)
	pc.Add(geom.Point3D{X: 0, Y: 0, Z: 0}, geom.Color{}, geom.PointMeta{PatchIndex: 0})
	pc.Add(geom.Point3D{X: 1, Y: 0, Z: 0}, geom.Color{}, geom.PointMeta{PatchIndex: 0})
	pc.Add(geom.Point3D{X: 50, Y: 0, Z: 0}, geom.Color{}, geom.PointMeta{PatchIndex: 1, Boundary: true})

	tree := geom.Build(pc.Points)
	s := NewKdTreeGeometrySmoother(GeometryParameters{NeighborCount: 3, RadiusSquared: -1, ThresholdSmoothing: 10})
	s.Smooth(pc, tree)

	require.NotEqual(t, int32(50), pc.Points[2].X)
}

func TestColorSmoother_GatesOnLuminanceDifference(t *testing.T) {
	pc := geom.NewPointCloud(4)
	for i := 0; i < 8; i++ {
		pc.Add(geom.Point3D{X: int32(i % 2), Y: 0, Z: 0}, geom.Color{R: 200, G: 200, B: 200}, geom.PointMeta{PatchIndex: 0})
	}
	// A dark boundary point in the same voxel.
	pc.Add(geom.Point3D{X: 0, Y: 0, Z: 0}, geom.Color{R: 5, G: 5, B: 5}, geom.PointMeta{PatchIndex: 1, Boundary: true})

	s := NewColorSmoother(ColorParameters{GridSize: 8, ThresholdColorVariation: 250, ThresholdColorDifference: 250, ThresholdColorSmoothing: 0})
	s.Smooth(pc)

	last := pc.Colors[len(pc.Colors)-1]
	require.Greater(t, int(last.R), 5, "boundary point colour should move toward the brighter voxel centroid")
}
