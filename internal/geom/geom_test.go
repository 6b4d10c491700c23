package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointCloudAddClearResize(t *testing.T) {
	pc := NewPointCloud(4)
	pc.Add(Point3D{1, 2, 3}, Color{255, 0, 0}, PointMeta{Kind: KindD0})
	pc.Add(Point3D{4, 5, 6}, Color{0, 255, 0}, PointMeta{Kind: KindD1})
	require.Equal(t, 2, pc.Len())

	pc.Resize(4)
	require.Equal(t, 4, pc.Len())
	assert.Equal(t, Point3D{}, pc.Points[3])

	pc.Resize(1)
	require.Equal(t, 1, pc.Len())
	assert.Equal(t, Point3D{1, 2, 3}, pc.Points[0])

	pc.Clear()
	assert.Equal(t, 0, pc.Len())
}

func TestBoundingBox(t *testing.T) {
	pc := NewPointCloud(3)
	pc.Add(Point3D{1, 5, -2}, Color{}, PointMeta{})
	pc.Add(Point3D{-3, 2, 8}, Color{}, PointMeta{})
	pc.Add(Point3D{0, 9, 0}, Color{}, PointMeta{})

	bb := pc.BoundingBox()
	assert.Equal(t, Point3D{-3, 2, -2}, bb.Min)
	assert.Equal(t, Point3D{1, 9, 8}, bb.Max)
}

func TestKdTreeSearchFindsNearest(t *testing.T) {
	points := []Point3D{
		{0, 0, 0}, {10, 0, 0}, {0, 10, 0}, {1, 1, 1}, {50, 50, 50},
	}
	tree := Build(points)

	got := tree.Search(Point3D{0, 0, 0}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0], "closest neighbor should be the query point itself")
	assert.Equal(t, 3, got[1], "second closest should be (1,1,1)")
}

func TestKdTreeSearchRadiusExcludesFarPoints(t *testing.T) {
	points := []Point3D{{0, 0, 0}, {1, 0, 0}, {100, 0, 0}}
	tree := Build(points)

	got := tree.SearchRadius(Point3D{0, 0, 0}, 3, 4)
	assert.ElementsMatch(t, []int{0, 1}, got)
}

func TestMortonOrderingIsStableUnderTranslationWithinCell(t *testing.T) {
	a := Morton(Point3D{5, 5, 5}, 1, 4)
	b := Morton(Point3D{13, 13, 13}, 1, 4)
	// depth=1 keeps only the low 3 of the 4 bits, so translating every
	// axis by 8 (the dropped top bit) leaves the code unchanged.
	assert.Equal(t, a, b)
}

func TestSmallestEigenvectorOfPlanarCovarianceIsThePlaneNormal(t *testing.T) {
	// A perfectly flat set of points in the XY plane has zero variance
	// along Z, so the smallest-eigenvalue eigenvector should point along Z.
	pts := []Point3D{
		{0, 0, 0}, {10, 0, 0}, {0, 10, 0}, {10, 10, 0}, {5, 5, 0},
	}
	neighbors := []int{0, 1, 2, 3, 4}
	xx, xy, xz, yy, yz, zz := Covariance3x3(pts, neighbors)
	n := SmallestEigenvector3x3(xx, xy, xz, yy, yz, zz)

	assert.InDelta(t, 0, n.X, 1e-4)
	assert.InDelta(t, 0, n.Y, 1e-4)
	assert.InDelta(t, 1, n.Z*n.Z, 1e-3)
}
