package smooth

import (
	"math"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

// GridGeometrySmoother implements grid-based geometry
// smoothing: the source volume is subdivided into gridSize voxels and
// every boundary point is replaced by a trilinear blend of the eight
// surrounding voxel centroids, but only where at least one of those
// voxels is shared by more than one patch (the "do-smooth" flag).
type GridGeometrySmoother struct {
	Params GeometryParameters
}

// NewGridGeometrySmoother returns a smoother configured with params.
func NewGridGeometrySmoother(params GeometryParameters) *GridGeometrySmoother {
	return &GridGeometrySmoother{Params: params}
}

type voxelKey [3]int32

type voxelAccum struct {
	sumX, sumY, sumZ int64
	count            int64
	firstPatch       int32
	hasFirst         bool
	multiPatch       bool
}

// Smooth mutates pc.Points in place for every point flagged Boundary,
// replacing ones whose squared distance to the blended centroid exceeds
// ThresholdSmoothing. The voxel grid is a scratch buffer local to this
// call.
func (s *GridGeometrySmoother) Smooth(pc *geom.PointCloud) {
	grid := s.Params.GridSize
	if grid <= 0 {
		grid = 1
	}

	voxels := buildVoxels(pc, grid)

	for i := range pc.Points {
		if !pc.Meta[i].Boundary {
			continue
		}
		p := pc.Points[i]
		k := keyOf(p, grid)
		fx := fraction(p.X, k[0], grid)
		fy := fraction(p.Y, k[1], grid)
		fz := fraction(p.Z, k[2], grid)

		var accX, accY, accZ, wsum float64
		doSmooth := false
		for dz := int32(0); dz <= 1; dz++ {
			for dy := int32(0); dy <= 1; dy++ {
				for dx := int32(0); dx <= 1; dx++ {
					nk := voxelKey{k[0] + dx, k[1] + dy, k[2] + dz}
					v, ok := voxels[nk]
					if !ok || v.count == 0 {
						continue
					}
					w := axisWeight(fx, dx) * axisWeight(fy, dy) * axisWeight(fz, dz)
					cx := float64(v.sumX) / float64(v.count)
					cy := float64(v.sumY) / float64(v.count)
					cz := float64(v.sumZ) / float64(v.count)
					accX += w * cx
					accY += w * cy
					accZ += w * cz
					wsum += w
					if v.multiPatch {
						doSmooth = true
					}
				}
			}
		}
		if !doSmooth || wsum == 0 {
			continue
		}
		centroid := geom.Point3D{
			X: int32(math.Floor(accX / wsum)),
			Y: int32(math.Floor(accY / wsum)),
			Z: int32(math.Floor(accZ / wsum)),
		}
		if p.Dist2(centroid) > s.Params.ThresholdSmoothing {
			pc.Points[i] = centroid
			pc.Meta[i].Kind = geom.KindSmooth
		}
	}
}

func buildVoxels(pc *geom.PointCloud, grid int32) map[voxelKey]*voxelAccum {
	voxels := make(map[voxelKey]*voxelAccum, pc.Len())
	for i, p := range pc.Points {
		k := keyOf(p, grid)
		v, ok := voxels[k]
		if !ok {
			v = &voxelAccum{}
			voxels[k] = v
		}
		v.sumX += int64(p.X)
		v.sumY += int64(p.Y)
		v.sumZ += int64(p.Z)
		v.count++
		pidx := pc.Meta[i].PatchIndex
		if !v.hasFirst {
			v.firstPatch = pidx
			v.hasFirst = true
		} else if v.firstPatch != pidx {
			v.multiPatch = true
		}
	}
	return voxels
}

func keyOf(p geom.Point3D, grid int32) voxelKey {
	return voxelKey{floorDiv(p.X, grid), floorDiv(p.Y, grid), floorDiv(p.Z, grid)}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func fraction(coord, voxel, grid int32) float64 {
	return float64(coord-voxel*grid) / float64(grid)
}

func axisWeight(f float64, d int32) float64 {
	if d == 0 {
		return 1 - f
	}
	return f
}

// KdTreeGeometrySmoother is the non-grid geometry smoother: a
// k-NN (bounded by radius) search per boundary point, flagging it when
// any neighbour belongs to a different patch, and replacing it with the
// integer-floored neighbour centroid when the squared distance exceeds
// ThresholdSmoothing.
type KdTreeGeometrySmoother struct {
	Params GeometryParameters
}

// NewKdTreeGeometrySmoother returns a smoother configured with params.
func NewKdTreeGeometrySmoother(params GeometryParameters) *KdTreeGeometrySmoother {
	return &KdTreeGeometrySmoother{Params: params}
}

// Smooth mutates pc.Points in place using tree for neighbour queries.
// tree must have been built over pc.Points before smoothing began and
// is read-only during this pass.
func (s *KdTreeGeometrySmoother) Smooth(pc *geom.PointCloud, tree *geom.KdTree) {
	k := s.Params.NeighborCount
	if k <= 0 {
		k = 1
	}
	for i := range pc.Points {
		if !pc.Meta[i].Boundary {
			continue
		}
		p := pc.Points[i]
		neighbours := tree.SearchRadius(p, k, s.Params.RadiusSquared)
		if len(neighbours) == 0 {
			continue
		}
		diffCluster := false
		var sumX, sumY, sumZ int64
		for _, ni := range neighbours {
			np := pc.Points[ni]
			sumX += int64(np.X)
			sumY += int64(np.Y)
			sumZ += int64(np.Z)
			if pc.Meta[ni].PatchIndex != pc.Meta[i].PatchIndex {
				diffCluster = true
			}
		}
		if !diffCluster {
			continue
		}
		n := int64(len(neighbours))
		centroid := geom.Point3D{
			X: int32(sumX / n),
			Y: int32(sumY / n),
			Z: int32(sumZ / n),
		}
		if p.Dist2(centroid) > s.Params.ThresholdSmoothing {
			pc.Points[i] = centroid
			pc.Meta[i].Kind = geom.KindSmooth
		}
	}
}
