package segment

import "github.com/vpcc-go/vpcc-core/internal/geom"

// axisInfo pairs a candidate projection direction with the patch-axis
// permutation it implies.
type axisInfo struct {
	Normal                                 geom.Vec3
	NormalAxis, TangentAxis, BitangentAxis int
	ProjectionMode                         int // 0 = min, 1 = max
}

// candidateOrientations returns the 6, 10, or 18 candidate unit vectors
// used for initial projection-plane assignment.
func candidateOrientations(count int) []axisInfo {
	base := []axisInfo{
		{geom.Vec3{X: 1}, 0, 1, 2, 0},
		{geom.Vec3{X: -1}, 0, 1, 2, 1},
		{geom.Vec3{Y: 1}, 1, 2, 0, 0},
		{geom.Vec3{Y: -1}, 1, 2, 0, 1},
		{geom.Vec3{Z: 1}, 2, 0, 1, 0},
		{geom.Vec3{Z: -1}, 2, 0, 1, 1},
	}
	if count <= 6 {
		return base
	}

	diag4 := []axisInfo{
		{geom.Vec3{X: 1, Y: 1}.Normalize(), 2, 0, 1, 0},
		{geom.Vec3{X: 1, Y: -1}.Normalize(), 2, 0, 1, 0},
		{geom.Vec3{X: -1, Y: 1}.Normalize(), 2, 0, 1, 0},
		{geom.Vec3{X: -1, Y: -1}.Normalize(), 2, 0, 1, 0},
	}
	if count <= 10 {
		return append(base, diag4...)
	}

	diag8 := []axisInfo{
		{geom.Vec3{Y: 1, Z: 1}.Normalize(), 0, 1, 2, 0},
		{geom.Vec3{Y: 1, Z: -1}.Normalize(), 0, 1, 2, 0},
		{geom.Vec3{Y: -1, Z: 1}.Normalize(), 0, 1, 2, 0},
		{geom.Vec3{Y: -1, Z: -1}.Normalize(), 0, 1, 2, 0},
		{geom.Vec3{X: 1, Z: 1}.Normalize(), 1, 2, 0, 0},
		{geom.Vec3{X: 1, Z: -1}.Normalize(), 1, 2, 0, 0},
		{geom.Vec3{X: -1, Z: 1}.Normalize(), 1, 2, 0, 0},
		{geom.Vec3{X: -1, Z: -1}.Normalize(), 1, 2, 0, 0},
	}
	return append(append(base, diag4...), diag8...)
}
