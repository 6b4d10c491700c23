package geom

import "github.com/chewxy/math32"

// Covariance3x3 computes the symmetric 3x3 covariance matrix of the given
// neighbourhood of points about their centroid, returned as the six
// distinct entries of the upper triangle: (xx, xy, xz, yy, yz, zz).
// Used by the segmenter's per-point PCA normal estimation.
func Covariance3x3(points []Point3D, neighbors []int) (xx, xy, xz, yy, yz, zz float32) {
	if len(neighbors) == 0 {
		return
	}
	var cx, cy, cz float32
	for _, idx := range neighbors {
		p := points[idx]
		cx += float32(p.X)
		cy += float32(p.Y)
		cz += float32(p.Z)
	}
	n := float32(len(neighbors))
	cx /= n
	cy /= n
	cz /= n

	for _, idx := range neighbors {
		p := points[idx]
		dx := float32(p.X) - cx
		dy := float32(p.Y) - cy
		dz := float32(p.Z) - cz
		xx += dx * dx
		xy += dx * dy
		xz += dx * dz
		yy += dy * dy
		yz += dy * dz
		zz += dz * dz
	}
	xx /= n
	xy /= n
	xz /= n
	yy /= n
	yz /= n
	zz /= n
	return
}

// Vec3 is a float32 3-vector, the unit of normal-estimation arithmetic.
type Vec3 struct {
	X, Y, Z float32
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	len2 := v.X*v.X + v.Y*v.Y + v.Z*v.Z
	if len2 == 0 {
		return v
	}
	inv := 1 / math32.Sqrt(len2)
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Negate returns -v.
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// SmallestEigenvector3x3 finds the unit eigenvector of the smallest
// eigenvalue of the symmetric matrix given by its upper-triangular
// entries, using the cyclic Jacobi rotation method. For a point-cloud
// covariance matrix this eigenvector is the surface normal direction
// (the axis of least variance).
func SmallestEigenvector3x3(xx, xy, xz, yy, yz, zz float32) Vec3 {
	a := [3][3]float32{
		{xx, xy, xz},
		{xy, yy, yz},
		{xz, yz, zz},
	}
	v := [3][3]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}

	for iter := 0; iter < 30; iter++ {
		// Find largest off-diagonal element.
		p, q := 0, 1
		maxVal := math32.Abs(a[0][1])
		if math32.Abs(a[0][2]) > maxVal {
			p, q, maxVal = 0, 2, math32.Abs(a[0][2])
		}
		if math32.Abs(a[1][2]) > maxVal {
			p, q, maxVal = 1, 2, math32.Abs(a[1][2])
		}
		if maxVal < 1e-12 {
			break
		}

		theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
		sign := float32(1)
		if theta < 0 {
			sign = -1
		}
		t := sign / (math32.Abs(theta) + math32.Sqrt(theta*theta+1))
		if theta == 0 {
			t = 1
		}
		c := 1 / math32.Sqrt(t*t+1)
		s := t * c

		app, aqq, apq := a[p][p], a[q][q], a[p][q]
		a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
		a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
		a[p][q] = 0
		a[q][p] = 0
		for r := 0; r < 3; r++ {
			if r != p && r != q {
				arp, arq := a[r][p], a[r][q]
				a[r][p] = c*arp - s*arq
				a[p][r] = a[r][p]
				a[r][q] = s*arp + c*arq
				a[q][r] = a[r][q]
			}
			vrp, vrq := v[r][p], v[r][q]
			v[r][p] = c*vrp - s*vrq
			v[r][q] = s*vrp + c*vrq
		}
	}

	minIdx := 0
	if a[1][1] < a[minIdx][minIdx] {
		minIdx = 1
	}
	if a[2][2] < a[minIdx][minIdx] {
		minIdx = 2
	}
	return Vec3{v[0][minIdx], v[1][minIdx], v[2][minIdx]}.Normalize()
}
