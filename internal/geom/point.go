// Package geom provides the 3D point, colour, bounding-box, kd-tree and
// Morton-order primitives shared by every stage of the patch codec.
package geom

// PointKind classifies how a reconstructed point was produced.
type PointKind int

const (
	// KindD0 is a point read from the near (D0) depth layer.
	KindD0 PointKind = iota
	// KindD1 is a point read from the far (D1) depth layer.
	KindD1
	// KindDF is an interpolated delta-fill point emitted by a PLR "fill" mode.
	KindDF
	// KindEDD is a point recovered from an enhanced-delta-depth bit.
	KindEDD
	// KindRAW is a point stored verbatim in a RAW patch.
	KindRAW
	// KindSmooth is a point whose position was replaced by smoothing.
	KindSmooth
)

// Point3D is an integer 3D point with components addressable by axis
// index, matching the tangent/bitangent/normal axis permutation used by
// patch projection.
type Point3D struct {
	X, Y, Z int32
}

// At returns the component on the given axis (0=X, 1=Y, 2=Z).
func (p Point3D) At(axis int) int32 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// Set returns a copy of p with the given axis set to v.
func (p Point3D) Set(axis int, v int32) Point3D {
	switch axis {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	default:
		p.Z = v
	}
	return p
}

// Add returns the component-wise sum of p and q.
func (p Point3D) Add(q Point3D) Point3D {
	return Point3D{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns the component-wise difference p-q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Dist2 returns the squared Euclidean distance between p and q.
func (p Point3D) Dist2(q Point3D) int64 {
	dx := int64(p.X - q.X)
	dy := int64(p.Y - q.Y)
	dz := int64(p.Z - q.Z)
	return dx*dx + dy*dy + dz*dz
}

// Color is a 3-byte RGB colour.
type Color struct {
	R, G, B uint8
}

// PointMeta is per-point bookkeeping attached by the segmenter and
// reconstruction engine.
type PointMeta struct {
	PatchIndex int32
	Kind       PointKind
	// Boundary marks points within 2 pixels of a zero occupancy cell,
	// the only candidates the smoother will consider.
	Boundary bool
}

// Box3D is an axis-aligned 3D bounding box.
type Box3D struct {
	Min, Max Point3D
}

// Contains reports whether p lies within the box (inclusive).
func (b Box3D) Contains(p Point3D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// PointCloud is an ordered sequence of points with parallel colour and
// metadata slices.
type PointCloud struct {
	Points []Point3D
	Colors []Color
	Meta   []PointMeta
}

// NewPointCloud returns an empty point cloud with capacity reserved.
func NewPointCloud(capacity int) *PointCloud {
	return &PointCloud{
		Points: make([]Point3D, 0, capacity),
		Colors: make([]Color, 0, capacity),
		Meta:   make([]PointMeta, 0, capacity),
	}
}

// Add appends a point with its colour and metadata.
func (pc *PointCloud) Add(p Point3D, c Color, m PointMeta) {
	pc.Points = append(pc.Points, p)
	pc.Colors = append(pc.Colors, c)
	pc.Meta = append(pc.Meta, m)
}

// Clear empties the point cloud while keeping the underlying arrays.
func (pc *PointCloud) Clear() {
	pc.Points = pc.Points[:0]
	pc.Colors = pc.Colors[:0]
	pc.Meta = pc.Meta[:0]
}

// Resize grows or shrinks the point cloud to exactly n points, zero-filling
// any newly added entries.
func (pc *PointCloud) Resize(n int) {
	if n <= len(pc.Points) {
		pc.Points = pc.Points[:n]
		pc.Colors = pc.Colors[:n]
		pc.Meta = pc.Meta[:n]
		return
	}
	for len(pc.Points) < n {
		pc.Points = append(pc.Points, Point3D{})
		pc.Colors = append(pc.Colors, Color{})
		pc.Meta = append(pc.Meta, PointMeta{})
	}
}

// Len returns the number of points.
func (pc *PointCloud) Len() int { return len(pc.Points) }

// BoundingBox computes the axis-aligned bounding box of every point.
// Returns the zero box if the cloud is empty.
func (pc *PointCloud) BoundingBox() Box3D {
	if len(pc.Points) == 0 {
		return Box3D{}
	}
	bb := Box3D{Min: pc.Points[0], Max: pc.Points[0]}
	for _, p := range pc.Points[1:] {
		if p.X < bb.Min.X {
			bb.Min.X = p.X
		}
		if p.Y < bb.Min.Y {
			bb.Min.Y = p.Y
		}
		if p.Z < bb.Min.Z {
			bb.Min.Z = p.Z
		}
		if p.X > bb.Max.X {
			bb.Max.X = p.X
		}
		if p.Y > bb.Max.Y {
			bb.Max.Y = p.Y
		}
		if p.Z > bb.Max.Z {
			bb.Max.Z = p.Z
		}
	}
	return bb
}
