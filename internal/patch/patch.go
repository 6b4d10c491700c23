// Package patch implements the per-patch metadata model, the projection
// math between a patch's local (u,v,depth) space and 3D point-cloud
// space, and the patch-to-canvas block/pixel mapping.
package patch

import "github.com/vpcc-go/vpcc-core/internal/geom"

// ProjectionMode selects whether a patch's depth values are measured
// outward from the near face (0) or inward from the far face (1).
type ProjectionMode int

const (
	ProjectionMin ProjectionMode = 0
	ProjectionMax ProjectionMode = 1
)

// Orientation is one of the 8 symmetries a patch may be placed under on
// the canvas.
type Orientation int

const (
	OrientationDefault Orientation = iota
	OrientationSwap
	OrientationRot90
	OrientationRot180
	OrientationRot270
	OrientationMirror
	OrientationMRot90
	OrientationMRot180
)

// swapsDimensions reports whether this orientation swaps sizeU0/sizeV0
// when the patch is placed on the canvas.
func (o Orientation) swapsDimensions() bool {
	switch o {
	case OrientationSwap, OrientationRot90, OrientationRot270, OrientationMRot90:
		return true
	default:
		return false
	}
}

// AnchorOrientations is the two-element candidate set {default, swap}.
var AnchorOrientations = []Orientation{OrientationDefault, OrientationSwap}

// AllOrientations is the full 8-symmetry candidate set.
var AllOrientations = []Orientation{
	OrientationDefault, OrientationSwap, OrientationRot90, OrientationRot180,
	OrientationRot270, OrientationMirror, OrientationMRot90, OrientationMRot180,
}

// PLRMode is a point-local-reconstruction mode.
type PLRMode struct {
	Interpolate bool
	Fill        bool
	MinD1       int32
	Neighbor    int
}

// Patch is a planar projection of a connected subset of source points.
type Patch struct {
	// Canvas position and size, in occupancyResolution blocks.
	U0, V0         int
	SizeU0, SizeV0 int

	// 3D anchor: tangent/bitangent/normal offsets into the source volume.
	U1, V1, D1 int32

	ProjectionMode                            ProjectionMode
	NormalAxis, TangentAxis, BitangentAxis     int
	Orientation                                Orientation
	LodScaleX, LodScaleY                       int
	AxisOfAdditionalPlane                      int // 0, 1, 2 or 3

	// Per-pixel depth layers, sized (SizeU0*O/LodScaleX)*(SizeV0*O/LodScaleY)
	// where O is occupancyResolution; stored at patch-interior resolution.
	Width, Height int // interior pixel dimensions, post-lod-scale
	D0Layer       []int32
	D1Layer       []int32
	EDD           []uint16 // per-pixel EDD bitfield, valid bits = surfaceThickness

	// Colors holds the colour of the source point that set D0Layer at
	// each pixel, aligned with D0Layer/D1Layer/EDD. The texture
	// generator reads these to paint the patch's canvas region.
	Colors []geom.Color

	// PixelOccupancy is true at (v*Width+u) wherever a source point
	// actually projected there; unlike Occupancy (block-resolution),
	// this is full pixel resolution and is what the image generator and
	// reconstruction engine test before trusting D0Layer/D1Layer/EDD.
	PixelOccupancy []bool

	// Occupancy is a SizeU0*SizeV0 block-resolution occupancy mask.
	Occupancy []bool

	BestMatchIdx       int // -1 if unmatched
	RefAtlasFrameIndex int

	ViewId int // index of the chosen projection orientation (candidate-set index)

	// PLRPatch is the patch-granularity mode, used when the patch is
	// small enough; PLRBlocks is used otherwise, one entry
	// per occupancyResolution block in raster order.
	PLRPatch  *PLRMode
	PLRBlocks []PLRMode
}

// NewPatch returns a Patch with Occupancy sized for sizeU0*sizeV0 blocks
// and BestMatchIdx defaulted to "none".
func NewPatch(sizeU0, sizeV0 int) *Patch {
	return &Patch{
		SizeU0:       sizeU0,
		SizeV0:       sizeV0,
		Occupancy:    make([]bool, sizeU0*sizeV0),
		BestMatchIdx: -1,
		LodScaleX:    1,
		LodScaleY:    1,
	}
}

// shift45 is the coordinate offset (2^B3D)-1 used to keep the 45-degree
// additional-projection-plane rotation non-negative.
func shift45(b3d int) int32 {
	return int32(1<<uint(b3d)) - 1
}

// rotate45Inverse undoes the fixed -45-degree-axis rotation applied when
// a patch carries an additional projection plane. encode(x,y) =
// ((x+y), (-x+y)+shift); decode divides by 2.
func rotate45Inverse(x, y, b3d int32) (int32, int32) {
	shift := shift45(int(b3d))
	// decode: x' = (a - (b-shift)) / 2, y' = (a + (b-shift)) / 2
	a, b := x, y
	bb := b - shift
	return (a - bb) / 2, (a + bb) / 2
}

// Rotate45 applies the fixed +45-degree rotation about axis (0, 1 or
// 2) used when segmenting with the additional projection plane set
// enabled; GeneratePoint applies the inverse for patches whose
// AxisOfAdditionalPlane is axis+1.
func Rotate45(pt geom.Point3D, axis, b3d int) geom.Point3D {
	a0, a1 := (axis+1)%3, (axis+2)%3
	x, y := pt.At(a0), pt.At(a1)
	pt = pt.Set(a0, x+y)
	pt = pt.Set(a1, (-x+y)+shift45(b3d))
	return pt
}

// GeneratePoint inverts the patch projection: given in-patch
// coordinates (u,v) and a depth offset, produce the 3D point.
// b3d is the codec's geometry bit depth, needed only when
// AxisOfAdditionalPlane != 0.
func (p *Patch) GeneratePoint(u, v, depth int32, b3d int) geom.Point3D {
	var d int32
	if p.ProjectionMode == ProjectionMin {
		d = p.D1 + depth
	} else {
		d = p.D1 - depth
	}

	// Depth layers are stored at lod-scaled resolution; reconstruction
	// multiplies back up to source coordinates.
	var pt geom.Point3D
	pt = pt.Set(p.NormalAxis, d)
	pt = pt.Set(p.TangentAxis, u*int32(p.LodScaleX)+p.U1)
	pt = pt.Set(p.BitangentAxis, v*int32(p.LodScaleY)+p.V1)

	if p.AxisOfAdditionalPlane != 0 {
		// Apply the inverse 45-degree rotation about the configured axis.
		// The rotation acts on the two axes orthogonal to
		// AxisOfAdditionalPlane-1.
		axis := p.AxisOfAdditionalPlane - 1
		a0, a1 := (axis+1)%3, (axis+2)%3
		x, y := pt.At(a0), pt.At(a1)
		rx, ry := rotate45Inverse(x, y, int32(b3d))
		pt = pt.Set(a0, rx)
		pt = pt.Set(a1, ry)
	}

	return pt
}
