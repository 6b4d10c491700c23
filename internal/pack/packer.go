// Package pack implements the 2D canvas packer (C4): block-resolution
// occupancy-map placement of patches under the anchor, flexible and
// tetris strategies, temporal (IoU-matched) packing, and global patch
// allocation.
package pack

import (
	"golang.org/x/exp/slices"

	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// Strategy selects the packing algorithm.
type Strategy int

const (
	StrategyAnchor Strategy = iota
	StrategyFlexible
	StrategyTetris
)

// GlobalPatchAllocation selects how patch placement is carried across a
// frame sequence.
type GlobalPatchAllocation int

const (
	// GPAOff packs every frame independently (Pack).
	GPAOff GlobalPatchAllocation = iota
	// GPAMatched reuses orderForPacking's per-frame IoU matching only,
	// still via Pack.
	GPAMatched
	// GPATracks keeps persistent canvas tracks across frames (PackGPA),
	// with keepGPARotation fixed true.
	GPATracks
)

// Parameters configures the packer.
type Parameters struct {
	Strategy              Strategy
	GlobalPatchAllocation GlobalPatchAllocation
	OccupancyResolution   int
	MinimumImageWidth     int
	MinimumImageHeight    int
	Safeguard             int
	LowDelayEncoding      bool
	UseEightOrientations  bool
	ThresholdIOU          float64
}

// DefaultParameters returns the packer defaults.
func DefaultParameters() Parameters {
	return Parameters{
		Strategy:              StrategyFlexible,
		GlobalPatchAllocation: GPAMatched,
		OccupancyResolution:   16,
		MinimumImageWidth:     64,
		MinimumImageHeight:    64,
		Safeguard:             0,
		LowDelayEncoding:      false,
		UseEightOrientations:  true,
		ThresholdIOU:          0.2,
	}
}

// Packer packs a frame's patches onto a shared 2D canvas.
type Packer struct {
	Params Parameters

	occW, occH int // occupancy map size, in blocks
	occupancy  []bool
}

// New returns a Packer configured with params.
func New(params Parameters) *Packer {
	return &Packer{Params: params}
}

// Pack places every patch in patches onto the canvas, mutating each
// patch's U0/V0/Orientation in place, and returns the canvas size in
// pixels (always a multiple of occupancyResolution). prevPatches, if
// non-nil, is the reference frame's already-placed patches used for
// IoU-gated temporal matching.
func (pk *Packer) Pack(patches []*patch.Patch, prevPatches []*patch.Patch) (width, height int) {
	O := pk.Params.OccupancyResolution
	pk.occW = max(pk.Params.MinimumImageWidth/O, 1)
	pk.occH = firstPatchLargerDim(patches, O)
	pk.occupancy = make([]bool, pk.occW*pk.occH)

	ordered := orderForPacking(patches, prevPatches, pk.Params.ThresholdIOU)

	for _, pp := range ordered {
		pk.placeOne(pp.p, pp.matched, pp.refOrientation, pp.refU0, pp.refV0)
	}

	width = pk.occW * O
	height = pk.occH * O
	return
}

type placementOrder struct {
	p              *patch.Patch
	matched        bool
	refOrientation patch.Orientation
	refU0, refV0   int
}

// orderForPacking places matched patches first (in the order they
// appear in patches), then unmatched patches in size-descending order.
func orderForPacking(patches []*patch.Patch, prevPatches []*patch.Patch, thresholdIOU float64) []placementOrder {
	var matched, unmatched []placementOrder
	usedRef := make(map[int]bool)

	for _, p := range patches {
		bestRef, bestIoU := -1, 0.0
		for ri, rp := range prevPatches {
			if usedRef[ri] {
				continue
			}
			iou := bboxIoU(p, rp)
			if iou > bestIoU {
				bestIoU = iou
				bestRef = ri
			}
		}
		if bestRef >= 0 && bestIoU >= thresholdIOU {
			usedRef[bestRef] = true
			p.BestMatchIdx = bestRef
			matched = append(matched, placementOrder{
				p: p, matched: true,
				refOrientation: prevPatches[bestRef].Orientation,
				refU0:          prevPatches[bestRef].U0,
				refV0:          prevPatches[bestRef].V0,
			})
		} else {
			p.BestMatchIdx = -1
			unmatched = append(unmatched, placementOrder{p: p})
		}
	}

	slices.SortStableFunc(unmatched, func(a, b placementOrder) int {
		return area(b.p) - area(a.p)
	})

	return append(matched, unmatched...)
}

func area(p *patch.Patch) int { return p.SizeU0 * p.SizeV0 }

// bboxIoU computes the intersection-over-union of two patches' 3D-space
// tangent/bitangent bounding boxes. Canvas placement is not
// yet known for the patch being matched (it is what orderForPacking is
// about to decide), so matching compares the spatial footprint the
// patches project from rather than any canvas position.
func bboxIoU(a, b *patch.Patch) float64 {
	if a.ViewId != b.ViewId || a.LodScaleX != b.LodScaleX || a.LodScaleY != b.LodScaleY {
		return 0
	}
	if a.NormalAxis != b.NormalAxis || a.TangentAxis != b.TangentAxis || a.BitangentAxis != b.BitangentAxis {
		return 0
	}
	ax0, ay0 := int(a.U1), int(a.V1)
	ax1, ay1 := ax0+a.Width, ay0+a.Height
	bx0, by0 := int(b.U1), int(b.V1)
	bx1, by1 := bx0+b.Width, by0+b.Height

	ix0, iy0 := max(ax0, bx0), max(ay0, by0)
	ix1, iy1 := minInt(ax1, bx1), minInt(ay1, by1)
	if ix1 <= ix0 || iy1 <= iy0 {
		return 0
	}
	inter := float64((ix1 - ix0) * (iy1 - iy0))
	union := float64(a.Width*a.Height+b.Width*b.Height) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func firstPatchLargerDim(patches []*patch.Patch, O int) int {
	if len(patches) == 0 {
		return 1
	}
	u, v := patches[0].FootprintBlocks()
	d := u
	if v > d {
		d = v
	}
	if d < 1 {
		d = 1
	}
	return d
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
