package segment

import (
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// Segmenter runs the segmentation pipeline: normal estimation, initial
// plane assignment, refinement, connected-component extraction, patch
// fitting and residual routing. Segmentation never fails: points that
// cannot be projected within tolerance become RAW, and too few patches
// simply yield a small bitstream.
type Segmenter struct {
	Params Parameters
}

// New returns a Segmenter configured with the given parameters.
func New(params Parameters) *Segmenter {
	return &Segmenter{Params: params}
}

// Result is the output of one segmentation pass: the fitted patches plus
// the indices (into the source cloud) of points routed to RAW.
type Result struct {
	Patches []*patch.Patch
	RawIdx  []int
}

// Segment partitions pc into patches. When
// Params.PartialAdditionalProjectionPlane > 0 the slab beyond that
// fraction of the longest axis is segmented separately under the
// 45-degree-rotated plane set; patches produced there carry
// AxisOfAdditionalPlane = axis+1 and reconstruct through the inverse
// rotation.
func (s *Segmenter) Segment(pc *geom.PointCloud) Result {
	if pc.Len() == 0 {
		return Result{}
	}

	frac := s.Params.PartialAdditionalProjectionPlane
	if frac <= 0 || frac >= 1 {
		all := make([]int, pc.Len())
		for i := range all {
			all[i] = i
		}
		return s.segmentSubset(pc.Points, pc.Colors, all)
	}

	box := pc.BoundingBox()
	axis, thresh := slabSplit(box, frac)

	var mainIdx, slabIdx []int
	for i, p := range pc.Points {
		if p.At(axis) >= thresh {
			slabIdx = append(slabIdx, i)
		} else {
			mainIdx = append(mainIdx, i)
		}
	}

	result := s.segmentSubset(gatherPoints(pc.Points, mainIdx), gatherColors(pc.Colors, mainIdx), mainIdx)

	if len(slabIdx) > 0 {
		b3d := s.Params.GeometryBitDepth3D
		rotated := make([]geom.Point3D, len(slabIdx))
		for i, idx := range slabIdx {
			rotated[i] = patch.Rotate45(pc.Points[idx], axis, b3d)
		}
		sub := s.segmentSubset(rotated, gatherColors(pc.Colors, slabIdx), slabIdx)
		for _, p := range sub.Patches {
			p.AxisOfAdditionalPlane = axis + 1
		}
		result.Patches = append(result.Patches, sub.Patches...)
		result.RawIdx = append(result.RawIdx, sub.RawIdx...)
	}

	result.RawIdx = dedupRaw(result.RawIdx)
	return result
}

// segmentSubset runs the segmentation pipeline over one subset of the
// source cloud. origIdx maps subset positions back to source indices;
// RawIdx is reported in source indices.
func (s *Segmenter) segmentSubset(points []geom.Point3D, colors []geom.Color, origIdx []int) Result {
	if len(points) == 0 {
		return Result{}
	}

	tree := geom.Build(points)
	normals := estimateNormals(tree, points, s.Params)

	candidates := candidateOrientations(s.Params.OrientationCount)
	weights := axisOccupancyWeights(points, candidates, s.Params.MinWeightEPP, s.Params.OccupancyResolution)
	labels := initialAssignment(points, normals, candidates, weights)
	labels = refineSegmentation(tree, points, normals, labels, candidates, s.Params)

	componentsByOrientation := extractComponents(tree, points, labels, len(candidates), s.Params)

	var result Result
	assigned := make([]bool, len(points))
	for ci, components := range componentsByOrientation {
		for _, comp := range components {
			p, raw := fitPatch(points, colors, comp, candidates[ci], s.Params)
			if p == nil {
				continue
			}
			result.Patches = append(result.Patches, p)
			for _, idx := range comp {
				assigned[idx] = true
			}
			for _, idx := range raw {
				result.RawIdx = append(result.RawIdx, origIdx[idx])
			}
		}
	}

	// Any point that never joined a large-enough component, or that a
	// fitted patch could not represent, is RAW.
	for i := range points {
		if !assigned[i] {
			result.RawIdx = append(result.RawIdx, origIdx[i])
		}
	}
	result.RawIdx = dedupRaw(result.RawIdx)

	return result
}

// slabSplit picks the longest axis of box and the coordinate beyond
// which the additional-plane slab begins.
func slabSplit(box geom.Box3D, frac float32) (axis int, thresh int32) {
	extents := [3]int32{
		box.Max.X - box.Min.X,
		box.Max.Y - box.Min.Y,
		box.Max.Z - box.Min.Z,
	}
	axis = 0
	for a := 1; a < 3; a++ {
		if extents[a] > extents[axis] {
			axis = a
		}
	}
	mins := [3]int32{box.Min.X, box.Min.Y, box.Min.Z}
	thresh = mins[axis] + int32(frac*float32(extents[axis]))
	return
}

func gatherPoints(points []geom.Point3D, idx []int) []geom.Point3D {
	out := make([]geom.Point3D, len(idx))
	for i, id := range idx {
		out[i] = points[id]
	}
	return out
}

func gatherColors(colors []geom.Color, idx []int) []geom.Color {
	out := make([]geom.Color, len(idx))
	for i, id := range idx {
		out[i] = colors[id]
	}
	return out
}

// dedupRaw removes duplicate indices: a point can be added once because
// it never joined a large-enough component and again because its
// patch's D0/D1/EDD layers could not represent it.
func dedupRaw(raw []int) []int {
	seen := make(map[int]bool, len(raw))
	out := raw[:0]
	for _, idx := range raw {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}
