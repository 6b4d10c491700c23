package segment

import (
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// fitPatch computes a patch's (u1,v1,d1) anchor, D0/D1 depth layers and
// EDD bitfield for one connected component. It
// returns the patch along with the subset of source-point indices it
// could represent losslessly; any point whose actual depth falls
// outside what D0/D1/EDD can carry is left for RAW routing.
func fitPatch(points []geom.Point3D, colors []geom.Color, component []int, cand axisInfo, params Parameters) (*patch.Patch, []int) {
	if len(component) == 0 {
		return nil, nil
	}

	minT, maxT := points[component[0]].At(cand.TangentAxis), points[component[0]].At(cand.TangentAxis)
	minB, maxB := points[component[0]].At(cand.BitangentAxis), points[component[0]].At(cand.BitangentAxis)
	for _, idx := range component {
		p := points[idx]
		t, b := p.At(cand.TangentAxis), p.At(cand.BitangentAxis)
		if t < minT {
			minT = t
		}
		if t > maxT {
			maxT = t
		}
		if b < minB {
			minB = b
		}
		if b > maxB {
			maxB = b
		}
	}

	width := int(maxT-minT) + 1
	height := int(maxB-minB) + 1
	O := params.OccupancyResolution
	sizeU0 := (width + O - 1) / O
	sizeV0 := (height + O - 1) / O
	if sizeU0 < 1 {
		sizeU0 = 1
	}
	if sizeV0 < 1 {
		sizeV0 = 1
	}

	// D0 is the nearest depth per (u,v); projectionMode picks which
	// extreme of the normal axis counts as "near".
	d0 := make([]int32, width*height)
	d1 := make([]int32, width*height)
	filled := make([]bool, width*height)
	patchColors := make([]geom.Color, width*height)
	for i := range d0 {
		d0[i] = 1<<31 - 1
		d1[i] = -(1 << 31)
	}

	for _, idx := range component {
		p := points[idx]
		u := int(p.At(cand.TangentAxis) - minT)
		v := int(p.At(cand.BitangentAxis) - minB)
		n := p.At(cand.NormalAxis)
		pos := v*width + u
		if !filled[pos] || signedLess(n, d0[pos], cand.ProjectionMode) {
			d0[pos] = n
			if idx < len(colors) {
				patchColors[pos] = colors[idx]
			}
		}
		if !filled[pos] || signedGreater(n, d1[pos], cand.ProjectionMode) {
			d1[pos] = n
		}
		filled[pos] = true
	}

	// Clamp D1 to D0+surfaceThickness, and build the EDD occupancy
	// bitmask for in-between depths.
	edd := make([]uint16, width*height)
	for pos := range d0 {
		if !filled[pos] {
			continue
		}
		thickness := params.SurfaceThickness
		var clamped int32
		if cand.ProjectionMode == 0 {
			clamped = d0[pos] + thickness
			if d1[pos] < clamped {
				clamped = d1[pos]
			}
		} else {
			clamped = d0[pos] - thickness
			if d1[pos] > clamped {
				clamped = d1[pos]
			}
		}
		d1[pos] = clamped
	}

	// Record which in-between depths were actually occupied by a source
	// point, building the EDD bitmask and the set of points representable
	// by D0/D1/EDD (everything else routes to RAW).
	represented := make(map[int]bool, len(component))
	for _, idx := range component {
		p := points[idx]
		u := int(p.At(cand.TangentAxis) - minT)
		v := int(p.At(cand.BitangentAxis) - minB)
		n := p.At(cand.NormalAxis)
		pos := v*width + u

		delta := n - d0[pos]
		if cand.ProjectionMode == 1 {
			delta = -delta
		}
		switch {
		case delta == 0:
			represented[idx] = true
		case int32(0) < delta && delta <= d1Delta(d0[pos], d1[pos], cand.ProjectionMode):
			if delta-1 < int32(params.SurfaceThickness) && delta == d1Delta(d0[pos], d1[pos], cand.ProjectionMode) {
				represented[idx] = true
			} else if delta-1 >= 0 && delta-1 < 16 {
				edd[pos] |= 1 << uint(delta-1)
				represented[idx] = true
			}
		}
	}

	var raw []int
	for _, idx := range component {
		if !represented[idx] {
			raw = append(raw, idx)
		}
	}

	anchor := d0Anchor(d0, filled, cand.ProjectionMode)

	// Store D0/D1 as depths relative to the anchor, matching what
	// patch.GeneratePoint expects to add back on reconstruction.
	for pos := range d0 {
		if !filled[pos] {
			continue
		}
		d0[pos] = relativeDepth(d0[pos], anchor, cand.ProjectionMode)
		d1[pos] = relativeDepth(d1[pos], anchor, cand.ProjectionMode)
	}

	p := patch.NewPatch(sizeU0, sizeV0)
	p.U1 = minT
	p.V1 = minB
	p.D1 = anchor
	p.NormalAxis, p.TangentAxis, p.BitangentAxis = cand.NormalAxis, cand.TangentAxis, cand.BitangentAxis
	if cand.ProjectionMode == 0 {
		p.ProjectionMode = patch.ProjectionMin
	} else {
		p.ProjectionMode = patch.ProjectionMax
	}
	p.Width, p.Height = width, height
	p.D0Layer = d0
	p.D1Layer = d1
	p.EDD = edd
	p.Colors = patchColors
	p.PixelOccupancy = filled
	p.LodScaleX, p.LodScaleY = 1, 1

	for v := 0; v < sizeV0; v++ {
		for u := 0; u < sizeU0; u++ {
			occ := false
			for py := v * O; py < (v+1)*O && py < height && !occ; py++ {
				for px := u * O; px < (u+1)*O && px < width; px++ {
					if filled[py*width+px] {
						occ = true
						break
					}
				}
			}
			p.Occupancy[v*sizeU0+u] = occ
		}
	}

	return p, raw
}

func signedLess(a, b int32, mode int) bool {
	if mode == 0 {
		return a < b
	}
	return a > b
}

func signedGreater(a, b int32, mode int) bool {
	if mode == 0 {
		return a > b
	}
	return a < b
}

// relativeDepth converts an absolute normal-axis coordinate into the
// depth offset patch.GeneratePoint expects relative to the patch anchor.
func relativeDepth(value, anchor int32, mode int) int32 {
	if mode == 0 {
		return value - anchor
	}
	return anchor - value
}

func d1Delta(d0, d1 int32, mode int) int32 {
	if mode == 0 {
		return d1 - d0
	}
	return d0 - d1
}

// d0Anchor picks the patch's depth anchor D1: the nearest depth over
// the whole patch (minimum for projection mode 0, maximum for mode 1),
// so every per-pixel relative depth is non-negative.
func d0Anchor(d0 []int32, filled []bool, mode int) int32 {
	var anchor int32
	first := true
	for i, f := range filled {
		if !f {
			continue
		}
		if first || signedLess(d0[i], anchor, mode) {
			anchor = d0[i]
			first = false
		}
	}
	return anchor
}
