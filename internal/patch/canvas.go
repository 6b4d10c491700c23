package patch

// PatchBlock2CanvasBlock applies the patch's orientation to an in-patch
// block index (u0,v0), adds the patch's canvas origin, and returns the
// canvas block coordinates plus a flat index into a canvasBlocksWide-wide
// block grid.
func (p *Patch) PatchBlock2CanvasBlock(u0, v0, canvasBlocksWide int) (cu, cv, flat int) {
	ru, rv := orient(u0, v0, p.SizeU0, p.SizeV0, p.Orientation)
	cu = p.U0 + ru
	cv = p.V0 + rv
	flat = cv*canvasBlocksWide + cu
	return
}

// Patch2Canvas is the pixel-precision equivalent of PatchBlock2CanvasBlock,
// O is the occupancyResolution block size.
func (p *Patch) Patch2Canvas(u, v, canvasWidthPx, occupancyResolution int) (cu, cv, flat int) {
	ru, rv := orient(u, v, p.SizeU0*occupancyResolution, p.SizeV0*occupancyResolution, p.Orientation)
	cu = p.U0*occupancyResolution + ru
	cv = p.V0*occupancyResolution + rv
	flat = cv*canvasWidthPx + cu
	return
}

// Canvas2Patch is the inverse of Patch2Canvas: given absolute canvas
// pixel coordinates, return the in-patch (u,v) coordinates.
func (p *Patch) Canvas2Patch(cx, cy, occupancyResolution int) (u, v int) {
	lu := cx - p.U0*occupancyResolution
	lv := cy - p.V0*occupancyResolution
	return unorient(lu, lv, p.SizeU0*occupancyResolution, p.SizeV0*occupancyResolution, p.Orientation)
}

// orient rearranges (u,v), which lies within a w x h bounding box, under
// the given orientation symmetry.
func orient(u, v, w, h int, o Orientation) (int, int) {
	switch o {
	case OrientationDefault:
		return u, v
	case OrientationSwap:
		return v, u
	case OrientationRot90:
		return h - 1 - v, u
	case OrientationRot180:
		return w - 1 - u, h - 1 - v
	case OrientationRot270:
		return v, w - 1 - u
	case OrientationMirror:
		return w - 1 - u, v
	case OrientationMRot90:
		return h - 1 - v, w - 1 - u
	case OrientationMRot180:
		return u, h - 1 - v
	default:
		return u, v
	}
}

// unorient is the inverse mapping of orient: given an oriented (ru,rv)
// pair within a w x h (pre-orientation) box, recover the original (u,v).
// w,h here are the pre-orientation patch-interior dimensions (matching
// the arguments passed to orient), so unorient(orient(u,v)) == (u,v)
// for every symmetry in our set.
func unorient(ru, rv, w, h int, o Orientation) (int, int) {
	switch o {
	case OrientationDefault:
		return ru, rv
	case OrientationSwap:
		return rv, ru
	case OrientationRot90:
		// ru = h-1-v, rv = u => u = rv, v = h-1-ru
		return rv, h - 1 - ru
	case OrientationRot180:
		return w - 1 - ru, h - 1 - rv
	case OrientationRot270:
		// ru = v, rv = w-1-u => u = w-1-rv, v = ru
		return w - 1 - rv, ru
	case OrientationMirror:
		return w - 1 - ru, rv
	case OrientationMRot90:
		// ru = h-1-v, rv = w-1-u => u = w-1-rv, v = h-1-ru
		return w - 1 - rv, h - 1 - ru
	case OrientationMRot180:
		return ru, h - 1 - rv
	default:
		return ru, rv
	}
}

// SwapsDimensions reports whether the patch's own orientation swaps its
// sizeU0/sizeV0 footprint on the canvas.
func (p *Patch) SwapsDimensions() bool {
	return p.Orientation.swapsDimensions()
}

// FootprintBlocks returns the patch's sizeU0/sizeV0 as placed on the
// canvas, after accounting for the orientation-dependent swap.
func (p *Patch) FootprintBlocks() (u, v int) {
	if p.SwapsDimensions() {
		return p.SizeV0, p.SizeU0
	}
	return p.SizeU0, p.SizeV0
}

// UnorientBlock maps a block coordinate within the patch's oriented
// canvas footprint back to its own (u0,v0) occupancy-grid indices.
func (p *Patch) UnorientBlock(ru, rv int) (u, v int) {
	return unorient(ru, rv, p.SizeU0, p.SizeV0, p.Orientation)
}
