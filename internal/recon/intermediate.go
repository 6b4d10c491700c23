package recon

import (
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/imagegen"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// emitIntermediate emits the enhanced-delta-depth points between D0 and
// D1, then the PLR-driven extra points for the owning block. Depths
// here are patch-relative offsets (d1 >= d0 in both projection modes);
// GeneratePoint applies the mode's sign.
func (r *Reconstructor) emitIntermediate(pc *geom.PointCloud, refs *[]PointRef, p *patch.Patch, u, v, pi, x, y int, d0, d1 int32, b3d int, tex *imagegen.ImageGrid) {
	pos := v*p.Width + u
	col := sampleColor(tex, x, y)

	if r.Params.EnhancedDeltaDepthCode && pos < len(p.EDD) {
		code := p.EDD[pos]
		d1pos := int(d1-d0) - 1 // d1's own bit position
		for i := 0; i < 10; i++ {
			if code&(1<<uint(i)) == 0 || i == d1pos {
				continue
			}
			pt := p.GeneratePoint(int32(u), int32(v), d0+int32(i+1), b3d)
			pc.Add(pt, col, geom.PointMeta{PatchIndex: int32(pi), Kind: geom.KindEDD})
			*refs = append(*refs, PointRef{X: x, Y: y, MapIndex: 0, PatchIndex: pi})
		}
		return
	}

	mode := plrModeFor(p, u, v)
	if mode == nil {
		return
	}
	if mode.Fill {
		for d := d0 + 1; d < d1; d++ {
			pt := p.GeneratePoint(int32(u), int32(v), d, b3d)
			pc.Add(pt, col, geom.PointMeta{PatchIndex: int32(pi), Kind: geom.KindDF})
			*refs = append(*refs, PointRef{X: x, Y: y, MapIndex: 1, PatchIndex: pi})
		}
	}
}

// plrDepth applies a point-local-reconstruction mode to the decoded
// depth pair: an interpolating mode raises the D1 delta to the largest
// per-pixel delta in its neighbourhood, and the delta never drops below
// the mode's forced minimum.
func plrDepth(p *patch.Patch, mode *patch.PLRMode, u, v int, d0, d1 int32) int32 {
	delta := d1 - d0
	if mode.Interpolate {
		if nd := neighbourhoodDelta(p, u, v, mode.Neighbor); nd > delta {
			delta = nd
		}
	}
	if mode.MinD1 > delta {
		delta = mode.MinD1
	}
	return d0 + delta
}

// neighbourhoodDelta is the largest stored D1-D0 delta among the
// occupied pixels within Chebyshev radius n of in-patch pixel (u,v).
func neighbourhoodDelta(p *patch.Patch, u, v, n int) int32 {
	if n < 1 {
		return 0
	}
	var best int32
	for dv := -n; dv <= n; dv++ {
		for du := -n; du <= n; du++ {
			nu, nv := u+du, v+dv
			if nu < 0 || nv < 0 || nu >= p.Width || nv >= p.Height {
				continue
			}
			pos := nv*p.Width + nu
			if pos >= len(p.PixelOccupancy) || !p.PixelOccupancy[pos] {
				continue
			}
			if pos >= len(p.D0Layer) || pos >= len(p.D1Layer) {
				continue
			}
			if d := p.D1Layer[pos] - p.D0Layer[pos]; d > best {
				best = d
			}
		}
	}
	return best
}

// plrModeFor returns the PLR mode governing in-patch pixel (u,v):
// patch-granularity when PLRPatch is set, else the block at (u,v)'s
// occupancyResolution-sized cell in PLRBlocks.
func plrModeFor(p *patch.Patch, u, v int) *patch.PLRMode {
	if p.PLRPatch != nil {
		return p.PLRPatch
	}
	if len(p.PLRBlocks) == 0 {
		return nil
	}
	O := blockSizeFor(p)
	bu, bv := u/O, v/O
	idx := bv*p.SizeU0 + bu
	if idx < 0 || idx >= len(p.PLRBlocks) {
		return nil
	}
	return &p.PLRBlocks[idx]
}

// blockSizeFor recovers the occupancyResolution a patch's per-block PLR
// array was indexed with, from its own pixel-vs-block-unit size ratio.
func blockSizeFor(p *patch.Patch) int {
	if p.SizeU0 == 0 {
		return 1
	}
	o := p.Width / p.SizeU0
	if o < 1 {
		return 1
	}
	return o
}

// EDDCodeAt reads the per-tile EDD code stored in the occupancy image
// when enhanced-delta-depth coding replaces the 0/1 occupied symbol.
// The stored value keeps bit 0 as the occupied flag, so the code sits
// one bit up.
func EDDCodeAt(occImg *imagegen.ImageGrid, precision, x, y int) uint16 {
	if occImg == nil {
		return 0
	}
	tx, ty := x/precision, y/precision
	if tx >= occImg.Width {
		tx = occImg.Width - 1
	}
	if ty >= occImg.Height {
		ty = occImg.Height - 1
	}
	return occImg.At(tx, ty, 0) >> 1
}
