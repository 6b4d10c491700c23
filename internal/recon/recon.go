// Package recon implements the reconstruction engine (C6): it rebuilds a
// coloured 3D point cloud from the decoded occupancy/geometry/texture
// images and a frame's patch metadata.
package recon

import (
	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/imagegen"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// Parameters configures the reconstruction engine.
type Parameters struct {
	GeometryBitDepth3D         int
	SingleMapPixelInterleaving bool
	EnhancedDeltaDepthCode     bool
	PatchPrecedenceOrder       bool
	OccupancyPrecision         int
}

// DefaultParameters returns the reconstructor's defaults, matching
// imagegen.DefaultParameters.
func DefaultParameters() Parameters {
	return Parameters{
		GeometryBitDepth3D: 10,
		OccupancyPrecision: 4,
	}
}

// PointRef records where a reconstructed point came from, for
// smoothing and PLR search to find their way back to the source pixel.
type PointRef struct {
	X, Y, MapIndex int
	PatchIndex     int
}

// Images bundles the decoded frame buffers the reconstructor consumes.
// GeoD1 is nil under single-stream interleaved mode, where GeoD0 alone
// carries both depth layers at alternating parity.
type Images struct {
	Occupancy *imagegen.ImageGrid
	GeoD0     *imagegen.ImageGrid
	GeoD1     *imagegen.ImageGrid
	Texture   *imagegen.ImageGrid
}

// Reconstructor rebuilds point clouds from decoded images plus patch
// metadata.
type Reconstructor struct {
	Params Parameters
}

// New returns a Reconstructor configured with params.
func New(params Parameters) *Reconstructor {
	return &Reconstructor{Params: params}
}

// ReconstructFrame regenerates a frame's 3D points: it expands the
// occupancy image to canvas resolution, walks every patch (optionally
// in reverse order per PatchPrecedenceOrder), and for every occupied
// pixel emits the D0 point, the D1/EDD/PLR points, and records
// pointToPixel/partition bookkeeping. Boundary points (within 2 pixels
// of a zero occupancy cell) are flagged for the smoother.
func (r *Reconstructor) ReconstructFrame(ctx *frame.Context, imgs Images) (*geom.PointCloud, []PointRef, error) {
	full := r.occupancyMask(ctx, imgs.Occupancy)

	pc := geom.NewPointCloud(ctx.Width * ctx.Height)
	var refs []PointRef

	order := make([]int, len(ctx.Patches))
	for i := range order {
		order[i] = i
	}
	if r.Params.PatchPrecedenceOrder {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	b3d := r.Params.GeometryBitDepth3D

	for _, pi := range order {
		p := ctx.Patches[pi]
		for v := 0; v < p.Height; v++ {
			for u := 0; u < p.Width; u++ {
				x, y, _ := p.Patch2Canvas(u, v, ctx.Width, ctx.OccupancyResolution)
				if x < 0 || y < 0 || x >= ctx.Width || y >= ctx.Height {
					continue
				}
				if !full[y*ctx.Width+x] {
					continue
				}
				// Ownership is decided by BlockToPatch, not by iteration
				// order: a block belongs to exactly one patch, so skip pixels this patch doesn't own.
				if owner := ctx.OwnerAtBlock(x/ctx.OccupancyResolution, y/ctx.OccupancyResolution); owner != p {
					continue
				}

				pos := v*p.Width + u
				d0, d1 := r.depthPair(imgs, p, x, y, pos)
				if !r.Params.EnhancedDeltaDepthCode {
					if mode := plrModeFor(p, u, v); mode != nil {
						d1 = plrDepth(p, mode, u, v, d0, d1)
					}
				}

				pt0 := p.GeneratePoint(int32(u), int32(v), d0, b3d)
				col := sampleColor(imgs.Texture, x, y)
				pc.Add(pt0, col, geom.PointMeta{PatchIndex: int32(pi), Kind: geom.KindD0})
				refs = append(refs, PointRef{X: x, Y: y, MapIndex: 0, PatchIndex: pi})

				r.emitIntermediate(pc, &refs, p, u, v, pi, x, y, d0, d1, b3d, imgs.Texture)

				if d1 != d0 {
					pt1 := p.GeneratePoint(int32(u), int32(v), d1, b3d)
					pc.Add(pt1, col, geom.PointMeta{PatchIndex: int32(pi), Kind: geom.KindD1})
					refs = append(refs, PointRef{X: x, Y: y, MapIndex: 1, PatchIndex: pi})
				}
			}
		}
	}

	flagBoundaries(pc, full, ctx, refs)
	return pc, refs, nil
}

// occupancyMask expands the occupancy image to full canvas resolution,
// decoding the EDD code back to a plain occupied/not flag when
// enhanced-delta-depth coding replaced the 0/1 symbol.
func (r *Reconstructor) occupancyMask(ctx *frame.Context, occImg *imagegen.ImageGrid) []bool {
	if occImg == nil {
		return ctx.PixelOccupancyMask()
	}
	P := r.Params.OccupancyPrecision
	if P < 1 {
		P = 1
	}
	return imagegen.UpsampleOccupancy(occImg, P, ctx.Width, ctx.Height)
}

// depthPair reads D0 and D1 for in-patch pixel (u,v) at canvas (x,y),
// honouring single-stream interleaving when GeoD1 is absent: even-parity canvas pixels carry D0 directly; odd-parity
// carry D1 directly; the other layer at that pixel is recovered by
// averaging the 4-neighbour values of the same parity class.
func (r *Reconstructor) depthPair(imgs Images, p *patch.Patch, x, y, pos int) (d0, d1 int32) {
	if imgs.GeoD1 != nil {
		d0 = int32(imgs.GeoD0.At(x, y, 0))
		d1 = int32(imgs.GeoD1.At(x, y, 0))
		return
	}
	if imgs.GeoD0 == nil {
		return p.D0Layer[pos], p.D1Layer[pos]
	}
	even := (x+y)%2 == 0
	direct := int32(imgs.GeoD0.At(x, y, 0))
	interp := interpolateOtherParity(imgs.GeoD0, x, y)
	if even {
		return direct, interp
	}
	return interp, direct
}

// interpolateOtherParity averages the up-to-4 same-parity-as-target
// neighbours of (x,y) to recover the depth layer not stored directly at
// this pixel under single-stream interleaving.
func interpolateOtherParity(img *imagegen.ImageGrid, x, y int) int32 {
	neighbours := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	sum, n := 0, 0
	for _, d := range neighbours {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx >= img.Width || ny >= img.Height {
			continue
		}
		sum += int(img.At(nx, ny, 0))
		n++
	}
	if n == 0 {
		return int32(img.At(x, y, 0))
	}
	return int32(sum / n)
}

func sampleColor(tex *imagegen.ImageGrid, x, y int) geom.Color {
	if tex == nil {
		return geom.Color{}
	}
	return geom.Color{R: uint8(tex.At(x, y, 0)), G: uint8(tex.At(x, y, 1)), B: uint8(tex.At(x, y, 2))}
}

// flagBoundaries marks every reconstructed point within 2 pixels of a
// zero occupancy cell as a smoothing candidate.
func flagBoundaries(pc *geom.PointCloud, occ []bool, ctx *frame.Context, refs []PointRef) {
	for i, ref := range refs {
		boundary := false
		for dy := -2; dy <= 2 && !boundary; dy++ {
			for dx := -2; dx <= 2; dx++ {
				nx, ny := ref.X+dx, ref.Y+dy
				if nx < 0 || ny < 0 || nx >= ctx.Width || ny >= ctx.Height {
					boundary = true
					break
				}
				if !occ[ny*ctx.Width+nx] {
					boundary = true
					break
				}
			}
		}
		pc.Meta[i].Boundary = boundary
	}
}
