package imagegen

import (
	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/geom"
)

// Pad3DGeometry fills geometry pixels that occupancy-map upsampling
// turned on without a projected source point behind them. For each such
// pixel the depth is searched in mean +/- PaddingSearchRange (mean over
// the occupied 3x3 neighbourhood) and the candidate minimising the 3D
// distance to the source cloud wins, so lossy occupancy cannot invent
// points far off the surface. full is the occupancy mask after
// upsampling at the configured precision; tree indexes the source
// points.
func (g *Generator) Pad3DGeometry(ctx *frame.Context, geo *ImageGrid, full []bool, tree *geom.KdTree, src []geom.Point3D) {
	if geo == nil || tree == nil || len(src) == 0 {
		return
	}
	R := g.Params.PaddingSearchRange
	if R <= 0 {
		return
	}
	b3d := g.Params.GeometryBitDepth3D

	for y := 0; y < ctx.Height; y++ {
		for x := 0; x < ctx.Width; x++ {
			if !full[y*ctx.Width+x] {
				continue
			}
			p, u, v, ok := ctx.PatchAtPixel(x, y)
			if ok || p == nil {
				continue
			}
			if u < 0 || u >= p.Width || v < 0 || v >= p.Height {
				continue
			}

			mean := neighbourhoodMeanDepth(ctx, geo, x, y)
			var bestDepth int32
			bestDist := int64(-1)
			for d := mean - R; d <= mean+R; d++ {
				if d < 0 {
					continue
				}
				pt := p.GeneratePoint(int32(u), int32(v), d, b3d)
				nn := tree.Search(pt, 1)
				if len(nn) == 0 {
					continue
				}
				dist := pt.Dist2(src[nn[0]])
				if bestDist < 0 || dist < bestDist {
					bestDist = dist
					bestDepth = d
				}
			}
			if bestDist >= 0 {
				geo.Set(x, y, 0, depthToSample(bestDepth))
			}
		}
	}
}

// neighbourhoodMeanDepth averages the geometry samples of the occupied
// pixels in the 3x3 window around (x,y).
func neighbourhoodMeanDepth(ctx *frame.Context, geo *ImageGrid, x, y int) int32 {
	sum, n := 0, 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= ctx.Width || ny >= ctx.Height {
				continue
			}
			if _, _, _, ok := ctx.PatchAtPixel(nx, ny); !ok {
				continue
			}
			sum += int(geo.At(nx, ny, 0))
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int32(sum / n)
}
