package imagegen

import "github.com/vpcc-go/vpcc-core/internal/frame"

// GenerateOccupancy subsamples the full-resolution occupancy mask into
// an occupancyPrecision x occupancyPrecision tile grid:
// each tile is 0 if no pixel inside it is occupied, else 1 (or
// offsetLossyOM when configured non-zero for lossy occupancy). With
// enhancedDeltaDepthCode the tile's representative pixel's 10-bit EDD
// code replaces the 0/1 symbol, shifted up one bit with bit 0 kept as
// the occupied flag so a flat tile (code 0) stays distinguishable from
// an empty one.
func (g *Generator) GenerateOccupancy(ctx *frame.Context, occ []bool) *ImageGrid {
	P := g.Params.OccupancyPrecision
	if P < 1 {
		P = 1
	}
	bd := 8
	if g.Params.EnhancedDeltaDepthCode {
		bd = 16
	}
	w, h := ctx.Width/P, ctx.Height/P
	img := NewImageGrid(w, h, 1, bd)

	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			occupied := false
			var edd uint16
			for py := ty * P; py < (ty+1)*P && py < ctx.Height; py++ {
				for px := tx * P; px < (tx+1)*P && px < ctx.Width; px++ {
					if !occ[py*ctx.Width+px] {
						continue
					}
					occupied = true
					if g.Params.EnhancedDeltaDepthCode {
						if p, u, v, ok := ctx.PatchAtPixel(px, py); ok {
							edd = p.EDD[v*p.Width+u]
						}
					}
				}
			}
			switch {
			case !occupied:
				img.Set(tx, ty, 0, 0)
			case g.Params.EnhancedDeltaDepthCode:
				img.Set(tx, ty, 0, edd<<1|1)
			case g.Params.OffsetLossyOM != 0:
				img.Set(tx, ty, 0, g.Params.OffsetLossyOM)
			default:
				img.Set(tx, ty, 0, 1)
			}
		}
	}
	return img
}

// UpsampleOccupancy expands an occupancyPrecision-subsampled grid back
// to full canvas resolution.
func UpsampleOccupancy(occImg *ImageGrid, precision, width, height int) []bool {
	full := make([]bool, width*height)
	for y := 0; y < height; y++ {
		ty := y / precision
		if ty >= occImg.Height {
			ty = occImg.Height - 1
		}
		for x := 0; x < width; x++ {
			tx := x / precision
			if tx >= occImg.Width {
				tx = occImg.Width - 1
			}
			full[y*width+x] = occImg.At(tx, ty, 0) != 0
		}
	}
	return full
}
