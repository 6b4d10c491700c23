package imagegen

import "github.com/vpcc-go/vpcc-core/internal/frame"

// GenerateGeometry writes D0 and D1 as two separate single-channel
// grids.
func (g *Generator) GenerateGeometry(ctx *frame.Context) (d0, d1 *ImageGrid) {
	bd := g.Params.GeometryBitDepth3D
	d0 = NewImageGrid(ctx.Width, ctx.Height, 1, bd)
	d1 = NewImageGrid(ctx.Width, ctx.Height, 1, bd)

	for y := 0; y < ctx.Height; y++ {
		for x := 0; x < ctx.Width; x++ {
			p, u, v, ok := ctx.PatchAtPixel(x, y)
			if !ok {
				continue
			}
			pos := v*p.Width + u
			d0.Set(x, y, 0, depthToSample(p.D0Layer[pos]))
			d1.Set(x, y, 0, depthToSample(p.D1Layer[pos]))
		}
	}
	return
}

// GenerateGeometryInterleaved writes D0 and D1 into one grid under
// single-stream-interleaved mode: even-parity canvas pixels carry D0,
// odd-parity pixels carry D1. The reconstruction engine
// (C6) is responsible for the 4-neighbour averaging a lossy video
// codec would require to recover D1 from a decoded interleaved image;
// here the encoder-side grid stores the true value at both parities.
func (g *Generator) GenerateGeometryInterleaved(ctx *frame.Context) *ImageGrid {
	img := NewImageGrid(ctx.Width, ctx.Height, 1, g.Params.GeometryBitDepth3D)

	for y := 0; y < ctx.Height; y++ {
		for x := 0; x < ctx.Width; x++ {
			p, u, v, ok := ctx.PatchAtPixel(x, y)
			if !ok {
				continue
			}
			pos := v*p.Width + u
			if (x+y)%2 == 0 {
				img.Set(x, y, 0, depthToSample(p.D0Layer[pos]))
			} else {
				img.Set(x, y, 0, depthToSample(p.D1Layer[pos]))
			}
		}
	}
	return img
}

// depthToSample clamps a relative depth offset into a geometry-image
// sample. Patch depths are stored relative to the patch's D1 anchor
// (internal/segment); a negative offset must not wrap into a huge
// uint16.
func depthToSample(d int32) uint16 {
	if d < 0 {
		return 0
	}
	if d > 0xFFFF {
		return 0xFFFF
	}
	return uint16(d)
}
