package imagegen

import (
	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/geom"
)

// PixelColor is one reconstructed point's colour destined for a
// texture-image pixel, produced by the reconstruction engine and
// consumed here: the colour lands at its (x,y,mapIndex) pixel.
type PixelColor struct {
	X, Y, MapIndex int
	Color          geom.Color
}

// ColorTransfer is the boundary to the external attribute
// colour-transfer library: it may adjust per-point colours before they
// are written into the texture image. A nil transfer leaves colours
// untouched; no implementation lives in this module.
type ColorTransfer interface {
	Transfer(points []PixelColor) []PixelColor
}

// GenerateTexture writes every reconstructed point's colour to its
// pixel. mapIndex beyond 0 is reserved for mapCountMinus1 > 0 sequences
// and is accepted but not separately planed here (a single shared
// canvas grid is returned per map, by construction of the caller's
// points slice).
func (g *Generator) GenerateTexture(ctx *frame.Context, points []PixelColor) *ImageGrid {
	if g.Transfer != nil {
		points = g.Transfer.Transfer(points)
	}
	img := NewImageGrid(ctx.Width, ctx.Height, 3, 8)
	for _, pc := range points {
		if pc.X < 0 || pc.Y < 0 || pc.X >= ctx.Width || pc.Y >= ctx.Height {
			continue
		}
		img.Set(pc.X, pc.Y, 0, uint16(pc.Color.R))
		img.Set(pc.X, pc.Y, 1, uint16(pc.Color.G))
		img.Set(pc.X, pc.Y, 2, uint16(pc.Color.B))
	}
	return img
}

// ChromaSubsamplePatch implements per-patch 4:2:0 chroma subsampling:
// tiles not owned by any patch are first replaced by the
// nearest patch-owning tile's colour so the subsequent 4:4:4 -> 4:2:0
// conversion can never blend one patch's chroma into another's. The
// result is returned at full resolution with the chroma of each 2x2
// cell collapsed to its average.
func (g *Generator) ChromaSubsamplePatch(ctx *frame.Context, img *ImageGrid) *ImageGrid {
	if !g.Params.ChromaSubsampling {
		return img
	}
	O := ctx.OccupancyResolution
	filled := NewImageGrid(img.Width, img.Height, img.Channels, img.BitDepth)
	copy(filled.Data, img.Data)

	for by := 0; by < ctx.BlocksHigh; by++ {
		for bx := 0; bx < ctx.BlocksWide; bx++ {
			if ctx.OwnerAtBlock(bx, by) != nil {
				continue
			}
			sbx, sby := nearestOwnedBlock(ctx, bx, by)
			if sbx < 0 {
				continue
			}
			copyBlockColor(filled, img, bx, by, sbx, sby, O)
		}
	}

	// 4:4:4 -> 4:2:0 -> 4:4:4 on the chroma channels: each 2x2 cell's
	// chroma collapses to its average and is replicated back, so the
	// returned grid keeps the canvas dimensions the rest of the
	// pipeline addresses by pixel.
	out := NewImageGrid(img.Width, img.Height, img.Channels, img.BitDepth)
	copy(out.Data, img.Data)
	for c := 1; c < img.Channels; c++ {
		for y := 0; y+1 < img.Height; y += 2 {
			for x := 0; x+1 < img.Width; x += 2 {
				sum := int(filled.At(x, y, c)) + int(filled.At(x+1, y, c)) +
					int(filled.At(x, y+1, c)) + int(filled.At(x+1, y+1, c))
				avg := uint16(sum / 4)
				out.Set(x, y, c, avg)
				out.Set(x+1, y, c, avg)
				out.Set(x, y+1, c, avg)
				out.Set(x+1, y+1, c, avg)
			}
		}
	}
	return out
}

func nearestOwnedBlock(ctx *frame.Context, bx, by int) (int, int) {
	for radius := 1; radius < ctx.BlocksWide+ctx.BlocksHigh; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if abs(dx) != radius && abs(dy) != radius {
					continue
				}
				nx, ny := bx+dx, by+dy
				if ctx.OwnerAtBlock(nx, ny) != nil {
					return nx, ny
				}
			}
		}
	}
	return -1, -1
}

func copyBlockColor(dst, src *ImageGrid, dbx, dby, sbx, sby, O int) {
	for v := 0; v < O; v++ {
		for u := 0; u < O; u++ {
			sx, sy := sbx*O+u, sby*O+v
			dx, dy := dbx*O+u, dby*O+v
			if sx >= src.Width || sy >= src.Height || dx >= dst.Width || dy >= dst.Height {
				continue
			}
			for c := 0; c < src.Channels; c++ {
				dst.Set(dx, dy, c, src.At(sx, sy, c))
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
