package frame

import "github.com/vpcc-go/vpcc-core/internal/patch"

// PixelOccupancyMask rasterizes every patch's PixelOccupancy onto the
// full canvas, producing the occupancy mask geometry/texture writing
// tests against.
func (c *Context) PixelOccupancyMask() []bool {
	mask := make([]bool, c.Width*c.Height)
	for _, p := range c.Patches {
		for v := 0; v < p.Height; v++ {
			for u := 0; u < p.Width; u++ {
				if !p.PixelOccupancy[v*p.Width+u] {
					continue
				}
				cx, cy, _ := p.Patch2Canvas(u, v, c.Width, c.OccupancyResolution)
				if cx < 0 || cy < 0 || cx >= c.Width || cy >= c.Height {
					continue
				}
				mask[cy*c.Width+cx] = true
			}
		}
	}
	return mask
}

// PatchAtPixel returns the patch owning canvas pixel (x,y), found via
// BlockToPatch, and its in-patch coordinates. ok is false if the pixel
// is unowned or the owning patch leaves it unoccupied.
func (c *Context) PatchAtPixel(x, y int) (p *patch.Patch, u, v int, ok bool) {
	bu, bv := x/c.OccupancyResolution, y/c.OccupancyResolution
	p = c.OwnerAtBlock(bu, bv)
	if p == nil {
		return nil, 0, 0, false
	}
	u, v = p.Canvas2Patch(x, y, c.OccupancyResolution)
	if u < 0 || u >= p.Width || v < 0 || v >= p.Height {
		return p, u, v, false
	}
	return p, u, v, p.PixelOccupancy[v*p.Width+u]
}
