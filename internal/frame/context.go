// Package frame holds the per-time-instant state shared by the image
// generator, reconstruction engine and smoothers: the packed patch
// list, the canvas dimensions, and the block-to-patch ownership map.
package frame

import "github.com/vpcc-go/vpcc-core/internal/patch"

// Context is one frame's shared, frame-owned state. A Context's buffers
// belong to that frame alone and are safe to read from multiple
// goroutines once BuildBlockToPatch has returned, but must not be
// mutated concurrently with it.
type Context struct {
	Patches []*patch.Patch

	Width, Height       int // canvas size in pixels
	OccupancyResolution int

	BlocksWide, BlocksHigh int
	// BlockToPatch maps a canvas block (row-major, BlocksWide wide) to
	// the index into Patches that owns it, or -1 if unowned.
	BlockToPatch []int

	MapCount int
}

// NewContext returns a Context for patches already packed onto a
// width x height canvas.
func NewContext(patches []*patch.Patch, width, height, occupancyResolution, mapCount int) *Context {
	return &Context{
		Patches:             patches,
		Width:               width,
		Height:              height,
		OccupancyResolution: occupancyResolution,
		BlocksWide:          width / occupancyResolution,
		BlocksHigh:          height / occupancyResolution,
		MapCount:            mapCount,
	}
}

// BuildBlockToPatch assigns canvas blocks to their owning patch. The
// first patch (in Patches order) whose occupancy claims a block owns
// it. The encoder and decoder both call this same function, so the
// ownership map never diverges between the two sides.
func (c *Context) BuildBlockToPatch() {
	c.BlockToPatch = make([]int, c.BlocksWide*c.BlocksHigh)
	for i := range c.BlockToPatch {
		c.BlockToPatch[i] = -1
	}

	for pi, p := range c.Patches {
		for v0 := 0; v0 < p.SizeV0; v0++ {
			for u0 := 0; u0 < p.SizeU0; u0++ {
				if !p.Occupancy[v0*p.SizeU0+u0] {
					continue
				}
				_, _, flat := p.PatchBlock2CanvasBlock(u0, v0, c.BlocksWide)
				if flat < 0 || flat >= len(c.BlockToPatch) {
					continue
				}
				if c.BlockToPatch[flat] == -1 {
					c.BlockToPatch[flat] = pi
				}
			}
		}
	}
}

// OwnerAtBlock returns the patch owning canvas block (bu,bv), or nil.
func (c *Context) OwnerAtBlock(bu, bv int) *patch.Patch {
	if bu < 0 || bv < 0 || bu >= c.BlocksWide || bv >= c.BlocksHigh {
		return nil
	}
	idx := c.BlockToPatch[bv*c.BlocksWide+bu]
	if idx < 0 {
		return nil
	}
	return c.Patches[idx]
}
