// Package imagegen synthesizes the occupancy, geometry and texture
// image grids handed to the external video codec, and fills the pixels
// no patch projected to via dilation and 3D-padding.
package imagegen

// ImageGrid is a fixed-size, fixed-channel-count, fixed-bit-depth 2D
// pixel grid. Geometry channels carry up to
// geometryBitDepth3D bits; occupancy/texture channels are 8-bit.
type ImageGrid struct {
	Width, Height, Channels, BitDepth int
	Data                              []uint16
}

// NewImageGrid returns a zero-filled grid.
func NewImageGrid(width, height, channels, bitDepth int) *ImageGrid {
	return &ImageGrid{
		Width:    width,
		Height:   height,
		Channels: channels,
		BitDepth: bitDepth,
		Data:     make([]uint16, width*height*channels),
	}
}

// At returns channel c of pixel (x,y).
func (g *ImageGrid) At(x, y, c int) uint16 {
	return g.Data[(y*g.Width+x)*g.Channels+c]
}

// Set writes channel c of pixel (x,y).
func (g *ImageGrid) Set(x, y, c int, v uint16) {
	g.Data[(y*g.Width+x)*g.Channels+c] = v
}
