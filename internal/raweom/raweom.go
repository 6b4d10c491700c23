// Package raweom implements the RAW-point and enhanced-occupancy-map
// (EOM) overflow handlers (C8): points a patch cannot project
// losslessly are packed into a dedicated RAW patch region, and
// intermediate-depth points beyond what a patch's EDD bitfield can
// carry are packed into an EOM patch.
package raweom

import (
	"sort"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

// MaxMPGeoWidth is the fixed maximum width of a separate-video RAW
// geometry patch.
const MaxMPGeoWidth = 64

// RawPatch holds the points a patch could not represent losslessly,
// sorted into Morton order for cache-friendly packing.
type RawPatch struct {
	Points []geom.Point3D
	Colors []geom.Color

	U0, V0         int
	SizeU0, SizeV0 int
}

// NewRawPatch sorts points/colors into Morton order at the given bit
// depth and returns a RawPatch ready for packing.
func NewRawPatch(points []geom.Point3D, colors []geom.Color, b3d int) *RawPatch {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return geom.Morton(points[idx[a]], 0, b3d) < geom.Morton(points[idx[b]], 0, b3d)
	})
	sorted := make([]geom.Point3D, len(points))
	sortedColors := make([]geom.Color, len(colors))
	for i, id := range idx {
		sorted[i] = points[id]
		sortedColors[i] = colors[id]
	}
	return &RawPatch{Points: sorted, Colors: sortedColors}
}

// PackUnified writes the RAW patch's (x,y,z) across three consecutive
// rows of one geometry-image channel, one point per column (the
// unified-video layout).
func (r *RawPatch) PackUnified(width int) (rows [3][]int32) {
	n := len(r.Points)
	cols := width
	if cols <= 0 {
		cols = n
	}
	height := (n + cols - 1) / cols
	if height < 1 {
		height = 1
	}
	for c := 0; c < 3; c++ {
		rows[c] = make([]int32, height*cols)
	}
	for i, p := range r.Points {
		rows[0][i] = p.X
		rows[1][i] = p.Y
		rows[2][i] = p.Z
	}
	return
}

// UnpackUnified is the decoder-side inverse of PackUnified: it reads n
// points back out of the three per-coordinate planes.
func UnpackUnified(rows [3][]int32, n int) []geom.Point3D {
	out := make([]geom.Point3D, 0, n)
	for i := 0; i < n; i++ {
		if i >= len(rows[0]) || i >= len(rows[1]) || i >= len(rows[2]) {
			break
		}
		out = append(out, geom.Point3D{X: rows[0][i], Y: rows[1][i], Z: rows[2][i]})
	}
	return out
}

// SeparateGeometryPatch is the dedicated geometry image used in
// separate-video mode, width capped at MaxMPGeoWidth and height padded
// to a multiple of 8.
type SeparateGeometryPatch struct {
	Width, Height int
	// Data holds one row of (x,y,z) triples per point, row-major,
	// 3 channels per pixel matching the packed geometry image layout.
	Data []int32
}

// PackSeparate lays the RAW patch out in its own geometry image of
// width min(MaxMPGeoWidth, npoints), height padded up to a multiple of
// 8.
func (r *RawPatch) PackSeparate() *SeparateGeometryPatch {
	n := len(r.Points)
	width := n
	if width > MaxMPGeoWidth {
		width = MaxMPGeoWidth
	}
	if width < 1 {
		width = 1
	}
	rows := (n + width - 1) / width
	height := ((rows + 7) / 8) * 8
	if height < 1 {
		height = 8
	}
	data := make([]int32, width*height*3)
	for i, p := range r.Points {
		x, y := i%width, i/width
		base := (y*width + x) * 3
		data[base] = p.X
		data[base+1] = p.Y
		data[base+2] = p.Z
	}
	return &SeparateGeometryPatch{Width: width, Height: height, Data: data}
}

// UnpackSeparate is the decoder-side inverse of PackSeparate: it reads
// back n points from the packed geometry layout.
func UnpackSeparate(g *SeparateGeometryPatch, n int) []geom.Point3D {
	out := make([]geom.Point3D, 0, n)
	for i := 0; i < n; i++ {
		x, y := i%g.Width, i/g.Width
		base := (y*g.Width + x) * 3
		if base+2 >= len(g.Data) {
			break
		}
		out = append(out, geom.Point3D{X: g.Data[base], Y: g.Data[base+1], Z: g.Data[base+2]})
	}
	return out
}
