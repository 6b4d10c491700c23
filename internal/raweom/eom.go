package raweom

import "github.com/vpcc-go/vpcc-core/internal/geom"

// EOMBlockSize is the fixed block edge used for the EOM texture
// patch's Morton ordering.
const EOMBlockSize = 16

// EOMPatch describes the texture region holding the colours of
// enhanced-delta-depth points, and which patches contributed them.
type EOMPatch struct {
	// AssocPatches lists the patch indices this EOM patch supplies
	// extra-occupied-map points for.
	AssocPatches []int
	// PointsPerAssoc[i] is the count of EOM points contributed by
	// AssocPatches[i], in the same order the colours are packed.
	PointsPerAssoc []int

	Width, Height int // texture region size in pixels
}

// NewEOMPatch sizes a texture region for n points packed in
// EOMBlockSize x EOMBlockSize Morton-ordered blocks, one point per
// pixel, laid out block-by-block in row-major order.
func NewEOMPatch(assoc []int, pointsPerAssoc []int) *EOMPatch {
	total := 0
	for _, n := range pointsPerAssoc {
		total += n
	}
	blocksNeeded := (total + EOMBlockSize*EOMBlockSize - 1) / (EOMBlockSize * EOMBlockSize)
	if blocksNeeded < 1 {
		blocksNeeded = 1
	}
	return &EOMPatch{
		AssocPatches:   assoc,
		PointsPerAssoc: pointsPerAssoc,
		Width:          EOMBlockSize,
		Height:         blocksNeeded * EOMBlockSize,
	}
}

// PackTexture writes colors (one per EOM point, in AssocPatches order)
// into a flat Width*Height*3 texture buffer, each EOMBlockSize x
// EOMBlockSize block filled in Morton (Z-order) pixel order.
func (e *EOMPatch) PackTexture(colors []geom.Color) []byte {
	buf := make([]byte, e.Width*e.Height*3)
	for i, c := range colors {
		bu, bv := blockMortonUV(i % (EOMBlockSize * EOMBlockSize))
		block := i / (EOMBlockSize * EOMBlockSize)
		x := bu
		y := block*EOMBlockSize + bv
		if y >= e.Height {
			continue
		}
		base := (y*e.Width + x) * 3
		buf[base] = c.R
		buf[base+1] = c.G
		buf[base+2] = c.B
	}
	return buf
}

// UnpackTexture is PackTexture's inverse: read n colours back out in
// the same Morton-block order they were written.
func UnpackTexture(buf []byte, width, height, n int) []geom.Color {
	out := make([]geom.Color, 0, n)
	for i := 0; i < n; i++ {
		bu, bv := blockMortonUV(i % (EOMBlockSize * EOMBlockSize))
		block := i / (EOMBlockSize * EOMBlockSize)
		x := bu
		y := block*EOMBlockSize + bv
		if y >= height || x >= width {
			out = append(out, geom.Color{})
			continue
		}
		base := (y*width + x) * 3
		out = append(out, geom.Color{R: buf[base], G: buf[base+1], B: buf[base+2]})
	}
	return out
}

// blockMortonUV decodes the i-th position (0..255) of a 16x16 block in
// Morton (Z-order): even bits form u, odd bits form v.
func blockMortonUV(i int) (u, v int) {
	for b := 0; b < 4; b++ {
		u |= ((i >> uint(2*b)) & 1) << uint(b)
		v |= ((i >> uint(2*b+1)) & 1) << uint(b)
	}
	return
}

// EDDExpand decodes an EOM-extended EDD bitfield into the set of
// intermediate depths it marks. It operates on absolute depths, so
// sign (+1 for min-mode projections, -1 for max) orients the
// expansion; the bit at d1's own position is skipped.
func EDDExpand(code uint16, d0, d1 int32, sign int32) []int32 {
	d1pos := int(sign*(d1-d0)) - 1
	var out []int32
	for i := 0; i < 10; i++ {
		if code&(1<<uint(i)) == 0 || i == d1pos {
			continue
		}
		out = append(out, d0+sign*int32(i+1))
	}
	return out
}
