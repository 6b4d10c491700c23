package raweom

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

func TestNewRawPatch_SortsByMorton(t *testing.T) {
	pts := []geom.Point3D{
		{X: 5, Y: 5, Z: 5},
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
	}
	cols := []geom.Color{{R: 1}, {R: 2}, {R: 3}}
	rp := NewRawPatch(pts, cols, 10)
	require.Len(t, rp.Points, 3)
	require.Equal(t, geom.Point3D{X: 0, Y: 0, Z: 0}, rp.Points[0])
}

func TestPackSeparate_RoundTrip(t *testing.T) {
	pts := make([]geom.Point3D, 20)
	cols := make([]geom.Color, 20)
	for i := range pts {
		pts[i] = geom.Point3D{X: int32(i), Y: int32(i * 2), Z: int32(i * 3)}
	}
	rp := NewRawPatch(pts, cols, 10)
	packed := rp.PackSeparate()
	require.LessOrEqual(t, packed.Width, MaxMPGeoWidth)
	require.Equal(t, 0, packed.Height%8)

	back := UnpackSeparate(packed, len(rp.Points))
	require.ElementsMatch(t, rp.Points, back)
}

func TestPackUnified_RoundTrip(t *testing.T) {
	pts := make([]geom.Point3D, 13)
	cols := make([]geom.Color, 13)
	for i := range pts {
		pts[i] = geom.Point3D{X: int32(i), Y: int32(i + 100), Z: int32(i + 200)}
	}
	rp := NewRawPatch(pts, cols, 10)
	rows := rp.PackUnified(8)
	require.Equal(t, len(rows[0]), len(rows[1]))

	back := UnpackUnified(rows, len(rp.Points))
	require.ElementsMatch(t, rp.Points, back)
}

func TestEOMPatch_PackUnpackTexture(t *testing.T) {
	colors := make([]geom.Color, 40)
	for i := range colors {
		colors[i] = geom.Color{R: byte(i), G: byte(i + 1), B: byte(i + 2)}
	}
	e := NewEOMPatch([]int{0, 1}, []int{20, 20})
	buf := e.PackTexture(colors)
	back := UnpackTexture(buf, e.Width, e.Height, len(colors))
	require.Equal(t, colors, back)
}

func TestBlockMortonUV_CoversBlock(t *testing.T) {
	seen := make(map[[2]int]bool)
	for i := 0; i < 256; i++ {
		u, v := blockMortonUV(i)
		require.True(t, u >= 0 && u < 16 && v >= 0 && v < 16)
		seen[[2]int{u, v}] = true
	}
	require.Len(t, seen, 256)
}

func TestEDDExpand_SkipsD1Bit(t *testing.T) {
	code := uint16(1<<0 | 1<<1 | 1<<2)
	out := EDDExpand(code, 0, 3, 1) // d1pos = (3-0)-1 = 2
	require.Equal(t, []int32{1, 2}, out)
}
