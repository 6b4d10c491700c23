package plr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

func flatTestPatch(o int) *patch.Patch {
	p := patch.NewPatch(1, 1)
	p.Width, p.Height = o, o
	p.NormalAxis, p.TangentAxis, p.BitangentAxis = 2, 0, 1
	p.ProjectionMode = patch.ProjectionMin
	p.D0Layer = make([]int32, o*o)
	p.D1Layer = make([]int32, o*o)
	p.EDD = make([]uint16, o*o)
	p.PixelOccupancy = make([]bool, o*o)
	for i := range p.PixelOccupancy {
		p.PixelOccupancy[i] = true
	}
	for i := range p.Occupancy {
		p.Occupancy[i] = true
	}
	return p
}

func TestSearchPatch_PicksAMode(t *testing.T) {
	p := flatTestPatch(4)
	var source []geom.Point3D
	for v := 0; v < 4; v++ {
		for u := 0; u < 4; u++ {
			source = append(source, p.GeneratePoint(int32(u), int32(v), 0, 10))
		}
	}

	s := New(DefaultParameters())
	s.SearchPatch(p, 0, source, nil)

	require.NotNil(t, p.PLRPatch)
	require.Nil(t, p.PLRBlocks)
}

func TestTrialDistance_IsMemoized(t *testing.T) {
	p := flatTestPatch(4)
	var source []geom.Point3D
	for v := 0; v < 4; v++ {
		for u := 0; u < 4; u++ {
			source = append(source, p.GeneratePoint(int32(u), int32(v), 0, 10))
		}
	}

	s := New(DefaultParameters())
	mode := patch.PLRMode{Fill: true}
	d1 := s.trialDistance(p, 0, -1, mode, source)
	d2 := s.trialDistance(p, 0, -1, mode, source)
	require.Equal(t, d1, d2)
	require.Equal(t, 1, s.cache.Len())
}

func TestSearchAll_UsesBlockGranularityForLargePatches(t *testing.T) {
	p := flatTestPatch(16)
	p.SizeU0, p.SizeV0 = 4, 4 // 4x4 blocks of 4px each -> large patch
	p.Occupancy = make([]bool, p.SizeU0*p.SizeV0)
	for i := range p.Occupancy {
		p.Occupancy[i] = true
	}
	var source []geom.Point3D
	for v := 0; v < 16; v++ {
		for u := 0; u < 16; u++ {
			source = append(source, p.GeneratePoint(int32(u), int32(v), 0, 10))
		}
	}

	params := DefaultParameters()
	params.PatchSize = 1
	s := New(params)
	s.SearchAll([]*patch.Patch{p}, [][]geom.Point3D{source}, nil)

	require.Nil(t, p.PLRPatch)
	require.Len(t, p.PLRBlocks, p.SizeU0*p.SizeV0)
}
