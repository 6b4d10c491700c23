package framedesc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vpcc-go/vpcc-core/internal/patch"
)

func samplePatches() []*patch.Patch {
	p0 := patch.NewPatch(2, 3)
	p0.U0, p0.V0 = 4, 5
	p0.U1, p0.V1, p0.D1 = 10, -7, 32
	p0.Orientation = patch.OrientationRot90
	p0.ViewId = 2

	p1 := patch.NewPatch(2, 3)
	p1.U0, p1.V0 = 6, 9
	p1.U1, p1.V1, p1.D1 = 12, -4, 40
	p1.BestMatchIdx = 0
	return []*patch.Patch{p0, p1}
}

func TestBuildFrameRecords_ClassifiesIntraAndInter(t *testing.T) {
	patches := samplePatches()
	records := BuildFrameRecords(patches, patches[:1], DefaultASPS())

	require.Len(t, records, 2)
	require.Equal(t, PatchIntra, records[0].Tag)
	require.NotNil(t, records[0].Intra)
	require.Equal(t, PatchInter, records[1].Tag)
	require.NotNil(t, records[1].Inter)
	require.Equal(t, 0, records[1].Inter.PredIdxDelta)
}

func TestWriteReadPatchFrame_RoundTrip(t *testing.T) {
	asps := DefaultASPS()
	records := []PatchRecord{
		{
			Tag: PatchIntra,
			Intra: &IntraPatch{
				U0: 3, V0: 7,
				U1: 11, V1: -9,
				D1MinLevel:    40,
				SizeDMinLevel: 12,
				Orientation:   patch.OrientationMirror,
				ProjectionID:  1,
				LodEnable:     true,
				LodScaleXMinus1: 1,
				LodScaleY:     2,
			},
		},
		{
			Tag: PatchInter,
			Inter: &InterPatch{
				RefFrame:     1,
				PredIdxDelta: 2,
				DeltaU0:      -3, DeltaV0: 5,
				DeltaU1: -1, DeltaV1: 4,
				DeltaSizeU0: 2, DeltaSizeV0: -2,
				DeltaD1MinLevel:    -8,
				DeltaSizeDMinLevel: 6,
			},
		},
		{
			Tag: PatchRaw,
			Raw: &RawPatchRecord{
				U0: 1, V0: 2, SizeU0: 3, SizeV0: 4,
				U1: 5, V1: -6, D1: 7,
				NumRawPoints: 513,
				InRawVideo:   true,
			},
		},
		{
			Tag: PatchEOM,
			Eom: &EomPatchRecord{
				U0: 8, V0: 9, SizeU: 2, SizeV: 2,
				AssocPatches:      []int{0, 1},
				EomPointsPerAssoc: []int{200, 5},
			},
		},
	}

	data, err := WritePatchFrame(records, asps)
	require.NoError(t, err)

	got, err := ReadPatchFrame(data, asps)
	require.NoError(t, err)
	require.Len(t, got, 4)

	require.Equal(t, records[0].Intra, got[0].Intra)
	require.Equal(t, records[1].Inter, got[1].Inter)
	require.Equal(t, records[2].Raw, got[2].Raw)
	require.Equal(t, records[3].Eom, got[3].Eom)
}

func TestWriteReadPatchFrame_Empty(t *testing.T) {
	data, err := WritePatchFrame(nil, DefaultASPS())
	require.NoError(t, err)

	got, err := ReadPatchFrame(data, DefaultASPS())
	require.NoError(t, err)
	require.Empty(t, got)
}
