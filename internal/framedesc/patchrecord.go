package framedesc

import "github.com/vpcc-go/vpcc-core/internal/patch"

// PatchKind tags which variant of PatchRecord is populated.
type PatchKind int

const (
	PatchIntra PatchKind = iota
	PatchInter
	PatchRaw
	PatchEOM
	PatchTerminator
)

// IntraPatch is the per-patch field list for an INTRA patch.
type IntraPatch struct {
	U0, V0         int
	U1, V1         int32
	D1MinLevel     int32
	SizeDMinLevel  int32
	Orientation    patch.Orientation
	ProjectionID   int
	LodEnable      bool
	LodScaleXMinus1 int
	LodScaleY      int
}

// InterPatch is the per-patch field list for an INTER patch. RefFrame is
// the reference-frame index; PredIdxDelta is the reference-patch-index
// delta relative to the running predIdx over consecutive INTER patches.
type InterPatch struct {
	RefFrame        int
	PredIdxDelta    int
	DeltaU0, DeltaV0 int
	DeltaU1, DeltaV1 int32
	DeltaSizeU0, DeltaSizeV0 int
	DeltaD1MinLevel int32
	DeltaSizeDMinLevel int32
}

// RawPatchRecord is the per-patch field list for a RAW patch.
type RawPatchRecord struct {
	U0, V0         int
	SizeU0, SizeV0 int
	U1, V1         int32
	D1             int32
	NumRawPoints   int
	InRawVideo     bool
}

// EomPatchRecord is the per-patch field list for an EOM patch.
type EomPatchRecord struct {
	U0, V0         int
	SizeU, SizeV   int
	AssocPatches        []int
	EomPointsPerAssoc   []int
}

// PatchRecord is one tagged-union patch-frame descriptor entry.
type PatchRecord struct {
	Tag   PatchKind
	Intra *IntraPatch
	Inter *InterPatch
	Raw   *RawPatchRecord
	Eom   *EomPatchRecord
}

// ASPS carries the atlas-sequence-parameter-set fields the descriptor
// needs to interpret itself.
type ASPS struct {
	PatchSizeQuantizerPresentFlag     bool
	PointLocalReconstructionEnabledFlag bool
	AdditionalProjectionPlanePresentFlag bool
	PatchPrecedenceOrderFlag          bool
	MapCountMinus1                    int
	QuantizerSizeX, QuantizerSizeY    int
	MinLevel                          int32
}

// DefaultASPS returns ASPS defaults matching imagegen/recon/pack's own
// DefaultParameters, so the two sides agree on one configuration.
func DefaultASPS() ASPS {
	return ASPS{
		MapCountMinus1: 0,
		QuantizerSizeX: 1,
		QuantizerSizeY: 1,
		MinLevel:       1,
	}
}
