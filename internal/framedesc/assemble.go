package framedesc

import "github.com/vpcc-go/vpcc-core/internal/patch"

// BuildFrameRecords assembles one frame's patch record list:
// a patch with BestMatchIdx >= 0 against prevPatches becomes an INTER
// record (predIdx numbered over consecutive INTER patches only); every
// other patch becomes an INTRA record. RAW and EOM records are appended
// by the caller (internal/raweom owns their own fields) since they
// don't come from the segmenter's patch list.
func BuildFrameRecords(patches []*patch.Patch, prevPatches []*patch.Patch, asps ASPS) []PatchRecord {
	records := make([]PatchRecord, 0, len(patches))
	predIdx := 0
	for _, p := range patches {
		if p.BestMatchIdx >= 0 && p.BestMatchIdx < len(prevPatches) {
			ref := prevPatches[p.BestMatchIdx]
			records = append(records, PatchRecord{
				Tag:   PatchInter,
				Inter: buildInter(p, ref, p.BestMatchIdx-predIdx, asps),
			})
			predIdx = p.BestMatchIdx
			continue
		}
		records = append(records, PatchRecord{Tag: PatchIntra, Intra: buildIntra(p, asps)})
	}
	return records
}

func buildIntra(p *patch.Patch, asps ASPS) *IntraPatch {
	return &IntraPatch{
		U0: p.U0, V0: p.V0,
		U1: p.U1, V1: p.V1,
		D1MinLevel:      divLevel(p.D1, asps.MinLevel),
		SizeDMinLevel:   divLevel(int32(p.SizeU0*p.SizeV0), asps.MinLevel),
		Orientation:     p.Orientation,
		ProjectionID:    p.ViewId,
		LodEnable:       p.LodScaleX > 1 || p.LodScaleY > 1,
		LodScaleXMinus1: maxInt(p.LodScaleX-1, 0),
		LodScaleY:       p.LodScaleY,
	}
}

func buildInter(p, ref *patch.Patch, predIdxDelta int, asps ASPS) *InterPatch {
	sizeU0, sizeV0 := p.SizeU0, p.SizeV0
	if asps.PatchSizeQuantizerPresentFlag {
		sizeU0 = quantize(p.SizeU0, asps.QuantizerSizeX)
		sizeV0 = quantize(p.SizeV0, asps.QuantizerSizeY)
	}
	refSizeU0, refSizeV0 := ref.SizeU0, ref.SizeV0
	if asps.PatchSizeQuantizerPresentFlag {
		refSizeU0 = quantize(ref.SizeU0, asps.QuantizerSizeX)
		refSizeV0 = quantize(ref.SizeV0, asps.QuantizerSizeY)
	}
	return &InterPatch{
		RefFrame:           p.RefAtlasFrameIndex,
		PredIdxDelta:       predIdxDelta,
		DeltaU0:            p.U0 - ref.U0,
		DeltaV0:            p.V0 - ref.V0,
		DeltaU1:            p.U1 - ref.U1,
		DeltaV1:            p.V1 - ref.V1,
		DeltaSizeU0:        sizeU0 - refSizeU0,
		DeltaSizeV0:        sizeV0 - refSizeV0,
		DeltaD1MinLevel:    divLevel(p.D1, asps.MinLevel) - divLevel(ref.D1, asps.MinLevel),
		DeltaSizeDMinLevel: divLevel(int32(p.SizeU0*p.SizeV0), asps.MinLevel) - divLevel(int32(ref.SizeU0*ref.SizeV0), asps.MinLevel),
	}
}

func divLevel(v, level int32) int32 {
	if level <= 0 {
		level = 1
	}
	return v / level
}

func quantize(v, q int) int {
	if q <= 0 {
		q = 1
	}
	return v / q
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
