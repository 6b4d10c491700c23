package plr

import (
	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/patch"
	"github.com/vpcc-go/vpcc-core/internal/recon"
)

// trialDistance reconstructs p under mode (at patch or block
// granularity, blockIdx < 0 meaning patch granularity) and scores it
// against source via the symmetric point-to-point distance
// max(dSrcRec, dRecSrc). Results are memoized by
// (patchIdx, blockIdx, mode) since the search repeatedly reconstructs
// the same block across RD trials.
func (s *Searcher) trialDistance(p *patch.Patch, patchIdx, blockIdx int, mode patch.PLRMode, source []geom.Point3D) int64 {
	key := cacheKey{patchIdx: patchIdx, block: blockIdx, mode: mode}
	if d, ok := s.cache.Get(key); ok {
		return d
	}

	origPatch, origBlocks := p.PLRPatch, p.PLRBlocks
	applyMode(p, blockIdx, mode)
	dist := reconstructAndScore(p, s.Params.GeometryBitDepth3D, source)
	p.PLRPatch, p.PLRBlocks = origPatch, origBlocks

	s.cache.Add(key, dist)
	return dist
}

func applyMode(p *patch.Patch, blockIdx int, mode patch.PLRMode) {
	if blockIdx < 0 {
		m := mode
		p.PLRPatch = &m
		p.PLRBlocks = nil
		return
	}
	blocks := make([]patch.PLRMode, len(p.PLRBlocks))
	copy(blocks, p.PLRBlocks)
	if len(blocks) <= blockIdx {
		grown := make([]patch.PLRMode, p.SizeU0*p.SizeV0)
		copy(grown, blocks)
		blocks = grown
	}
	blocks[blockIdx] = mode
	p.PLRPatch = nil
	p.PLRBlocks = blocks
}

// reconstructAndScore builds an isolated single-patch frame covering
// p's own canvas footprint, reconstructs it via internal/recon using
// p's cached D0/D1/EDD layers (Images{} falls back to those, the same
// path the encoder itself exercises before any video codec is
// involved), and scores the result against source.
func reconstructAndScore(p *patch.Patch, b3d int, source []geom.Point3D) int64 {
	footU, footV := p.FootprintBlocks()
	O := blockSizeFor(p)
	width := (p.U0 + footU) * O
	height := (p.V0 + footV) * O
	if width < O {
		width = O
	}
	if height < O {
		height = O
	}

	ctx := frame.NewContext([]*patch.Patch{p}, width, height, O, 1)
	ctx.BuildBlockToPatch()

	r := recon.New(recon.Parameters{GeometryBitDepth3D: b3d})
	pc, _, err := r.ReconstructFrame(ctx, recon.Images{})
	if err != nil || pc.Len() == 0 || len(source) == 0 {
		return 1 << 62
	}

	return symmetricDistance(pc.Points, source)
}

// symmetricDistance computes max(dSrcRec, dRecSrc): the larger of the
// two one-sided Hausdorff-like maxima over nearest-neighbour distances.
func symmetricDistance(rec, src []geom.Point3D) int64 {
	recTree := geom.Build(rec)
	srcTree := geom.Build(src)

	var dSrcRec int64
	for _, p := range src {
		nn := recTree.Search(p, 1)
		if len(nn) == 0 {
			continue
		}
		if d := p.Dist2(rec[nn[0]]); d > dSrcRec {
			dSrcRec = d
		}
	}

	var dRecSrc int64
	for _, p := range rec {
		nn := srcTree.Search(p, 1)
		if len(nn) == 0 {
			continue
		}
		if d := p.Dist2(src[nn[0]]); d > dRecSrc {
			dRecSrc = d
		}
	}

	if dSrcRec > dRecSrc {
		return dSrcRec
	}
	return dRecSrc
}
