// Package plr implements the encoder-only point-local-reconstruction
// mode search (C9): for every patch (or every block of a large patch)
// it tries plrlNumberOfModes candidate modes, reconstructs each via
// internal/recon, and keeps the mode minimising the symmetric
// point-to-point distance against the patch's own source points.
package plr

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/patch"
)

// Parameters configures the PLR search.
type Parameters struct {
	PlrlNumberOfModes int
	PatchSize         int // patches with size <= PatchSize search at patch granularity
	GeometryBitDepth3D int
	CacheSize         int
}

// DefaultParameters returns the PLR search defaults.
func DefaultParameters() Parameters {
	return Parameters{
		PlrlNumberOfModes:  4,
		PatchSize:          256,
		GeometryBitDepth3D: 10,
		CacheSize:          4096,
	}
}

// candidateModes returns the first n candidate PLR modes in a fixed,
// deterministic order: mode 0 is always "no reconstruction", higher modes progressively add interpolation, fill and wider
// neighbourhoods.
func candidateModes(n int) []patch.PLRMode {
	all := []patch.PLRMode{
		{},
		{Interpolate: true, Neighbor: 1},
		{Interpolate: true, Neighbor: 2},
		{Fill: true},
		{Interpolate: true, Fill: true, Neighbor: 1},
		{Interpolate: true, Fill: true, Neighbor: 2, MinD1: 1},
	}
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	return all[:n]
}

// cacheKey identifies one (patch, block, mode) candidate reconstruction
// trial for memoization.
type cacheKey struct {
	patchIdx int
	block    int
	mode     patch.PLRMode
}

// Searcher runs the PLR mode search for one frame's patches.
type Searcher struct {
	Params Parameters
	cache  *lru.Cache[cacheKey, int64]
}

// New returns a Searcher configured with params, backed by an LRU cache
// of candidate-trial distances sized Params.CacheSize.
func New(params Parameters) *Searcher {
	size := params.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, _ := lru.New[cacheKey, int64](size)
	return &Searcher{Params: params, cache: cache}
}

// SearchPatch evaluates every candidate mode at patch granularity and
// records the winner on p.PLRPatch.
func (s *Searcher) SearchPatch(p *patch.Patch, patchIdx int, source []geom.Point3D, sourceColors []geom.Color) {
	modes := candidateModes(s.Params.PlrlNumberOfModes)
	best := modes[0]
	bestDist := int64(1<<63 - 1)
	for _, mode := range modes {
		dist := s.trialDistance(p, patchIdx, -1, mode, source)
		if dist < bestDist {
			bestDist = dist
			best = mode
		}
	}
	m := best
	p.PLRPatch = &m
	p.PLRBlocks = nil
}

// SearchBlock evaluates every candidate mode at block granularity for
// blockIdx (raster order within the patch; block granularity applies
// when the patch exceeds PatchSize) and records the winner in
// p.PLRBlocks.
func (s *Searcher) SearchBlock(p *patch.Patch, patchIdx, blockIdx int, source []geom.Point3D, sourceColors []geom.Color) {
	if p.PLRBlocks == nil {
		p.PLRBlocks = make([]patch.PLRMode, p.SizeU0*p.SizeV0)
	}
	modes := candidateModes(s.Params.PlrlNumberOfModes)
	best := modes[0]
	bestDist := int64(1<<63 - 1)
	for _, mode := range modes {
		dist := s.trialDistance(p, patchIdx, blockIdx, mode, source)
		if dist < bestDist {
			bestDist = dist
			best = mode
		}
	}
	if blockIdx >= 0 && blockIdx < len(p.PLRBlocks) {
		p.PLRBlocks[blockIdx] = best
	}
}

// SearchAll runs SearchPatch for small patches and SearchBlock,
// block-by-block, for larger ones.
func (s *Searcher) SearchAll(patches []*patch.Patch, sourceByPatch [][]geom.Point3D, colorsByPatch [][]geom.Color) {
	for pi, p := range patches {
		src := sourceByPatch[pi]
		var col []geom.Color
		if pi < len(colorsByPatch) {
			col = colorsByPatch[pi]
		}
		if p.SizeU0*p.SizeV0 <= blocksForSize(p, s.Params.PatchSize) {
			s.SearchPatch(p, pi, src, col)
			continue
		}
		for b := 0; b < p.SizeU0*p.SizeV0; b++ {
			s.SearchBlock(p, pi, b, src, col)
		}
	}
}

func blocksForSize(p *patch.Patch, patchSize int) int {
	O := blockSizeFor(p)
	if O <= 0 {
		O = 1
	}
	return (patchSize + O - 1) / O
}

func blockSizeFor(p *patch.Patch) int {
	if p.SizeU0 == 0 {
		return 1
	}
	o := p.Width / p.SizeU0
	if o < 1 {
		return 1
	}
	return o
}
