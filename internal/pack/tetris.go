package pack

import "github.com/vpcc-go/vpcc-core/internal/patch"

// placeTetris implements the tetris packing strategy: for
// each candidate orientation, compute the column heights ("horizon")
// the patch would rest on, and choose the orientation/column placement
// that minimizes the resulting wasted area beneath the patch.
func (pk *Packer) placeTetris(p *patch.Patch, orientations []patch.Orientation) bool {
	bestWaste := -1
	bestU, bestV := -1, -1
	var bestOrient patch.Orientation

	for _, o := range orientations {
		p.Orientation = o
		fu, fv := p.FootprintBlocks()
		if fu > pk.occW {
			continue
		}
		for u := 0; u+fu <= pk.occW; u++ {
			v, waste := pk.tetrisRestingPosition(u, fu, fv)
			if v < 0 {
				continue
			}
			p.U0, p.V0 = u, v
			if !pk.checkFitPatchCanvas(p) {
				continue
			}
			if bestWaste < 0 || waste < bestWaste {
				bestWaste = waste
				bestU, bestV = u, v
				bestOrient = o
			}
		}
	}

	if bestWaste < 0 {
		return false
	}
	p.Orientation = bestOrient
	p.U0, p.V0 = bestU, bestV
	return true
}

// tetrisRestingPosition returns the row at which a patch of width fu,
// height fv resting at column u would land (the deepest per-column
// horizon across its span), and the wasted-area count (empty blocks
// between each column's own horizon and the resting row).
func (pk *Packer) tetrisRestingPosition(u, fu, fv int) (v int, waste int) {
	horizon := 0
	for du := 0; du < fu; du++ {
		h := pk.columnHorizon(u + du)
		if h > horizon {
			horizon = h
		}
	}
	if horizon+fv > pk.occH {
		return -1, 0
	}
	for du := 0; du < fu; du++ {
		h := pk.columnHorizon(u + du)
		waste += horizon - h
	}
	return horizon, waste
}

// columnHorizon returns the row just below the lowest occupied block in
// column u (the row a new patch would rest its top edge on), or 0 if
// the column is entirely empty.
func (pk *Packer) columnHorizon(u int) int {
	horizon := 0
	for v := 0; v < pk.occH; v++ {
		if pk.occupancy[v*pk.occW+u] {
			horizon = v + 1
		}
	}
	return horizon
}
