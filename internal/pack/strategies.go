package pack

import "github.com/vpcc-go/vpcc-core/internal/patch"

// placeOne places a single patch, retrying with a doubled occupancySizeV
// until it fits. If matched is true, the reference position/orientation is
// tried first.
func (pk *Packer) placeOne(p *patch.Patch, matched bool, refOrient patch.Orientation, refU0, refV0 int) {
	if matched {
		p.Orientation = refOrient
		if pk.tryFit(p, refU0, refV0) {
			pk.markOccupied(p)
			return
		}
	}

	for {
		if pk.attemptPlacement(p) {
			pk.markOccupied(p)
			return
		}
		pk.growOccupancyMap()
	}
}

func (pk *Packer) attemptPlacement(p *patch.Patch) bool {
	orientations := pk.orientationCandidates(p)
	if pk.Params.Strategy == StrategyTetris {
		return pk.placeTetris(p, orientations)
	}
	for v := 0; v < pk.occH; v++ {
		for u := 0; u < pk.occW; u++ {
			for _, o := range orientations {
				p.Orientation = o
				if pk.tryFit(p, u, v) {
					return true
				}
			}
		}
	}
	return false
}

// tryFit checks whether p, at the given origin and its current
// Orientation, fits the canvas; on success it sets p.U0/V0 and returns
// true without mutating the occupancy map (markOccupied does that).
func (pk *Packer) tryFit(p *patch.Patch, u0, v0 int) bool {
	p.U0, p.V0 = u0, v0
	return pk.checkFitPatchCanvas(p)
}

// checkFitPatchCanvas tests every occupied block of p's footprint
// (after orientation) against the shared occupancy map, inflated by
// Safeguard to leave a gap between patches.
func (pk *Packer) checkFitPatchCanvas(p *patch.Patch) bool {
	fu, fv := p.FootprintBlocks()
	sg := pk.Params.Safeguard

	if p.U0 < 0 || p.V0 < 0 || p.U0+fu+sg > pk.occW || p.V0+fv+sg > pk.occH {
		return false
	}

	for du := -sg; du < fu+sg; du++ {
		for dv := -sg; dv < fv+sg; dv++ {
			cu, cv := p.U0+du, p.V0+dv
			if cu < 0 || cv < 0 || cu >= pk.occW || cv >= pk.occH {
				continue
			}
			occupiedHere := pk.occupancy[cv*pk.occW+cu]
			if !occupiedHere {
				continue
			}
			if du >= 0 && du < fu && dv >= 0 && dv < fv {
				// A real footprint block collides with something placed.
				if !pk.Params.LowDelayEncoding && !blockOccupiedInPatch(p, du, dv) {
					continue
				}
				return false
			}
			return false
		}
	}
	return true
}

// blockOccupiedInPatch reports whether footprint-local block (u,v) (in
// the patch's placed, post-orientation footprint) is actually marked
// occupied by p itself, as opposed to merely lying within its bounding
// footprint. Low-delay encoding forbids overlap even where p leaves the
// block unoccupied.
func blockOccupiedInPatch(p *patch.Patch, u, v int) bool {
	pu, pv := p.UnorientBlock(u, v)
	if pu < 0 || pu >= p.SizeU0 || pv < 0 || pv >= p.SizeV0 {
		return false
	}
	return p.Occupancy[pv*p.SizeU0+pu]
}

// markOccupied sets every occupied block of p's footprint in the shared
// occupancy map.
func (pk *Packer) markOccupied(p *patch.Patch) {
	fu, fv := p.FootprintBlocks()
	for du := 0; du < fu; du++ {
		for dv := 0; dv < fv; dv++ {
			if !blockOccupiedInPatch(p, du, dv) {
				continue
			}
			cu, cv := p.U0+du, p.V0+dv
			if cu >= 0 && cv >= 0 && cu < pk.occW && cv < pk.occH {
				pk.occupancy[cv*pk.occW+cu] = true
			}
		}
	}
}

// growOccupancyMap doubles occupancySizeV, preserving existing content.
func (pk *Packer) growOccupancyMap() {
	newH := pk.occH * 2
	if newH < 1 {
		newH = 1
	}
	newOcc := make([]bool, pk.occW*newH)
	copy(newOcc, pk.occupancy)
	pk.occupancy = newOcc
	pk.occH = newH
}

// orientationCandidates returns the candidate orientation set for a
// patch under the configured strategy.
func (pk *Packer) orientationCandidates(p *patch.Patch) []patch.Orientation {
	switch pk.Params.Strategy {
	case StrategyAnchor:
		return []patch.Orientation{patch.OrientationDefault}
	case StrategyFlexible:
		if !pk.Params.UseEightOrientations {
			return []patch.Orientation{patch.OrientationDefault, patch.OrientationSwap}
		}
		if p.SizeV0 > p.SizeU0 {
			// Vertical-preferred ordering for tall patches.
			return []patch.Orientation{
				patch.OrientationDefault, patch.OrientationRot180,
				patch.OrientationSwap, patch.OrientationMRot180,
				patch.OrientationRot90, patch.OrientationRot270,
				patch.OrientationMirror, patch.OrientationMRot90,
			}
		}
		return patch.AllOrientations
	case StrategyTetris:
		return patch.AllOrientations
	default:
		return []patch.Orientation{patch.OrientationDefault}
	}
}
