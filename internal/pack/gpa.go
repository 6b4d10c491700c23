package pack

import "github.com/vpcc-go/vpcc-core/internal/patch"

// Placement is a snapshot of a patch's canvas placement, used to record
// a GPA track's committed position independently of the live patch
// object.
type Placement struct {
	U0, V0      int
	Orientation patch.Orientation
}

// Track is a GPA track: a canvas region reserved across a group of
// frames' patches that project from roughly the same surface. Once a
// track's placement is fixed, every matching patch reuses it verbatim
// (orientation included), and the track's union
// occupancy (the OR of every member's footprint) is what later
// placement checks test against, not any single member's occupancy.
type Track struct {
	Placement      Placement
	UnionOccupancy []bool
	FootprintU     int
	FootprintV     int
	Members        []Placement
	Bad            bool

	subContext int
}

// GPAState holds the persistent GPA tracks across a sequence of Pack
// calls (one per frame). Construct with NewGPAState and reuse it for
// every frame of a sequence; each Packer.PackGPA call mutates it.
type GPAState struct {
	Tracks      []*Track
	subContexts int
	lastOccH    int
}

// NewGPAState returns an empty GPA track set.
func NewGPAState() *GPAState {
	return &GPAState{subContexts: 1}
}

// PackGPA packs patches using Global Patch Allocation: patches that
// IoU-match an existing track reuse its fixed placement (extending the
// track's union occupancy instead of the shared canvas occupancy markup
// used for normal placement), and unmatched patches are placed normally
// and become new tracks.
func (pk *Packer) PackGPA(patches []*patch.Patch, gpa *GPAState) (width, height int) {
	O := pk.Params.OccupancyResolution
	pk.occW = max(pk.Params.MinimumImageWidth/O, 1)
	pk.occH = firstPatchLargerDim(patches, O)
	if pk.occH < gpa.lastOccH {
		pk.occH = gpa.lastOccH
	}
	pk.occupancy = make([]bool, pk.occW*pk.occH)

	// Replay every live track's union occupancy onto the shared canvas
	// so fresh (non-GPA) placements in this frame cannot collide with a
	// track's reserved footprint.
	for _, tr := range gpa.Tracks {
		if tr.Bad {
			continue
		}
		pk.stampTrack(tr)
	}

	usedTrack := make(map[*Track]bool)
	var unmatched []*patch.Patch

	for _, p := range patches {
		tr := bestTrackMatch(p, gpa.Tracks, usedTrack, pk.Params.ThresholdIOU)
		if tr == nil {
			unmatched = append(unmatched, p)
			continue
		}
		usedTrack[tr] = true
		p.Orientation = tr.Placement.Orientation
		p.U0, p.V0 = tr.Placement.U0, tr.Placement.V0
		fu, fv := p.FootprintBlocks()
		if fu > tr.FootprintU || fv > tr.FootprintV {
			// The patch outgrew the region this track reserved; the
			// track cannot be trusted to still be collision-free.
			tr.Bad = true
			unmatched = append(unmatched, p)
			continue
		}
		pk.growTrackUnion(tr, p)
		tr.Members = append(tr.Members, tr.Placement)
	}

	ordered := orderForPacking(unmatched, nil, pk.Params.ThresholdIOU)
	for _, pp := range ordered {
		pk.placeOne(pp.p, false, 0, 0, 0)
		gpa.addTrack(pk, pp.p)
	}

	gpa.lastOccH = pk.occH
	width = pk.occW * O
	height = pk.occH * O
	return
}

// stampTrack marks a track's union occupancy onto the packer's shared
// occupancy map at the track's fixed placement.
func (pk *Packer) stampTrack(tr *Track) {
	for dv := 0; dv < tr.FootprintV; dv++ {
		for du := 0; du < tr.FootprintU; du++ {
			if !tr.UnionOccupancy[dv*tr.FootprintU+du] {
				continue
			}
			cu, cv := tr.Placement.U0+du, tr.Placement.V0+dv
			if cu >= 0 && cv >= 0 && cu < pk.occW && cv < pk.occH {
				pk.occupancy[cv*pk.occW+cu] = true
			}
		}
	}
}

// growTrackUnion ORs p's footprint (at the track's fixed placement and
// orientation) into the track's union occupancy mask.
func (pk *Packer) growTrackUnion(tr *Track, p *patch.Patch) {
	fu, fv := p.FootprintBlocks()
	for du := 0; du < fu; du++ {
		for dv := 0; dv < fv; dv++ {
			if du >= tr.FootprintU || dv >= tr.FootprintV {
				continue
			}
			if blockOccupiedInPatch(p, du, dv) {
				tr.UnionOccupancy[dv*tr.FootprintU+du] = true
			}
		}
	}
	pk.stampTrack(tr)
}

// addTrack registers a freshly-placed, unmatched patch as a new GPA
// track, opening a new sub-context whenever the current one already
// holds 15% of all tracks, the canvas height just grew, or the most
// recently added track is flagged bad.
func (gpa *GPAState) addTrack(pk *Packer, p *patch.Patch) {
	fu, fv := p.FootprintBlocks()
	tr := &Track{
		Placement:      Placement{U0: p.U0, V0: p.V0, Orientation: p.Orientation},
		UnionOccupancy: make([]bool, fu*fv),
		FootprintU:     fu,
		FootprintV:     fv,
	}
	for du := 0; du < fu; du++ {
		for dv := 0; dv < fv; dv++ {
			if blockOccupiedInPatch(p, du, dv) {
				tr.UnionOccupancy[dv*fu+du] = true
			}
		}
	}
	tr.Members = append(tr.Members, tr.Placement)

	boundary := len(gpa.Tracks) > 0 && (pk.occH > gpa.lastOccH || gpa.Tracks[len(gpa.Tracks)-1].Bad)
	tracksInContext := 0
	for _, t := range gpa.Tracks {
		if t.subContext == gpa.subContexts {
			tracksInContext++
		}
	}
	if boundary || (len(gpa.Tracks) > 0 && float64(tracksInContext) >= 0.15*float64(len(gpa.Tracks)+1)) {
		gpa.subContexts++
	}
	tr.subContext = gpa.subContexts

	gpa.Tracks = append(gpa.Tracks, tr)
}

// bestTrackMatch finds the live, not-yet-used track whose most recent
// member best IoU-matches p, or nil if none clears thresholdIOU.
func bestTrackMatch(p *patch.Patch, tracks []*Track, used map[*Track]bool, thresholdIOU float64) *Track {
	var best *Track
	bestIoU := 0.0
	for _, tr := range tracks {
		if tr.Bad || used[tr] || len(tr.Members) == 0 {
			continue
		}
		iou := trackIoU(p, tr)
		if iou > bestIoU {
			bestIoU = iou
			best = tr
		}
	}
	if bestIoU >= thresholdIOU {
		return best
	}
	return nil
}

// trackIoU approximates IoU between a candidate patch and a track using
// the track's reserved canvas footprint against the candidate's own
// footprint under the track's fixed orientation.
func trackIoU(p *patch.Patch, tr *Track) float64 {
	saved := p.Orientation
	p.Orientation = tr.Placement.Orientation
	fu, fv := p.FootprintBlocks()
	p.Orientation = saved

	au, av := fu, fv
	bu, bv := tr.FootprintU, tr.FootprintV
	iu, iv := minInt(au, bu), minInt(av, bv)
	inter := float64(iu * iv)
	union := float64(au*av+bu*bv) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
