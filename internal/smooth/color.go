package smooth

import (
	"math"
	"sort"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

// ColorSmoother implements grid-based colour smoothing:
// analogous to geometry smoothing but operating on RGB, with three
// luminance gates guarding against flattening legitimate colour edges.
type ColorSmoother struct {
	Params ColorParameters
}

// NewColorSmoother returns a smoother configured with params.
func NewColorSmoother(params ColorParameters) *ColorSmoother {
	return &ColorSmoother{Params: params}
}

type colorVoxel struct {
	sumR, sumG, sumB int64
	count            int64
	lumas            []int
}

// luma is the integer BT.601 luminance used throughout.
func luma(c geom.Color) int {
	return (77*int(c.R) + 150*int(c.G) + 29*int(c.B)) >> 8
}

// Smooth mutates pc.Colors in place for every boundary point.
func (s *ColorSmoother) Smooth(pc *geom.PointCloud) {
	grid := s.Params.GridSize
	if grid <= 0 {
		grid = 1
	}

	voxels := make(map[voxelKey]*colorVoxel, pc.Len())
	for i, p := range pc.Points {
		k := keyOf(p, grid)
		v, ok := voxels[k]
		if !ok {
			v = &colorVoxel{}
			voxels[k] = v
		}
		c := pc.Colors[i]
		v.sumR += int64(c.R)
		v.sumG += int64(c.G)
		v.sumB += int64(c.B)
		v.count++
		v.lumas = append(v.lumas, luma(c))
	}

	// accepted reports whether a voxel's mean colour is a valid centroid
	// candidate: its luminance may not diverge too far from the voxel's
	// median luminance.
	accepted := func(v *colorVoxel) (meanR, meanG, meanB float64, ok bool) {
		if v.count == 0 {
			return 0, 0, 0, false
		}
		meanR = float64(v.sumR) / float64(v.count)
		meanG = float64(v.sumG) / float64(v.count)
		meanB = float64(v.sumB) / float64(v.count)
		meanY := 0.299*meanR + 0.587*meanG + 0.114*meanB
		median := medianOf(v.lumas)
		if math.Abs(meanY-float64(median)) > float64(s.Params.ThresholdColorVariation) {
			return 0, 0, 0, false
		}
		return meanR, meanG, meanB, true
	}

	for i := range pc.Points {
		if !pc.Meta[i].Boundary {
			continue
		}
		p := pc.Points[i]
		k := keyOf(p, grid)
		fx := fraction(p.X, k[0], grid)
		fy := fraction(p.Y, k[1], grid)
		fz := fraction(p.Z, k[2], grid)
		curY := luma(pc.Colors[i])

		var accR, accG, accB, wsum float64
		for dz := int32(0); dz <= 1; dz++ {
			for dy := int32(0); dy <= 1; dy++ {
				for dx := int32(0); dx <= 1; dx++ {
					nk := voxelKey{k[0] + dx, k[1] + dy, k[2] + dz}
					v, ok := voxels[nk]
					if !ok {
						continue
					}
					mr, mg, mb, ok := accepted(v)
					if !ok {
						continue
					}
					// A neighbouring voxel whose centroid luminance
					// diverges too far from the current point's own
					// luminance contributes nothing.
					neighborY := 0.299*mr + 0.587*mg + 0.114*mb
					if math.Abs(neighborY-float64(curY)) > float64(s.Params.ThresholdColorDifference) {
						continue
					}
					w := axisWeight(fx, dx) * axisWeight(fy, dy) * axisWeight(fz, dz)
					accR += w * mr
					accG += w * mg
					accB += w * mb
					wsum += w
				}
			}
		}
		if wsum == 0 {
			continue
		}
		cr, cg, cb := accR/wsum, accG/wsum, accB/wsum
		centroidY := 0.299*cr + 0.587*cg + 0.114*cb
		if math.Abs(centroidY-float64(curY))*10 < float64(s.Params.ThresholdColorSmoothing) {
			continue
		}
		pc.Colors[i] = geom.Color{R: clampByte(cr), G: clampByte(cg), B: clampByte(cb)}
	}
}

func medianOf(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
