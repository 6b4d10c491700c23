package segment

import "github.com/vpcc-go/vpcc-core/internal/geom"

// axisOccupancyWeights derives the axis-occupancy prior for
// the 6 axis-aligned candidates: count the number of distinct cells each
// axis-aligned face projects points into; if the minimum count is >=
// minWeightEPP*max, weights are proportional to the counts, otherwise
// the minimum weight is floored to minWeightEPP.
func axisOccupancyWeights(points []geom.Point3D, candidates []axisInfo, minWeightEPP float32, occupancyResolution int) []float32 {
	counts := make([]int, len(candidates))
	for ci, cand := range candidates {
		if ci >= 6 {
			continue // only the 6 axis-aligned faces carry this prior
		}
		seen := make(map[[2]int32]struct{})
		for _, p := range points {
			u := p.At(cand.TangentAxis) / int32(occupancyResolution)
			v := p.At(cand.BitangentAxis) / int32(occupancyResolution)
			seen[[2]int32{u, v}] = struct{}{}
		}
		counts[ci] = len(seen)
	}

	maxCount := 0
	minCount := -1
	for i := 0; i < 6 && i < len(counts); i++ {
		if counts[i] > maxCount {
			maxCount = counts[i]
		}
		if minCount < 0 || counts[i] < minCount {
			minCount = counts[i]
		}
	}

	weights := make([]float32, len(candidates))
	for i := range weights {
		weights[i] = 1
	}
	if maxCount == 0 {
		return weights
	}
	proportional := float32(minCount) >= minWeightEPP*float32(maxCount)
	for i := 0; i < 6 && i < len(counts); i++ {
		if proportional {
			weights[i] = float32(counts[i]) / float32(maxCount)
		} else {
			w := float32(counts[i]) / float32(maxCount)
			if w < minWeightEPP {
				w = minWeightEPP
			}
			weights[i] = w
		}
	}
	return weights
}

// initialAssignment picks, for every point, the candidate orientation
// maximising dot(normal, candidate) * weight.
func initialAssignment(points []geom.Point3D, normals []geom.Vec3, candidates []axisInfo, weights []float32) []int {
	labels := make([]int, len(points))
	for i, n := range normals {
		best := 0
		bestScore := float32(-1e30)
		for ci, cand := range candidates {
			score := n.Dot(cand.Normal) * weights[ci]
			if score > bestScore {
				bestScore = score
				best = ci
			}
		}
		labels[i] = best
	}
	return labels
}
