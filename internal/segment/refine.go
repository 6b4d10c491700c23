package segment

import "github.com/vpcc-go/vpcc-core/internal/geom"

// refineSegmentation runs iterationCountRefineSegmentation passes. Each pass recomputes, for every point, a local
// orientation score of ||sum of normals in an epsilon-ball||. candidate
// - lambda * smoothCount, where smoothCount penalises deviation from the
// plurality label in the same ball. The grid-based variant buckets
// points into a voxel grid for O(1) neighbourhood lookups; the
// unbucketed variant falls back to a kd-tree query for the
// MaxNNCountPatchSegmentation nearest neighbours.
func refineSegmentation(tree *geom.KdTree, points []geom.Point3D, normals []geom.Vec3, labels []int, candidates []axisInfo, params Parameters) []int {
	current := append([]int(nil), labels...)

	var grid *voxelGrid
	if params.UseGridRefinement {
		grid = buildVoxelGrid(points, params.VoxelDimensionRefineSegmentation)
	}

	for iter := 0; iter < params.IterationCountRefineSegmentation; iter++ {
		next := make([]int, len(points))
		for i, p := range points {
			var neighbors []int
			if grid != nil {
				neighbors = grid.neighbors(p)
			} else {
				neighbors = tree.Search(p, params.MaxNNCountPatchSegmentation)
			}

			var sum geom.Vec3
			counts := make(map[int]int)
			for _, j := range neighbors {
				sum.X += normals[j].X
				sum.Y += normals[j].Y
				sum.Z += normals[j].Z
				counts[current[j]]++
			}

			plurality := current[i]
			best := -1
			for label, c := range counts {
				if c > best {
					best = c
					plurality = label
				}
			}

			bestLabel := current[i]
			bestScore := float32(-1e30)
			for ci, cand := range candidates {
				smoothCount := float32(len(neighbors) - counts[ci])
				score := sum.Dot(cand.Normal) - params.Lambda*smoothCount
				if ci == plurality {
					score += params.Lambda * float32(counts[ci])
				}
				if score > bestScore {
					bestScore = score
					bestLabel = ci
				}
			}
			next[i] = bestLabel
		}
		current = next
	}
	return current
}

// voxelGrid buckets points into cubes of side voxelDimension for O(1)
// neighbourhood lookups during grid-based refinement.
type voxelGrid struct {
	dim     int32
	buckets map[[3]int32][]int
}

func buildVoxelGrid(points []geom.Point3D, dim int32) *voxelGrid {
	if dim <= 0 {
		dim = 1
	}
	g := &voxelGrid{dim: dim, buckets: make(map[[3]int32][]int)}
	for i, p := range points {
		key := voxelKey(p, dim)
		g.buckets[key] = append(g.buckets[key], i)
	}
	return g
}

func voxelKey(p geom.Point3D, dim int32) [3]int32 {
	return [3]int32{p.X / dim, p.Y / dim, p.Z / dim}
}

// neighbors returns every point index sharing p's voxel cell.
func (g *voxelGrid) neighbors(p geom.Point3D) []int {
	return g.buckets[voxelKey(p, g.dim)]
}
