package segment

import "github.com/vpcc-go/vpcc-core/internal/geom"

// extractComponents performs a breadth-first search over the adjacency
// graph induced by each orientation label (radius =
// maxNNCountPatchSegmentation neighbours), yielding connected components
// with at least minPointCountPerCCPatchSegmentation points. Returns, for each orientation index, a list of components
// (each a list of point indices).
func extractComponents(tree *geom.KdTree, points []geom.Point3D, labels []int, numOrientations int, params Parameters) [][][]int {
	visited := make([]bool, len(points))
	result := make([][][]int, numOrientations)

	for i := range points {
		if visited[i] {
			continue
		}
		label := labels[i]
		component := bfsComponent(tree, points, labels, visited, i, label, params.MaxNNCountPatchSegmentation)
		if len(component) >= params.MinPointCountPerCCPatchSegmentation {
			result[label] = append(result[label], component)
		}
		// Points in too-small components remain unassigned to any
		// patch and are picked up by RAW residual routing later; mark
		// them visited so they are not revisited, but do not record
		// the component.
	}
	return result
}

func bfsComponent(tree *geom.KdTree, points []geom.Point3D, labels []int, visited []bool, start, label, maxNN int) []int {
	queue := []int{start}
	visited[start] = true
	var component []int
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		component = append(component, cur)

		neighbors := tree.Search(points[cur], maxNN)
		for _, n := range neighbors {
			if !visited[n] && labels[n] == label {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return component
}
