package segment

import (
	"runtime"
	"sync"

	"github.com/vpcc-go/vpcc-core/internal/geom"
)

// estimateNormals computes an oriented normal for every point from its
// NNNormalEstimation nearest neighbours via PCA, then
// runs a small propagation pass for sign consistency. Each goroutine
// writes only to its own index of `out`, so no locking is needed.
func estimateNormals(tree *geom.KdTree, points []geom.Point3D, params Parameters) []geom.Vec3 {
	out := make([]geom.Vec3, len(points))

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(points) {
		numWorkers = len(points)
	}
	if numWorkers <= 1 || len(points) <= 64 {
		for i, p := range points {
			out[i] = pointNormal(tree, points, p, params.NNNormalEstimation)
		}
	} else {
		var wg sync.WaitGroup
		chunk := (len(points) + numWorkers - 1) / numWorkers
		for w := 0; w < numWorkers; w++ {
			start := w * chunk
			end := start + chunk
			if start >= len(points) {
				break
			}
			if end > len(points) {
				end = len(points)
			}
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				for i := start; i < end; i++ {
					out[i] = pointNormal(tree, points, points[i], params.NNNormalEstimation)
				}
			}(start, end)
		}
		wg.Wait()
	}

	propagateSigns(tree, points, out)
	return out
}

func pointNormal(tree *geom.KdTree, points []geom.Point3D, p geom.Point3D, nn int) geom.Vec3 {
	neighbors := tree.Search(p, nn)
	if len(neighbors) < 3 {
		return geom.Vec3{}
	}
	xx, xy, xz, yy, yz, zz := geom.Covariance3x3(points, neighbors)
	return geom.SmallestEigenvector3x3(xx, xy, xz, yy, yz, zz)
}

// propagateSigns makes each point's normal agree in sign with the
// majority of its immediate neighbours' normals, a minimal pass that
// keeps adjoining surface patches consistently oriented.
func propagateSigns(tree *geom.KdTree, points []geom.Point3D, normals []geom.Vec3) {
	for i, p := range points {
		neighbors := tree.Search(p, 8)
		var agree, disagree int
		for _, j := range neighbors {
			if j == i {
				continue
			}
			if normals[i].Dot(normals[j]) < 0 {
				disagree++
			} else {
				agree++
			}
		}
		if disagree > agree {
			normals[i] = normals[i].Negate()
		}
	}
}
