// Package segment implements the encoder-side patch segmenter (C3):
// normal estimation, initial projection-plane assignment, iterative
// refinement, connected-component extraction, and patch fitting with
// RAW-point residual routing.
package segment

// Parameters is the pure-data configuration struct for the segmenter:
// a value type with named fields, not a builder.
type Parameters struct {
	NNNormalEstimation                  int
	OrientationCount                    int // 6, 10, or 18 candidate planes
	MinWeightEPP                        float32
	IterationCountRefineSegmentation    int
	VoxelDimensionRefineSegmentation    int32
	UseGridRefinement                   bool
	Lambda                              float32
	MaxNNCountPatchSegmentation         int
	MinPointCountPerCCPatchSegmentation int
	SurfaceThickness                    int32
	MaxAllowedDist2MissedPointsSelection int64
	OccupancyResolution                 int
	PartialAdditionalProjectionPlane    float32 // 0 disables
	GeometryBitDepth3D                  int     // shift for the 45-degree plane rotation
}

// DefaultParameters returns the segmenter defaults used by the reference
// encoder configuration.
func DefaultParameters() Parameters {
	return Parameters{
		NNNormalEstimation:                   16,
		OrientationCount:                      6,
		MinWeightEPP:                          0.2,
		IterationCountRefineSegmentation:       3,
		VoxelDimensionRefineSegmentation:       4,
		UseGridRefinement:                      false,
		Lambda:                                 0.5,
		MaxNNCountPatchSegmentation:            5,
		MinPointCountPerCCPatchSegmentation:     16,
		SurfaceThickness:                        4,
		MaxAllowedDist2MissedPointsSelection:     9,
		OccupancyResolution:                      16,
		PartialAdditionalProjectionPlane:         0,
		GeometryBitDepth3D:                       10,
	}
}
