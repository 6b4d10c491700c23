// Package smooth implements the post-reconstruction quality filters:
// grid-based and kd-tree geometry smoothing, grid-based
// colour smoothing, and the patch-block filter. Every smoother takes
// per-call scratch buffers rather than storing voxel state as struct
// fields, which is what makes these loops safe to parallelize
// per-point.
package smooth

// GeometryParameters configures the grid/kd-tree geometry smoothers.
type GeometryParameters struct {
	GridSize           int32
	ThresholdSmoothing int64
	NeighborCount      int
	RadiusSquared      int64
}

// DefaultGeometryParameters returns the geometry smoother defaults.
func DefaultGeometryParameters() GeometryParameters {
	return GeometryParameters{
		GridSize:           8,
		ThresholdSmoothing: 64,
		NeighborCount:      16,
		RadiusSquared:      256,
	}
}

// ColorParameters configures the grid-based colour smoother.
type ColorParameters struct {
	GridSize                  int32
	ThresholdColorVariation   int
	ThresholdColorDifference  int
	ThresholdColorSmoothing   int
}

// DefaultColorParameters returns the colour smoother defaults.
func DefaultColorParameters() ColorParameters {
	return ColorParameters{
		GridSize:                 8,
		ThresholdColorVariation:  6,
		ThresholdColorDifference: 10,
		ThresholdColorSmoothing:  16,
	}
}

// PatchBlockFilterParameters configures the patch-block filter.
type PatchBlockFilterParameters struct {
	PassesCount   int
	Log2Threshold int
	FilterSize    int
}

// DefaultPatchBlockFilterParameters returns the filter's defaults.
func DefaultPatchBlockFilterParameters() PatchBlockFilterParameters {
	return PatchBlockFilterParameters{
		PassesCount:   1,
		Log2Threshold: 2,
		FilterSize:    3,
	}
}
