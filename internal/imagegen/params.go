package imagegen

// DilationMethod selects how unoccupied texture pixels are filled.
type DilationMethod int

const (
	DilationSimple DilationMethod = iota
	DilationHarmonicBackgroundFill
	DilationSmoothedPushPull
)

// Parameters configures the image generator.
type Parameters struct {
	OccupancyPrecision         int
	OffsetLossyOM              uint16
	EnhancedDeltaDepthCode     bool
	SingleMapPixelInterleaving bool
	MapCount                   int
	GeometryBitDepth3D         int
	GroupDilation              bool
	ChromaSubsampling          bool
	Dilation                   DilationMethod
	PaddingSearchRange         int32
	HarmonicMinLevelSize       int
	HarmonicMaxIterations      int
	HarmonicErrorThreshold     float64
	PushPullSmoothIterations   int
}

// DefaultParameters returns the image generator defaults.
func DefaultParameters() Parameters {
	return Parameters{
		OccupancyPrecision:       4,
		MapCount:                 1,
		GeometryBitDepth3D:       10,
		GroupDilation:            true,
		ChromaSubsampling:        true,
		Dilation:                 DilationSmoothedPushPull,
		PaddingSearchRange:       8,
		HarmonicMinLevelSize:     4,
		HarmonicMaxIterations:    1024,
		HarmonicErrorThreshold:   1e-5,
		PushPullSmoothIterations: 2,
	}
}

// Generator produces occupancy/geometry/texture ImageGrids from a
// frame's packed patches.
type Generator struct {
	Params Parameters

	// Transfer, when non-nil, is invoked on the texture point list
	// before it is rasterized.
	Transfer ColorTransfer
}

// New returns a Generator configured with params.
func New(params Parameters) *Generator {
	return &Generator{Params: params}
}

// DilateImage fills img's unoccupied pixels under the configured
// dilation method. The push-pull path works on 8-bit 3-channel grids
// only, so other shapes (geometry maps carry one channel at up to
// GeometryBitDepth3D bits) take the harmonic fill instead, which is
// channel-generic and keeps full sample precision.
func (g *Generator) DilateImage(img *ImageGrid, occ []bool) {
	if img == nil {
		return
	}
	occupied, unoccupied := false, false
	for _, o := range occ {
		if o {
			occupied = true
		} else {
			unoccupied = true
		}
		if occupied && unoccupied {
			break
		}
	}
	if !occupied || !unoccupied {
		return
	}

	switch g.Params.Dilation {
	case DilationHarmonicBackgroundFill:
		g.DilateHarmonicBackgroundFill(img, occ)
	case DilationSmoothedPushPull:
		if img.Channels == 3 && img.BitDepth <= 8 {
			g.DilateSmoothedPushPull(img, occ)
		} else {
			g.DilateHarmonicBackgroundFill(img, occ)
		}
	default:
		g.Dilate(img, occ)
	}
}
