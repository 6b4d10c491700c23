// Package vpcc provides the patch-projection geometry/attribute codec
// core for a video-based point-cloud compression pipeline: it segments a
// point cloud into planar patches, packs them onto a shared 2D canvas,
// generates the occupancy/geometry/texture image grids handed to an
// external video codec, and reconstructs a coloured point cloud back
// from those images on the decoding side.
//
// Basic usage for encoding a single frame:
//
//	enc := vpcc.NewEncoder(vpcc.DefaultEncoderParameters())
//	frame, err := enc.EncodeFrame(vpcc.PointCloudInput{Points: pts, Colors: cols})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Basic usage for decoding:
//
//	dec := vpcc.NewDecoder(vpcc.DefaultDecoderParameters())
//	cloud, err := dec.DecodeFrame(frame)
package vpcc

import (
	"fmt"

	"github.com/vpcc-go/vpcc-core/internal/imagegen"
	"github.com/vpcc-go/vpcc-core/internal/pack"
	"github.com/vpcc-go/vpcc-core/internal/plr"
	"github.com/vpcc-go/vpcc-core/internal/recon"
	"github.com/vpcc-go/vpcc-core/internal/segment"
	"github.com/vpcc-go/vpcc-core/internal/smooth"
)

// EncoderParameters holds the encoding configuration. It is plain data:
// construct it with DefaultEncoderParameters and override fields as
// needed.
type EncoderParameters struct {
	Segment segment.Parameters
	Pack    pack.Parameters
	Image   imagegen.Parameters
	PLR     plr.Parameters

	// PointLocalReconstruction enables the PLR search pass.
	PointLocalReconstruction bool
}

// DefaultEncoderParameters returns one consistent codec configuration
// across the segmenter, packer, image generator and PLR searcher.
func DefaultEncoderParameters() EncoderParameters {
	return EncoderParameters{
		Segment:                  segment.DefaultParameters(),
		Pack:                     pack.DefaultParameters(),
		Image:                    imagegen.DefaultParameters(),
		PLR:                      plr.DefaultParameters(),
		PointLocalReconstruction: false,
	}
}

// Validate reports the first configuration inconsistency, wrapping
// ErrConfigurationInvalid (or ErrEOMBitcountViolation for an EDD depth
// range the 10-bit code cannot carry).
func (p EncoderParameters) Validate() error {
	if p.Pack.OccupancyResolution <= 0 {
		return fmt.Errorf("%w: occupancy resolution %d", ErrConfigurationInvalid, p.Pack.OccupancyResolution)
	}
	if p.Image.GeometryBitDepth3D < 1 || p.Image.GeometryBitDepth3D > 16 {
		return fmt.Errorf("%w: geometry bit depth %d", ErrConfigurationInvalid, p.Image.GeometryBitDepth3D)
	}
	if p.Image.SingleMapPixelInterleaving && p.Image.MapCount > 1 {
		return fmt.Errorf("%w: single-map pixel interleaving requires mapCount == 1", ErrConfigurationInvalid)
	}
	if p.Image.EnhancedDeltaDepthCode && p.Segment.SurfaceThickness > 10 {
		return fmt.Errorf("%w: surface thickness %d exceeds the 10 intermediate depths EDD can carry",
			ErrEOMBitcountViolation, p.Segment.SurfaceThickness)
	}
	return nil
}

// DecoderParameters holds the decoding configuration: the reconstructor
// and smoothing filter settings, which must track the encoder's own
// image/geometry parameters for a bitstream to round-trip.
type DecoderParameters struct {
	Recon              recon.Parameters
	Geometry           smooth.GeometryParameters
	Color              smooth.ColorParameters
	PatchBlockFilter   smooth.PatchBlockFilterParameters

	// GeometrySmoothing selects which geometry smoother strategy runs,
	// if any.
	GeometrySmoothing GeometrySmoothingMode
	ColorSmoothing    bool
	PatchBlockFiltering bool
}

// GeometrySmoothingMode selects the decoder's post-reconstruction
// geometry filter.
type GeometrySmoothingMode int

const (
	GeometrySmoothingOff GeometrySmoothingMode = iota
	GeometrySmoothingGrid
	GeometrySmoothingKdTree
)

// DefaultDecoderParameters returns decoder defaults matching
// DefaultEncoderParameters' image/geometry configuration.
func DefaultDecoderParameters() DecoderParameters {
	return DecoderParameters{
		Recon:               recon.DefaultParameters(),
		Geometry:            smooth.DefaultGeometryParameters(),
		Color:               smooth.DefaultColorParameters(),
		PatchBlockFilter:    smooth.DefaultPatchBlockFilterParameters(),
		GeometrySmoothing:   GeometrySmoothingGrid,
		ColorSmoothing:      true,
		PatchBlockFiltering: true,
	}
}

// GroupOfFrames is a sequence of point clouds encoded in order, with
// inter-frame (temporal) patch matching carried across consecutive
// frames. Each frame's canvas is sized by its own packing pass.
type GroupOfFrames struct {
	Clouds []PointCloudInput
}

// PointCloudInput is one frame's source geometry/colour, indexed in
// parallel per point.
type PointCloudInput struct {
	Points []Point3D
	Colors []Color
}

// Point3D is the encoder/decoder's public 3D point type (the internal
// geom package's Point3D re-exported in value form at the package
// boundary; coordinates stay integral end to end).
type Point3D struct {
	X, Y, Z int32
}

// Color is an 8-bit RGB colour.
type Color struct {
	R, G, B uint8
}
