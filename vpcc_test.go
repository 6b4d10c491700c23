package vpcc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func flatPlaneInput() PointCloudInput {
	var pts []Point3D
	var cols []Color
	for x := int32(0); x < 8; x++ {
		for y := int32(0); y < 8; y++ {
			pts = append(pts, Point3D{X: x, Y: y, Z: 0})
			cols = append(cols, Color{R: 200, G: 10, B: 10})
		}
	}
	return PointCloudInput{Points: pts, Colors: cols}
}

func smallEncoderParams() EncoderParameters {
	params := DefaultEncoderParameters()
	params.Segment.NNNormalEstimation = 4
	params.Segment.MaxNNCountPatchSegmentation = 8
	params.Segment.MinPointCountPerCCPatchSegmentation = 4
	params.Segment.IterationCountRefineSegmentation = 1
	params.Pack.MinimumImageWidth = 32
	params.Pack.MinimumImageHeight = 32
	return params
}

func TestEncodeFrame_ProducesNonEmptyImages(t *testing.T) {
	enc := NewEncoder(smallEncoderParams())
	ef, err := enc.EncodeFrame(flatPlaneInput())
	require.NoError(t, err)

	require.NotEmpty(t, ef.Occupancy)
	require.NotEmpty(t, ef.GeoD0)
	require.NotEmpty(t, ef.Texture)
	require.GreaterOrEqual(t, ef.Width, 1)
	require.GreaterOrEqual(t, ef.Height, 1)
	require.Equal(t, 0, ef.Width%ef.OccupancyResolution)
	require.Equal(t, 0, ef.Height%ef.OccupancyResolution)
}

func TestEncodeDecodeFrame_RoundTripsSomePoints(t *testing.T) {
	enc := NewEncoder(smallEncoderParams())
	ef, err := enc.EncodeFrame(flatPlaneInput())
	require.NoError(t, err)
	require.NotEmpty(t, ef.Patches)

	dec := NewDecoder(DefaultDecoderParameters())
	pc, err := dec.DecodeFrame(ef)
	require.NoError(t, err)
	require.Greater(t, pc.Len(), 0)
}

func TestEncodeDecodeFrame_RawPointRoundTrips(t *testing.T) {
	input := flatPlaneInput()
	// One isolated point far from the plane cannot form a connected
	// component and must be routed to the RAW region.
	input.Points = append(input.Points, Point3D{X: 500, Y: 500, Z: 500})
	input.Colors = append(input.Colors, Color{R: 1, G: 2, B: 3})

	enc := NewEncoder(smallEncoderParams())
	ef, err := enc.EncodeFrame(input)
	require.NoError(t, err)
	require.Greater(t, ef.NumRawPoints, 0)
	require.Greater(t, ef.RawStartRow, 0)

	dec := NewDecoder(DefaultDecoderParameters())
	pc, err := dec.DecodeFrame(ef)
	require.NoError(t, err)

	found := false
	for _, p := range pc.Points {
		if p.X == 500 && p.Y == 500 && p.Z == 500 {
			found = true
			break
		}
	}
	require.True(t, found, "RAW point not recovered from the geometry image")
}

func TestEncodeGroupOfFrames_CarriesTemporalState(t *testing.T) {
	enc := NewEncoder(smallEncoderParams())
	gof := GroupOfFrames{Clouds: []PointCloudInput{flatPlaneInput(), flatPlaneInput()}}

	frames, err := enc.EncodeGroupOfFrames(gof)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.NotEmpty(t, frames[1].Patches)
}

func TestEncodeFrame_RejectsInvalidConfiguration(t *testing.T) {
	params := smallEncoderParams()
	params.Image.SingleMapPixelInterleaving = true
	params.Image.MapCount = 2

	enc := NewEncoder(params)
	_, err := enc.EncodeFrame(flatPlaneInput())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConfigurationInvalid))
}

func TestEncodeFrame_RejectsOversizedEDDRange(t *testing.T) {
	params := smallEncoderParams()
	params.Image.EnhancedDeltaDepthCode = true
	params.Segment.SurfaceThickness = 11

	enc := NewEncoder(params)
	_, err := enc.EncodeFrame(flatPlaneInput())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEOMBitcountViolation))
}

func TestDecodeFrame_RejectsMisalignedCanvas(t *testing.T) {
	enc := NewEncoder(smallEncoderParams())
	ef, err := enc.EncodeFrame(flatPlaneInput())
	require.NoError(t, err)

	ef.Width++

	dec := NewDecoder(DefaultDecoderParameters())
	_, err = dec.DecodeFrame(ef)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedInput))
}

func TestDecodeFrame_RejectsNilInput(t *testing.T) {
	dec := NewDecoder(DefaultDecoderParameters())
	_, err := dec.DecodeFrame(nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedInput))
}
