package vpcc

import (
	"fmt"

	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/imagegen"
	"github.com/vpcc-go/vpcc-core/internal/raweom"
	"github.com/vpcc-go/vpcc-core/internal/recon"
	"github.com/vpcc-go/vpcc-core/internal/smooth"
	"github.com/vpcc-go/vpcc-core/internal/videocodec"
)

// Decoder runs the full per-frame decode pipeline: image decoding,
// patch-guided reconstruction, RAW-point reinjection, and the
// post-reconstruction smoothing filters.
type Decoder struct {
	Params DecoderParameters
	Codec  videocodec.Codec
}

// NewDecoder returns a Decoder configured with params.
func NewDecoder(params DecoderParameters) *Decoder {
	return &Decoder{Params: params, Codec: videocodec.NopCodec{}}
}

// DecodeFrame reconstructs a coloured point cloud from ef.
func (d *Decoder) DecodeFrame(ef *EncodedFrame) (*geom.PointCloud, error) {
	if ef == nil {
		return nil, fmt.Errorf("vpcc: %w: nil encoded frame", ErrMalformedInput)
	}
	if err := validateFrame(ef); err != nil {
		return nil, err
	}

	ctx := frame.NewContext(ef.Patches, ef.Width, ef.Height, ef.OccupancyResolution, ef.MapCount)
	ctx.BuildBlockToPatch()

	occImg, err := d.Codec.DecodeFrame(ef.Occupancy)
	if err != nil {
		return nil, fmt.Errorf("vpcc: decode occupancy image: %w", err)
	}
	geoD0Img, err := d.Codec.DecodeFrame(ef.GeoD0)
	if err != nil {
		return nil, fmt.Errorf("vpcc: decode geometry image: %w", err)
	}
	texImg, err := d.Codec.DecodeFrame(ef.Texture)
	if err != nil {
		return nil, fmt.Errorf("vpcc: decode texture image: %w", err)
	}

	if err := checkGeometryRange(geoD0Img, d.Params.Recon.GeometryBitDepth3D); err != nil {
		return nil, err
	}

	if d.Params.PatchBlockFiltering {
		smooth.NewPatchBlockFilter(d.Params.PatchBlockFilter).Filter(ctx, geoD0Img)
	}

	recImgs := recon.Images{Occupancy: occImg, GeoD0: geoD0Img, Texture: texImg}
	if len(ef.GeoD1) > 0 {
		geoD1Img, err := d.Codec.DecodeFrame(ef.GeoD1)
		if err != nil {
			return nil, fmt.Errorf("vpcc: decode geometry image: %w", err)
		}
		recImgs.GeoD1 = geoD1Img
	}

	r := recon.New(d.Params.Recon)
	pc, _, err := r.ReconstructFrame(ctx, recImgs)
	if err != nil {
		return nil, fmt.Errorf("vpcc: reconstruct frame: %w", err)
	}

	if ef.NumRawPoints > 0 {
		injectRawPoints(pc, geoD0Img, texImg, ef.RawStartRow, ef.NumRawPoints)
	}

	d.applySmoothing(pc)

	return pc, nil
}

// validateFrame checks the frame header against its own patch list
// before any image is decoded.
func validateFrame(ef *EncodedFrame) error {
	o := ef.OccupancyResolution
	if o <= 0 || ef.Width%o != 0 || ef.Height%o != 0 {
		return fmt.Errorf("vpcc: %w: canvas %dx%d not a multiple of occupancy resolution %d",
			ErrMalformedInput, ef.Width, ef.Height, o)
	}
	bw, bh := ef.Width/o, ef.Height/o
	for i, p := range ef.Patches {
		fu, fv := p.FootprintBlocks()
		if p.U0 < 0 || p.V0 < 0 || p.U0+fu > bw || p.V0+fv > bh {
			return fmt.Errorf("vpcc: %w: patch %d footprint outside canvas", ErrMalformedInput, i)
		}
	}
	return nil
}

// checkGeometryRange rejects decoded geometry samples above the depth
// the configured bit depth allows.
func checkGeometryRange(geo *imagegen.ImageGrid, b3d int) error {
	if geo == nil {
		return nil
	}
	maxDepth := 1<<uint(b3d) - 1
	for _, s := range geo.Data {
		if int(s) > maxDepth {
			return fmt.Errorf("vpcc: %w: geometry sample %d exceeds %d", ErrCanvasOverflow, s, maxDepth)
		}
	}
	return nil
}

// injectRawPoints reads the RAW region back out of the decoded
// geometry/texture images (the inverse of the encoder's packing: three
// consecutive geometry rows per raw row carry x, y, z, and the colour
// sits on the x row) and appends the points to pc.
func injectRawPoints(pc *geom.PointCloud, geo, tex *imagegen.ImageGrid, startRow, n int) {
	if geo == nil {
		return
	}
	width := geo.Width
	rh := (n + width - 1) / width
	var rows [3][]int32
	for c := 0; c < 3; c++ {
		rows[c] = make([]int32, rh*width)
	}
	for ry := 0; ry < rh; ry++ {
		for x := 0; x < width; x++ {
			for c := 0; c < 3; c++ {
				y := startRow + 3*ry + c
				if y >= geo.Height {
					continue
				}
				rows[c][ry*width+x] = int32(geo.At(x, y, 0))
			}
		}
	}
	points := raweom.UnpackUnified(rows, n)
	for i, p := range points {
		var c geom.Color
		x, y := i%width, startRow+3*(i/width)
		if tex != nil && y < tex.Height {
			c = geom.Color{R: uint8(tex.At(x, y, 0)), G: uint8(tex.At(x, y, 1)), B: uint8(tex.At(x, y, 2))}
		}
		pc.Add(p, c, geom.PointMeta{PatchIndex: -1, Kind: geom.KindRAW})
	}
}

// applySmoothing runs the configured geometry/colour smoothers on the
// already-reconstructed cloud; the patch-block filter runs earlier,
// directly on the decoded geometry image, before reconstruction reads
// it.
func (d *Decoder) applySmoothing(pc *geom.PointCloud) {
	switch d.Params.GeometrySmoothing {
	case GeometrySmoothingGrid:
		smooth.NewGridGeometrySmoother(d.Params.Geometry).Smooth(pc)
	case GeometrySmoothingKdTree:
		tree := geom.Build(pc.Points)
		smooth.NewKdTreeGeometrySmoother(d.Params.Geometry).Smooth(pc, tree)
	}
	if d.Params.ColorSmoothing {
		smooth.NewColorSmoother(d.Params.Color).Smooth(pc)
	}
}
