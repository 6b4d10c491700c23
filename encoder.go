package vpcc

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/framedesc"
	"github.com/vpcc-go/vpcc-core/internal/geom"
	"github.com/vpcc-go/vpcc-core/internal/imagegen"
	"github.com/vpcc-go/vpcc-core/internal/pack"
	"github.com/vpcc-go/vpcc-core/internal/patch"
	"github.com/vpcc-go/vpcc-core/internal/plr"
	"github.com/vpcc-go/vpcc-core/internal/raweom"
	"github.com/vpcc-go/vpcc-core/internal/segment"
	"github.com/vpcc-go/vpcc-core/internal/videocodec"
)

// EncodedFrame is one frame's encoder output: the video-codec-compressed
// image grids, the bit-packed patch-frame descriptor, and
// the RAW points the segmenter could not fit onto any patch.
// Patches is carried alongside PatchRecords rather than only the byte
// stream: the INTRA record carries no spatial patch size
// (sizeU0/sizeV0), and this package stops short of the entropy-coded
// bitstream syntax a full decoder would use to recover it from the
// occupancy data alone. PatchRecords is still produced and is fully
// round-trippable through internal/framedesc for every field the
// descriptor does define; Patches is what DecodeFrame actually
// reconstructs from.
type EncodedFrame struct {
	Width, Height       int
	OccupancyResolution int
	MapCount            int

	Occupancy []byte
	GeoD0     []byte
	GeoD1     []byte // nil under single-stream interleaved mode
	Texture   []byte

	PatchRecords []byte
	ASPS         framedesc.ASPS
	Patches      []*patch.Patch

	// RAW points are carried inside the geometry/texture images, in a
	// region appended below the last patch row; only the region origin
	// and point count travel as metadata.
	NumRawPoints int
	RawStartRow  int
}

// Encoder runs the full per-frame encode pipeline: segmentation,
// packing, image generation, optional PLR search, and patch-frame
// descriptor assembly.
type Encoder struct {
	Params EncoderParameters
	Codec  videocodec.Codec

	prevPatches []*patch.Patch
	gpa         *pack.GPAState
}

// NewEncoder returns an Encoder configured with params, driving the
// video codec boundary through a no-op passthrough codec unless Codec is
// replaced.
func NewEncoder(params EncoderParameters) *Encoder {
	return &Encoder{Params: params, Codec: videocodec.NopCodec{}}
}

// EncodeFrame encodes one frame of input, carrying forward temporal
// packing state (prevPatches) from the previous call.
func (e *Encoder) EncodeFrame(input PointCloudInput) (*EncodedFrame, error) {
	if err := e.Params.Validate(); err != nil {
		return nil, err
	}
	pc := toPointCloud(input)

	seg := segment.New(e.Params.Segment)
	result := seg.Segment(pc)
	if err := checkDepthRange(result.Patches, e.Params.Image.GeometryBitDepth3D); err != nil {
		return nil, err
	}

	pk := pack.New(e.Params.Pack)
	var width, height int
	if e.Params.Pack.GlobalPatchAllocation == pack.GPATracks {
		if e.gpa == nil {
			e.gpa = pack.NewGPAState()
		}
		width, height = pk.PackGPA(result.Patches, e.gpa)
	} else {
		var prev []*patch.Patch
		if e.Params.Pack.GlobalPatchAllocation == pack.GPAMatched {
			prev = e.prevPatches
		}
		width, height = pk.Pack(result.Patches, prev)
	}

	var eomPatch *raweom.EOMPatch
	var eomColors []geom.Color
	eomStart := 0
	if e.Params.Image.EnhancedDeltaDepthCode {
		assoc, counts, colors := collectEOMPoints(result.Patches)
		if len(assoc) > 0 {
			eomPatch = raweom.NewEOMPatch(assoc, counts)
			eomColors = colors
			eomStart = height
			o := e.Params.Pack.OccupancyResolution
			height += ((eomPatch.Height + o - 1) / o) * o
		}
	}

	var rawPatch *raweom.RawPatch
	rawStart := 0
	if len(result.RawIdx) > 0 {
		rawPoints := make([]geom.Point3D, len(result.RawIdx))
		rawColors := make([]geom.Color, len(result.RawIdx))
		for i, idx := range result.RawIdx {
			rawPoints[i] = pc.Points[idx]
			rawColors[i] = pc.Colors[idx]
		}
		rawPatch = raweom.NewRawPatch(rawPoints, rawColors, e.Params.Image.GeometryBitDepth3D)
		rawStart = height
		height += rawRegionHeight(len(rawPoints), width, e.Params.Pack.OccupancyResolution)
	}

	ctx := frame.NewContext(result.Patches, width, height, e.Params.Pack.OccupancyResolution, e.Params.Image.MapCount)
	ctx.BuildBlockToPatch()

	gen := imagegen.New(e.Params.Image)
	mask := ctx.PixelOccupancyMask()
	occImg := gen.GenerateOccupancy(ctx, mask)

	var geoD0Img, geoD1Img *imagegen.ImageGrid
	if e.Params.Image.SingleMapPixelInterleaving {
		geoD0Img = gen.GenerateGeometryInterleaved(ctx)
	} else {
		geoD0Img, geoD1Img = gen.GenerateGeometry(ctx)
	}

	// Occupancy-precision upsampling can turn on pixels no point
	// projected to; pick their depth by proximity to the source cloud
	// rather than leaving zeros.
	geoOcc := mask
	if P := e.Params.Image.OccupancyPrecision; P > 1 {
		full := imagegen.UpsampleOccupancy(occImg, P, width, height)
		tree := geom.Build(pc.Points)
		gen.Pad3DGeometry(ctx, geoD0Img, full, tree, pc.Points)
		if geoD1Img != nil {
			gen.Pad3DGeometry(ctx, geoD1Img, full, tree, pc.Points)
		}
		geoOcc = full
	}

	gen.DilateImage(geoD0Img, geoOcc)
	if geoD1Img != nil {
		gen.DilateImage(geoD1Img, geoOcc)
		if e.Params.Image.GroupDilation {
			gen.GroupDilate(geoD0Img, geoD1Img, geoOcc, geoOcc)
		}
	}

	texImg := gen.GenerateTexture(ctx, patchTexturePixels(ctx, result.Patches))
	gen.DilateImage(texImg, mask)
	texImg = gen.ChromaSubsamplePatch(ctx, texImg)

	if eomPatch != nil {
		writeEOMRegion(texImg, eomPatch, eomColors, eomStart)
	}
	if rawPatch != nil {
		writeRawRegion(geoD0Img, texImg, rawPatch, rawStart, width)
	}

	if e.Params.PointLocalReconstruction {
		e.searchPLR(result.Patches)
	}

	asps := framedesc.DefaultASPS()
	asps.PointLocalReconstructionEnabledFlag = e.Params.PointLocalReconstruction
	asps.AdditionalProjectionPlanePresentFlag = hasAdditionalPlane(result.Patches)
	records := framedesc.BuildFrameRecords(result.Patches, e.prevPatches, asps)
	if eomPatch != nil {
		o := e.Params.Pack.OccupancyResolution
		records = append(records, framedesc.PatchRecord{
			Tag: framedesc.PatchEOM,
			Eom: &framedesc.EomPatchRecord{
				U0:                0,
				V0:                eomStart / o,
				SizeU:             eomPatch.Width,
				SizeV:             eomPatch.Height,
				AssocPatches:      eomPatch.AssocPatches,
				EomPointsPerAssoc: eomPatch.PointsPerAssoc,
			},
		})
	}
	if rawPatch != nil {
		o := e.Params.Pack.OccupancyResolution
		records = append(records, framedesc.PatchRecord{
			Tag: framedesc.PatchRaw,
			Raw: &framedesc.RawPatchRecord{
				U0:           0,
				V0:           rawStart / o,
				SizeU0:       width / o,
				SizeV0:       (height - rawStart) / o,
				NumRawPoints: len(rawPatch.Points),
			},
		})
	}

	patchBytes, err := framedesc.WritePatchFrame(records, asps)
	if err != nil {
		return nil, fmt.Errorf("vpcc: encode patch frame: %w", err)
	}

	occBytes, err := e.Codec.EncodeFrame(occImg)
	if err != nil {
		return nil, fmt.Errorf("vpcc: encode occupancy image: %w", err)
	}
	d0Bytes, err := e.Codec.EncodeFrame(geoD0Img)
	if err != nil {
		return nil, fmt.Errorf("vpcc: encode geometry image: %w", err)
	}
	var d1Bytes []byte
	if geoD1Img != nil {
		d1Bytes, err = e.Codec.EncodeFrame(geoD1Img)
		if err != nil {
			return nil, fmt.Errorf("vpcc: encode geometry image: %w", err)
		}
	}
	texBytes, err := e.Codec.EncodeFrame(texImg)
	if err != nil {
		return nil, fmt.Errorf("vpcc: encode texture image: %w", err)
	}

	// The caller owns ef.Patches; temporal matching on the next frame
	// must not read through anything it does to them, so the reference
	// copy is a deep clone (depth layers and occupancy slices included).
	e.prevPatches = clonePatches(result.Patches)

	numRaw := 0
	if rawPatch != nil {
		numRaw = len(rawPatch.Points)
	}

	return &EncodedFrame{
		Width:               width,
		Height:              height,
		OccupancyResolution: e.Params.Pack.OccupancyResolution,
		MapCount:            e.Params.Image.MapCount,
		Occupancy:           occBytes,
		GeoD0:               d0Bytes,
		GeoD1:               d1Bytes,
		Texture:             texBytes,
		PatchRecords:        patchBytes,
		ASPS:                asps,
		Patches:             result.Patches,
		NumRawPoints:        numRaw,
		RawStartRow:         rawStart,
	}, nil
}

// clonePatches deep-copies placed patches for the reference-frame list.
func clonePatches(patches []*patch.Patch) []*patch.Patch {
	out := make([]*patch.Patch, len(patches))
	for i, p := range patches {
		c := new(patch.Patch)
		if err := copier.CopyWithOption(c, p, copier.Option{DeepCopy: true}); err != nil {
			*c = *p
		}
		out[i] = c
	}
	return out
}

// checkDepthRange rejects a segmentation whose per-pixel depth offsets
// would not fit the geometry image's bit depth.
func checkDepthRange(patches []*patch.Patch, b3d int) error {
	maxDepth := int32(1)<<uint(b3d) - 1
	for i, p := range patches {
		for pos, occ := range p.PixelOccupancy {
			if !occ {
				continue
			}
			if p.D0Layer[pos] > maxDepth || p.D1Layer[pos] > maxDepth {
				return fmt.Errorf("%w: patch %d depth exceeds %d", ErrCanvasOverflow, i, maxDepth)
			}
		}
	}
	return nil
}

// collectEOMPoints gathers, per patch, the colours of every
// enhanced-delta-depth point (each set EDD bit below the D1 bit), in
// patch raster order. Returns the associated patch indices, per-patch
// counts, and the flattened colour list.
func collectEOMPoints(patches []*patch.Patch) (assoc []int, counts []int, colors []geom.Color) {
	for pi, p := range patches {
		n := 0
		for pos, occ := range p.PixelOccupancy {
			if !occ || pos >= len(p.EDD) {
				continue
			}
			d1pos := int(p.D1Layer[pos]-p.D0Layer[pos]) - 1
			code := p.EDD[pos]
			for i := 0; i < 10; i++ {
				if code&(1<<uint(i)) == 0 || i == d1pos {
					continue
				}
				colors = append(colors, p.Colors[pos])
				n++
			}
		}
		if n > 0 {
			assoc = append(assoc, pi)
			counts = append(counts, n)
		}
	}
	return
}

// writeEOMRegion rasterizes the EOM patch's Morton-block colour buffer
// into the texture image at its reserved rows.
func writeEOMRegion(tex *imagegen.ImageGrid, ep *raweom.EOMPatch, colors []geom.Color, startRow int) {
	buf := ep.PackTexture(colors)
	for y := 0; y < ep.Height; y++ {
		ty := startRow + y
		if ty >= tex.Height {
			break
		}
		for x := 0; x < ep.Width && x < tex.Width; x++ {
			base := (y*ep.Width + x) * 3
			tex.Set(x, ty, 0, uint16(buf[base]))
			tex.Set(x, ty, 1, uint16(buf[base+1]))
			tex.Set(x, ty, 2, uint16(buf[base+2]))
		}
	}
}

// rawRegionHeight is the canvas height consumed by n RAW points packed
// three rows (x, y, z) per raw row of width columns, rounded up to the
// occupancy block size.
func rawRegionHeight(n, width, o int) int {
	rows := (n + width - 1) / width
	px := 3 * rows
	return ((px + o - 1) / o) * o
}

// writeRawRegion packs rp's Morton-sorted points into the geometry
// image below the patch rows (three consecutive rows per raw row:
// x, then y, then z) and their colours into the texture image on the
// x row.
func writeRawRegion(geo, tex *imagegen.ImageGrid, rp *raweom.RawPatch, startRow, width int) {
	rows := rp.PackUnified(width)
	rh := len(rows[0]) / width
	for ry := 0; ry < rh; ry++ {
		for x := 0; x < width; x++ {
			i := ry*width + x
			for c := 0; c < 3; c++ {
				y := startRow + 3*ry + c
				if y >= geo.Height {
					continue
				}
				geo.Set(x, y, 0, uint16(rows[c][i]))
			}
			if i < len(rp.Colors) {
				y := startRow + 3*ry
				if y < tex.Height {
					tex.Set(x, y, 0, uint16(rp.Colors[i].R))
					tex.Set(x, y, 1, uint16(rp.Colors[i].G))
					tex.Set(x, y, 2, uint16(rp.Colors[i].B))
				}
			}
		}
	}
}

// searchPLR runs the PLR searcher over every patch, using each patch's
// own D0 reconstruction as its source point set.
func (e *Encoder) searchPLR(patches []*patch.Patch) {
	searcher := plr.New(e.Params.PLR)
	sourceByPatch := make([][]geom.Point3D, len(patches))
	colorsByPatch := make([][]geom.Color, len(patches))
	for i, p := range patches {
		sourceByPatch[i] = patchSourcePoints(p, e.Params.Image.GeometryBitDepth3D)
		colorsByPatch[i] = p.Colors
	}
	searcher.SearchAll(patches, sourceByPatch, colorsByPatch)
}

func toPointCloud(input PointCloudInput) *geom.PointCloud {
	pc := geom.NewPointCloud(len(input.Points))
	for i, p := range input.Points {
		var c geom.Color
		if i < len(input.Colors) {
			c = geom.Color{R: input.Colors[i].R, G: input.Colors[i].G, B: input.Colors[i].B}
		}
		pc.Add(geom.Point3D{X: p.X, Y: p.Y, Z: p.Z}, c, geom.PointMeta{})
	}
	return pc
}

// patchSourcePoints reconstructs the D0 point for every occupied pixel
// of p, the patch's own lossless reference set for PLR scoring.
func patchSourcePoints(p *patch.Patch, b3d int) []geom.Point3D {
	pts := make([]geom.Point3D, 0, p.Width*p.Height)
	for v := 0; v < p.Height; v++ {
		for u := 0; u < p.Width; u++ {
			pos := v*p.Width + u
			if pos >= len(p.PixelOccupancy) || !p.PixelOccupancy[pos] {
				continue
			}
			pts = append(pts, p.GeneratePoint(int32(u), int32(v), p.D0Layer[pos], b3d))
		}
	}
	return pts
}

// patchTexturePixels maps each patch's source-point colours onto their
// canvas pixel, the encoder-side counterpart of GenerateTexture's
// reconstructed-point input.
func patchTexturePixels(ctx *frame.Context, patches []*patch.Patch) []imagegen.PixelColor {
	var out []imagegen.PixelColor
	for _, p := range patches {
		for v := 0; v < p.Height; v++ {
			for u := 0; u < p.Width; u++ {
				pos := v*p.Width + u
				if pos >= len(p.PixelOccupancy) || !p.PixelOccupancy[pos] {
					continue
				}
				x, y, _ := p.Patch2Canvas(u, v, ctx.Width, ctx.OccupancyResolution)
				if x < 0 || y < 0 || x >= ctx.Width || y >= ctx.Height {
					continue
				}
				out = append(out, imagegen.PixelColor{X: x, Y: y, MapIndex: 0, Color: p.Colors[pos]})
			}
		}
	}
	return out
}

// EncodeGroupOfFrames encodes every cloud in gof in sequence, carrying
// inter-frame temporal packing state from each frame into the next.
func (e *Encoder) EncodeGroupOfFrames(gof GroupOfFrames) ([]*EncodedFrame, error) {
	frames := make([]*EncodedFrame, len(gof.Clouds))
	for i, cloud := range gof.Clouds {
		ef, err := e.EncodeFrame(cloud)
		if err != nil {
			return nil, fmt.Errorf("vpcc: encode frame %d: %w", i, err)
		}
		frames[i] = ef
	}
	return frames, nil
}

func hasAdditionalPlane(patches []*patch.Patch) bool {
	for _, p := range patches {
		if p.AxisOfAdditionalPlane != 0 {
			return true
		}
	}
	return false
}
