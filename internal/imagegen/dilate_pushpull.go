package imagegen

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"golang.org/x/image/draw"
)

// DilateSmoothedPushPull fills unoccupied pixels of an 8-bit texture
// grid with a pull (weighted 2x2 down-sample, occupancy-weighted) then
// push (weighted 2x2 up-sample) pyramid pass, followed by a final
// Gaussian smoothing of the still-empty pixels. Texture grids are always 8-bit/3-channel,
// which maps cleanly onto image.RGBA, so the push step's up-sampling
// goes through golang.org/x/image/draw and the final smoothing pass
// through github.com/anthonynsimon/bild/blur; the pull step's
// occupancy-weighted 2x2 average is computed directly.
func (g *Generator) DilateSmoothedPushPull(img *ImageGrid, occ []bool) {
	levels := pullPyramid(img, occ)
	pushPyramid(img, levels)
	smoothEmptyPixels(img, occ, g.Params.PushPullSmoothIterations)
}

type pushPullLevel struct {
	rgba *image.RGBA
	occ  []bool
	w, h int
}

// pullPyramid repeatedly halves the image, each output pixel the
// occupancy-weighted average of its 2x2 parent block.
func pullPyramid(img *ImageGrid, occ []bool) []*pushPullLevel {
	base := &pushPullLevel{rgba: gridToRGBA(img), occ: occ, w: img.Width, h: img.Height}
	levels := []*pushPullLevel{base}

	cur := base
	for cur.w > 2 && cur.h > 2 {
		nw, nh := cur.w/2, cur.h/2
		next := &pushPullLevel{rgba: image.NewRGBA(image.Rect(0, 0, nw, nh)), occ: make([]bool, nw*nh), w: nw, h: nh}
		for y := 0; y < nh; y++ {
			for x := 0; x < nw; x++ {
				var rs, gs, bs, count int
				occAny := false
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						sx, sy := x*2+dx, y*2+dy
						si := sy*cur.w + sx
						if !cur.occ[si] {
							continue
						}
						r, gg, b, _ := cur.rgba.At(sx, sy).RGBA()
						rs += int(r >> 8)
						gs += int(gg >> 8)
						bs += int(b >> 8)
						count++
						occAny = true
					}
				}
				next.occ[y*nw+x] = occAny
				if count > 0 {
					next.rgba.Set(x, y, color.RGBA{R: uint8(rs / count), G: uint8(gs / count), B: uint8(bs / count), A: 255})
				}
			}
		}
		levels = append(levels, next)
		cur = next
	}
	return levels
}

// pushPyramid upsamples each level into the next-finer one's
// unoccupied pixels via bilinear scaling, finishing by writing the
// finest level back into img.
func pushPyramid(img *ImageGrid, levels []*pushPullLevel) {
	for i := len(levels) - 1; i > 0; i-- {
		coarse := levels[i]
		fine := levels[i-1]
		upsampled := image.NewRGBA(image.Rect(0, 0, fine.w, fine.h))
		draw.BiLinear.Scale(upsampled, upsampled.Bounds(), coarse.rgba, coarse.rgba.Bounds(), draw.Over, nil)
		for y := 0; y < fine.h; y++ {
			for x := 0; x < fine.w; x++ {
				if fine.occ[y*fine.w+x] {
					continue
				}
				fine.rgba.Set(x, y, upsampled.At(x, y))
			}
		}
	}

	finest := levels[0]
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, gg, b, _ := finest.rgba.At(x, y).RGBA()
			img.Set(x, y, 0, uint16(r>>8))
			img.Set(x, y, 1, uint16(gg>>8))
			img.Set(x, y, 2, uint16(b>>8))
		}
	}
}

// smoothEmptyPixels runs a small Gaussian blur pass and writes the
// blurred result back only into pixels that were never occupied.
func smoothEmptyPixels(img *ImageGrid, occ []bool, iterations int) {
	for iter := 0; iter < iterations; iter++ {
		rgba := gridToRGBA(img)
		blurred := blur.Gaussian(rgba, 1.0)
		for i, o := range occ {
			if o {
				continue
			}
			x, y := i%img.Width, i/img.Width
			r, g, b, _ := blurred.At(x, y).RGBA()
			img.Set(x, y, 0, uint16(r>>8))
			img.Set(x, y, 1, uint16(g>>8))
			img.Set(x, y, 2, uint16(b>>8))
		}
	}
}

func gridToRGBA(img *ImageGrid) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			rgba.Set(x, y, color.RGBA{
				R: uint8(img.At(x, y, 0)),
				G: uint8(img.At(x, y, 1)),
				B: uint8(img.At(x, y, 2)),
				A: 255,
			})
		}
	}
	return rgba
}
