package imagegen

import "math"

type mipLevel struct {
	width, height int
	data          []float64
	occ           []bool
}

// DilateHarmonicBackgroundFill fills unoccupied pixels by building a
// mip pyramid of img, solving a Laplacian (5-point stencil) inpainting
// problem with Gauss-Seidel on each level to an absolute error
// threshold or a fixed iteration cap, and using each level's result as
// the initial guess for the next-finer level. Channels are solved independently;
// geometry samples exceed 8 bits so this works in float64 rather than
// through an image.Image/x/image/draw pipeline, which would lose that
// precision.
func (g *Generator) DilateHarmonicBackgroundFill(img *ImageGrid, occ []bool) {
	for c := 0; c < img.Channels; c++ {
		channel := make([]float64, img.Width*img.Height)
		for i := 0; i < img.Width*img.Height; i++ {
			channel[i] = float64(img.Data[i*img.Channels+c])
		}

		levels := buildMipPyramid(channel, occ, img.Width, img.Height, g.Params.HarmonicMinLevelSize)
		var guess []float64
		for i := len(levels) - 1; i >= 0; i-- {
			lvl := levels[i]
			if guess != nil {
				lvl.data = upsampleNearest(guess, levels[i+1].width, levels[i+1].height, lvl.width, lvl.height, lvl.data, lvl.occ)
			}
			gaussSeidelInpaint(lvl, g.Params.HarmonicMaxIterations, g.Params.HarmonicErrorThreshold)
			guess = lvl.data
		}

		finest := levels[0]
		for i := 0; i < img.Width*img.Height; i++ {
			if occ[i] {
				continue
			}
			img.Data[i*img.Channels+c] = uint16(math.Round(math.Max(0, finest.data[i])))
		}
	}
}

// buildMipPyramid returns levels[0] = full resolution down to the
// coarsest level whose smaller dimension is <= minSize, each built by
// 2x2 box-averaging the level above it (occupancy ORs the 4 parents).
func buildMipPyramid(data []float64, occ []bool, width, height, minSize int) []*mipLevel {
	levels := []*mipLevel{{width: width, height: height, data: append([]float64(nil), data...), occ: occ}}
	for {
		cur := levels[len(levels)-1]
		if cur.width <= minSize || cur.height <= minSize || cur.width < 2 || cur.height < 2 {
			break
		}
		nw, nh := cur.width/2, cur.height/2
		next := &mipLevel{width: nw, height: nh, data: make([]float64, nw*nh), occ: make([]bool, nw*nh)}
		for y := 0; y < nh; y++ {
			for x := 0; x < nw; x++ {
				var sum float64
				var count int
				occAny := false
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						sx, sy := x*2+dx, y*2+dy
						si := sy*cur.width + sx
						if cur.occ[si] {
							sum += cur.data[si]
							count++
							occAny = true
						}
					}
				}
				next.occ[y*nw+x] = occAny
				if count > 0 {
					next.data[y*nw+x] = sum / float64(count)
				}
			}
		}
		levels = append(levels, next)
	}
	return levels
}

// upsampleNearest writes coarse-level values into the unoccupied
// pixels of a fine-level buffer, nearest-neighbour, as a Gauss-Seidel
// initial guess.
func upsampleNearest(coarse []float64, cw, ch, fw, fh int, fineData []float64, fineOcc []bool) []float64 {
	out := append([]float64(nil), fineData...)
	for y := 0; y < fh; y++ {
		cy := y * ch / fh
		if cy >= ch {
			cy = ch - 1
		}
		for x := 0; x < fw; x++ {
			if fineOcc[y*fw+x] {
				continue
			}
			cx := x * cw / fw
			if cx >= cw {
				cx = cw - 1
			}
			out[y*fw+x] = coarse[cy*cw+cx]
		}
	}
	return out
}

// gaussSeidelInpaint solves, for every unoccupied pixel, the discrete
// Laplace equation (value equals the average of its 4 neighbours) by
// Gauss-Seidel relaxation, stopping at maxIterations or once the max
// per-iteration update falls below errThreshold.
func gaussSeidelInpaint(lvl *mipLevel, maxIterations int, errThreshold float64) {
	w, h := lvl.width, lvl.height
	for iter := 0; iter < maxIterations; iter++ {
		maxDelta := 0.0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if lvl.occ[i] {
					continue
				}
				sum := 0.0
				count := 0
				if x > 0 {
					sum += lvl.data[i-1]
					count++
				}
				if x < w-1 {
					sum += lvl.data[i+1]
					count++
				}
				if y > 0 {
					sum += lvl.data[i-w]
					count++
				}
				if y < h-1 {
					sum += lvl.data[i+w]
					count++
				}
				if count == 0 {
					continue
				}
				next := sum / float64(count)
				delta := next - lvl.data[i]
				if delta < 0 {
					delta = -delta
				}
				if delta > maxDelta {
					maxDelta = delta
				}
				lvl.data[i] = next
			}
		}
		if maxDelta < errThreshold {
			break
		}
	}
}
