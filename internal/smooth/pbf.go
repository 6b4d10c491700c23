package smooth

import (
	"sort"

	"github.com/vpcc-go/vpcc-core/internal/frame"
	"github.com/vpcc-go/vpcc-core/internal/imagegen"
)

// PatchBlockFilter suppresses geometry ringing near patch edges:
// PassesCount passes that rebuild a patch's internal depth map from the
// decoded occupancy and geometry image, clipping ringing artefacts to a
// windowed median.
type PatchBlockFilter struct {
	Params PatchBlockFilterParameters
}

// NewPatchBlockFilter returns a filter configured with params.
func NewPatchBlockFilter(params PatchBlockFilterParameters) *PatchBlockFilter {
	return &PatchBlockFilter{Params: params}
}

// Filter mutates geoImg in place, only touching pixels owned by some
// patch in ctx.
func (f *PatchBlockFilter) Filter(ctx *frame.Context, geoImg *imagegen.ImageGrid) {
	if f.Params.PassesCount <= 0 {
		return
	}
	threshold := int32(1) << uint(f.Params.Log2Threshold)
	half := f.Params.FilterSize / 2
	if half < 0 {
		half = 0
	}

	for pass := 0; pass < f.Params.PassesCount; pass++ {
		out := append([]uint16(nil), geoImg.Data...)
		window := make([]int32, 0, (2*half+1)*(2*half+1))
		for y := 0; y < geoImg.Height; y++ {
			for x := 0; x < geoImg.Width; x++ {
				bu, bv := x/ctx.OccupancyResolution, y/ctx.OccupancyResolution
				if ctx.OwnerAtBlock(bu, bv) == nil {
					continue
				}
				window = window[:0]
				for dy := -half; dy <= half; dy++ {
					ny := y + dy
					if ny < 0 || ny >= geoImg.Height {
						continue
					}
					for dx := -half; dx <= half; dx++ {
						nx := x + dx
						if nx < 0 || nx >= geoImg.Width {
							continue
						}
						if ctx.OwnerAtBlock(nx/ctx.OccupancyResolution, ny/ctx.OccupancyResolution) == nil {
							continue
						}
						window = append(window, int32(geoImg.At(nx, ny, 0)))
					}
				}
				if len(window) == 0 {
					continue
				}
				sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
				median := window[len(window)/2]
				v := int32(geoImg.At(x, y, 0))
				if abs32(v-median) > threshold {
					out[y*geoImg.Width+x] = uint16(median)
				}
			}
		}
		geoImg.Data = out
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
