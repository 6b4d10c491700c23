package imagegen

// Dilate fills every unoccupied pixel of img by BFS outward from
// occupied pixels, averaging the occupied 4-neighbours found so far at
// each wavefront step. occ itself is left untouched.
func (g *Generator) Dilate(img *ImageGrid, occ []bool) {
	filled := append([]bool(nil), occ...)
	frontier := make([]int, 0, len(occ))
	for i, o := range occ {
		if o {
			frontier = append(frontier, i)
		}
	}

	neighbours := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for len(frontier) > 0 {
		var next []int
		seenThisWave := make(map[int]bool)
		for _, idx := range frontier {
			x, y := idx%img.Width, idx/img.Width
			for _, d := range neighbours {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= img.Width || ny >= img.Height {
					continue
				}
				ni := ny*img.Width + nx
				if filled[ni] || seenThisWave[ni] {
					continue
				}
				sum := make([]int, img.Channels)
				count := 0
				for _, d2 := range neighbours {
					mx, my := nx+d2[0], ny+d2[1]
					if mx < 0 || my < 0 || mx >= img.Width || my >= img.Height {
						continue
					}
					mi := my*img.Width + mx
					if !filled[mi] {
						continue
					}
					for c := 0; c < img.Channels; c++ {
						sum[c] += int(img.At(mx, my, c))
					}
					count++
				}
				if count == 0 {
					continue
				}
				for c := 0; c < img.Channels; c++ {
					img.Set(nx, ny, c, uint16(sum[c]/count))
				}
				seenThisWave[ni] = true
				next = append(next, ni)
			}
		}
		for _, ni := range next {
			filled[ni] = true
		}
		frontier = next
	}
}

// GroupDilate replaces, for every pixel unoccupied in both a and b,
// both grids' value by their pixelwise average. a and b must share dimensions and channel count.
func (g *Generator) GroupDilate(a, b *ImageGrid, occA, occB []bool) {
	for i := range a.Data {
		px := i / a.Channels
		if occA[px] || occB[px] {
			continue
		}
		avg := uint16((int(a.Data[i]) + int(b.Data[i])) / 2)
		a.Data[i] = avg
		b.Data[i] = avg
	}
}
