package watermark

import "github.com/yyyoichi/aigc_watermark/internal/dwt"

// Positions lists the indexes, within the deepest diagonal band of a
// width x height plane decomposed levels times, of the coefficients that
// carry mark bits. The order is raster order over the usable rectangle and
// is shared by embedding and extraction.
func Positions(width, height, levels int) []int {
	bw, _ := dwt.BandSize(width, height, levels)
	uw, uh := dwt.UsableSize(width, height, levels)
	positions := make([]int, 0, uw*uh)
	for y := range uh {
		for x := range uw {
			positions = append(positions, y*bw+x)
		}
	}
	return positions
}
