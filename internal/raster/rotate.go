package raster

// Rotate returns a new buffer holding b turned clockwise by quarterTurns*90
// degrees. Negative turns rotate counter-clockwise. For odd turns the result
// is b.Height() wide and b.Width() tall.
func (b *Buffer) Rotate(quarterTurns int) *Buffer {
	turns := ((quarterTurns % 4) + 4) % 4
	w, h := b.width, b.height

	switch turns {
	case 1:
		// dst[x][h-1-y] = src[y][x]
		out := &Buffer{width: h, height: w, pix: make([]Pixel, len(b.pix))}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.pix[x*out.width+(h-1-y)] = b.pix[y*w+x]
			}
		}
		return out
	case 2:
		// dst[h-1-y][w-1-x] = src[y][x]
		out := &Buffer{width: w, height: h, pix: make([]Pixel, len(b.pix))}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.pix[(h-1-y)*w+(w-1-x)] = b.pix[y*w+x]
			}
		}
		return out
	case 3:
		// dst[w-1-x][y] = src[y][x]
		out := &Buffer{width: h, height: w, pix: make([]Pixel, len(b.pix))}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.pix[(w-1-x)*out.width+y] = b.pix[y*w+x]
			}
		}
		return out
	default:
		return b.Copy()
	}
}
