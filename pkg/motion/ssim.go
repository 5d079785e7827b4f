package motion

import "image"

const (
	winRadius = 3 // 7x7 window
	dataRange = 255.0
)

var (
	c1 = (0.01 * dataRange) * (0.01 * dataRange)
	c2 = (0.03 * dataRange) * (0.03 * dataRange)
)

// ssimScratch keeps the summed-area tables between calls.
type ssimScratch struct {
	sx, sy, sxx, syy, sxy []int64
}

func (s *ssimScratch) grow(n int) {
	if cap(s.sx) < n {
		s.sx = make([]int64, n)
		s.sy = make([]int64, n)
		s.sxx = make([]int64, n)
		s.syy = make([]int64, n)
		s.sxy = make([]int64, n)
		return
	}
	s.sx = s.sx[:n]
	s.sy = s.sy[:n]
	s.sxx = s.sxx[:n]
	s.syy = s.syy[:n]
	s.sxy = s.sxy[:n]
}

// compute returns the mean SSIM of a and b together with the number of
// pixels whose difference (1-S)*255 reaches diffThreshold. a and b must have
// the same size.
//
// The mean is taken over the interior, leaving out a border of winRadius
// pixels, unless the image is too small to have one.
func (s *ssimScratch) compute(a, b *image.Gray, diffThreshold uint8) (score float64, changed, total int) {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	if w == 0 || h == 0 {
		return 1, 0, 0
	}

	stride := w + 1
	s.grow(stride * (h + 1))
	for i := 0; i < stride; i++ {
		s.sx[i], s.sy[i], s.sxx[i], s.syy[i], s.sxy[i] = 0, 0, 0, 0, 0
	}

	for y := 0; y < h; y++ {
		var rx, ry, rxx, ryy, rxy int64
		rowA := a.Pix[y*a.Stride : y*a.Stride+w]
		rowB := b.Pix[y*b.Stride : y*b.Stride+w]
		above := y * stride
		cur := (y + 1) * stride
		s.sx[cur], s.sy[cur], s.sxx[cur], s.syy[cur], s.sxy[cur] = 0, 0, 0, 0, 0
		for x := 0; x < w; x++ {
			px, py := int64(rowA[x]), int64(rowB[x])
			rx += px
			ry += py
			rxx += px * px
			ryy += py * py
			rxy += px * py
			i := cur + x + 1
			j := above + x + 1
			s.sx[i] = s.sx[j] + rx
			s.sy[i] = s.sy[j] + ry
			s.sxx[i] = s.sxx[j] + rxx
			s.syy[i] = s.syy[j] + ryy
			s.sxy[i] = s.sxy[j] + rxy
		}
	}

	interior := w > 2*winRadius && h > 2*winRadius
	var sum float64
	var counted int

	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-winRadius), min(h, y+winRadius+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-winRadius), min(w, x+winRadius+1)
			n := float64((x1 - x0) * (y1 - y0))

			tl, tr := y0*stride+x0, y0*stride+x1
			bl, br := y1*stride+x0, y1*stride+x1
			area := func(t []int64) float64 {
				return float64(t[br] - t[tr] - t[bl] + t[tl])
			}

			ux := area(s.sx) / n
			uy := area(s.sy) / n
			covNorm := 1.0
			if n > 1 {
				covNorm = n / (n - 1)
			}
			vx := covNorm * (area(s.sxx)/n - ux*ux)
			vy := covNorm * (area(s.syy)/n - uy*uy)
			vxy := covNorm * (area(s.sxy)/n - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			ssim := num / den

			diff := (1 - ssim) * dataRange
			if diff >= float64(diffThreshold) {
				changed++
			}

			if !interior || (x >= winRadius && x < w-winRadius && y >= winRadius && y < h-winRadius) {
				sum += ssim
				counted++
			}
		}
	}

	score = sum / float64(counted)
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, changed, w * h
}
