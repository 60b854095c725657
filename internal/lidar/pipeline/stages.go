package pipeline

import (
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/roiview/internal/lidar/colormap"
	"github.com/banshee-data/roiview/internal/lidar/roi"
	"github.com/banshee-data/roiview/internal/lidar/synthetic"
)

// Normalize writes the colour-driving scalar of each point, scaled to [0, 1]
// over the full cloud, into dst and returns the filled slice. A cloud with a
// single value maps every point to 0.
func Normalize(s *synthetic.Sample, mode colormap.Mode, dst []float32) []float32 {
	n := s.Len()
	dst = grow(dst, n)
	if n == 0 {
		return dst
	}

	source := s.Height
	if mode == colormap.ModeDepth {
		source = s.Depth
	}
	values := make([]float64, n)
	for i, v := range source {
		values[i] = float64(v)
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for i, v := range values {
		dst[i] = float32((v - lo) / span)
	}
	return dst
}

// Colorize writes one RGB triple per point into dst, growing it as needed,
// and returns the filled slice. An unknown table falls back to the default.
func Colorize(s *synthetic.Sample, sel colormap.Selection, dst []float32) []float32 {
	return paint(Normalize(s, sel.Mode, nil), sel.Table, dst)
}

// paint maps normalised scalars through the gradient for table.
func paint(scalars []float32, table colormap.Table, dst []float32) []float32 {
	dst = grow(dst, len(scalars)*3)
	g, ok := colormap.Lookup(table)
	if !ok {
		g, _ = colormap.Lookup(colormap.DefaultSelection().Table)
	}
	for i, t := range scalars {
		c := colormap.Lerp(g, float64(t))
		dst[i*3] = float32(c.R)
		dst[i*3+1] = float32(c.G)
		dst[i*3+2] = float32(c.B)
	}
	return dst
}

// Partition splits regions into valid positives and negatives.
func Partition(regions []roi.Region) (positives, negatives []roi.Region) {
	for _, r := range regions {
		if !r.Valid() {
			continue
		}
		switch r.Kind {
		case roi.KindPositive:
			positives = append(positives, r)
		case roi.KindNegative:
			negatives = append(negatives, r)
		}
	}
	return positives, negatives
}

// Included applies the inclusion and exclusion policy to one point.
// With no positives every point is provisionally included; negatives always
// apply, whether or not positives exist.
func Included(x, y, z float64, positives, negatives []roi.Region) bool {
	if len(positives) > 0 {
		inside := false
		for _, r := range positives {
			if roi.PointInRegion(r, x, y, z) {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}
	for _, r := range negatives {
		if roi.PointInRegion(r, x, y, z) {
			return false
		}
	}
	return true
}

func grow(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
