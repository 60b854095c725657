package synthetic

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is a point cloud stored as parallel arrays. Height mirrors Y and
// Depth mirrors Z; Distance is the range from the origin. Size and Alpha are
// per-point display hints.
type Sample struct {
	X        []float32
	Y        []float32
	Z        []float32
	Height   []float32
	Depth    []float32
	Distance []float32
	Size     []float32
	Alpha    []float32
}

func newSample(n int) *Sample {
	return &Sample{
		X:        make([]float32, n),
		Y:        make([]float32, n),
		Z:        make([]float32, n),
		Height:   make([]float32, n),
		Depth:    make([]float32, n),
		Distance: make([]float32, n),
		Size:     make([]float32, n),
		Alpha:    make([]float32, n),
	}
}

// FromPoints builds a Sample from known coordinates. Display hints are
// derived the same way as for generated clouds, without size jitter.
func FromPoints(points []r3.Vec) *Sample {
	s := newSample(len(points))
	for i, p := range points {
		s.set(i, p)
	}
	s.derive(nil)
	return s
}

// Len returns the number of points.
func (s *Sample) Len() int {
	if s == nil {
		return 0
	}
	return len(s.X)
}

// At returns point i.
func (s *Sample) At(i int) r3.Vec {
	return r3.Vec{X: float64(s.X[i]), Y: float64(s.Y[i]), Z: float64(s.Z[i])}
}

func (s *Sample) set(i int, p r3.Vec) {
	s.X[i] = float32(p.X)
	s.Y[i] = float32(p.Y)
	s.Z[i] = float32(p.Z)
	s.Height[i] = float32(p.Y)
	s.Depth[i] = float32(p.Z)
	s.Distance[i] = float32(r3.Norm(p))
}

// derive fills Size and Alpha from normalised height, depth and distance.
// jitter supplies the random size term; nil means no jitter.
func (s *Sample) derive(jitter func() float64) {
	n := s.Len()
	if n == 0 {
		return
	}
	hMin, hMax := bounds(s.Height)
	dMin, dMax := bounds(s.Depth)
	_, maxDist := bounds(s.Distance)
	hRange := nonZero(hMax - hMin)
	dRange := nonZero(dMax - dMin)

	for i := 0; i < n; i++ {
		hNorm := (float64(s.Height[i]) - hMin) / hRange
		dNorm := (float64(s.Depth[i]) - dMin) / dRange
		distNorm := 0.0
		if maxDist > 0 {
			distNorm = float64(s.Distance[i]) / maxDist
		}
		j := 0.0
		if jitter != nil {
			j = jitter()
		}
		s.Size[i] = float32(1.2 + hNorm*1.8 + (1-distNorm)*1.2 + j*0.6)
		alpha := 0.25 + (1-distNorm)*0.55 + hNorm*0.2 + dNorm*0.1
		s.Alpha[i] = float32(math.Min(1, math.Max(0.18, alpha)))
	}
}

func bounds(v []float32) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, float64(x))
		hi = math.Max(hi, float64(x))
	}
	return lo, hi
}

func nonZero(r float64) float64 {
	if r == 0 {
		return 1
	}
	return r
}
