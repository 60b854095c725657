package pipeline

import (
	"github.com/banshee-data/roiview/internal/lidar/colormap"
	"github.com/banshee-data/roiview/internal/lidar/roi"
	"github.com/banshee-data/roiview/internal/lidar/synthetic"
)

// Subset is the filtered, colourised point buffer. Only the first Count
// entries of each array are meaningful; the arrays are reused between runs.
type Subset struct {
	Positions []float32 // xyz interleaved
	Colors    []float32 // rgb interleaved, components in [0, 1]
	Sizes     []float32
	Alphas    []float32
	Scalars   []float32 // colour scalar in [0, 1]
	Count     int
}

// Active returns the prefix slices holding the Count surviving points.
func (s *Subset) Active() (positions, colors, sizes, alphas []float32) {
	if s == nil {
		return nil, nil, nil, nil
	}
	n := s.Count
	return s.Positions[:n*3], s.Colors[:n*3], s.Sizes[:n], s.Alphas[:n]
}

// ActiveScalars returns the colour scalars of the Count surviving points.
func (s *Subset) ActiveScalars() []float32 {
	if s == nil {
		return nil
	}
	return s.Scalars[:s.Count]
}

// Pipeline recomputes the Subset for a static Sample. Colours are cached per
// selection so a region change only reruns the filter.
//
// Pipeline is not safe for concurrent use.
type Pipeline struct {
	sample *synthetic.Sample

	sel      colormap.Selection
	scalars  []float32
	colors   []float32
	colorsOK bool
	subset   Subset
}

// New returns a Pipeline over s with buffers sized for the full cloud.
func New(s *synthetic.Sample, sel colormap.Selection) *Pipeline {
	n := s.Len()
	return &Pipeline{
		sample: s,
		sel:    sel,
		subset: Subset{
			Positions: make([]float32, n*3),
			Colors:    make([]float32, n*3),
			Sizes:     make([]float32, n),
			Alphas:    make([]float32, n),
			Scalars:   make([]float32, n),
		},
	}
}

// Sample returns the source cloud.
func (p *Pipeline) Sample() *synthetic.Sample {
	return p.sample
}

// Selection returns the active colour mapping.
func (p *Pipeline) Selection() colormap.Selection {
	return p.sel
}

// SetSelection changes the colour mapping. Colours are recomputed on the next
// Run only if the selection actually changed.
func (p *Pipeline) SetSelection(sel colormap.Selection) {
	if sel == p.sel {
		return
	}
	p.sel = sel
	p.colorsOK = false
}

// Colors returns the per-point colours of the full cloud for the active
// selection.
func (p *Pipeline) Colors() []float32 {
	p.refresh()
	return p.colors
}

// Scalars returns the normalised colour scalar of every point in the full
// cloud for the active mode.
func (p *Pipeline) Scalars() []float32 {
	p.refresh()
	return p.scalars
}

func (p *Pipeline) refresh() {
	if p.colorsOK {
		return
	}
	p.scalars = Normalize(p.sample, p.sel.Mode, p.scalars)
	p.colors = paint(p.scalars, p.sel.Table, p.colors)
	p.colorsOK = true
}

// Run filters the cloud against regions and returns the compacted subset.
// The returned Subset is owned by the Pipeline and overwritten by the next
// Run.
func (p *Pipeline) Run(regions []roi.Region) *Subset {
	colors := p.Colors()
	scalars := p.Scalars()
	positives, negatives := Partition(regions)
	s := p.sample
	out := &p.subset

	n := 0
	for i := 0; i < s.Len(); i++ {
		x, y, z := s.X[i], s.Y[i], s.Z[i]
		if !Included(float64(x), float64(y), float64(z), positives, negatives) {
			continue
		}
		out.Positions[n*3] = x
		out.Positions[n*3+1] = y
		out.Positions[n*3+2] = z
		copy(out.Colors[n*3:n*3+3], colors[i*3:i*3+3])
		out.Sizes[n] = s.Size[i]
		out.Alphas[n] = s.Alpha[i]
		out.Scalars[n] = scalars[i]
		n++
	}
	out.Count = n
	return out
}
