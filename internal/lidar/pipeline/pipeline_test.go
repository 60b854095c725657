package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/roiview/internal/lidar/colormap"
	"github.com/banshee-data/roiview/internal/lidar/roi"
	"github.com/banshee-data/roiview/internal/lidar/synthetic"
)

// gridSample lays points on x, z in {-1, 1, 3, 5} and y in {-1, 1, 3}.
func gridSample() *synthetic.Sample {
	var pts []r3.Vec
	for _, x := range []float64{-1, 1, 3, 5} {
		for _, z := range []float64{-1, 1, 3, 5} {
			for _, y := range []float64{-1, 1, 3} {
				pts = append(pts, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	return synthetic.FromPoints(pts)
}

func region(id int, kind roi.Kind, hMin, hMax float64, poly roi.Polygon) roi.Region {
	return roi.Region{ID: id, Kind: kind, HeightMin: hMin, HeightMax: hMax, Boundary: poly}
}

var square4 = roi.Polygon{{X: 0, Z: 0}, {X: 4, Z: 0}, {X: 4, Z: 4}, {X: 0, Z: 4}}

func TestRun_NoRegionsIsPassThrough(t *testing.T) {
	s := gridSample()
	p := New(s, colormap.DefaultSelection())

	out := p.Run(nil)
	require.Equal(t, s.Len(), out.Count)

	pos, cols, sizes, alphas := out.Active()
	assert.Len(t, pos, s.Len()*3)
	assert.Equal(t, p.Colors(), cols)
	assert.Equal(t, s.Size, sizes)
	assert.Equal(t, s.Alpha, alphas)
	for i := 0; i < s.Len(); i++ {
		assert.Equal(t, s.X[i], pos[i*3])
		assert.Equal(t, s.Y[i], pos[i*3+1])
		assert.Equal(t, s.Z[i], pos[i*3+2])
	}
}

func TestRun_SinglePositive(t *testing.T) {
	s := gridSample()
	p := New(s, colormap.DefaultSelection())

	out := p.Run([]roi.Region{region(1, roi.KindPositive, 0, 2, square4)})

	// x, z in {1, 3} and y == 1.
	require.Equal(t, 4, out.Count)
	pos, _, _, _ := out.Active()
	for i := 0; i < out.Count; i++ {
		x, y, z := pos[i*3], pos[i*3+1], pos[i*3+2]
		assert.Contains(t, []float32{1, 3}, x)
		assert.Equal(t, float32(1), y)
		assert.Contains(t, []float32{1, 3}, z)
	}
}

func TestRun_HandCountedMembership(t *testing.T) {
	s := gridSample()
	p := New(s, colormap.DefaultSelection())

	want := 0
	for i := 0; i < s.Len(); i++ {
		x, y, z := s.X[i], s.Y[i], s.Z[i]
		if x > 0 && x < 4 && z > 0 && z < 4 && y >= -2 && y <= 2 {
			want++
		}
	}
	require.Equal(t, 8, want)

	out := p.Run([]roi.Region{region(1, roi.KindPositive, -2, 2, square4)})
	assert.Equal(t, want, out.Count)
}

func TestRun_NegativeEqualToPositiveEmptiesSubset(t *testing.T) {
	p := New(gridSample(), colormap.DefaultSelection())

	out := p.Run([]roi.Region{
		region(1, roi.KindPositive, 0, 2, square4),
		region(2, roi.KindNegative, 0, 2, square4),
	})
	assert.Equal(t, 0, out.Count)
}

func TestRun_NegativeWithoutPositives(t *testing.T) {
	s := gridSample()
	p := New(s, colormap.DefaultSelection())

	// Negatives apply globally when no positive region exists.
	out := p.Run([]roi.Region{region(1, roi.KindNegative, 0, 2, square4)})
	assert.Equal(t, s.Len()-4, out.Count)
}

func TestRun_NegativeCarvesPositive(t *testing.T) {
	p := New(gridSample(), colormap.DefaultSelection())
	corner := roi.Polygon{{X: 0, Z: 0}, {X: 2, Z: 0}, {X: 2, Z: 2}, {X: 0, Z: 2}}

	out := p.Run([]roi.Region{
		region(1, roi.KindPositive, 0, 2, square4),
		region(2, roi.KindNegative, 0, 2, corner),
	})
	assert.Equal(t, 3, out.Count)
}

func TestRun_PositivesAreUnioned(t *testing.T) {
	p := New(gridSample(), colormap.DefaultSelection())
	far := roi.Polygon{{X: 4, Z: 4}, {X: 6, Z: 4}, {X: 6, Z: 6}, {X: 4, Z: 6}}

	out := p.Run([]roi.Region{
		region(1, roi.KindPositive, 0, 2, square4),
		region(2, roi.KindPositive, 0, 2, far),
	})
	assert.Equal(t, 5, out.Count)
}

func TestRun_ShortPositiveIsIgnored(t *testing.T) {
	s := gridSample()
	p := New(s, colormap.DefaultSelection())

	out := p.Run([]roi.Region{region(1, roi.KindPositive, 0, 2, roi.Polygon{{X: 0, Z: 0}, {X: 4, Z: 4}})})
	assert.Equal(t, s.Len(), out.Count, "short positive does not switch to inclusion mode")

	out = p.Run([]roi.Region{
		region(1, roi.KindPositive, 0, 2, roi.Polygon{{X: 0, Z: 0}}),
		region(2, roi.KindNegative, 0, 2, square4),
	})
	assert.Equal(t, s.Len()-4, out.Count)
}

func TestRun_CountNeverExceedsSource(t *testing.T) {
	gen := synthetic.NewGenerator(5)
	gen.PointCount = 4000
	s := gen.Generate()
	p := New(s, colormap.DefaultSelection())

	big := roi.Polygon{{X: -100, Z: -100}, {X: 100, Z: -100}, {X: 100, Z: 100}, {X: -100, Z: 100}}
	out := p.Run([]roi.Region{
		region(1, roi.KindPositive, -100, 100, big),
		region(2, roi.KindPositive, -100, 100, big),
	})
	assert.Equal(t, s.Len(), out.Count)
	assert.LessOrEqual(t, out.Count, s.Len())
}

func TestColorsStableAcrossFiltering(t *testing.T) {
	s := gridSample()
	p := New(s, colormap.Selection{Mode: colormap.ModeHeight, Table: colormap.TableJet})
	full := append([]float32(nil), p.Colors()...)

	out := p.Run([]roi.Region{region(1, roi.KindPositive, 0, 2, square4)})
	pos, cols, _, _ := out.Active()
	for i := 0; i < out.Count; i++ {
		src := indexOf(s, pos[i*3], pos[i*3+1], pos[i*3+2])
		require.GreaterOrEqual(t, src, 0)
		assert.Equal(t, full[src*3:src*3+3], cols[i*3:i*3+3])
	}
}

func indexOf(s *synthetic.Sample, x, y, z float32) int {
	for i := 0; i < s.Len(); i++ {
		if s.X[i] == x && s.Y[i] == y && s.Z[i] == z {
			return i
		}
	}
	return -1
}

func TestColorize_Modes(t *testing.T) {
	s := synthetic.FromPoints([]r3.Vec{{X: 0, Y: 0, Z: 10}, {X: 0, Y: 10, Z: 0}})

	byHeight := Colorize(s, colormap.Selection{Mode: colormap.ModeHeight, Table: colormap.TableViridis}, nil)
	first, last := colormap.Viridis[0].Color, colormap.Viridis[4].Color
	assert.Equal(t, []float32{float32(first.R), float32(first.G), float32(first.B)}, byHeight[0:3])
	assert.Equal(t, []float32{float32(last.R), float32(last.G), float32(last.B)}, byHeight[3:6])

	byDepth := Colorize(s, colormap.Selection{Mode: colormap.ModeDepth, Table: colormap.TableViridis}, nil)
	assert.Equal(t, byHeight[0:3], byDepth[3:6])
	assert.Equal(t, byHeight[3:6], byDepth[0:3])
}

func TestColorize_ZeroRange(t *testing.T) {
	s := synthetic.FromPoints([]r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 2, Z: 6}})
	cols := Colorize(s, colormap.Selection{Mode: colormap.ModeHeight, Table: colormap.TableJet}, nil)
	first := colormap.Jet[0].Color
	assert.Equal(t, float32(first.B), cols[2])
	assert.Equal(t, cols[0:3], cols[3:6])
}

func TestSetSelection_RecolorsOnlyOnChange(t *testing.T) {
	p := New(gridSample(), colormap.Selection{Mode: colormap.ModeHeight, Table: colormap.TableJet})
	jet := append([]float32(nil), p.Colors()...)

	p.SetSelection(colormap.Selection{Mode: colormap.ModeHeight, Table: colormap.TableJet})
	assert.True(t, p.colorsOK)

	p.SetSelection(colormap.Selection{Mode: colormap.ModeHeight, Table: colormap.TablePlasma})
	assert.False(t, p.colorsOK)
	assert.NotEqual(t, jet, p.Colors())
	assert.Equal(t, colormap.TablePlasma, p.Selection().Table)
}

func TestIncluded(t *testing.T) {
	pos := []roi.Region{region(1, roi.KindPositive, 0, 2, square4)}
	neg := []roi.Region{region(2, roi.KindNegative, 0, 2, square4)}

	assert.True(t, Included(10, 10, 10, nil, nil))
	assert.True(t, Included(2, 1, 2, pos, nil))
	assert.False(t, Included(2, 5, 2, pos, nil))
	assert.False(t, Included(2, 1, 2, nil, neg))
	assert.True(t, Included(2, 5, 2, nil, neg))
	assert.False(t, Included(2, 1, 2, pos, neg))
}

func TestPartition(t *testing.T) {
	pos, neg := Partition([]roi.Region{
		region(1, roi.KindPositive, 0, 1, square4),
		region(2, roi.KindNegative, 0, 1, square4),
		region(3, roi.KindPositive, 0, 1, square4[:2]),
		region(4, roi.Kind("other"), 0, 1, square4),
	})
	require.Len(t, pos, 1)
	require.Len(t, neg, 1)
	assert.Equal(t, 1, pos[0].ID)
	assert.Equal(t, 2, neg[0].ID)
}

func TestNormalize(t *testing.T) {
	s := synthetic.FromPoints([]r3.Vec{{X: 0, Y: -1, Z: 4}, {X: 0, Y: 1, Z: 2}, {X: 0, Y: 3, Z: 0}})

	assert.Equal(t, []float32{0, 0.5, 1}, Normalize(s, colormap.ModeHeight, nil))
	assert.Equal(t, []float32{1, 0.5, 0}, Normalize(s, colormap.ModeDepth, nil))

	flat := synthetic.FromPoints([]r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 2, Z: 6}})
	assert.Equal(t, []float32{0, 0}, Normalize(flat, colormap.ModeHeight, nil))
}

func TestRun_SubsetCarriesScalars(t *testing.T) {
	s := gridSample()
	p := New(s, colormap.Selection{Mode: colormap.ModeHeight, Table: colormap.TableJet})
	full := p.Scalars()

	out := p.Run([]roi.Region{region(1, roi.KindPositive, -2, 4, square4)})
	pos, _, _, _ := out.Active()
	scalars := out.ActiveScalars()
	require.Len(t, scalars, out.Count)
	for i := 0; i < out.Count; i++ {
		src := indexOf(s, pos[i*3], pos[i*3+1], pos[i*3+2])
		require.GreaterOrEqual(t, src, 0)
		assert.Equal(t, full[src], scalars[i])
	}
	assert.Nil(t, (*Subset)(nil).ActiveScalars())
}
