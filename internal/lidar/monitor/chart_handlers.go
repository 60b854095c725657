package monitor

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/roiview/internal/httputil"
	"github.com/banshee-data/roiview/internal/lidar/colormap"
	"github.com/banshee-data/roiview/internal/lidar/roi"
)

const (
	defaultMaxPoints = 8000
	visualMapSteps   = 10
)

var (
	positiveOutline = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	negativeOutline = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	draftOutline    = color.RGBA{R: 0xbd, G: 0xc3, B: 0xc7, A: 0xff}
)

// parseMaxPoints reads max_points, keeping the default for missing or
// out-of-range values.
func parseMaxPoints(r *http.Request) int {
	maxPoints := defaultMaxPoints
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}
	return maxPoints
}

// handleScatter renders the rendered subset top-down as an echarts scatter.
// Points carry their colour scalar as a third dimension so the visual map
// reproduces the active gradient. Axes are symmetric and cover both the
// points and every committed region.
// Query params:
//   - max_points (optional; default 8000) to reduce payload size
func (ws *WebServer) handleScatter(w http.ResponseWriter, r *http.Request) {
	snap := ws.store.Snapshot()
	sub := ws.store.RenderedSubset()
	positions, _, _, _ := sub.Active()
	scalars := sub.ActiveScalars()

	maxPoints := parseMaxPoints(r)
	stride := 1
	if sub.Count > maxPoints {
		stride = int(math.Ceil(float64(sub.Count) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, sub.Count/stride+1)
	maxAbs := 1.0
	for i := 0; i < sub.Count; i += stride {
		x, z := float64(positions[i*3]), -float64(positions[i*3+2])
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(x), math.Abs(z)))
		data = append(data, opts.ScatterData{Value: []interface{}{x, z, scalars[i]}})
	}
	for _, region := range snap.Regions {
		maxAbs = math.Max(maxAbs, extent(region.Boundary.Bound()))
	}
	pad := maxAbs * 1.05

	g, ok := colormap.Lookup(snap.ColorMap.Table)
	if !ok {
		g, _ = colormap.Lookup(colormap.DefaultSelection().Table)
	}
	inRange := make([]string, visualMapSteps)
	for i := range inRange {
		inRange[i] = colormap.Lerp(g, float64(i)/float64(visualMapSteps-1)).Hex()
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "ROI Viewer (top-down)", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Rendered subset",
			Subtitle: fmt.Sprintf("points=%d/%d stride=%d regions=%d map=%s/%s", sub.Count, ws.store.Sample().Len(), stride, len(snap.Regions), snap.ColorMap.Mode, snap.ColorMap.Table),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "-Z (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: inRange},
		}),
	)
	scatter.AddSeries("subset", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// extent is the largest absolute coordinate of b.
func extent(b orb.Bound) float64 {
	return math.Max(
		math.Max(math.Abs(b.Min[0]), math.Abs(b.Max[0])),
		math.Max(math.Abs(b.Min[1]), math.Abs(b.Max[1])),
	)
}

// handleTopDownPNG plots the rendered subset in its computed colours with
// committed region outlines and the current draft.
func (ws *WebServer) handleTopDownPNG(w http.ResponseWriter, r *http.Request) {
	p, err := ws.topDownPlot(parseMaxPoints(r))
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("encode plot: %v", err))
		return
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("encode plot: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (ws *WebServer) topDownPlot(maxPoints int) (*plot.Plot, error) {
	sub := ws.store.RenderedSubset()
	positions, colors, _, _ := sub.Active()

	stride := 1
	if sub.Count > maxPoints {
		stride = int(math.Ceil(float64(sub.Count) / float64(maxPoints)))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Rendered subset (%d points)", sub.Count)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "-Z (m)"

	if sub.Count > 0 {
		pts := make(plotter.XYs, 0, sub.Count/stride+1)
		fills := make([]color.Color, 0, cap(pts))
		for i := 0; i < sub.Count; i += stride {
			pts = append(pts, plotter.XY{X: float64(positions[i*3]), Y: -float64(positions[i*3+2])})
			fills = append(fills, toRGBA(colors[i*3:i*3+3]))
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter: %w", err)
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: fills[i], Radius: vg.Points(1), Shape: draw.CircleGlyph{}}
		}
		p.Add(sc)
	}

	for _, region := range ws.store.OrderedRegions() {
		shape := roi.ToShape(region.Boundary)
		if shape == nil {
			continue
		}
		line, err := ringLine(shape)
		if err != nil {
			return nil, fmt.Errorf("outline for region %d: %w", region.ID, err)
		}
		line.Width = vg.Points(1.5)
		line.Color = positiveOutline
		if region.Kind == roi.KindNegative {
			line.Color = negativeOutline
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s %d %s", region.Label, region.ID, region.Range()), line)
	}

	if outline := ws.store.DraftOutline(); len(outline) >= 2 {
		pts := make(plotter.XYs, len(outline))
		for i, v := range outline {
			pts[i] = plotter.XY{X: v.X, Y: -v.Z}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("draft outline: %w", err)
		}
		line.Color = draftOutline
		line.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}

func ringLine(shape orb.Ring) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(shape))
	for i, pt := range shape {
		pts[i] = plotter.XY{X: pt[0], Y: pt[1]}
	}
	return plotter.NewLine(pts)
}

func toRGBA(rgb []float32) color.RGBA {
	c := func(v float32) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, float64(v))) * 255))
	}
	return color.RGBA{R: c(rgb[0]), G: c(rgb[1]), B: c(rgb[2]), A: 0xff}
}
