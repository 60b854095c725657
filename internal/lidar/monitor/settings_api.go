package monitor

import (
	"net/http"

	"github.com/banshee-data/roiview/internal/httputil"
	"github.com/banshee-data/roiview/internal/lidar/colormap"
)

type colorMapBody struct {
	Mode  *string `json:"mode"`
	Table *string `json:"table"`
}

type colorMapResponse struct {
	colormap.Selection
	Tables []colormap.Table `json:"tables"`
	Stops  []string         `json:"stops"`
}

func (ws *WebServer) writeColorMap(w http.ResponseWriter) {
	sel := ws.store.Snapshot().ColorMap
	g, _ := colormap.Lookup(sel.Table)
	httputil.WriteJSONOK(w, colorMapResponse{
		Selection: sel,
		Tables:    colormap.Tables(),
		Stops:     g.Hexes(),
	})
}

// handleColorMap reports or changes the colour mapping. A POST body may set
// either field; both are validated before either is applied.
func (ws *WebServer) handleColorMap(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.writeColorMap(w)
	case http.MethodPost:
		var body colorMapBody
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		var (
			mode  colormap.Mode
			table colormap.Table
			err   error
		)
		if body.Mode != nil {
			mode, err = colormap.ParseMode(*body.Mode)
		}
		if err == nil && body.Table != nil {
			table, err = colormap.ParseTable(*body.Table)
		}
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if body.Mode != nil {
			ws.store.SetColorMapMode(mode)
		}
		if body.Table != nil {
			ws.store.SetColorMapTable(table)
		}
		ws.writeColorMap(w)
	default:
		httputil.MethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (ws *WebServer) handlePointSize(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var body struct {
			Size float64 `json:"size"`
		}
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if body.Size <= 0 {
			httputil.BadRequest(w, "size must be positive")
			return
		}
		ws.store.SetPointSize(body.Size)
	default:
		httputil.MethodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	httputil.WriteJSONOK(w, map[string]float64{"size": ws.store.Snapshot().PointSize})
}

type subsetResponse struct {
	Count     int       `json:"count"`
	Total     int       `json:"total"`
	Positions []float32 `json:"positions,omitempty"`
	Colors    []float32 `json:"colors,omitempty"`
	Sizes     []float32 `json:"sizes,omitempty"`
	Alphas    []float32 `json:"alphas,omitempty"`
}

// handleSubset returns the rendered subset.
// Query params:
//   - include_points (optional): "true" adds the interleaved point arrays
func (ws *WebServer) handleSubset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	sub := ws.store.RenderedSubset()
	resp := subsetResponse{Count: sub.Count, Total: ws.store.Sample().Len()}
	if r.URL.Query().Get("include_points") == "true" {
		resp.Positions, resp.Colors, resp.Sizes, resp.Alphas = sub.Active()
	}
	httputil.WriteJSONOK(w, resp)
}
