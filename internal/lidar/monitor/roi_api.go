package monitor

import (
	"net/http"
	"strconv"

	"github.com/paulmach/orb"

	"github.com/banshee-data/roiview/internal/httputil"
	"github.com/banshee-data/roiview/internal/lidar/roi"
	"github.com/banshee-data/roiview/internal/lidar/scene"
)

// roiState is the body returned by every ROI endpoint. Changed is false when
// the command was a no-op in the current authoring mode.
type roiState struct {
	scene.Snapshot
	Changed bool          `json:"changed"`
	Outline []roi.Point2D `json:"outline"`
	Panel   []panelRow    `json:"panel"`
	Volumes []volumeView  `json:"volumes"`
}

// volumeView is the extruded prism drawn for a committed region. Shape is in
// shape-plane coordinates (x, -z).
type volumeView struct {
	ID    int      `json:"id"`
	Kind  roi.Kind `json:"kind"`
	Shape orb.Ring `json:"shape"`
	Base  float64  `json:"base"`
	Depth float64  `json:"depth"`
}

type panelRow struct {
	ID    int      `json:"id"`
	Label string   `json:"label"`
	Kind  roi.Kind `json:"kind"`
	Range string   `json:"range"`
}

type heightBody struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func (ws *WebServer) writeState(w http.ResponseWriter, changed bool) {
	ordered := ws.store.OrderedRegions()
	panel := make([]panelRow, len(ordered))
	volumes := make([]volumeView, 0, len(ordered))
	for i, r := range ordered {
		panel[i] = panelRow{ID: r.ID, Label: r.Label, Kind: r.Kind, Range: r.Range()}
		if v := roi.Extrude(r); v.Shape != nil {
			volumes = append(volumes, volumeView{ID: r.ID, Kind: r.Kind, Shape: v.Shape, Base: v.Base, Depth: v.Depth})
		}
	}
	httputil.WriteJSONOK(w, roiState{
		Snapshot: ws.store.Snapshot(),
		Changed:  changed,
		Outline:  ws.store.DraftOutline(),
		Panel:    panel,
		Volumes:  volumes,
	})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return false
	}
	return true
}

func (ws *WebServer) handleROI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	ws.writeState(w, false)
}

// handleStart begins a draft.
// Query params:
//   - kind (required): "positive" or "negative"
func (ws *WebServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	kind, err := roi.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	ws.store.StartROI(kind)
	ws.writeState(w, true)
}

func (ws *WebServer) handlePoint(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var p roi.Point2D
	if err := httputil.DecodeJSON(r, &p); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	ws.writeState(w, ws.store.AddPoint(p))
}

func (ws *WebServer) handleHeightRequest(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ws.writeState(w, ws.store.RequestHeightConfirmation())
}

// handleHeightConfirm commits the draft. Omitted bounds take the default
// height band.
func (ws *WebServer) handleHeightConfirm(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var body heightBody
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &body); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
	}
	hMin, hMax := roi.DefaultHeightMin, roi.DefaultHeightMax
	if body.Min != nil {
		hMin = *body.Min
	}
	if body.Max != nil {
		hMax = *body.Max
	}
	_, ok := ws.store.ConfirmHeight(hMin, hMax)
	ws.writeState(w, ok)
}

func (ws *WebServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ws.writeState(w, ws.store.CancelDraft())
}

func (ws *WebServer) handleClear(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	ws.writeState(w, ws.store.ClearROIs())
}

func (ws *WebServer) handleRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		httputil.MethodNotAllowed(w, http.MethodDelete)
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httputil.BadRequest(w, "region id must be an integer")
		return
	}
	ws.writeState(w, ws.store.RemoveROI(id))
}
