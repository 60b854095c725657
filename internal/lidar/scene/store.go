// Package scene holds the viewer state: the static point cloud, the ROI
// authoring state machine, the colour mapping and the rendered subset.
// All mutations go through Store methods; readers get copies.
package scene

import (
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/roiview/internal/lidar/colormap"
	"github.com/banshee-data/roiview/internal/lidar/pipeline"
	"github.com/banshee-data/roiview/internal/lidar/roi"
	"github.com/banshee-data/roiview/internal/lidar/synthetic"
	"github.com/banshee-data/roiview/internal/monitoring"
)

var logf = monitoring.Tagged("Scene")

// DefaultPointSize is the initial display point size.
const DefaultPointSize = 5.1

// EventKind identifies the mutation that produced an Event.
type EventKind string

const (
	EventDraftStarted   EventKind = "draft_started"
	EventPointAdded     EventKind = "point_added"
	EventHeightPending  EventKind = "height_pending"
	EventRegionAdded    EventKind = "region_added"
	EventDraftCancelled EventKind = "draft_cancelled"
	EventRegionRemoved  EventKind = "region_removed"
	EventRegionsCleared EventKind = "regions_cleared"
	EventColorMap       EventKind = "color_map"
	EventPointSize      EventKind = "point_size"
)

// Event is delivered to subscribers after an effective mutation.
type Event struct {
	Kind     EventKind
	Snapshot Snapshot
}

// Snapshot is a consistent copy of the authoring and display state.
type Snapshot struct {
	Mode        roi.Mode           `json:"mode"`
	DraftKind   roi.Kind           `json:"draft_kind,omitempty"`
	DraftPoints roi.Polygon        `json:"draft_points"`
	Regions     []roi.Region       `json:"regions"`
	ColorMap    colormap.Selection `json:"color_map"`
	PointSize   float64            `json:"point_size"`
}

// Options configures a Store.
type Options struct {
	ColorMap  colormap.Selection
	PointSize float64
	// CloseThreshold overrides roi.DefaultCloseThreshold when non-zero.
	// A negative value disables the close-the-loop shortcut.
	CloseThreshold float64
}

// Store is the state container consumed by the display and input layers.
// It is safe for concurrent use; subscribers run on the mutating goroutine
// after the store lock has been released.
type Store struct {
	mu        sync.Mutex
	authoring *roi.Authoring
	pipe      *pipeline.Pipeline
	pointSize float64
	dirty     bool
	subset    *pipeline.Subset

	subsMu sync.Mutex
	subs   map[string]func(Event)
}

// NewStore creates a store over a static point cloud.
func NewStore(sample *synthetic.Sample, opts Options) *Store {
	a := roi.NewAuthoring()
	if opts.CloseThreshold != 0 {
		a.CloseThreshold = opts.CloseThreshold
	}
	sel := opts.ColorMap
	if sel == (colormap.Selection{}) {
		sel = colormap.DefaultSelection()
	}
	size := opts.PointSize
	if size <= 0 {
		size = DefaultPointSize
	}
	return &Store{
		authoring: a,
		pipe:      pipeline.New(sample, sel),
		pointSize: size,
		dirty:     true,
		subs:      make(map[string]func(Event)),
	}
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. A nil fn is not registered.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	id := uuid.NewString()
	s.subsMu.Lock()
	s.subs[id] = fn
	s.subsMu.Unlock()
	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) publish(kind EventKind, snap Snapshot) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	ev := Event{Kind: kind, Snapshot: snap}
	for _, fn := range fns {
		fn(ev)
	}
}

// mutate runs fn under the lock and publishes the event kind it returns if
// it reports a change. markDirty invalidates the rendered subset.
func (s *Store) mutate(markDirty bool, fn func() (EventKind, bool)) bool {
	s.mu.Lock()
	kind, changed := fn()
	if changed && markDirty {
		s.dirty = true
	}
	var snap Snapshot
	if changed {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.publish(kind, snap)
	}
	return changed
}

// StartROI begins a new draft of the given kind, discarding any existing one.
func (s *Store) StartROI(kind roi.Kind) {
	s.mutate(false, func() (EventKind, bool) {
		s.authoring.Start(kind)
		return EventDraftStarted, true
	})
}

// AddPoint adds a vertex to the draft, or closes the loop when the point
// lands on the first vertex. It reports whether the state changed.
func (s *Store) AddPoint(p roi.Point2D) bool {
	return s.mutate(false, func() (EventKind, bool) {
		before := s.authoring.Mode()
		if !s.authoring.AddPoint(p) {
			return "", false
		}
		if before != s.authoring.Mode() {
			return EventHeightPending, true
		}
		return EventPointAdded, true
	})
}

// RequestHeightConfirmation moves a closed draft to the height step.
func (s *Store) RequestHeightConfirmation() bool {
	return s.mutate(false, func() (EventKind, bool) {
		return EventHeightPending, s.authoring.RequestHeight()
	})
}

// ConfirmHeight commits the draft with the given height band.
func (s *Store) ConfirmHeight(heightMin, heightMax float64) (roi.Region, bool) {
	var r roi.Region
	ok := s.mutate(true, func() (EventKind, bool) {
		var committed bool
		r, committed = s.authoring.Confirm(heightMin, heightMax)
		return EventRegionAdded, committed
	})
	if ok {
		logf("committed %s region %d (%s, %d vertices)", r.Kind, r.ID, r.Range(), len(r.Boundary))
	}
	return r, ok
}

// CancelDraft discards the in-flight draft.
func (s *Store) CancelDraft() bool {
	return s.mutate(false, func() (EventKind, bool) {
		return EventDraftCancelled, s.authoring.Cancel()
	})
}

// RemoveROI deletes a committed region by id.
func (s *Store) RemoveROI(id int) bool {
	return s.mutate(true, func() (EventKind, bool) {
		return EventRegionRemoved, s.authoring.Remove(id)
	})
}

// ClearROIs deletes every committed region.
func (s *Store) ClearROIs() bool {
	return s.mutate(true, func() (EventKind, bool) {
		return EventRegionsCleared, s.authoring.Clear()
	})
}

// SetColorMapMode selects the scalar that drives point colour.
func (s *Store) SetColorMapMode(m colormap.Mode) bool {
	return s.setSelection(func(sel *colormap.Selection) { sel.Mode = m })
}

// SetColorMapTable selects the gradient.
func (s *Store) SetColorMapTable(t colormap.Table) bool {
	return s.setSelection(func(sel *colormap.Selection) { sel.Table = t })
}

func (s *Store) setSelection(edit func(*colormap.Selection)) bool {
	return s.mutate(true, func() (EventKind, bool) {
		sel := s.pipe.Selection()
		edit(&sel)
		if sel == s.pipe.Selection() {
			return "", false
		}
		s.pipe.SetSelection(sel)
		return EventColorMap, true
	})
}

// SetPointSize changes the display point size. Non-positive sizes are ignored.
func (s *Store) SetPointSize(size float64) bool {
	return s.mutate(false, func() (EventKind, bool) {
		if size <= 0 || size == s.pointSize {
			return "", false
		}
		s.pointSize = size
		return EventPointSize, true
	})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	kind, _ := s.authoring.Draft()
	return Snapshot{
		Mode:        s.authoring.Mode(),
		DraftKind:   kind,
		DraftPoints: s.authoring.DraftPoints(),
		Regions:     s.authoring.Regions(),
		ColorMap:    s.pipe.Selection(),
		PointSize:   s.pointSize,
	}
}

// OrderedRegions lists committed regions positives first, for panels.
func (s *Store) OrderedRegions() []roi.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authoring.Ordered()
}

// DraftOutline returns the draft polyline for the display layer.
func (s *Store) DraftOutline() []roi.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authoring.DraftOutline()
}

// Sample returns the static point cloud.
func (s *Store) Sample() *synthetic.Sample {
	return s.pipe.Sample()
}

// RenderedSubset returns a copy of the filtered, colourised points,
// recomputing it first if regions or colour mapping changed since the last
// read.
func (s *Store) RenderedSubset() pipeline.Subset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty || s.subset == nil {
		s.subset = s.pipe.Run(s.authoring.Regions())
		s.dirty = false
		logf("recomputed subset: %d/%d points", s.subset.Count, s.pipe.Sample().Len())
	}
	pos, cols, sizes, alphas := s.subset.Active()
	return pipeline.Subset{
		Positions: append([]float32(nil), pos...),
		Colors:    append([]float32(nil), cols...),
		Sizes:     append([]float32(nil), sizes...),
		Alphas:    append([]float32(nil), alphas...),
		Scalars:   append([]float32(nil), s.subset.ActiveScalars()...),
		Count:     s.subset.Count,
	}
}

// Dirty reports whether the next RenderedSubset call will recompute.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
