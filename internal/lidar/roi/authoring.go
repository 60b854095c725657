package roi

// Mode is the authoring state tag.
type Mode string

const (
	ModeIdle          Mode = "idle"
	ModeDrawing       Mode = "drawing"
	ModeHeightPending Mode = "height-pending"
)

// DefaultCloseThreshold is the in-plane distance from the first draft vertex
// within which a new point closes the loop instead of being appended.
const DefaultCloseThreshold = 0.35

// Authoring tracks the single in-flight draft and the committed region list.
//
// Transitions that are not valid in the current state are ignored and leave
// the state unchanged. The mutating methods report whether anything changed
// so that callers can decide whether to publish a notification.
//
// Authoring is not safe for concurrent use.
type Authoring struct {
	// CloseThreshold enables the close-the-loop shortcut in AddPoint.
	// Zero or negative disables it.
	CloseThreshold float64

	mode        Mode
	draftKind   Kind
	draftPoints Polygon

	regions []Region
	counter int
}

// NewAuthoring returns an idle state machine with no committed regions.
func NewAuthoring() *Authoring {
	return &Authoring{
		CloseThreshold: DefaultCloseThreshold,
		mode:           ModeIdle,
	}
}

// Mode returns the current state tag.
func (a *Authoring) Mode() Mode {
	if a.mode == "" {
		return ModeIdle
	}
	return a.mode
}

// Draft returns the kind of the in-flight draft, if one exists.
func (a *Authoring) Draft() (Kind, bool) {
	if a.Mode() == ModeIdle {
		return "", false
	}
	return a.draftKind, true
}

// DraftPoints returns a copy of the draft vertices.
func (a *Authoring) DraftPoints() Polygon {
	return a.draftPoints.Clone()
}

// DraftOutline returns the draft as a polyline for display. Once the draft
// has three or more vertices the outline is closed back to the first one.
func (a *Authoring) DraftOutline() []Point2D {
	if len(a.draftPoints) < 2 {
		return nil
	}
	out := make([]Point2D, 0, len(a.draftPoints)+1)
	out = append(out, a.draftPoints...)
	if a.draftPoints.Valid() {
		out = append(out, a.draftPoints[0])
	}
	return out
}

// Start discards any existing draft and begins drawing a new one.
func (a *Authoring) Start(kind Kind) {
	a.mode = ModeDrawing
	a.draftKind = kind
	a.draftPoints = nil
}

// AddPoint appends p to the draft while drawing. If the draft already has
// three or more vertices and p lands within CloseThreshold of the first
// one, the loop is closed and the draft moves to the height step instead.
func (a *Authoring) AddPoint(p Point2D) bool {
	if a.Mode() != ModeDrawing {
		return false
	}
	if a.CloseThreshold > 0 && a.draftPoints.Valid() &&
		p.DistanceTo(a.draftPoints[0]) < a.CloseThreshold {
		return a.RequestHeight()
	}
	a.draftPoints = append(a.draftPoints, p)
	return true
}

// RequestHeight moves a drawing draft with at least three vertices to the
// height step.
func (a *Authoring) RequestHeight() bool {
	if a.Mode() != ModeDrawing || !a.draftPoints.Valid() {
		return false
	}
	a.mode = ModeHeightPending
	return true
}

// Confirm commits the draft with the given height band. Reversed bounds are
// swapped. It returns the committed region and true, or false if there is no
// draft with at least three vertices.
func (a *Authoring) Confirm(heightMin, heightMax float64) (Region, bool) {
	if a.Mode() == ModeIdle || a.draftKind == "" || !a.draftPoints.Valid() {
		return Region{}, false
	}
	if heightMin > heightMax {
		heightMin, heightMax = heightMax, heightMin
	}
	a.counter++
	r := Region{
		ID:        a.counter,
		Label:     DefaultLabel,
		Kind:      a.draftKind,
		HeightMin: heightMin,
		HeightMax: heightMax,
		Boundary:  a.draftPoints.Clone(),
	}
	a.regions = append(a.regions, r)
	a.reset()
	return r.clone(), true
}

// Cancel discards the draft, if any, and returns to idle.
func (a *Authoring) Cancel() bool {
	if a.Mode() == ModeIdle {
		return false
	}
	a.reset()
	return true
}

func (a *Authoring) reset() {
	a.mode = ModeIdle
	a.draftKind = ""
	a.draftPoints = nil
}

// Remove deletes the committed region with the given id.
func (a *Authoring) Remove(id int) bool {
	for i, r := range a.regions {
		if r.ID == id {
			a.regions = append(a.regions[:i:i], a.regions[i+1:]...)
			return true
		}
	}
	return false
}

// Clear deletes every committed region. Ids keep increasing afterwards.
func (a *Authoring) Clear() bool {
	if len(a.regions) == 0 {
		return false
	}
	a.regions = nil
	return true
}

// Regions returns a copy of the committed regions in commit order.
func (a *Authoring) Regions() []Region {
	out := make([]Region, len(a.regions))
	for i, r := range a.regions {
		out[i] = r.clone()
	}
	return out
}

// Ordered returns the committed regions with positives listed before
// negatives, each group in commit order.
func (a *Authoring) Ordered() []Region {
	out := make([]Region, 0, len(a.regions))
	for _, kind := range []Kind{KindPositive, KindNegative} {
		for _, r := range a.regions {
			if r.Kind == kind {
				out = append(out, r.clone())
			}
		}
	}
	return out
}
