package roi

import (
	"math"

	"github.com/paulmach/orb"
)

// degenerateSpan replaces a zero z-span edge denominator in the crossing test.
const degenerateSpan = 1e-9

// minVolumeDepth is the smallest extrusion depth handed to the display layer.
const minVolumeDepth = 0.001

// Point2D is a vertex on the ground plane.
type Point2D struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// DistanceTo returns the in-plane distance between p and q.
func (p Point2D) DistanceTo(q Point2D) float64 {
	return math.Hypot(q.X-p.X, q.Z-p.Z)
}

// Polygon is an ordered vertex list. Insertion order defines the edges.
type Polygon []Point2D

// Valid reports whether the polygon has enough vertices to enclose area.
func (poly Polygon) Valid() bool {
	return len(poly) >= 3
}

// Clone returns a copy that shares no storage with poly.
func (poly Polygon) Clone() Polygon {
	if poly == nil {
		return nil
	}
	out := make(Polygon, len(poly))
	copy(out, poly)
	return out
}

// Bound returns the planar bounding box of the polygon in (x, z).
func (poly Polygon) Bound() orb.Bound {
	mp := make(orb.MultiPoint, len(poly))
	for i, p := range poly {
		mp[i] = orb.Point{p.X, p.Z}
	}
	return mp.Bound()
}

// PointInPolygon runs an even-odd ray cast from (x, z) towards +x.
// Points exactly on an edge may be classified either way.
func PointInPolygon(x, z float64, poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, zi := poly[i].X, poly[i].Z
		xj, zj := poly[j].X, poly[j].Z
		if (zi > z) == (zj > z) {
			continue
		}
		span := zj - zi
		if span == 0 {
			span = degenerateSpan
		}
		if x < (xj-xi)*(z-zi)/span+xi {
			inside = !inside
		}
	}
	return inside
}

// PointInRegion reports whether (x, y, z) lies inside the region's height
// band and ground polygon.
func PointInRegion(r Region, x, y, z float64) bool {
	if y < r.HeightMin || y > r.HeightMax {
		return false
	}
	return PointInPolygon(x, z, r.Boundary)
}

// ToShape converts a ground polygon into a closed ring in shape-plane
// coordinates, where the shape y axis is -z so that rotating the shape onto
// the ground plane restores the original orientation.
func ToShape(poly Polygon) orb.Ring {
	if !poly.Valid() {
		return nil
	}
	ring := make(orb.Ring, 0, len(poly)+1)
	for _, p := range poly {
		ring = append(ring, orb.Point{p.X, -p.Z})
	}
	return append(ring, ring[0])
}

// Volume is the extruded prism the display layer draws for a region.
type Volume struct {
	Shape orb.Ring
	Base  float64 // height of the bottom face
	Depth float64 // extrusion along +y
}

// Extrude returns the render volume for r. Regions without a valid boundary
// yield a zero Volume.
func Extrude(r Region) Volume {
	shape := ToShape(r.Boundary)
	if shape == nil {
		return Volume{}
	}
	return Volume{
		Shape: shape,
		Base:  r.HeightMin,
		Depth: math.Max(minVolumeDepth, r.HeightMax-r.HeightMin),
	}
}
