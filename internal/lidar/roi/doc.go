// Package roi owns user-authored Regions of Interest over the point cloud.
//
// Responsibilities: ground-plane polygons and their height bands, the
// even-odd containment test, shape conversion for the display layer, and
// the authoring state machine that turns pointer input into committed
// regions.
// Key types: Point2D, Polygon, Region, Authoring.
//
// Coordinates follow the viewer convention: x and z span the ground plane,
// y is height. Nothing in this package returns errors; invalid input
// degrades to a no-op or a false containment result.
package roi
