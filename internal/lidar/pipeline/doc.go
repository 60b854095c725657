// Package pipeline turns the static point cloud, the active colour mapping
// and the committed regions into the buffer handed to the display layer.
//
// Stages:
//   - Normalize, Colorize: scale height or depth to [0, 1] over the whole
//     cloud and map it through the selected gradient. Colours do not depend on filtering, so a
//     point keeps its colour whichever regions are active.
//   - Filter: keep points inside at least one positive region (or all points
//     when there is none), then drop points inside any negative region.
//   - Compact: copy survivors into a dense prefix of reusable buffers.
//
// Regions with fewer than three boundary vertices are ignored. Containment is
// a linear scan over points and regions.
package pipeline
