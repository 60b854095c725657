package roi

import (
	"fmt"
	"strings"
)

// Kind selects whether a region includes or excludes points.
type Kind string

const (
	KindPositive Kind = "positive"
	KindNegative Kind = "negative"
)

// ParseKind parses a region kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPositive:
		return KindPositive, nil
	case KindNegative:
		return KindNegative, nil
	}
	return "", fmt.Errorf("unknown roi kind %q (want positive or negative)", s)
}

// DefaultLabel is the label given to every committed region.
const DefaultLabel = "ROI"

// Default height band offered when a draft enters the height step.
const (
	DefaultHeightMin = -5.0
	DefaultHeightMax = 15.0
)

// Region is a committed Region of Interest. Regions are never mutated after
// commit; Authoring hands out copies.
type Region struct {
	ID        int     `json:"id"`
	Label     string  `json:"label"`
	Kind      Kind    `json:"kind"`
	HeightMin float64 `json:"height_min"`
	HeightMax float64 `json:"height_max"`
	Boundary  Polygon `json:"boundary"`
}

// Valid reports whether the region takes part in filtering.
func (r Region) Valid() bool {
	return r.Boundary.Valid()
}

// Range formats the height band for listing, e.g. "0.0~2.0m".
func (r Region) Range() string {
	return fmt.Sprintf("%.1f~%.1fm", r.HeightMin, r.HeightMax)
}

func (r Region) clone() Region {
	r.Boundary = r.Boundary.Clone()
	return r
}
