// Package colormap maps normalised scalars to RGB through named gradients.
package colormap

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Stop is a gradient control point at position T in [0, 1].
type Stop struct {
	T     float64
	Color colorful.Color
}

// Gradient is an ordered list of stops with increasing T.
type Gradient []Stop

// Table names a built-in gradient.
type Table string

const (
	TableJet     Table = "jet"
	TableViridis Table = "viridis"
	TablePlasma  Table = "plasma"
)

// Mode selects which per-point scalar drives the colour.
type Mode string

const (
	ModeHeight Mode = "height"
	ModeDepth  Mode = "depth"
)

// Selection is the active colour mapping.
type Selection struct {
	Mode  Mode  `json:"mode"`
	Table Table `json:"table"`
}

// DefaultSelection colours by height with the plasma table.
func DefaultSelection() Selection {
	return Selection{Mode: ModeHeight, Table: TablePlasma}
}

var (
	Jet = Gradient{
		{0, mustHex("#00007f")},
		{0.35, mustHex("#0044ff")},
		{0.5, mustHex("#00e5ff")},
		{0.7, mustHex("#ffe600")},
		{1, mustHex("#ff0000")},
	}
	Viridis = Gradient{
		{0, mustHex("#440154")},
		{0.25, mustHex("#3b528b")},
		{0.5, mustHex("#21918c")},
		{0.75, mustHex("#5ec962")},
		{1, mustHex("#fde725")},
	}
	Plasma = Gradient{
		{0, mustHex("#0d0887")},
		{0.35, mustHex("#6a00a8")},
		{0.6, mustHex("#b12a90")},
		{0.8, mustHex("#e16462")},
		{1, mustHex("#fca636")},
	}
)

var tables = map[Table]Gradient{
	TableJet:     Jet,
	TableViridis: Viridis,
	TablePlasma:  Plasma,
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("colormap: bad stop colour %q: %v", s, err))
	}
	return c
}

// Lookup returns the gradient for a table name.
func Lookup(t Table) (Gradient, bool) {
	g, ok := tables[t]
	return g, ok
}

// Tables lists the built-in table names.
func Tables() []Table {
	return []Table{TableJet, TableViridis, TablePlasma}
}

// ParseTable parses a table name, case-insensitively.
func ParseTable(s string) (Table, error) {
	t := Table(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := tables[t]; !ok {
		return "", fmt.Errorf("unknown color map table %q (want jet, viridis or plasma)", s)
	}
	return t, nil
}

// ParseMode parses a colour mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeHeight, ModeDepth:
		return m, nil
	}
	return "", fmt.Errorf("unknown color map mode %q (want height or depth)", s)
}

// Lerp samples the gradient at t. t is clamped to [0, 1]; between two
// stops each channel is blended linearly, and past the last stop the last
// colour is returned unchanged.
func Lerp(g Gradient, t float64) colorful.Color {
	if len(g) == 0 {
		return colorful.Color{}
	}
	t = min(1, max(0, t))
	for i := 0; i < len(g)-1; i++ {
		left, right := g[i], g[i+1]
		if t < left.T || t > right.T {
			continue
		}
		span := right.T - left.T
		if span == 0 {
			span = 1
		}
		local := (t - left.T) / span
		if local >= 1 {
			return right.Color
		}
		return left.Color.BlendRgb(right.Color, local)
	}
	return g[len(g)-1].Color
}

// Hexes returns the stop colours as hex strings, in order.
func (g Gradient) Hexes() []string {
	out := make([]string, len(g))
	for i, s := range g {
		out[i] = s.Color.Hex()
	}
	return out
}
