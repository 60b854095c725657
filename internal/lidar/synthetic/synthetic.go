// Package synthetic generates the simulated LiDAR capture shown in the
// viewer: a fixed-size point cloud sampled from a few weighted clusters.
package synthetic

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cluster is a disc of points around Center on the ground plane.
type Cluster struct {
	Center r3.Vec  `json:"center"`
	Spread float64 `json:"spread"` // metres, disc radius
	Weight float64 `json:"weight"` // share of the point budget
}

// DefaultClusters is the scene layout used by the viewer.
func DefaultClusters() []Cluster {
	return []Cluster{
		{Center: r3.Vec{X: 0, Y: 0.1, Z: 0}, Spread: 5.2, Weight: 0.42},
		{Center: r3.Vec{X: -4.8, Y: 0.2, Z: 2.6}, Spread: 2.8, Weight: 0.25},
		{Center: r3.Vec{X: 3.8, Y: 0.6, Z: -3.4}, Spread: 3.4, Weight: 0.2},
		{Center: r3.Vec{X: 1.6, Y: 1.2, Z: 3.6}, Spread: 2.2, Weight: 0.13},
	}
}

const (
	// DefaultPointCount is the number of points in the generated cloud.
	DefaultPointCount = 12000

	ringBiasProb  = 0.25
	ringBiasOuter = 0.65
	ringBiasInner = 0.35
	planarJitter  = 0.45
	heightJitter  = 1.6
	heightRipple  = 0.25
)

// Generator produces synthetic point clouds.
type Generator struct {
	// Configuration
	PointCount int
	Clusters   []Cluster

	rng *rand.Rand
}

// NewGenerator creates a generator with the default scene layout. A zero
// seed draws one from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		PointCount: DefaultPointCount,
		Clusters:   DefaultClusters(),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Generate samples a new point cloud.
func (g *Generator) Generate() *Sample {
	n := max(g.PointCount, 0)
	s := newSample(n)
	for i := 0; i < n; i++ {
		s.set(i, g.samplePoint())
	}
	s.derive(g.rng.Float64)
	return s
}

// pickCluster draws a cluster with probability proportional to its weight.
// Weights need not sum to one.
func (g *Generator) pickCluster() Cluster {
	total := 0.0
	for _, c := range g.Clusters {
		total += c.Weight
	}
	r := g.rng.Float64() * total
	acc := 0.0
	for _, c := range g.Clusters {
		acc += c.Weight
		if r <= acc {
			return c
		}
	}
	return g.Clusters[len(g.Clusters)-1]
}

func (g *Generator) samplePoint() r3.Vec {
	if len(g.Clusters) == 0 {
		return r3.Vec{}
	}
	c := g.pickCluster()
	angle := g.rng.Float64() * 2 * math.Pi
	bias := ringBiasInner
	if g.rng.Float64() < ringBiasProb {
		bias = ringBiasOuter
	}
	radius := math.Pow(g.rng.Float64(), bias) * c.Spread

	x := c.Center.X + math.Cos(angle)*radius + (g.rng.Float64()-0.5)*planarJitter
	z := c.Center.Z + math.Sin(angle)*radius + (g.rng.Float64()-0.5)*planarJitter
	y := c.Center.Y + (g.rng.Float64()-0.5)*heightJitter + math.Sin(angle*2)*heightRipple
	return r3.Vec{X: x, Y: y, Z: z}
}
