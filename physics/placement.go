package physics

import (
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Placer chooses the starting point of a node entering the layout. New
// nodes sit on a circle around the origin at a varied radius so they never
// start out fully overlapping.
type Placer interface {
	Place(id string, index, total int) Point
}

// Ring describes the band of radii new nodes are placed in
type Ring struct {
	MinRadius float64
	Spread    float64
}

// DefaultRing places nodes between 300 and 500 units from the origin
var DefaultRing = Ring{MinRadius: 300, Spread: 200}

func (r Ring) point(index, total int, t float64) Point {
	angle := 0.0
	if total > 0 {
		angle = float64(index) / float64(total) * 2 * math.Pi
	}
	t = math.Max(0, math.Min(t, 1))
	radius := r.MinRadius + t*r.Spread
	return Point{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
}

// RandomPlacer draws each radius uniformly from the ring
type RandomPlacer struct {
	ring Ring
	rnd  *rand.Rand
}

// NewRandomPlacer creates a placer backed by a seeded PRNG
func NewRandomPlacer(ring Ring, seed int64) *RandomPlacer {
	return &RandomPlacer{ring: ring, rnd: rand.New(rand.NewSource(seed))}
}

// Place returns the start position for a node
func (p *RandomPlacer) Place(_ string, index, total int) Point {
	return p.ring.point(index, total, p.rnd.Float64())
}

// NoisePlacer derives each radius from simplex noise sampled at a point
// hashed from the node ID. The same ID and seed always land on the same
// radius, so reloading a dataset reproduces the layout.
type NoisePlacer struct {
	ring  Ring
	noise opensimplex.Noise
	scale float64
}

// NewNoisePlacer creates a placer with normalized noise for the given seed
func NewNoisePlacer(ring Ring, seed int64) *NoisePlacer {
	return &NoisePlacer{
		ring:  ring,
		noise: opensimplex.NewNormalized(seed),
		scale: 0.05,
	}
}

// Place returns the start position for a node
func (p *NoisePlacer) Place(id string, index, total int) Point {
	h := xxhash.Sum64String(id)
	u := float64(h&0xffff) * p.scale
	v := float64((h>>16)&0xffff) * p.scale
	return p.ring.point(index, total, p.noise.Eval2(u, v))
}
