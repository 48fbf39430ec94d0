// Package compute provides interchangeable strategies for the O(N^2)
// pairwise summations: accelerations from softened Coulomb forces and
// electric-field superposition over sample grids.
//
// Both backends implement the identical contract and produce bit-identical
// results: the parallel backend shards the independent outer index across
// workers while each output element is still accumulated by a single
// goroutine in a fixed order.
package compute

// Particles is the packed struct-of-arrays view consumed by backends.
// Pos is interleaved (x0, y0, x1, y1, ...).
type Particles struct {
	Pos    []float64
	Charge []float64
	Radius []float64
	Mass   []float64
	Fixed  []bool
}

// N returns the particle count.
func (p Particles) N() int { return len(p.Charge) }

// Params carries the physical constants a backend needs.
type Params struct {
	Lx, Ly            float64
	SofteningFraction float64
	Coulomb           float64
	NeutralEps        float64
	UniformOn         bool
	UniformEx         float64
	UniformEy         float64
}

type Backend interface {
	Name() string
	Available() bool

	// Accelerations returns interleaved (ax, ay) per particle. Fixed,
	// massless and neutral particles get zero acceleration.
	Accelerations(p Particles, prm Params) []float64

	// FieldGrid superposes the electric field at each interleaved sample
	// point, returning interleaved (Ex, Ey) per point.
	FieldGrid(points []float64, p Particles, prm Params) []float64
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

func AutoSelectBackend() Backend {
	par := NewParallelBackend()
	if par.Available() {
		return par
	}
	return NewSerialBackend()
}
