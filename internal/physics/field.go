package physics

import (
	"math"

	"github.com/DannyLuna17/ElectroSim/internal/compute"
	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

// FieldAt superposes every particle's contribution to the electric field
// at a world point, softening per source radius (epsilon_j =
// fraction*r_j, distinct from the contact-based pairwise softening).
func FieldAt(env Env, parts []*particle.Particle, point world.Vec2) world.Vec2 {
	var e world.Vec2
	for _, p := range parts {
		if math.Abs(p.Charge) <= env.NeutralEps {
			continue
		}
		r := env.Torus.Displacement(p.Pos, point)
		r2 := r.LenSq()
		eps := env.SofteningFraction * p.Radius
		den := math.Pow(r2+eps*eps, 1.5)
		if den == 0 {
			continue
		}
		e = e.Add(r.Scale(env.Coulomb * p.Charge / den))
	}
	return e
}

// FieldGrid evaluates the field at many points through the compute
// backend, which parallelizes across sample points for large grids.
func FieldGrid(env Env, parts []*particle.Particle, points []world.Vec2) []world.Vec2 {
	if len(points) == 0 {
		return nil
	}
	flat := make([]float64, len(points)*2)
	for i, pt := range points {
		flat[i*2] = pt.X
		flat[i*2+1] = pt.Y
	}
	raw := compute.GetBackend().FieldGrid(flat, pack(parts), params(env, UniformField{}))
	out := make([]world.Vec2, len(points))
	for i := range out {
		out[i] = world.Vec2{X: raw[i*2], Y: raw[i*2+1]}
	}
	return out
}
