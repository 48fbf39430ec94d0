// Package physics implements the softened-Coulomb force law, field
// superposition, and energy accounting on the periodic domain.
//
// Pairwise forces use Plummer-type softening with a contact-based length
// epsilon = fraction*(r_i + r_j), keeping forces finite when particles
// touch. Field evaluation softens per source radius instead. Potential
// energy deliberately uses neither: it guards the singularity with a hard
// distance floor only, giving a qualitative indicator that is not exactly
// consistent with the applied forces.
package physics

import (
	"math"

	"github.com/DannyLuna17/ElectroSim/internal/compute"
	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

// Env bundles the immutable physical constants every kernel needs.
type Env struct {
	Torus             world.Torus
	Coulomb           float64
	SofteningFraction float64
	NeutralEps        float64
}

func NewEnv(cfg *config.Config) Env {
	return Env{
		Torus:             world.NewTorus(cfg.WorldWidth, cfg.WorldHeight),
		Coulomb:           cfg.CoulombConstant,
		SofteningFraction: cfg.SofteningFraction,
		NeutralEps:        config.NeutralChargeEps,
	}
}

// UniformField is the optional constant external field used by the
// validation harness. A scoped value, not shared mutable state: the
// engine passes it into each evaluation that should see it.
type UniformField struct {
	Active bool
	E      world.Vec2 // N/C
}

// ForcePair returns the softened Coulomb force on pi due to pj.
// If the softened denominator underflows to zero the force is zero,
// never Inf or NaN.
func ForcePair(env Env, pi, pj *particle.Particle) world.Vec2 {
	// Displacement from j to i: like charges push i away from j.
	r := env.Torus.Displacement(pj.Pos, pi.Pos)
	r2 := r.LenSq()
	eps := env.SofteningFraction * (pi.Radius + pj.Radius)
	den := math.Pow(r2+eps*eps, 1.5)
	if den == 0 {
		return world.Vec2{}
	}
	return r.Scale(env.Coulomb * pi.Charge * pj.Charge / den)
}

// Accelerations computes per-particle acceleration from all pairwise
// forces plus the optional uniform field term (q/m)E. Fixed, massless and
// neutral particles get zero. Dispatches to the active compute backend;
// called once per Runge-Kutta stage.
func Accelerations(env Env, parts []*particle.Particle, uniform UniformField) []world.Vec2 {
	n := len(parts)
	if n == 0 {
		return nil
	}
	packed := pack(parts)
	acc := compute.GetBackend().Accelerations(packed, params(env, uniform))
	out := make([]world.Vec2, n)
	for i := range out {
		out[i] = world.Vec2{X: acc[i*2], Y: acc[i*2+1]}
	}
	return out
}

// Forces returns the net force on each particle (acceleration times
// mass). Fixed particles report zero, matching what the engine exposes
// for display.
func Forces(env Env, parts []*particle.Particle, uniform UniformField) []world.Vec2 {
	acc := Accelerations(env, parts, uniform)
	out := make([]world.Vec2, len(parts))
	for i, p := range parts {
		if p.Fixed {
			continue
		}
		out[i] = acc[i].Scale(p.Mass)
	}
	return out
}

func pack(parts []*particle.Particle) compute.Particles {
	n := len(parts)
	packed := compute.Particles{
		Pos:    make([]float64, n*2),
		Charge: make([]float64, n),
		Radius: make([]float64, n),
		Mass:   make([]float64, n),
		Fixed:  make([]bool, n),
	}
	for i, p := range parts {
		packed.Pos[i*2] = p.Pos.X
		packed.Pos[i*2+1] = p.Pos.Y
		packed.Charge[i] = p.Charge
		packed.Radius[i] = p.Radius
		packed.Mass[i] = p.Mass
		packed.Fixed[i] = p.Fixed
	}
	return packed
}

func params(env Env, uniform UniformField) compute.Params {
	return compute.Params{
		Lx:                env.Torus.Size.X,
		Ly:                env.Torus.Size.Y,
		SofteningFraction: env.SofteningFraction,
		Coulomb:           env.Coulomb,
		NeutralEps:        env.NeutralEps,
		UniformOn:         uniform.Active,
		UniformEx:         uniform.E.X,
		UniformEy:         uniform.E.Y,
	}
}
