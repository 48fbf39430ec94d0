package physics

import (
	"github.com/DannyLuna17/ElectroSim/internal/particle"
)

// Floor applied to pair distances in the potential sum instead of the
// force-law softening.
const potentialDistanceFloor = 1e-6

// KineticEnergy sums 0.5*m*|v|^2 over mobile particles. Fixed particles
// carry no kinetic energy regardless of any stored velocity.
func KineticEnergy(parts []*particle.Particle) float64 {
	e := 0.0
	for _, p := range parts {
		if p.Fixed {
			continue
		}
		e += 0.5 * p.Mass * p.Vel.LenSq()
	}
	return e
}

// PotentialEnergy sums k*qi*qj/max(r, floor) over unordered pairs with
// minimum-image distance. The force-law softening is intentionally
// omitted; the value is a qualitative diagnostic, not the exact potential
// of the softened dynamics.
func PotentialEnergy(env Env, parts []*particle.Particle) float64 {
	e := 0.0
	n := len(parts)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := env.Torus.Distance(parts[i].Pos, parts[j].Pos)
			if r < potentialDistanceFloor {
				r = potentialDistanceFloor
			}
			e += env.Coulomb * parts[i].Charge * parts[j].Charge / r
		}
	}
	return e
}
