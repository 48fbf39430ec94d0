// Package integrate advances particle state in time with the classical
// fourth-order Runge-Kutta scheme.
package integrate

import (
	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/physics"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

var (
	stageWeights = [4]float64{1, 2, 2, 1}
	stageOffsets = [4]float64{0, 0.5, 0.5, 1}
)

// RK4 holds reusable stage buffers. Positions are wrapped onto the torus
// before every force evaluation so minimum-image displacements stay
// correct, and again on the final write-back. Fixed particles act as
// sources at their pinned position and are never written back.
type RK4 struct {
	scratch []*particle.Particle
	pos0    []world.Vec2
	vel0    []world.Vec2
	prevV   []world.Vec2
	sumV    []world.Vec2
	sumA    []world.Vec2
}

func NewRK4() *RK4 {
	return &RK4{}
}

// Step advances every mobile particle by dt. Forces are re-evaluated at
// each of the four stages on temporary state; the caller's particles are
// only mutated at the end.
func (r *RK4) Step(env physics.Env, parts []*particle.Particle, uniform physics.UniformField, dt float64) {
	n := len(parts)
	if n == 0 {
		return
	}
	r.resize(n)
	for i, p := range parts {
		r.pos0[i] = p.Pos
		r.vel0[i] = p.Vel
		s := r.scratch[i]
		s.Charge = p.Charge
		s.Mass = p.Mass
		s.Radius = p.Radius
		s.Fixed = p.Fixed
		r.sumV[i] = world.Vec2{}
		r.sumA[i] = world.Vec2{}
	}

	var prevA []world.Vec2
	for stage := 0; stage < 4; stage++ {
		h := dt * stageOffsets[stage]
		for i := range parts {
			s := r.scratch[i]
			if stage == 0 || s.Fixed {
				s.Pos = r.pos0[i]
				s.Vel = r.vel0[i]
				continue
			}
			s.Pos = env.Torus.Wrap(r.pos0[i].Add(r.prevV[i].Scale(h)))
			s.Vel = r.vel0[i].Add(prevA[i].Scale(h))
		}
		acc := physics.Accelerations(env, r.scratch, uniform)
		w := stageWeights[stage]
		for i := range parts {
			r.sumV[i] = r.sumV[i].Add(r.scratch[i].Vel.Scale(w))
			r.sumA[i] = r.sumA[i].Add(acc[i].Scale(w))
			r.prevV[i] = r.scratch[i].Vel
		}
		prevA = acc
	}

	c := dt / 6
	for i, p := range parts {
		if p.Fixed {
			continue
		}
		p.Pos = env.Torus.Wrap(r.pos0[i].Add(r.sumV[i].Scale(c)))
		p.Vel = r.vel0[i].Add(r.sumA[i].Scale(c))
	}
}

func (r *RK4) resize(n int) {
	if cap(r.pos0) < n {
		r.pos0 = make([]world.Vec2, n)
		r.vel0 = make([]world.Vec2, n)
		r.prevV = make([]world.Vec2, n)
		r.sumV = make([]world.Vec2, n)
		r.sumA = make([]world.Vec2, n)
	}
	r.pos0 = r.pos0[:n]
	r.vel0 = r.vel0[:n]
	r.prevV = r.prevV[:n]
	r.sumV = r.sumV[:n]
	r.sumA = r.sumA[:n]
	for len(r.scratch) < n {
		r.scratch = append(r.scratch, &particle.Particle{})
	}
	r.scratch = r.scratch[:n]
}
