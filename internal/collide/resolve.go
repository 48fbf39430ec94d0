// Package collide resolves particle overlaps in two passes per substep:
// an inelastic merge pass for opposite-charge pairs, then an elastic
// restitution-1 impulse pass for whatever overlaps remain.
package collide

import (
	"math"

	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

// Resolve runs both passes against the store. Overlap means minimum-image
// distance strictly below the radius sum; exactly coincident pairs are
// skipped, the softened force law pushes them apart instead.
func Resolve(t world.Torus, s *particle.Store) {
	if s.Len() <= 1 {
		return
	}
	mergePass(t, s)
	elasticPass(t, s.Particles())
}

// mergePass absorbs overlapping opposite-charge pairs. The lower-index
// particle survives with summed mass and charge, area-preserving radius,
// and momentum-conserving velocity; a survivor can absorb several
// partners in one pass. Absorbed indices are removed together at the end
// so the pair loop sees stable indices throughout.
func mergePass(t world.Torus, s *particle.Store) {
	parts := s.Particles()
	n := len(parts)
	removed := make(map[int]bool)
	var toDelete []int

	for i := 0; i < n; i++ {
		if removed[i] {
			continue
		}
		pi := parts[i]
		for j := i + 1; j < n; j++ {
			if removed[j] {
				continue
			}
			pj := parts[j]
			r := t.Displacement(pi.Pos, pj.Pos)
			dist := r.Len()
			if dist >= pi.Radius+pj.Radius || dist == 0 {
				continue
			}
			if pi.Charge*pj.Charge >= 0 {
				continue
			}
			merge(t, s, pi, pj, r)
			removed[j] = true
			toDelete = append(toDelete, j)
		}
	}
	s.RemoveIndices(toDelete)
}

// merge writes the combined particle into pi. r is the minimum-image
// displacement from pi to pj.
func merge(t world.Torus, s *particle.Store, pi, pj *particle.Particle, r world.Vec2) {
	m1, m2 := pi.Mass, pj.Mass
	total := m1 + m2
	fixed := pi.Fixed || pj.Fixed

	var pos, vel world.Vec2
	if fixed {
		// Stick at the pinned position, at rest.
		if pj.Fixed {
			pos = pj.Pos
		} else {
			pos = pi.Pos
		}
	} else {
		pos = pi.Pos.Add(r.Scale(m2 / total))
		vel = pi.Vel.Scale(m1 / total).Add(pj.Vel.Scale(m2 / total))
	}

	pi.Mass = total
	pi.Charge += pj.Charge
	pi.Radius = math.Sqrt(pi.Radius*pi.Radius + pj.Radius*pj.Radius)
	pi.Fixed = fixed
	pi.Pos = pos
	pi.Vel = vel
	s.RefreshPolarity(pi)

	// Keep the heavier participant's trail, tie broken by length, and
	// bridge it to the merged position.
	if m2 > m1 || (m2 == m1 && pj.Trail.Len() > pi.Trail.Len()) {
		pi.Trail = pj.Trail
	}
	lastT := 0.0
	if last, ok := pi.Trail.Last(); ok {
		lastT = last.T
	}
	pi.Trail.Append(lastT, pi.Pos)
	pi.Pos = t.Wrap(pi.Pos)

	pi.MergeHistory = append(pi.MergeHistory, pj.MergeHistory...)
	pi.MergeHistory = append(pi.MergeHistory, pj.ID)
}

// elasticPass applies positional correction and a restitution-1 impulse
// to each remaining overlapping pair. Fixed participants act as
// infinite-mass anchors; pairs already separating along the contact
// normal are left alone.
func elasticPass(t world.Torus, parts []*particle.Particle) {
	n := len(parts)
	for i := 0; i < n; i++ {
		pi := parts[i]
		for j := i + 1; j < n; j++ {
			pj := parts[j]
			r := t.Displacement(pi.Pos, pj.Pos)
			dist := r.Len()
			if dist >= pi.Radius+pj.Radius || dist == 0 {
				continue
			}

			normal := r.Scale(1 / dist)
			separate(t, pi, pj, normal, pi.Radius+pj.Radius-dist)

			vRelN := pj.Vel.Sub(pi.Vel).Dot(normal)
			if vRelN > 0 {
				continue
			}
			invI, invJ := pi.InvMass(), pj.InvMass()
			invSum := invI + invJ
			if invSum == 0 {
				continue
			}
			const restitution = 1.0
			impulse := normal.Scale(-(1 + restitution) * vRelN / invSum)
			pi.Vel = pi.Vel.Sub(impulse.Scale(invI))
			pj.Vel = pj.Vel.Add(impulse.Scale(invJ))
		}
	}
}

// separate displaces the pair apart along the normal. The split is
// weighted so the heavier side moves less; a fixed side does not move at
// all.
func separate(t world.Torus, pi, pj *particle.Particle, normal world.Vec2, penetration float64) {
	switch {
	case pi.Fixed && pj.Fixed:
	case pi.Fixed:
		pj.Pos = t.Wrap(pj.Pos.Add(normal.Scale(penetration)))
	case pj.Fixed:
		pi.Pos = t.Wrap(pi.Pos.Sub(normal.Scale(penetration)))
	default:
		total := pi.Mass + pj.Mass
		if total <= 0 {
			return
		}
		pi.Pos = t.Wrap(pi.Pos.Sub(normal.Scale(penetration * pj.Mass / total)))
		pj.Pos = t.Wrap(pj.Pos.Add(normal.Scale(penetration * pi.Mass / total)))
	}
}
