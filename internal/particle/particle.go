// Package particle holds the authoritative particle records and their
// trajectory history.
package particle

import (
	"math"

	"github.com/DannyLuna17/ElectroSim/internal/world"
)

// Polarity tags the sign of a particle's charge relative to the neutral
// threshold. It is presentational only and recomputed whenever charge
// changes.
type Polarity int8

const (
	Neutral Polarity = iota
	Positive
	Negative
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// PolarityOf classifies a charge against the neutral epsilon.
func PolarityOf(charge, neutralEps float64) Polarity {
	if math.Abs(charge) <= neutralEps {
		return Neutral
	}
	if charge > 0 {
		return Positive
	}
	return Negative
}

// Particle is a charged, finite-radius body on the torus.
//
// ID stays contiguous in [0, N): the store renumbers after every removal
// or merge. Fixed particles have infinite effective mass and are never
// moved by integration or collisions.
type Particle struct {
	ID int

	// Serial is a stable creation-order handle. Unlike ID it survives
	// renumbering, so references held across removals (selection, UI
	// focus) track the particle, not its slot.
	Serial uint64

	Pos      world.Vec2 // m, always wrapped into the domain
	Vel      world.Vec2 // m/s
	Charge   float64    // C
	Mass     float64    // kg
	Radius   float64    // m
	Fixed    bool
	Polarity Polarity

	// MergeHistory lists ids of ancestors absorbed into this particle,
	// in absorption order. Ids refer to the numbering at merge time.
	MergeHistory []int

	Trail Trail
}

// InvMass returns 1/mass, or 0 for fixed or non-positive-mass particles
// (infinite-mass behavior in collisions).
func (p *Particle) InvMass() float64 {
	if p.Fixed || p.Mass <= 0 {
		return 0
	}
	return 1.0 / p.Mass
}

// Clone returns a deep copy for read-only snapshots.
func (p *Particle) Clone() Particle {
	c := *p
	c.MergeHistory = append([]int(nil), p.MergeHistory...)
	c.Trail = p.Trail.Clone()
	return c
}
