package particle

import (
	"errors"

	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

var (
	// ErrCapacity is returned when a placement would exceed the
	// configured maximum particle count. Placement is refused, never
	// silently dropped.
	ErrCapacity = errors.New("particle: maximum particle count reached")

	// ErrNotFound indicates an id that no longer refers to a particle.
	ErrNotFound = errors.New("particle: no particle with that id")
)

// Store owns the particle list. Ids are always the contiguous range
// [0, N); every removal renumbers the tail. Mutations must happen at
// frame boundaries only, since renumbering invalidates in-flight indices.
// The selection is held as a stable serial handle and translated to a
// positional id on read, so it follows its particle across renumbering.
type Store struct {
	bounds       config.ParticleConfig
	maxParticles int
	neutralEps   float64
	trailCap     int

	particles  []*Particle
	nextSerial uint64
	selected   uint64 // serial handle, 0 when none
}

func NewStore(cfg *config.Config) *Store {
	return &Store{
		bounds:       cfg.Particles,
		maxParticles: cfg.MaxParticles,
		neutralEps:   config.NeutralChargeEps,
		trailCap:     cfg.TrailMaxSamples,
		nextSerial:   1,
	}
}

func (s *Store) Len() int { return len(s.particles) }

// Particles returns the live list. Callers outside the engine must treat
// it as read-only.
func (s *Store) Particles() []*Particle { return s.particles }

// Get returns the particle with the given id.
func (s *Store) Get(id int) (*Particle, bool) {
	if id < 0 || id >= len(s.particles) {
		return nil, false
	}
	return s.particles[id], true
}

// Add creates a particle with clamped properties. The position is wrapped
// into the domain; charge, mass and radius are clamped to the configured
// bounds. Returns ErrCapacity at the particle limit.
func (s *Store) Add(t world.Torus, pos, vel world.Vec2, charge, mass, radius float64, fixed bool) (*Particle, error) {
	if len(s.particles) >= s.maxParticles {
		return nil, ErrCapacity
	}
	charge = s.bounds.ClampCharge(charge)
	mass = s.bounds.ClampMass(mass)
	radius = s.bounds.ClampRadius(radius)
	p := &Particle{
		ID:       len(s.particles),
		Serial:   s.nextSerial,
		Pos:      t.Wrap(pos),
		Vel:      vel,
		Charge:   charge,
		Mass:     mass,
		Radius:   radius,
		Fixed:    fixed,
		Polarity: PolarityOf(charge, s.neutralEps),
		Trail:    NewTrail(s.trailCap),
	}
	s.nextSerial++
	s.particles = append(s.particles, p)
	return p, nil
}

// Remove deletes the particle with the given id and renumbers the rest.
// A selection pointing at the removed particle clears; any other
// selection follows its particle through the serial handle.
func (s *Store) Remove(id int) error {
	if id < 0 || id >= len(s.particles) {
		return ErrNotFound
	}
	s.particles = append(s.particles[:id], s.particles[id+1:]...)
	s.renumber()
	s.EnsureSelectionValid()
	return nil
}

// RemoveIndices deletes the given indices (ascending order not required)
// and renumbers. Used by the collision resolver's merge pass.
func (s *Store) RemoveIndices(indices []int) {
	if len(indices) == 0 {
		return
	}
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		drop[idx] = true
	}
	kept := s.particles[:0]
	for i, p := range s.particles {
		if !drop[i] {
			kept = append(kept, p)
		}
	}
	s.particles = kept
	s.renumber()
	s.EnsureSelectionValid()
}

// Clear removes everything and resets the selection.
func (s *Store) Clear() {
	s.particles = s.particles[:0]
	s.selected = 0
}

func (s *Store) renumber() {
	for i, p := range s.particles {
		p.ID = i
	}
}

// SetCharge clamps and applies a new charge, refreshing the polarity tag.
func (s *Store) SetCharge(p *Particle, charge float64) {
	p.Charge = s.bounds.ClampCharge(charge)
	p.Polarity = PolarityOf(p.Charge, s.neutralEps)
}

// SetMass clamps and applies a new mass.
func (s *Store) SetMass(p *Particle, mass float64) {
	p.Mass = s.bounds.ClampMass(mass)
}

// SetRadius clamps and applies a new radius.
func (s *Store) SetRadius(p *Particle, radius float64) {
	p.Radius = s.bounds.ClampRadius(radius)
}

// RefreshPolarity retags a particle after a direct charge mutation
// (merge pass writes charge without going through SetCharge).
func (s *Store) RefreshPolarity(p *Particle) {
	p.Polarity = PolarityOf(p.Charge, s.neutralEps)
}

// Select marks the particle with the given id as selected. The store
// records the particle's serial handle, not the positional id.
func (s *Store) Select(id int) error {
	if id < 0 || id >= len(s.particles) {
		return ErrNotFound
	}
	s.selected = s.particles[id].Serial
	return nil
}

// Selected translates the selection back to a positional id, or reports
// false when nothing (or nothing still alive) is selected.
func (s *Store) Selected() (int, bool) {
	if s.selected == 0 {
		return -1, false
	}
	for i, p := range s.particles {
		if p.Serial == s.selected {
			return i, true
		}
	}
	return -1, false
}

func (s *Store) ClearSelection() { s.selected = 0 }

// EnsureSelectionValid clears a selection whose particle is gone.
// Called after every topology change.
func (s *Store) EnsureSelectionValid() {
	if s.selected == 0 {
		return
	}
	if _, ok := s.Selected(); !ok {
		s.selected = 0
	}
}

// NearestTo returns the id of the particle closest to pos under
// minimum-image distance, and that distance. ok is false for an empty
// store.
func (s *Store) NearestTo(t world.Torus, pos world.Vec2) (id int, dist float64, ok bool) {
	best := -1
	bestDist := 0.0
	for i, p := range s.particles {
		d := t.Distance(pos, p.Pos)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	return best, bestDist, true
}

// Snapshot deep-copies the particle list for read-only consumers.
func (s *Store) Snapshot() []Particle {
	out := make([]Particle, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.Clone()
	}
	return out
}
