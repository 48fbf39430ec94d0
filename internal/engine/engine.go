// Package engine drives the simulation: the per-frame substep loop,
// trail and energy bookkeeping, and the pause/validation state machine.
// All particle mutations (placement, removal, edits, merges) happen at
// frame boundaries; nothing mutates the store while a substep runs.
package engine

import (
	"fmt"

	"github.com/DannyLuna17/ElectroSim/internal/collide"
	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/integrate"
	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/physics"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

// State is the orchestrator mode.
type State int

const (
	Running State = iota
	Paused
	Validating
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Validating:
		return "validating"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Property names an editable particle scalar.
type Property int

const (
	PropCharge Property = iota
	PropMass
	PropRadius
)

// Energies is the per-frame energy summary. Potential deliberately uses
// the unsoftened pair sum, so Total is a qualitative diagnostic.
type Energies struct {
	Kinetic   float64
	Potential float64
	Total     float64
}

// Engine owns the particle store and advances it one rendered frame at a
// time. Not safe for concurrent use; callers sequence input, stepping
// and rendering within a frame.
type Engine struct {
	cfg   *config.Config
	env   physics.Env
	store *particle.Store
	rk    *integrate.RK4

	state    State
	simTime  float64
	speedIdx int

	uniform    physics.UniformField
	validation *Validation

	lastSample float64
	forces     []world.Vec2
	energies   Energies
}

// New builds an engine with an empty scene, paused, at 1x speed when the
// multiplier set contains it.
func New(cfg *config.Config) *Engine {
	e := &Engine{
		cfg:   cfg,
		env:   physics.NewEnv(cfg),
		store: particle.NewStore(cfg),
		rk:    integrate.NewRK4(),
		state: Paused,
	}
	for i, m := range cfg.SpeedMultipliers {
		if m == 1.0 {
			e.speedIdx = i
			break
		}
	}
	return e
}

func (e *Engine) Config() *config.Config    { return e.cfg }
func (e *Engine) Env() physics.Env          { return e.env }
func (e *Engine) Store() *particle.Store    { return e.store }
func (e *Engine) State() State              { return e.state }
func (e *Engine) Time() float64             { return e.simTime }
func (e *Engine) Energies() Energies        { return e.energies }
func (e *Engine) Validation() *Validation   { return e.validation }
func (e *Engine) SpeedIndex() int           { return e.speedIdx }
func (e *Engine) SpeedMultiplier() float64  { return e.cfg.SpeedMultipliers[e.speedIdx] }
func (e *Engine) Particles() []*particle.Particle { return e.store.Particles() }

// Forces returns the net force per particle computed at the end of the
// last stepped frame, indexed by particle id.
func (e *Engine) Forces() []world.Vec2 { return e.forces }

// StepFrame advances one rendered frame: substeps of integration plus
// collision resolution, then trail sampling, force caching and energy
// accounting. Paused engines do nothing.
func (e *Engine) StepFrame() {
	if e.state == Paused {
		return
	}
	substeps := int(float64(e.cfg.SubstepsBase) * e.SpeedMultiplier())
	if substeps < 1 {
		substeps = 1
	}
	for s := 0; s < substeps; s++ {
		parts := e.store.Particles()
		e.rk.Step(e.env, parts, e.uniform, e.cfg.Dt)
		e.wrapAll()
		collide.Resolve(e.env.Torus, e.store)
		e.wrapAll()
		e.store.EnsureSelectionValid()
		e.simTime += e.cfg.Dt
	}
	e.sampleTrails()
	e.forces = physics.Forces(e.env, e.store.Particles(), e.uniform)
	e.refreshEnergies()

	if e.state == Validating {
		e.validation.observe(e)
		if e.validation.Done {
			e.uniform = physics.UniformField{}
			e.state = Paused
		}
	}
}

func (e *Engine) wrapAll() {
	for _, p := range e.store.Particles() {
		p.Pos = e.env.Torus.Wrap(p.Pos)
	}
}

// sampleTrails appends one sample per particle at the configured frame
// cadence of simulated time, then prunes expired samples.
func (e *Engine) sampleTrails() {
	interval := 1.0 / float64(e.cfg.FrameRate)
	if e.simTime-e.lastSample < interval {
		return
	}
	e.lastSample = e.simTime
	for _, p := range e.store.Particles() {
		p.Trail.Append(e.simTime, p.Pos)
		p.Trail.Prune(e.simTime, e.cfg.TrailHistory)
	}
}

func (e *Engine) refreshEnergies() {
	parts := e.store.Particles()
	ke := physics.KineticEnergy(parts)
	pe := physics.PotentialEnergy(e.env, parts)
	e.energies = Energies{Kinetic: ke, Potential: pe, Total: ke + pe}
}

// AddParticle places a particle, clamping its properties and wrapping
// its position. Refused with an error at capacity.
func (e *Engine) AddParticle(pos, vel world.Vec2, charge, mass, radius float64, fixed bool) (*particle.Particle, error) {
	return e.store.Add(e.env.Torus, pos, vel, charge, mass, radius, fixed)
}

// AddDefault places a particle with configured default properties.
// Negative charge when negative is set.
func (e *Engine) AddDefault(pos world.Vec2, negative, fixed bool) (*particle.Particle, error) {
	q := e.cfg.Particles.DefaultCharge
	if negative {
		q = -q
	}
	return e.AddParticle(pos, world.Vec2{}, q, e.cfg.Particles.DefaultMass, e.cfg.Particles.DefaultRadius, fixed)
}

// RemoveParticle deletes by id; remaining ids are renumbered.
func (e *Engine) RemoveParticle(id int) error {
	return e.store.Remove(id)
}

// EditParticle sets one property to an absolute value, clamped to the
// configured bounds.
func (e *Engine) EditParticle(id int, prop Property, value float64) error {
	p, ok := e.store.Get(id)
	if !ok {
		return particle.ErrNotFound
	}
	switch prop {
	case PropCharge:
		e.store.SetCharge(p, value)
	case PropMass:
		e.store.SetMass(p, value)
	case PropRadius:
		e.store.SetRadius(p, value)
	default:
		return ErrUnknownProperty
	}
	return nil
}

// NudgeParticle adjusts one property by a signed number of configured
// edit steps.
func (e *Engine) NudgeParticle(id int, prop Property, steps int) error {
	p, ok := e.store.Get(id)
	if !ok {
		return particle.ErrNotFound
	}
	d := float64(steps)
	switch prop {
	case PropCharge:
		return e.EditParticle(id, prop, p.Charge+d*config.ChargeStep)
	case PropMass:
		return e.EditParticle(id, prop, p.Mass+d*config.MassStep)
	case PropRadius:
		return e.EditParticle(id, prop, p.Radius+d*config.RadiusStep)
	}
	return ErrUnknownProperty
}

// SetSelection selects a particle by id; a negative id clears.
func (e *Engine) SetSelection(id int) error {
	if id < 0 {
		e.store.ClearSelection()
		return nil
	}
	return e.store.Select(id)
}

func (e *Engine) Selected() (int, bool) { return e.store.Selected() }

// NearestParticle returns the particle closest to pos under
// minimum-image distance, for hit-testing.
func (e *Engine) NearestParticle(pos world.Vec2) (int, float64, bool) {
	return e.store.NearestTo(e.env.Torus, pos)
}

// SelectAt selects the particle under pos, allowing a pick margin in
// meters beyond the particle radius. Misses clear the selection and
// report false.
func (e *Engine) SelectAt(pos world.Vec2, margin float64) bool {
	id, dist, ok := e.NearestParticle(pos)
	if ok {
		if p, found := e.store.Get(id); found && dist <= p.Radius+margin {
			_ = e.store.Select(id)
			return true
		}
	}
	e.store.ClearSelection()
	return false
}

// SetSpeedIndex selects one of the configured speed multipliers.
func (e *Engine) SetSpeedIndex(i int) error {
	if i < 0 || i >= len(e.cfg.SpeedMultipliers) {
		return ErrBadSpeedIndex
	}
	e.speedIdx = i
	return nil
}

// SetPaused pauses or resumes. Resuming from validation mode keeps
// validating; pausing it abandons the run.
func (e *Engine) SetPaused(paused bool) {
	if paused {
		if e.state == Validating {
			e.StopValidation()
			return
		}
		e.state = Paused
		return
	}
	if e.state == Paused {
		e.state = Running
	}
}

func (e *Engine) Paused() bool { return e.state == Paused }

// Clear empties the scene and zeroes the clock.
func (e *Engine) Clear() {
	e.store.Clear()
	e.simTime = 0
	e.lastSample = 0
	e.forces = nil
	e.refreshEnergies()
}

// LoadScene replaces the scene with a named preset. Positions given as
// world fractions are resolved against the configured world size. The
// clock resets; the pause state is kept.
func (e *Engine) LoadScene(name string) error {
	scene := config.GetScene(name)
	if scene == nil {
		return fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	if e.state == Validating {
		e.StopValidation()
	}
	e.Clear()
	for _, ps := range scene.Particles {
		pos := world.Vec2{X: ps.FracX * e.cfg.WorldWidth, Y: ps.FracY * e.cfg.WorldHeight}
		vel := world.Vec2{X: ps.VelX, Y: ps.VelY}
		if _, err := e.AddParticle(pos, vel, ps.Charge, ps.Mass, ps.Radius, ps.Fixed); err != nil {
			return err
		}
	}
	return nil
}

// Reset loads the default scene.
func (e *Engine) Reset() error {
	return e.LoadScene("default")
}
