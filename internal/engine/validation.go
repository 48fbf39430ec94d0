package engine

import (
	"github.com/DannyLuna17/ElectroSim/internal/physics"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

// Validation tracks the uniform-field check: a single particle under a
// constant field against the closed-form trajectory
// x(t) = x0 + v0*t + 0.5*(q/m)*E*t^2. Error vectors are minimum-image,
// so a trajectory crossing the torus seam compares correctly.
type Validation struct {
	StartTime float64
	Duration  float64

	X0    world.Vec2
	V0    world.Vec2
	Accel world.Vec2

	// Latest per-frame comparison.
	Elapsed  float64
	PosError world.Vec2
	VelError world.Vec2

	// MaxPosError is the largest position error magnitude seen so far.
	MaxPosError float64

	// Frozen at the end of the run for inspection.
	Done           bool
	FinalAnalytic  world.Vec2
	FinalSimulated world.Vec2
}

// StartValidation clears the scene, spawns a single positive default
// particle at the world center at rest, switches on the configured
// uniform field and enters Validating.
func (e *Engine) StartValidation() error {
	e.Clear()
	center := world.Vec2{X: e.cfg.WorldWidth / 2, Y: e.cfg.WorldHeight / 2}
	p, err := e.AddDefault(center, false, false)
	if err != nil {
		return err
	}
	e.uniform = physics.UniformField{
		Active: true,
		E:      world.Vec2{X: e.cfg.UniformFieldX, Y: e.cfg.UniformFieldY},
	}
	e.validation = &Validation{
		StartTime: e.simTime,
		Duration:  e.cfg.ValidationDuration,
		X0:        p.Pos,
		V0:        p.Vel,
		Accel:     e.uniform.E.Scale(p.Charge / p.Mass),
	}
	e.state = Validating
	return nil
}

// StopValidation abandons an in-progress run: the uniform field goes
// away and the engine pauses. The report, if any, keeps its last values.
func (e *Engine) StopValidation() {
	e.uniform = physics.UniformField{}
	if e.state == Validating {
		e.state = Paused
	}
}

// AnalyticAt returns the wrapped closed-form position at elapsed time t.
func (v *Validation) AnalyticAt(tor world.Torus, t float64) world.Vec2 {
	raw := v.X0.Add(v.V0.Scale(t)).Add(v.Accel.Scale(0.5 * t * t))
	return tor.Wrap(raw)
}

// observe records this frame's analytic-vs-simulated comparison and
// finalizes the run once the configured duration has elapsed.
func (v *Validation) observe(e *Engine) {
	parts := e.store.Particles()
	if len(parts) == 0 {
		v.Done = true
		return
	}
	p := parts[0]
	v.Elapsed = e.simTime - v.StartTime
	analytic := v.AnalyticAt(e.env.Torus, v.Elapsed)
	v.PosError = e.env.Torus.Displacement(analytic, p.Pos)
	v.VelError = p.Vel.Sub(v.V0.Add(v.Accel.Scale(v.Elapsed)))
	if m := v.PosError.Len(); m > v.MaxPosError {
		v.MaxPosError = m
	}
	if v.Elapsed >= v.Duration {
		v.Done = true
		v.FinalAnalytic = analytic
		v.FinalSimulated = p.Pos
	}
}
