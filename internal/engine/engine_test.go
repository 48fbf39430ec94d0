package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/engine"
	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

var _ = Describe("Engine", func() {
	var (
		cfg *config.Config
		e   *engine.Engine
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		e = engine.New(cfg)
	})

	Describe("frame stepping", func() {
		It("does not advance while paused", func() {
			_, err := e.AddDefault(world.Vec2{X: 8, Y: 5}, false, false)
			Expect(err).NotTo(HaveOccurred())
			e.StepFrame()
			Expect(e.Time()).To(BeZero())
		})

		It("advances substeps*dt of simulated time per frame", func() {
			_, err := e.AddDefault(world.Vec2{X: 8, Y: 5}, false, false)
			Expect(err).NotTo(HaveOccurred())
			e.SetPaused(false)
			e.StepFrame()
			want := float64(cfg.SubstepsBase) * cfg.Dt
			Expect(e.Time()).To(BeNumerically("~", want, 1e-12))
		})

		It("scales the substep count with the speed multiplier", func() {
			_, err := e.AddDefault(world.Vec2{X: 8, Y: 5}, false, false)
			Expect(err).NotTo(HaveOccurred())
			e.SetPaused(false)
			Expect(e.SetSpeedIndex(3)).To(Succeed()) // 4x
			e.StepFrame()
			want := float64(cfg.SubstepsBase) * 4 * cfg.Dt
			Expect(e.Time()).To(BeNumerically("~", want, 1e-12))
		})

		It("caches per-particle forces for display", func() {
			_, err := e.AddParticle(world.Vec2{X: 7, Y: 5}, world.Vec2{}, 5e-6, 0.02, 0.1, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddParticle(world.Vec2{X: 9, Y: 5}, world.Vec2{}, 5e-6, 0.02, 0.1, false)
			Expect(err).NotTo(HaveOccurred())
			e.SetPaused(false)
			e.StepFrame()
			forces := e.Forces()
			Expect(forces).To(HaveLen(2))
			Expect(forces[0].X).To(BeNumerically("<", 0), "left particle pushed left")
			Expect(forces[1].X).To(BeNumerically(">", 0), "right particle pushed right")
		})

		It("samples trails at the frame cadence and prunes old samples", func() {
			p, err := e.AddParticle(world.Vec2{X: 8, Y: 5}, world.Vec2{X: 1, Y: 0}, 5e-6, 0.02, 0.1, false)
			Expect(err).NotTo(HaveOccurred())
			e.SetPaused(false)
			for i := 0; i < 10; i++ {
				e.StepFrame()
			}
			Expect(p.Trail.Len()).To(BeNumerically(">", 0))
			last, ok := p.Trail.Last()
			Expect(ok).To(BeTrue())
			Expect(last.T).To(BeNumerically("<=", e.Time()))
		})
	})

	Describe("particle operations", func() {
		It("refuses placement beyond capacity", func() {
			cfg.MaxParticles = 1
			e = engine.New(cfg)
			_, err := e.AddDefault(world.Vec2{X: 1, Y: 1}, false, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = e.AddDefault(world.Vec2{X: 2, Y: 1}, false, false)
			Expect(err).To(MatchError(particle.ErrCapacity))
		})

		It("clamps edits to configured bounds", func() {
			p, err := e.AddDefault(world.Vec2{X: 1, Y: 1}, false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.EditParticle(p.ID, engine.PropMass, 99)).To(Succeed())
			Expect(p.Mass).To(Equal(cfg.Particles.MaxMass))
		})

		It("nudges properties by configured steps", func() {
			p, err := e.AddDefault(world.Vec2{X: 1, Y: 1}, false, false)
			Expect(err).NotTo(HaveOccurred())
			q0 := p.Charge
			Expect(e.NudgeParticle(p.ID, engine.PropCharge, -2)).To(Succeed())
			Expect(p.Charge).To(BeNumerically("~", q0-2*config.ChargeStep, 1e-18))
		})

		It("reports unknown ids and properties", func() {
			Expect(e.RemoveParticle(7)).To(MatchError(particle.ErrNotFound))
			p, err := e.AddDefault(world.Vec2{X: 1, Y: 1}, false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.EditParticle(p.ID, engine.Property(42), 1)).To(MatchError(engine.ErrUnknownProperty))
		})

		It("clears the selection when the selected particle is removed", func() {
			_, err := e.AddDefault(world.Vec2{X: 1, Y: 1}, false, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.SetSelection(0)).To(Succeed())
			Expect(e.RemoveParticle(0)).To(Succeed())
			_, ok := e.Selected()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("scene presets", func() {
		It("rejects unknown scene names", func() {
			Expect(e.LoadScene("nope")).To(MatchError(engine.ErrUnknownScene))
		})

		It("loads the default scene on reset", func() {
			Expect(e.Reset()).To(Succeed())
			Expect(e.Store().Len()).To(Equal(1))
			Expect(e.Particles()[0].Charge).To(BeNumerically("<", 0))
			Expect(e.Time()).To(BeZero())
		})

		It("loads multi-particle presets at world-fraction positions", func() {
			Expect(e.LoadScene("dipole")).To(Succeed())
			Expect(e.Store().Len()).To(Equal(2))
			Expect(e.Particles()[0].Pos.X).To(BeNumerically("~", 0.35*cfg.WorldWidth, 1e-12))
		})
	})

	Describe("validation mode", func() {
		BeforeEach(func() {
			cfg.ValidationDuration = 0.5
			e = engine.New(cfg)
		})

		It("runs a single particle against the closed-form trajectory", func() {
			Expect(e.StartValidation()).To(Succeed())
			Expect(e.State()).To(Equal(engine.Validating))
			Expect(e.Store().Len()).To(Equal(1))

			for i := 0; i < 200 && e.State() == engine.Validating; i++ {
				e.StepFrame()
			}

			v := e.Validation()
			Expect(v.Done).To(BeTrue())
			Expect(e.State()).To(Equal(engine.Paused))
			Expect(v.MaxPosError).To(BeNumerically("<", 1e-3))
			Expect(v.FinalSimulated.X).To(BeNumerically("~", v.FinalAnalytic.X, 1e-6))
		})

		It("pauses and drops the uniform field when stopped early", func() {
			Expect(e.StartValidation()).To(Succeed())
			e.StepFrame()
			e.StopValidation()
			Expect(e.State()).To(Equal(engine.Paused))

			// With the field gone a lone particle coasts at constant
			// velocity.
			p := e.Particles()[0]
			v0 := p.Vel
			e.SetPaused(false)
			e.StepFrame()
			Expect(p.Vel.X).To(BeNumerically("~", v0.X, 1e-12))
		})
	})

	Describe("energy accounting", func() {
		It("keeps orbit total energy drift bounded over many substeps", func() {
			Expect(e.LoadScene("orbit")).To(Succeed())
			e.SetPaused(false)
			e.StepFrame()
			e0 := e.Energies().Total
			Expect(e0).NotTo(BeZero())

			// ~10000 substeps at the default 8 per frame.
			for i := 0; i < 1250; i++ {
				e.StepFrame()
			}
			drift := math.Abs(e.Energies().Total - e0)
			Expect(drift).To(BeNumerically("<", 0.01*math.Abs(e0)))
		})

		It("ignores fixed particles in kinetic energy", func() {
			Expect(e.LoadScene("orbit")).To(Succeed())
			anchor := e.Particles()[0]
			Expect(anchor.Fixed).To(BeTrue())
			e.SetPaused(false)
			e.StepFrame()
			ke := e.Energies().Kinetic
			mobile := e.Particles()[1]
			want := 0.5 * mobile.Mass * mobile.Vel.LenSq()
			Expect(ke).To(BeNumerically("~", want, 1e-12))
		})
	})
})
