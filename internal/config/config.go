package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCoulombConstant = 8.9875517873681764e9 // N·m^2/C^2
	DefaultDt              = 0.001                // s, fixed substep
	DefaultSubstepsBase    = 8
	DefaultSofteningFrac   = 0.1
	DefaultMaxParticles    = 100

	DefaultWorldWidth  = 16.0 // m
	DefaultWorldHeight = 10.0 // m
	DefaultPixelsPerM  = 80.0

	DefaultCharge = 5e-6 // C
	DefaultMass   = 0.02 // kg
	DefaultRadius = 0.1  // m

	MinCharge = -100e-6
	MaxCharge = 100e-6
	MinMass   = 0.005
	MaxMass   = 0.2
	MinRadius = 0.02
	MaxRadius = 0.15

	ChargeStep = 1e-6  // C per edit step
	MassStep   = 0.005 // kg per edit step
	RadiusStep = 0.005 // m per edit step

	// |q| at or below this counts as neutral for polarity tagging and
	// force aggregation.
	NeutralChargeEps = 1e-12

	DefaultFrameRate          = 60
	DefaultTrailHistory       = 3.0 // s
	DefaultTrailMaxSamples    = 50000
	DefaultFieldGridStep      = 30 // px
	DefaultValidationDuration = 10.0
)

type Config struct {
	WorldWidth  float64 `yaml:"world_width_m"`
	WorldHeight float64 `yaml:"world_height_m"`
	PixelsPerM  float64 `yaml:"pixels_per_meter"`

	CoulombConstant   float64   `yaml:"coulomb_constant"`
	Dt                float64   `yaml:"dt"`
	SubstepsBase      int       `yaml:"substeps_base"`
	SpeedMultipliers  []float64 `yaml:"speed_multipliers"`
	SofteningFraction float64   `yaml:"softening_fraction"`
	MaxParticles      int       `yaml:"max_particles"`

	Particles ParticleConfig `yaml:"particles"`

	UniformFieldX      float64 `yaml:"uniform_field_x"`
	UniformFieldY      float64 `yaml:"uniform_field_y"`
	ValidationDuration float64 `yaml:"validation_duration"`

	FieldGridStep int    `yaml:"field_grid_step_px"`
	FieldVisMode  string `yaml:"field_vis_mode"` // "brightness" or "length"

	FrameRate       int     `yaml:"frame_rate"`
	TrailHistory    float64 `yaml:"trail_history_s"`
	TrailMaxSamples int     `yaml:"trail_max_samples"`
}

// ParticleConfig holds default values and clamp bounds for particle
// properties. Bounds apply to every placement, edit and merge.
type ParticleConfig struct {
	DefaultCharge float64 `yaml:"default_charge_c"`
	DefaultMass   float64 `yaml:"default_mass_kg"`
	DefaultRadius float64 `yaml:"default_radius_m"`
	MinCharge     float64 `yaml:"min_charge_c"`
	MaxCharge     float64 `yaml:"max_charge_c"`
	MinMass       float64 `yaml:"min_mass_kg"`
	MaxMass       float64 `yaml:"max_mass_kg"`
	MinRadius     float64 `yaml:"min_radius_m"`
	MaxRadius     float64 `yaml:"max_radius_m"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:        DefaultWorldWidth,
		WorldHeight:       DefaultWorldHeight,
		PixelsPerM:        DefaultPixelsPerM,
		CoulombConstant:   DefaultCoulombConstant,
		Dt:                DefaultDt,
		SubstepsBase:      DefaultSubstepsBase,
		SpeedMultipliers:  []float64{0.5, 1.0, 2.0, 4.0},
		SofteningFraction: DefaultSofteningFrac,
		MaxParticles:      DefaultMaxParticles,
		Particles: ParticleConfig{
			DefaultCharge: DefaultCharge,
			DefaultMass:   DefaultMass,
			DefaultRadius: DefaultRadius,
			MinCharge:     MinCharge,
			MaxCharge:     MaxCharge,
			MinMass:       MinMass,
			MaxMass:       MaxMass,
			MinRadius:     MinRadius,
			MaxRadius:     MaxRadius,
		},
		UniformFieldX:      500.0,
		UniformFieldY:      0.0,
		ValidationDuration: DefaultValidationDuration,
		FieldGridStep:      DefaultFieldGridStep,
		FieldVisMode:       "brightness",
		FrameRate:          DefaultFrameRate,
		TrailHistory:       DefaultTrailHistory,
		TrailMaxSamples:    DefaultTrailMaxSamples,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("world size must be positive, got %gx%g", c.WorldWidth, c.WorldHeight)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.SubstepsBase < 1 {
		return fmt.Errorf("substeps_base must be at least 1, got %d", c.SubstepsBase)
	}
	if c.MaxParticles < 1 {
		return fmt.Errorf("max_particles must be at least 1, got %d", c.MaxParticles)
	}
	if len(c.SpeedMultipliers) == 0 {
		return fmt.Errorf("speed_multipliers must not be empty")
	}
	if c.Particles.MinCharge > c.Particles.MaxCharge ||
		c.Particles.MinMass > c.Particles.MaxMass ||
		c.Particles.MinRadius > c.Particles.MaxRadius {
		return fmt.Errorf("particle bounds inverted")
	}
	return nil
}

// ClampCharge clamps q to the configured charge range.
func (pc ParticleConfig) ClampCharge(q float64) float64 {
	return clamp(q, pc.MinCharge, pc.MaxCharge)
}

// ClampMass clamps m to the configured mass range.
func (pc ParticleConfig) ClampMass(m float64) float64 {
	return clamp(m, pc.MinMass, pc.MaxMass)
}

// ClampRadius clamps r to the configured radius range.
func (pc ParticleConfig) ClampRadius(r float64) float64 {
	return clamp(r, pc.MinRadius, pc.MaxRadius)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
