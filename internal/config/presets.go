package config

// ParticleSpec describes one particle of a scene preset. Positions are
// fractions of the world size so presets work for any world dimensions.
type ParticleSpec struct {
	FracX  float64 `yaml:"frac_x"`
	FracY  float64 `yaml:"frac_y"`
	VelX   float64 `yaml:"vel_x"`
	VelY   float64 `yaml:"vel_y"`
	Charge float64 `yaml:"charge_c"`
	Mass   float64 `yaml:"mass_kg"`
	Radius float64 `yaml:"radius_m"`
	Fixed  bool    `yaml:"fixed"`
}

type Scene struct {
	Description string         `yaml:"description"`
	Particles   []ParticleSpec `yaml:"particles"`
}

var Scenes = map[string]*Scene{
	"default": {
		Description: "single negative particle at rest at world center",
		Particles: []ParticleSpec{
			{FracX: 0.5, FracY: 0.5, Charge: -DefaultCharge, Mass: DefaultMass, Radius: DefaultRadius},
		},
	},
	"dipole": {
		Description: "opposite charges approaching along the x axis",
		Particles: []ParticleSpec{
			{FracX: 0.35, FracY: 0.5, VelX: 0.5, Charge: DefaultCharge, Mass: DefaultMass, Radius: DefaultRadius},
			{FracX: 0.65, FracY: 0.5, VelX: -0.5, Charge: -DefaultCharge, Mass: DefaultMass, Radius: DefaultRadius},
		},
	},
	"orbit": {
		Description: "mobile negative charge around a fixed positive anchor",
		Particles: []ParticleSpec{
			{FracX: 0.5, FracY: 0.5, Charge: 20e-6, Mass: MaxMass, Radius: DefaultRadius, Fixed: true},
			{FracX: 0.5, FracY: 0.3, VelX: 4.74, Charge: -DefaultCharge, Mass: DefaultMass, Radius: 0.05},
		},
	},
	"billiards": {
		Description: "same-sign particles set up for elastic bounces",
		Particles: []ParticleSpec{
			{FracX: 0.25, FracY: 0.5, VelX: 2.0, Charge: DefaultCharge, Mass: DefaultMass, Radius: DefaultRadius},
			{FracX: 0.75, FracY: 0.5, VelX: -2.0, Charge: DefaultCharge, Mass: DefaultMass, Radius: DefaultRadius},
			{FracX: 0.5, FracY: 0.25, VelY: 2.0, Charge: DefaultCharge, Mass: DefaultMass, Radius: DefaultRadius},
			{FracX: 0.5, FracY: 0.75, VelY: -2.0, Charge: DefaultCharge, Mass: DefaultMass, Radius: DefaultRadius},
		},
	},
	"lattice": {
		Description: "3x3 alternating-charge grid",
		Particles: func() []ParticleSpec {
			specs := make([]ParticleSpec, 0, 9)
			for row := 0; row < 3; row++ {
				for col := 0; col < 3; col++ {
					q := DefaultCharge
					if (row+col)%2 == 1 {
						q = -DefaultCharge
					}
					specs = append(specs, ParticleSpec{
						FracX:  0.3 + 0.2*float64(col),
						FracY:  0.3 + 0.2*float64(row),
						Charge: q,
						Mass:   DefaultMass,
						Radius: 0.06,
					})
				}
			}
			return specs
		}(),
	},
}

func GetScene(name string) *Scene {
	return Scenes[name]
}

func ListScenes() []string {
	names := make([]string, 0, len(Scenes))
	for name := range Scenes {
		names = append(names, name)
	}
	return names
}
