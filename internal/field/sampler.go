// Package field provides a cached regular-grid sampler over the electric
// field for renderers, plus a per-point fallback.
package field

import (
	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/physics"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

// GridParams keys the cached grid geometry. Changing any of these
// rebuilds the sample centers; otherwise they are reused across frames
// and only the vectors are recomputed.
type GridParams struct {
	WorldWidth        float64
	WorldHeight       float64
	PixelsPerMeter    float64
	GridStepPx        int
	SofteningFraction float64
}

func ParamsFromConfig(cfg *config.Config) GridParams {
	return GridParams{
		WorldWidth:        cfg.WorldWidth,
		WorldHeight:       cfg.WorldHeight,
		PixelsPerMeter:    cfg.PixelsPerM,
		GridStepPx:        cfg.FieldGridStep,
		SofteningFraction: cfg.SofteningFraction,
	}
}

// Sample is one grid cell: its center in screen pixels and world meters,
// and the field vector there.
type Sample struct {
	CenterPx world.Vec2
	CenterM  world.Vec2
	E        world.Vec2
}

// Sampler precomputes field vectors on a screen-aligned grid once per
// frame. Centers sit at gridStep/2 + k*gridStep pixels on each axis.
type Sampler struct {
	params  GridParams
	rows    int
	cols    int
	samples []Sample
}

func NewSampler(params GridParams) *Sampler {
	s := &Sampler{}
	s.rebuild(params)
	return s
}

// Reconfigure rebuilds the grid geometry if params changed.
func (s *Sampler) Reconfigure(params GridParams) {
	if params != s.params {
		s.rebuild(params)
	}
}

func (s *Sampler) rebuild(params GridParams) {
	s.params = params
	step := params.GridStepPx
	if step <= 0 {
		s.rows, s.cols, s.samples = 0, 0, nil
		return
	}
	widthPx := int(params.WorldWidth*params.PixelsPerMeter + 0.5)
	heightPx := int(params.WorldHeight*params.PixelsPerMeter + 0.5)
	s.cols = gridCells(widthPx, step)
	s.rows = gridCells(heightPx, step)
	s.samples = make([]Sample, 0, s.rows*s.cols)
	for r := 0; r < s.rows; r++ {
		y := step/2 + r*step
		for c := 0; c < s.cols; c++ {
			x := step/2 + c*step
			s.samples = append(s.samples, Sample{
				CenterPx: world.Vec2{X: float64(x), Y: float64(y)},
				CenterM:  world.Vec2{X: float64(x) / params.PixelsPerMeter, Y: float64(y) / params.PixelsPerMeter},
			})
		}
	}
}

func gridCells(spanPx, step int) int {
	n := (spanPx-step/2)/step + 1
	if n < 0 {
		return 0
	}
	return n
}

// Recompute evaluates the field at every cached center through the
// compute backend. Call once per rendered frame.
func (s *Sampler) Recompute(env physics.Env, parts []*particle.Particle) {
	if len(s.samples) == 0 {
		return
	}
	points := make([]world.Vec2, len(s.samples))
	for i := range s.samples {
		points[i] = s.samples[i].CenterM
	}
	vectors := physics.FieldGrid(env, parts, points)
	for i := range s.samples {
		s.samples[i].E = vectors[i]
	}
}

func (s *Sampler) Rows() int { return s.rows }
func (s *Sampler) Cols() int { return s.cols }

// Samples returns the cached (center, vector) cells in row-major order.
// Callers must not mutate the slice.
func (s *Sampler) Samples() []Sample { return s.samples }

// At is the non-cached fallback: evaluate the field at an arbitrary
// world point on demand.
func (s *Sampler) At(env physics.Env, parts []*particle.Particle, point world.Vec2) world.Vec2 {
	return physics.FieldAt(env, parts, point)
}
