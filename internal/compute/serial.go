package compute

import "math"

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }

func (s *SerialBackend) Accelerations(p Particles, prm Params) []float64 {
	n := p.N()
	acc := make([]float64, n*2)
	for i := 0; i < n; i++ {
		accumulateAcceleration(i, p, prm, acc)
	}
	return acc
}

func (s *SerialBackend) FieldGrid(points []float64, p Particles, prm Params) []float64 {
	out := make([]float64, len(points))
	for m := 0; m < len(points)/2; m++ {
		accumulateField(m, points, p, prm, out)
	}
	return out
}

// accumulateAcceleration writes particle i's acceleration into acc.
// Each ordered pair is evaluated independently; the loop does not exploit
// action-reaction symmetry so that any subset of indices can be computed
// in isolation by a parallel worker.
func accumulateAcceleration(i int, p Particles, prm Params, acc []float64) {
	if p.Fixed[i] || p.Mass[i] <= 0 || math.Abs(p.Charge[i]) <= prm.NeutralEps {
		return
	}
	xi, yi := p.Pos[i*2], p.Pos[i*2+1]
	qi, ri := p.Charge[i], p.Radius[i]
	fx, fy := 0.0, 0.0
	for j := 0; j < p.N(); j++ {
		if j == i {
			continue
		}
		qj := p.Charge[j]
		if math.Abs(qj) <= prm.NeutralEps {
			continue
		}
		dx := minImage(xi-p.Pos[j*2], prm.Lx)
		dy := minImage(yi-p.Pos[j*2+1], prm.Ly)
		r2 := dx*dx + dy*dy
		eps := prm.SofteningFraction * (ri + p.Radius[j])
		den := math.Pow(r2+eps*eps, 1.5)
		if den == 0 {
			continue
		}
		coef := prm.Coulomb * qi * qj / den
		fx += coef * dx
		fy += coef * dy
	}
	if prm.UniformOn {
		fx += qi * prm.UniformEx
		fy += qi * prm.UniformEy
	}
	invM := 1.0 / p.Mass[i]
	acc[i*2] = fx * invM
	acc[i*2+1] = fy * invM
}

// accumulateField writes the superposed field at sample point m into out.
// Softening here is per source radius, not per contact pair.
func accumulateField(m int, points []float64, p Particles, prm Params, out []float64) {
	px, py := points[m*2], points[m*2+1]
	ex, ey := 0.0, 0.0
	for j := 0; j < p.N(); j++ {
		q := p.Charge[j]
		if math.Abs(q) <= prm.NeutralEps {
			continue
		}
		dx := minImage(px-p.Pos[j*2], prm.Lx)
		dy := minImage(py-p.Pos[j*2+1], prm.Ly)
		r2 := dx*dx + dy*dy
		eps := prm.SofteningFraction * p.Radius[j]
		den := math.Pow(r2+eps*eps, 1.5)
		if den == 0 {
			continue
		}
		coef := prm.Coulomb * q / den
		ex += coef * dx
		ey += coef * dy
	}
	out[m*2] = ex
	out[m*2+1] = ey
}

func minImage(d, l float64) float64 {
	if d > 0.5*l {
		return d - l
	}
	if d < -0.5*l {
		return d + l
	}
	return d
}
