package compute

import (
	"math/rand"
	"testing"
)

func randomParticles(n int, rng *rand.Rand) Particles {
	p := Particles{
		Pos:    make([]float64, n*2),
		Charge: make([]float64, n),
		Radius: make([]float64, n),
		Mass:   make([]float64, n),
		Fixed:  make([]bool, n),
	}
	for i := 0; i < n; i++ {
		p.Pos[i*2] = rng.Float64() * 16
		p.Pos[i*2+1] = rng.Float64() * 10
		p.Charge[i] = (rng.Float64()*2 - 1) * 100e-6
		p.Radius[i] = 0.02 + rng.Float64()*0.13
		p.Mass[i] = 0.005 + rng.Float64()*0.195
		p.Fixed[i] = rng.Intn(10) == 0
	}
	return p
}

func testParams() Params {
	return Params{
		Lx: 16, Ly: 10,
		SofteningFraction: 0.1,
		Coulomb:           8.9875517873681764e9,
		NeutralEps:        1e-12,
	}
}

// The parallel backend shards the outer index but evaluates every
// element with the same serial accumulation, so results must be
// bit-identical, not merely close.
func TestParallelMatchesSerialBitExact(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	serial := &SerialBackend{}
	parallel := NewParallelBackend()
	prm := testParams()

	for _, n := range []int{1, 2, 15, 16, 17, 100} {
		p := randomParticles(n, rng)
		want := serial.Accelerations(p, prm)
		got := parallel.Accelerations(p, prm)
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("n=%d: acceleration[%d] differs: serial %v parallel %v", n, i, want[i], got[i])
			}
		}
	}
}

func TestParallelFieldGridMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	serial := &SerialBackend{}
	parallel := NewParallelBackend()
	prm := testParams()
	p := randomParticles(20, rng)

	points := make([]float64, 0, 200)
	for i := 0; i < 100; i++ {
		points = append(points, rng.Float64()*16, rng.Float64()*10)
	}
	want := serial.FieldGrid(points, p, prm)
	got := parallel.FieldGrid(points, p, prm)
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("field[%d] differs: serial %g parallel %g", i, want[i], got[i])
		}
	}
}

func TestUniformFieldTermAppliesOnlyToMobileCharged(t *testing.T) {
	serial := &SerialBackend{}
	prm := testParams()
	prm.UniformOn = true
	prm.UniformEx = 500

	p := Particles{
		Pos:    []float64{2, 2, 5, 5, 9, 9},
		Charge: []float64{5e-6, 5e-6, 0},
		Radius: []float64{0.1, 0.1, 0.1},
		Mass:   []float64{0.02, 0.02, 0.02},
		Fixed:  []bool{false, true, false},
	}
	acc := serial.Accelerations(p, prm)
	if acc[0*2] <= 0 {
		t.Errorf("mobile charged ax = %g, want positive field push", acc[0])
	}
	if acc[1*2] != 0 || acc[1*2+1] != 0 {
		t.Errorf("fixed particle accelerated: (%g, %g)", acc[2], acc[3])
	}
	if acc[2*2] != 0 || acc[2*2+1] != 0 {
		t.Errorf("neutral particle accelerated: (%g, %g)", acc[4], acc[5])
	}
}

func TestAutoSelectPrefersParallelWhenAvailable(t *testing.T) {
	prev := GetBackend()
	defer SetBackend(prev)

	AutoSelectBackend()
	b := GetBackend()
	if NewParallelBackend().Available() && b.Name() != "parallel" {
		t.Errorf("active backend %q, want parallel on a multi-core host", b.Name())
	}
}
