package particle

import (
	"errors"
	"testing"

	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

func newTestStore(t *testing.T) (*Store, world.Torus) {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewStore(cfg), world.NewTorus(cfg.WorldWidth, cfg.WorldHeight)
}

func TestAddClampsAndWraps(t *testing.T) {
	s, tor := newTestStore(t)
	p, err := s.Add(tor, world.Vec2{X: -1, Y: 12}, world.Vec2{}, 500e-6, 10, 1.0, false)
	if err != nil {
		t.Fatal(err)
	}
	if p.Pos.X != 15 || p.Pos.Y != 2 {
		t.Errorf("position %v, want wrapped (15, 2)", p.Pos)
	}
	if p.Charge != 100e-6 {
		t.Errorf("charge %g, want clamped to 100e-6", p.Charge)
	}
	if p.Mass != 0.2 {
		t.Errorf("mass %g, want clamped to 0.2", p.Mass)
	}
	if p.Radius != 0.15 {
		t.Errorf("radius %g, want clamped to 0.15", p.Radius)
	}
	if p.Polarity != Positive {
		t.Errorf("polarity %v, want positive", p.Polarity)
	}
}

func TestAddRefusesBeyondCapacity(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxParticles = 2
	s := NewStore(cfg)
	tor := world.NewTorus(cfg.WorldWidth, cfg.WorldHeight)

	for i := 0; i < 2; i++ {
		if _, err := s.Add(tor, world.Vec2{X: float64(i), Y: 1}, world.Vec2{}, 5e-6, 0.02, 0.1, false); err != nil {
			t.Fatal(err)
		}
	}
	_, err := s.Add(tor, world.Vec2{X: 3, Y: 1}, world.Vec2{}, 5e-6, 0.02, 0.1, false)
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("err = %v, want ErrCapacity", err)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, refusal must not mutate the store", s.Len())
	}
}

func TestRemoveRenumbersContiguously(t *testing.T) {
	s, tor := newTestStore(t)
	for i := 0; i < 4; i++ {
		if _, err := s.Add(tor, world.Vec2{X: float64(i + 1), Y: 1}, world.Vec2{}, 5e-6, 0.02, 0.1, false); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Remove(1); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	for i, p := range s.Particles() {
		if p.ID != i {
			t.Errorf("particle at slot %d has id %d", i, p.ID)
		}
	}
	if err := s.Remove(5); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSelectionFollowsParticleAcrossRemovals(t *testing.T) {
	s, tor := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Add(tor, world.Vec2{X: float64(i + 1), Y: 1}, world.Vec2{}, 5e-6, 0.02, 0.1, false); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Select(2); err != nil {
		t.Fatal(err)
	}

	if err := s.Remove(0); err != nil {
		t.Fatal(err)
	}
	id, ok := s.Selected()
	if !ok || id != 1 {
		t.Errorf("selection = (%d, %v), want (1, true)", id, ok)
	}

	if err := s.Remove(1); err != nil {
		t.Fatal(err)
	}
	if id, ok := s.Selected(); ok {
		t.Errorf("selection = %d, want cleared after removing its particle", id)
	}
}

func TestSetChargeRetagsPolarity(t *testing.T) {
	s, tor := newTestStore(t)
	p, err := s.Add(tor, world.Vec2{X: 1, Y: 1}, world.Vec2{}, 5e-6, 0.02, 0.1, false)
	if err != nil {
		t.Fatal(err)
	}
	s.SetCharge(p, -3e-6)
	if p.Polarity != Negative {
		t.Errorf("polarity %v, want negative", p.Polarity)
	}
	s.SetCharge(p, 0)
	if p.Polarity != Neutral {
		t.Errorf("polarity %v, want neutral", p.Polarity)
	}
	s.SetCharge(p, -900e-6)
	if p.Charge != -100e-6 {
		t.Errorf("charge %g, want clamped to -100e-6", p.Charge)
	}
}

func TestNearestToUsesMinimumImage(t *testing.T) {
	s, tor := newTestStore(t)
	if _, err := s.Add(tor, world.Vec2{X: 15.5, Y: 5}, world.Vec2{}, 5e-6, 0.02, 0.1, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(tor, world.Vec2{X: 8, Y: 5}, world.Vec2{}, 5e-6, 0.02, 0.1, false); err != nil {
		t.Fatal(err)
	}

	// Query near the left edge: particle 0 across the seam is closer
	// than particle 1 in the middle.
	id, dist, ok := s.NearestTo(tor, world.Vec2{X: 0.2, Y: 5})
	if !ok || id != 0 {
		t.Fatalf("nearest = (%d, %v), want particle 0 across the seam", id, ok)
	}
	if dist > 0.71 {
		t.Errorf("distance %g, want the 0.7 wrap distance", dist)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s, tor := newTestStore(t)
	p, err := s.Add(tor, world.Vec2{X: 1, Y: 1}, world.Vec2{}, 5e-6, 0.02, 0.1, false)
	if err != nil {
		t.Fatal(err)
	}
	p.Trail.Append(0, p.Pos)

	snap := s.Snapshot()
	snap[0].Pos.X = 99
	snap[0].Trail.Append(1, world.Vec2{X: 99, Y: 99})

	if p.Pos.X != 1 {
		t.Error("snapshot mutation leaked into the store")
	}
	if p.Trail.Len() != 1 {
		t.Errorf("trail len %d, want 1", p.Trail.Len())
	}
}
