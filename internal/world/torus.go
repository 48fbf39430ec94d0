// Package world provides the periodic 2D simulation domain and its
// distance primitives.
//
// Every periodic-distance computation in the repository (force kernels,
// field evaluation, collision overlap tests, selection hit-testing) goes
// through [Torus.Displacement] so that minimum-image behavior has a single
// source of truth.
package world

import "math"

// Torus is a rectangular domain with wrap-around boundaries on both axes.
type Torus struct {
	Size Vec2 // (Lx, Ly) in meters
}

func NewTorus(lx, ly float64) Torus {
	return Torus{Size: Vec2{lx, ly}}
}

// Displacement returns the shortest displacement vector from a to b,
// applying the minimum-image convention per axis.
func (t Torus) Displacement(a, b Vec2) Vec2 {
	d := b.Sub(a)
	if d.X > 0.5*t.Size.X {
		d.X -= t.Size.X
	} else if d.X < -0.5*t.Size.X {
		d.X += t.Size.X
	}
	if d.Y > 0.5*t.Size.Y {
		d.Y -= t.Size.Y
	} else if d.Y < -0.5*t.Size.Y {
		d.Y += t.Size.Y
	}
	return d
}

// Distance returns the minimum-image distance between a and b.
func (t Torus) Distance(a, b Vec2) float64 {
	return t.Displacement(a, b).Len()
}

// Wrap maps a position into [0, Lx) x [0, Ly).
func (t Torus) Wrap(p Vec2) Vec2 {
	x := math.Mod(p.X, t.Size.X)
	if x < 0 {
		x += t.Size.X
	}
	y := math.Mod(p.Y, t.Size.Y)
	if y < 0 {
		y += t.Size.Y
	}
	return Vec2{x, y}
}

// MaxDistance is the largest minimum-image distance the torus admits,
// 0.5*sqrt(Lx^2+Ly^2).
func (t Torus) MaxDistance() float64 {
	return 0.5 * math.Hypot(t.Size.X, t.Size.Y)
}
