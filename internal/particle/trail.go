package particle

import "github.com/DannyLuna17/ElectroSim/internal/world"

// TrailSample is one time-stamped position record.
type TrailSample struct {
	T   float64
	Pos world.Vec2
}

// Trail is a bounded, time-ordered position history. Samples older than
// the configured history window are pruned; an absolute cap applies
// regardless of the window.
type Trail struct {
	samples    []TrailSample
	maxSamples int
}

func NewTrail(maxSamples int) Trail {
	return Trail{maxSamples: maxSamples}
}

func (t *Trail) Len() int { return len(t.samples) }

// Last returns the most recent sample, if any.
func (t *Trail) Last() (TrailSample, bool) {
	if len(t.samples) == 0 {
		return TrailSample{}, false
	}
	return t.samples[len(t.samples)-1], true
}

// Append records a sample, evicting the oldest when at capacity.
func (t *Trail) Append(simTime float64, pos world.Vec2) {
	if t.maxSamples > 0 && len(t.samples) >= t.maxSamples {
		n := copy(t.samples, t.samples[1:])
		t.samples = t.samples[:n]
	}
	t.samples = append(t.samples, TrailSample{T: simTime, Pos: pos})
}

// Prune drops samples older than history seconds before now.
func (t *Trail) Prune(now, history float64) {
	cut := 0
	for cut < len(t.samples) && now-t.samples[cut].T > history {
		cut++
	}
	if cut > 0 {
		n := copy(t.samples, t.samples[cut:])
		t.samples = t.samples[:n]
	}
}

// Samples exposes the underlying slice; callers must not mutate it.
func (t *Trail) Samples() []TrailSample {
	return t.samples
}

// Clear drops all samples.
func (t *Trail) Clear() {
	t.samples = t.samples[:0]
}

func (t *Trail) Clone() Trail {
	return Trail{
		samples:    append([]TrailSample(nil), t.samples...),
		maxSamples: t.maxSamples,
	}
}
