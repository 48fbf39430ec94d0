package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/particle"
	"github.com/DannyLuna17/ElectroSim/internal/world"
)

func sampleParticles() []particle.Particle {
	return []particle.Particle{
		{ID: 0, Pos: world.Vec2{X: 1.5, Y: 2.5}, Vel: world.Vec2{X: 0.1, Y: -0.2}, Charge: 5e-6, Mass: 0.02, Radius: 0.1},
		{ID: 1, Pos: world.Vec2{X: 8, Y: 5}, Charge: -5e-6, Mass: 0.04, Radius: 0.12, Fixed: true},
	}
}

func TestWriteAndLoadRun(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Begin("dipole demo", "dipole", config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	parts := sampleParticles()
	for i := 0; i < 3; i++ {
		if err := w.Append(float64(i)*0.008, parts, 0.5, -0.25); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(w.ID())
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "dipole demo" || meta.Scene != "dipole" || meta.Frames != 3 {
		t.Errorf("metadata = %+v, want name/scene/frames preserved", meta)
	}
	if meta.Config == nil || meta.Config.WorldWidth != config.DefaultWorldWidth {
		t.Error("config snapshot missing from metadata")
	}

	states, err := s.LoadStates(w.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 6 {
		t.Fatalf("got %d state rows, want 6", len(states))
	}
	if states[1].ID != 1 || !states[1].Fixed {
		t.Errorf("row 1 = %+v, want fixed particle 1", states[1])
	}
	if states[0].Charge != 5e-6 {
		t.Errorf("charge %g, want 5e-6", states[0].Charge)
	}

	energies, err := s.LoadEnergies(w.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(energies) != 3 {
		t.Fatalf("got %d energy rows, want 3", len(energies))
	}
	if energies[0].Total != 0.25 {
		t.Errorf("total %g, want 0.25", energies[0].Total)
	}
}

func TestListSkipsIncompleteRuns(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Begin("done", "", config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Append(0, sampleParticles(), 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	// Abandoned writer: files exist but no metadata.
	if _, err := s.Begin("abandoned", "", config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Name != "done" {
		t.Errorf("runs = %+v, want only the completed run", runs)
	}
}

func TestExportJSON(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Begin("export", "", config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Append(0.1, sampleParticles(), 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportJSON(w.ID(), &buf); err != nil {
		t.Fatal(err)
	}
	var got runExport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if got.Metadata.Name != "export" || len(got.States) != 2 || len(got.Energies) != 1 {
		t.Errorf("export = %+v, want full run content", got.Metadata)
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Begin("csv", "", config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Append(0, sampleParticles(), 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportCSV(w.ID(), &buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "t,id,x,y") {
		t.Errorf("header = %q", lines[0])
	}
}
