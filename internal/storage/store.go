// Package storage persists simulation runs to disk. Each run is a
// directory holding metadata.json, a particle state time series
// (states.csv) and an energy time series (energies.csv).
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/DannyLuna17/ElectroSim/internal/config"
	"github.com/DannyLuna17/ElectroSim/internal/particle"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	energiesFile = "energies.csv"
)

var statesHeader = []string{"t", "id", "x", "y", "vx", "vy", "charge", "mass", "radius", "fixed"}
var energiesHeader = []string{"t", "kinetic", "potential", "total"}

// Metadata describes one recorded run.
type Metadata struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Scene     string         `json:"scene,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Frames    int            `json:"frames"`
	Config    *config.Config `json:"config"`
}

// ParticleState is one particle row of the time series.
type ParticleState struct {
	T      float64 `json:"t"`
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Charge float64 `json:"charge"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	Fixed  bool    `json:"fixed"`
}

// EnergySample is one energy row of the time series.
type EnergySample struct {
	T         float64 `json:"t"`
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

// Store manages the run directory tree.
type Store struct {
	base string
}

func NewStore(base string) (*Store, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("storage: create base dir: %w", err)
	}
	return &Store{base: base}, nil
}

func (s *Store) runDir(id string) string { return filepath.Join(s.base, id) }

// Begin opens a writer for a new run. The run id is derived from the
// creation time, with a numeric suffix when runs start within the same
// second.
func (s *Store) Begin(name, scene string, cfg *config.Config) (*Writer, error) {
	created := time.Now()
	stamp := created.Format("20060102-150405")
	id := stamp
	var dir string
	for n := 2; ; n++ {
		dir = s.runDir(id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("storage: create run dir: %w", err)
		}
		id = fmt.Sprintf("%s-%d", stamp, n)
	}

	states, err := os.Create(filepath.Join(dir, statesFile))
	if err != nil {
		return nil, err
	}
	energies, err := os.Create(filepath.Join(dir, energiesFile))
	if err != nil {
		states.Close()
		return nil, err
	}

	w := &Writer{
		dir:      dir,
		states:   states,
		energies: energies,
		statesW:  csv.NewWriter(states),
		energyW:  csv.NewWriter(energies),
		meta: Metadata{
			ID:        id,
			Name:      name,
			Scene:     scene,
			CreatedAt: created,
			Config:    cfg,
		},
	}
	if err := w.statesW.Write(statesHeader); err != nil {
		w.closeFiles()
		return nil, err
	}
	if err := w.energyW.Write(energiesHeader); err != nil {
		w.closeFiles()
		return nil, err
	}
	return w, nil
}

// Writer streams one run to disk.
type Writer struct {
	dir      string
	states   *os.File
	energies *os.File
	statesW  *csv.Writer
	energyW  *csv.Writer
	meta     Metadata
}

func (w *Writer) ID() string { return w.meta.ID }

// Append records one frame: a row per particle plus one energy row.
func (w *Writer) Append(t float64, parts []particle.Particle, kinetic, potential float64) error {
	for _, p := range parts {
		row := []string{
			formatFloat(t),
			strconv.Itoa(p.ID),
			formatFloat(p.Pos.X), formatFloat(p.Pos.Y),
			formatFloat(p.Vel.X), formatFloat(p.Vel.Y),
			formatFloat(p.Charge), formatFloat(p.Mass), formatFloat(p.Radius),
			strconv.FormatBool(p.Fixed),
		}
		if err := w.statesW.Write(row); err != nil {
			return err
		}
	}
	row := []string{formatFloat(t), formatFloat(kinetic), formatFloat(potential), formatFloat(kinetic + potential)}
	if err := w.energyW.Write(row); err != nil {
		return err
	}
	w.meta.Frames++
	return nil
}

// Close flushes the series and writes metadata. The run is not listable
// until Close succeeds.
func (w *Writer) Close() error {
	w.statesW.Flush()
	w.energyW.Flush()
	if err := w.statesW.Error(); err != nil {
		w.closeFiles()
		return err
	}
	if err := w.energyW.Error(); err != nil {
		w.closeFiles()
		return err
	}
	if err := w.closeFiles(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&w.meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, metadataFile), data, 0644)
}

func (w *Writer) closeFiles() error {
	err1 := w.states.Close()
	err2 := w.energies.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// List returns metadata for every completed run, newest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return nil, err
	}
	var runs []Metadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue // incomplete or foreign directory
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(id string) (Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(id), metadataFile))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("storage: run %s: %w", id, err)
	}
	return meta, nil
}

// LoadStates reads the full particle time series of a run.
func (s *Store) LoadStates(id string) ([]ParticleState, error) {
	f, err := os.Open(filepath.Join(s.runDir(id), statesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	var states []ParticleState
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		st, err := parseStateRow(row)
		if err != nil {
			return nil, fmt.Errorf("storage: run %s row %d: %w", id, i, err)
		}
		states = append(states, st)
	}
	return states, nil
}

// LoadEnergies reads the energy time series of a run.
func (s *Store) LoadEnergies(id string) ([]EnergySample, error) {
	f, err := os.Open(filepath.Join(s.runDir(id), energiesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	var samples []EnergySample
	for i, row := range rows {
		if i == 0 {
			continue
		}
		var e EnergySample
		if e.T, err = strconv.ParseFloat(row[0], 64); err != nil {
			return nil, err
		}
		if e.Kinetic, err = strconv.ParseFloat(row[1], 64); err != nil {
			return nil, err
		}
		if e.Potential, err = strconv.ParseFloat(row[2], 64); err != nil {
			return nil, err
		}
		if e.Total, err = strconv.ParseFloat(row[3], 64); err != nil {
			return nil, err
		}
		samples = append(samples, e)
	}
	return samples, nil
}

func parseStateRow(row []string) (ParticleState, error) {
	if len(row) != len(statesHeader) {
		return ParticleState{}, fmt.Errorf("want %d fields, got %d", len(statesHeader), len(row))
	}
	var st ParticleState
	var err error
	if st.T, err = strconv.ParseFloat(row[0], 64); err != nil {
		return st, err
	}
	if st.ID, err = strconv.Atoi(row[1]); err != nil {
		return st, err
	}
	floats := []*float64{&st.X, &st.Y, &st.VX, &st.VY, &st.Charge, &st.Mass, &st.Radius}
	for i, dst := range floats {
		if *dst, err = strconv.ParseFloat(row[2+i], 64); err != nil {
			return st, err
		}
	}
	if st.Fixed, err = strconv.ParseBool(row[9]); err != nil {
		return st, err
	}
	return st, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
