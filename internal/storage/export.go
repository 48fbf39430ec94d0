package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// runExport is the JSON export shape: metadata plus both series.
type runExport struct {
	Metadata Metadata        `json:"metadata"`
	States   []ParticleState `json:"states"`
	Energies []EnergySample  `json:"energies"`
}

// ExportJSON writes a complete run as a single JSON document.
func (s *Store) ExportJSON(id string, w io.Writer) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	states, err := s.LoadStates(id)
	if err != nil {
		return err
	}
	energies, err := s.LoadEnergies(id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runExport{Metadata: meta, States: states, Energies: energies})
}

// ExportCSV writes a run's particle time series as CSV.
func (s *Store) ExportCSV(id string, w io.Writer) error {
	states, err := s.LoadStates(id)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(statesHeader); err != nil {
		return err
	}
	for _, st := range states {
		row := []string{
			formatFloat(st.T),
			strconv.Itoa(st.ID),
			formatFloat(st.X), formatFloat(st.Y),
			formatFloat(st.VX), formatFloat(st.VY),
			formatFloat(st.Charge), formatFloat(st.Mass), formatFloat(st.Radius),
			strconv.FormatBool(st.Fixed),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
