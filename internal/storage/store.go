// Package storage persists completed runs on disk, one directory per
// run: metadata.json for the summary, energies.csv for the per-step
// series and forces.csv for the final per-atom forces.
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

	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	System      string    `json:"system"`
	Mode        string    `json:"mode"`
	Timestamp   time.Time `json:"timestamp"`
	Steps       int       `json:"steps"`
	StepSize    float64   `json:"step_size"`
	Groups      int       `json:"groups"`
	FinalEnergy float64   `json:"final_energy"`
	MaxForce    float64   `json:"max_force"`
}

// Save writes a run directory and returns its ID. The ID embeds the
// system name and a timestamp so directory names sort chronologically.
func (s *Store) Save(system, mode string, cfg sim.Config, result *sim.Result, forces []device.Real3) (string, error) {
	runID := fmt.Sprintf("%s_%d", system, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		System:      system,
		Mode:        mode,
		Timestamp:   time.Now(),
		Steps:       result.Steps,
		StepSize:    cfg.StepSize,
		Groups:      cfg.Groups,
		FinalEnergy: result.FinalEnergy(),
	}
	if n := len(result.MaxForces); n > 0 {
		meta.MaxForce = result.MaxForces[n-1]
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := s.writeEnergies(runDir, result); err != nil {
		return "", err
	}
	if err := s.writeForces(runDir, forces); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeEnergies(runDir string, result *sim.Result) error {
	f, err := os.Create(filepath.Join(runDir, "energies.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"step", "energy", "max_force"}); err != nil {
		return err
	}
	for i, e := range result.Energies {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(e, 'g', 12, 64),
			strconv.FormatFloat(result.MaxForces[i], 'g', 12, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeForces(runDir string, forces []device.Real3) error {
	f, err := os.Create(filepath.Join(runDir, "forces.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"atom", "fx", "fy", "fz"}); err != nil {
		return err
	}
	for i, fv := range forces {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(fv.X, 'g', 12, 64),
			strconv.FormatFloat(fv.Y, 'g', 12, 64),
			strconv.FormatFloat(fv.Z, 'g', 12, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns metadata for every run under the base directory, newest
// first. Directories without a readable metadata.json are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEnergies reads back the per-step energy and max-force series.
func (s *Store) LoadEnergies(runID string) ([]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "energies.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	energies := make([]float64, 0, len(records))
	maxForces := make([]float64, 0, len(records))
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 3 {
			continue
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		mf, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		energies = append(energies, e)
		maxForces = append(maxForces, mf)
	}

	return energies, maxForces, nil
}
