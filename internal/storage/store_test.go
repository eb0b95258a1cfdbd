package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Energies:  []float64{2.5, 1.8, 1.2},
		MaxForces: []float64{12.0, 7.5, 3.1},
		Steps:     3,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := sim.Config{Steps: 3, StepSize: 1e-4, Groups: -1}
	forces := []device.Real3{{X: 1, Y: 0, Z: -1}, {X: -1, Y: 0, Z: 1}}

	runID, err := st.Save("water", "minimize", cfg, sampleResult(), forces)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.System != "water" {
		t.Errorf("expected system 'water', got '%s'", meta.System)
	}
	if meta.Mode != "minimize" {
		t.Errorf("expected mode 'minimize', got '%s'", meta.Mode)
	}
	if meta.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", meta.Steps)
	}
	if meta.FinalEnergy != 1.2 {
		t.Errorf("expected final energy 1.2, got %f", meta.FinalEnergy)
	}
	if meta.MaxForce != 3.1 {
		t.Errorf("expected max force 3.1, got %f", meta.MaxForce)
	}

	energies, maxForces, err := st.LoadEnergies(runID)
	if err != nil {
		t.Fatalf("load energies failed: %v", err)
	}
	if len(energies) != 3 || len(maxForces) != 3 {
		t.Fatalf("expected 3 rows, got %d/%d", len(energies), len(maxForces))
	}
	if energies[0] != 2.5 || maxForces[2] != 3.1 {
		t.Errorf("series round-trip mismatch: %v %v", energies, maxForces)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg := sim.Config{Steps: 3, StepSize: 1e-4, Groups: -1}
	if _, err := st.Save("water", "minimize", cfg, sampleResult(), nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := sim.Config{Steps: 3, StepSize: 1e-4, Groups: -1}
	runID, err := st.Save("butane", "run", cfg, sampleResult(), []device.Real3{{X: 1}})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "energies.csv", "forces.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}
