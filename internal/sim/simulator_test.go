package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jeff231li/openmm/internal/bonded"
	"github.com/jeff231li/openmm/internal/config"
	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/forcefield"
)

type recordingObserver struct {
	calls int
}

func (r *recordingObserver) OnStep(step int, energy, maxForce float64) { r.calls++ }

func waterSimulator(t *testing.T) (*Simulator, *device.Emulator) {
	t.Helper()
	sys, forces, err := forcefield.FromConfig(config.Preset("water"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := device.NewEmulator(sys.NumAtoms())
	reg := bonded.NewRegistry(ctx)
	for _, f := range forces {
		if err := f.AddTo(ctx, reg); err != nil {
			t.Fatal(err)
		}
	}
	if err := reg.Initialize(sys); err != nil {
		t.Fatal(err)
	}
	return New(ctx, reg, sys), ctx
}

func TestMinimizeLowersEnergy(t *testing.T) {
	sim, _ := waterSimulator(t)
	obs := &recordingObserver{}
	sim.AddObserver(obs)

	initial, _, err := sim.Evaluate(-1)
	if err != nil {
		t.Fatal(err)
	}

	result, err := sim.Minimize(context.Background(), Config{
		Steps:    200,
		StepSize: 1e-7,
		Groups:   -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Steps != 200 {
		t.Errorf("ran %d steps", result.Steps)
	}
	if obs.calls != 200 {
		t.Errorf("observer saw %d steps", obs.calls)
	}
	if result.FinalEnergy() >= initial {
		t.Errorf("energy did not decrease: %g -> %g", initial, result.FinalEnergy())
	}
	for i, e := range result.Energies {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			t.Fatalf("energy diverged at step %d", i)
		}
	}
}

func TestMinimizeNeverGoesUphill(t *testing.T) {
	sim, _ := waterSimulator(t)
	result, err := sim.Minimize(context.Background(), Config{Steps: 100, StepSize: 1e-6, Groups: -1})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(result.Energies); i++ {
		if result.Energies[i] > result.Energies[i-1]+1e-9 {
			t.Fatalf("energy rose at step %d: %g -> %g", i, result.Energies[i-1], result.Energies[i])
		}
	}
}

func TestMinimizeDisabledGroups(t *testing.T) {
	sim, ctx := waterSimulator(t)
	result, err := sim.Minimize(context.Background(), Config{Steps: 10, StepSize: 1e-7, Groups: 0})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range result.Energies {
		if e != 0 {
			t.Errorf("disabled groups produced energy %g", e)
		}
	}
	for _, f := range ctx.Forces() {
		if f != (device.Real3{}) {
			t.Errorf("disabled groups produced force %v", f)
		}
	}
}

func TestRunDynamics(t *testing.T) {
	sim, _ := waterSimulator(t)
	result, err := sim.Run(context.Background(), Config{Steps: 50, StepSize: 1e-8, Groups: -1})
	if err != nil {
		t.Fatal(err)
	}
	if result.Steps != 50 {
		t.Errorf("ran %d steps", result.Steps)
	}
	for i, e := range result.Energies {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			t.Fatalf("energy diverged at step %d", i)
		}
	}
}

func TestMinimizeCancellation(t *testing.T) {
	sim, _ := waterSimulator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Minimize(ctx, Config{Steps: 100, StepSize: 1e-7, Groups: -1})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
	if result.Steps != 0 {
		t.Errorf("canceled run still took %d steps", result.Steps)
	}
}

func TestEvaluateMatchesSystem(t *testing.T) {
	sim, ctx := waterSimulator(t)
	e1, f1, err := sim.Evaluate(-1)
	if err != nil {
		t.Fatal(err)
	}
	e2, f2, err := sim.Evaluate(-1)
	if err != nil {
		t.Fatal(err)
	}
	if e1 != e2 {
		t.Errorf("repeated evaluation changed energy: %g vs %g", e1, e2)
	}
	for i := range f1 {
		if f1[i] != f2[i] {
			t.Errorf("repeated evaluation changed force on atom %d", i)
		}
	}
	if len(f1) != ctx.NumAtoms() {
		t.Errorf("got %d forces for %d atoms", len(f1), ctx.NumAtoms())
	}
}
