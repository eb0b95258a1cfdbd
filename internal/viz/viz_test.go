package viz

import (
	"strings"
	"testing"

	"github.com/jeff231li/openmm/internal/device"
)

func TestSparklineWidth(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	s := Sparkline(values, 20)
	if s == "" {
		t.Fatal("empty sparkline")
	}
	if Sparkline(nil, 10) != strings.Repeat("─", 10) {
		t.Error("empty series should render a flat line")
	}
}

func TestSparklineConstantSeries(t *testing.T) {
	if Sparkline([]float64{3, 3, 3, 3}, 4) == "" {
		t.Error("constant series should still render")
	}
}

func TestProgressBarBounds(t *testing.T) {
	for _, p := range []float64{-0.5, 0, 0.5, 1, 1.5} {
		if ProgressBar(p, 10) == "" {
			t.Errorf("empty bar for percent %v", p)
		}
	}
}

func TestEnergyPlot(t *testing.T) {
	plot := EnergyPlot([]float64{5, 4, 3, 2.5, 2.2, 2.1}, 40, 5)
	if !strings.Contains(plot, "Potential energy") {
		t.Error("plot missing caption")
	}
	if EnergyPlot([]float64{1}, 40, 5) == "" {
		t.Error("single-point series should render a placeholder")
	}
}

func TestForceTable(t *testing.T) {
	out := ForceTable([]device.Real3{{X: 1, Y: -2, Z: 0.5}})
	if !strings.Contains(out, "ATOM") || !strings.Contains(out, "FX") {
		t.Error("table missing header")
	}
	if !strings.Contains(out, "0") {
		t.Error("table missing atom row")
	}
}

func TestGroupBadges(t *testing.T) {
	out := GroupBadges([]string{"bonds", "angles"}, 1)
	if !strings.Contains(out, "bonds") || !strings.Contains(out, "angles") {
		t.Error("badges missing group names")
	}
}
