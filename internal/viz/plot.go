package viz

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/jeff231li/openmm/internal/device"
)

// EnergyPlot draws the potential energy series as an ASCII chart.
func EnergyPlot(energies []float64, width, height int) string {
	if len(energies) < 2 {
		return Subtle.Render("(not enough data to plot)")
	}
	return asciigraph.Plot(energies,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("Potential energy"),
	)
}

// ForceTable renders per-atom forces in aligned columns.
func ForceTable(forces []device.Real3) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ATOM\tFX\tFY\tFZ\t|F|")
	for i, f := range forces {
		fmt.Fprintf(w, "%d\t%+.6g\t%+.6g\t%+.6g\t%.6g\n", i, f.X, f.Y, f.Z, f.Norm())
	}
	w.Flush()
	return b.String()
}
