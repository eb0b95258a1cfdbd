// Package export renders run series to SVG for use outside the terminal.
package export

import (
	"fmt"
	"os"
	"strings"
)

// EnergySVG renders an energy-versus-step polyline with 10% padding
// around the data bounds.
func EnergySVG(energies []float64, width, height int, strokeColor string) string {
	if len(energies) < 2 {
		return ""
	}

	minE, maxE := energies[0], energies[0]
	for _, e := range energies {
		if e < minE {
			minE = e
		}
		if e > maxE {
			maxE = e
		}
	}
	rangeE := maxE - minE
	if rangeE == 0 {
		rangeE = 1
	}
	minE -= rangeE * 0.1
	maxE += rangeE * 0.1
	rangeE = maxE - minE

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, e := range energies {
		x := float64(i) / float64(len(energies)-1) * float64(width)
		y := float64(height) - (e-minE)/rangeE*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteEnergySVG writes the rendered chart to path.
func WriteEnergySVG(path string, energies []float64, width, height int) error {
	svg := EnergySVG(energies, width, height, "#00ff88")
	if svg == "" {
		return fmt.Errorf("export: not enough data points for %s", path)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
