package config

import (
	"fmt"
	"math"
	"sort"
)

// Presets are ready-to-run systems, lengths in nm, energies in kJ/mol,
// angles in degrees.
var Presets = map[string]*Config{
	"water": {
		Name: "water",
		Atoms: []AtomConfig{
			{X: 0, Y: 0, Z: 0, Mass: 15.999, Charge: -0.834},
			{X: 0.1000, Y: 0, Z: 0, Mass: 1.008, Charge: 0.417},
			{X: -0.0300, Y: 0.0980, Z: 0, Mass: 1.008, Charge: 0.417},
		},
		Forces: []ForceConfig{
			{
				Kind:  "harmonic_bond",
				Group: 0,
				Bonds: []BondConfig{
					{Atoms: [2]int{0, 1}, Length: 0.09572, K: 462750.4},
					{Atoms: [2]int{0, 2}, Length: 0.09572, K: 462750.4},
				},
			},
			{
				Kind:  "harmonic_angle",
				Group: 1,
				Angles: []AngleConfig{
					{Atoms: [3]int{1, 0, 2}, Angle: 104.52, K: 836.8},
				},
			},
		},
		Run: RunConfig{Steps: 200, StepSize: 1e-7, Groups: -1},
	},
	"butane": {
		Name: "butane",
		Atoms: []AtomConfig{
			{X: 0, Y: 0, Z: 0, Mass: 15.035},
			{X: 0.153, Y: 0, Z: 0, Mass: 14.027},
			{X: 0.204, Y: 0.144, Z: 0, Mass: 14.027},
			{X: 0.357, Y: 0.144, Z: 0.02, Mass: 15.035},
		},
		Forces: []ForceConfig{
			{
				Kind:  "harmonic_bond",
				Group: 0,
				Bonds: []BondConfig{
					{Atoms: [2]int{0, 1}, Length: 0.153, K: 186188},
					{Atoms: [2]int{1, 2}, Length: 0.153, K: 186188},
					{Atoms: [2]int{2, 3}, Length: 0.153, K: 186188},
				},
			},
			{
				Kind:  "harmonic_angle",
				Group: 1,
				Angles: []AngleConfig{
					{Atoms: [3]int{0, 1, 2}, Angle: 111.0, K: 519.65},
					{Atoms: [3]int{1, 2, 3}, Angle: 111.0, K: 519.65},
				},
			},
			{
				Kind:  "periodic_torsion",
				Group: 2,
				Torsions: []TorsionConfig{
					{Atoms: [4]int{0, 1, 2, 3}, Periodicity: 3, Phase: 0, K: 5.86},
				},
			},
		},
		Run: RunConfig{Steps: 500, StepSize: 1e-7, Groups: -1},
	},
}

func init() {
	Presets["chain12"] = Chain(12)
}

// Chain builds an n-atom bead chain with bonds, angles and torsions along
// it, slightly kinked so relaxation has work to do.
func Chain(n int) *Config {
	cfg := &Config{
		Name: fmt.Sprintf("chain%d", n),
		Run:  RunConfig{Steps: 300, StepSize: 1e-7, Groups: -1},
	}
	const length = 0.15
	for i := 0; i < n; i++ {
		kink := 0.01 * math.Sin(float64(i))
		cfg.Atoms = append(cfg.Atoms, AtomConfig{
			X:    length * float64(i),
			Y:    kink,
			Z:    0.005 * float64(i%3),
			Mass: 14.027,
		})
	}

	bonds := ForceConfig{Kind: "harmonic_bond", Group: 0}
	for i := 0; i+1 < n; i++ {
		bonds.Bonds = append(bonds.Bonds, BondConfig{
			Atoms: [2]int{i, i + 1}, Length: length, K: 186188,
		})
	}
	cfg.Forces = append(cfg.Forces, bonds)

	angles := ForceConfig{Kind: "harmonic_angle", Group: 1}
	for i := 0; i+2 < n; i++ {
		angles.Angles = append(angles.Angles, AngleConfig{
			Atoms: [3]int{i, i + 1, i + 2}, Angle: 111.0, K: 519.65,
		})
	}
	cfg.Forces = append(cfg.Forces, angles)

	torsions := ForceConfig{Kind: "periodic_torsion", Group: 2}
	for i := 0; i+3 < n; i++ {
		torsions.Torsions = append(torsions.Torsions, TorsionConfig{
			Atoms: [4]int{i, i + 1, i + 2, i + 3}, Periodicity: 3, Phase: 0, K: 5.86,
		})
	}
	cfg.Forces = append(cfg.Forces, torsions)

	return cfg
}

// Preset returns a named preset, or nil if it does not exist.
func Preset(name string) *Config {
	return Presets[name]
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
