package forcefield

import (
	"fmt"
	"sort"

	"github.com/jeff231li/openmm/internal/config"
	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/molecule"
)

// builders maps config kind names to force constructors.
var builders = map[string]func(fc config.ForceConfig) (Force, error){
	"harmonic_bond":    buildHarmonicBonds,
	"harmonic_angle":   buildHarmonicAngles,
	"periodic_torsion": buildPeriodicTorsions,
}

// Kinds returns the supported force kind names in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs one force from its config block.
func Build(fc config.ForceConfig) (Force, error) {
	builder, ok := builders[fc.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, fc.Kind)
	}
	return builder(fc)
}

// FromConfig builds the system and every configured force.
func FromConfig(cfg *config.Config) (*molecule.System, []Force, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	sys := molecule.New(len(cfg.Atoms))
	for i, a := range cfg.Atoms {
		sys.Positions[i] = device.Real4{X: a.X, Y: a.Y, Z: a.Z, W: a.Charge}
		sys.Masses[i] = a.Mass
	}

	forces := make([]Force, 0, len(cfg.Forces))
	for _, fc := range cfg.Forces {
		f, err := Build(fc)
		if err != nil {
			return nil, nil, err
		}
		forces = append(forces, f)
	}
	return sys, forces, nil
}

func buildHarmonicBonds(fc config.ForceConfig) (Force, error) {
	f := &HarmonicBondForce{ForceGroup: fc.Group}
	for _, b := range fc.Bonds {
		f.Bonds = append(f.Bonds, HarmonicBond{
			Atom1:  b.Atoms[0],
			Atom2:  b.Atoms[1],
			Length: b.Length,
			K:      b.K,
		})
	}
	return f, nil
}

func buildHarmonicAngles(fc config.ForceConfig) (Force, error) {
	f := &HarmonicAngleForce{ForceGroup: fc.Group}
	for _, a := range fc.Angles {
		f.Angles = append(f.Angles, HarmonicAngle{
			Atom1: a.Atoms[0],
			Atom2: a.Atoms[1],
			Atom3: a.Atoms[2],
			Angle: a.Angle * degToRad,
			K:     a.K,
		})
	}
	return f, nil
}

func buildPeriodicTorsions(fc config.ForceConfig) (Force, error) {
	f := &PeriodicTorsionForce{ForceGroup: fc.Group}
	for _, t := range fc.Torsions {
		f.Torsions = append(f.Torsions, PeriodicTorsion{
			Atom1:       t.Atoms[0],
			Atom2:       t.Atoms[1],
			Atom3:       t.Atoms[2],
			Atom4:       t.Atoms[3],
			Periodicity: t.Periodicity,
			Phase:       t.Phase * degToRad,
			K:           t.K,
		})
	}
	return f, nil
}
