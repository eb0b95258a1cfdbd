// Package molecule describes the simulated system: atom positions, charges
// and masses, independent of any execution backend.
package molecule

import (
	"errors"
	"fmt"
	"math"

	"github.com/jeff231li/openmm/internal/device"
)

// Domain errors for system construction.
var (
	// ErrEmptySystem indicates a system with no atoms.
	ErrEmptySystem = errors.New("molecule: system has no atoms")

	// ErrInvalidPosition indicates a NaN or infinite coordinate.
	ErrInvalidPosition = errors.New("molecule: invalid position")

	// ErrInvalidMass indicates a non-positive or non-finite mass.
	ErrInvalidMass = errors.New("molecule: invalid mass")
)

// System holds per-atom state. Positions carry the charge in the fourth
// component, the posq layout the kernels gather from.
type System struct {
	Positions []device.Real4
	Masses    []float64
}

// New creates a system of n atoms at the origin with unit masses.
func New(n int) *System {
	masses := make([]float64, n)
	for i := range masses {
		masses[i] = 1.0
	}
	return &System{
		Positions: make([]device.Real4, n),
		Masses:    masses,
	}
}

func (s *System) NumAtoms() int { return len(s.Positions) }

// Validate checks the system is well formed: at least one atom, matching
// slice lengths, finite coordinates, positive finite masses.
func (s *System) Validate() error {
	if len(s.Positions) == 0 {
		return ErrEmptySystem
	}
	if len(s.Masses) != len(s.Positions) {
		return fmt.Errorf("molecule: %d masses for %d atoms", len(s.Masses), len(s.Positions))
	}
	for i, p := range s.Positions {
		if !p.XYZ().IsValid() {
			return fmt.Errorf("%w: atom %d", ErrInvalidPosition, i)
		}
	}
	for i, m := range s.Masses {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return fmt.Errorf("%w: atom %d has mass %g", ErrInvalidMass, i, m)
		}
	}
	return nil
}

// SetPosition places atom i, keeping its charge.
func (s *System) SetPosition(i int, p device.Real3) {
	s.Positions[i].X = p.X
	s.Positions[i].Y = p.Y
	s.Positions[i].Z = p.Z
}

func (s *System) Position(i int) device.Real3 { return s.Positions[i].XYZ() }
