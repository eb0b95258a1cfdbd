// Package sim drives repeated kernel evaluations: energy minimization by
// steepest descent and plain velocity-Verlet dynamics.
package sim

import (
	"context"
	"errors"

	"github.com/jeff231li/openmm/internal/bonded"
	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/molecule"
)

// ErrCanceled indicates the loop was interrupted by its context.
var ErrCanceled = errors.New("sim: canceled by context")

// Config controls one loop.
type Config struct {
	Steps    int
	StepSize float64
	// Groups is the force-group bitmask passed to every evaluation;
	// -1 enables every group.
	Groups int
}

// Result records one loop's trajectory of scalars.
type Result struct {
	Energies  []float64
	MaxForces []float64
	Steps     int
}

func (r *Result) FinalEnergy() float64 {
	if len(r.Energies) == 0 {
		return 0
	}
	return r.Energies[len(r.Energies)-1]
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(step int, energy, maxForce float64)
}

// Simulator couples a sealed registry to its context and system.
type Simulator struct {
	ctx       device.Context
	reg       *bonded.Registry
	sys       *molecule.System
	observers []Observer
}

func New(ctx device.Context, reg *bonded.Registry, sys *molecule.System) *Simulator {
	return &Simulator{ctx: ctx, reg: reg, sys: sys}
}

func (s *Simulator) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Evaluate runs one kernel dispatch from clean accumulators and returns
// the total energy and decoded per-atom forces.
func (s *Simulator) Evaluate(groups int) (float64, []device.Real3, error) {
	s.ctx.ClearAccumulators()
	if err := s.reg.ComputeInteractions(groups); err != nil {
		return 0, nil, err
	}
	return s.ctx.EnergySum(), s.ctx.Forces(), nil
}

func maxNorm(forces []device.Real3) float64 {
	m := 0.0
	for _, f := range forces {
		if n := f.Norm(); n > m {
			m = n
		}
	}
	return m
}

func (s *Simulator) notify(step int, energy, maxForce float64) {
	for _, o := range s.observers {
		o.OnStep(step, energy, maxForce)
	}
}

// Minimize relaxes the system by steepest descent with a backtracking
// step size: an uphill move is rejected and the step halved, a downhill
// move is kept and the step grown. Positions update in place on the
// context; the system's positions hold the final geometry afterwards.
func (s *Simulator) Minimize(ctx context.Context, cfg Config) (*Result, error) {
	result := &Result{}
	stepSize := cfg.StepSize

	energy, forces, err := s.Evaluate(cfg.Groups)
	if err != nil {
		return nil, err
	}

	pos := s.ctx.Positions()
	prev := make([]device.Real4, len(pos))
	for step := 0; step < cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return result, ErrCanceled
		default:
		}

		copy(prev, pos)
		for i, f := range forces {
			pos[i].X += stepSize * f.X
			pos[i].Y += stepSize * f.Y
			pos[i].Z += stepSize * f.Z
		}

		newEnergy, newForces, err := s.Evaluate(cfg.Groups)
		if err != nil {
			return nil, err
		}
		if newEnergy > energy {
			copy(pos, prev)
			stepSize /= 2
		} else {
			energy, forces = newEnergy, newForces
			stepSize *= 1.2
		}

		mf := maxNorm(forces)
		result.Energies = append(result.Energies, energy)
		result.MaxForces = append(result.MaxForces, mf)
		result.Steps++
		s.notify(step, energy, mf)
	}

	copy(s.sys.Positions, pos)
	return result, nil
}

// Run integrates velocity-Verlet dynamics from rest for cfg.Steps steps
// of cfg.StepSize, recording the potential energy after each step.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	result := &Result{}
	dt := cfg.StepSize

	_, forces, err := s.Evaluate(cfg.Groups)
	if err != nil {
		return nil, err
	}

	pos := s.ctx.Positions()
	vel := make([]device.Real3, len(pos))
	for step := 0; step < cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return result, ErrCanceled
		default:
		}

		for i := range vel {
			inv := dt / (2 * s.sys.Masses[i])
			vel[i] = vel[i].Add(forces[i].Scale(inv))
			pos[i].X += dt * vel[i].X
			pos[i].Y += dt * vel[i].Y
			pos[i].Z += dt * vel[i].Z
		}

		var energy float64
		energy, forces, err = s.Evaluate(cfg.Groups)
		if err != nil {
			return nil, err
		}
		for i := range vel {
			inv := dt / (2 * s.sys.Masses[i])
			vel[i] = vel[i].Add(forces[i].Scale(inv))
		}

		mf := maxNorm(forces)
		result.Energies = append(result.Energies, energy)
		result.MaxForces = append(result.MaxForces, mf)
		result.Steps++
		s.notify(step, energy, mf)
	}

	copy(s.sys.Positions, pos)
	return result, nil
}
