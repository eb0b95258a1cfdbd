package device

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Emulator is the reference backend. It keeps every buffer in host memory
// and executes the host form of each kernel on a pool of goroutine lanes,
// reproducing the device memory model: unordered lanes, atomic fixed-point
// force accumulation, per-lane energy slots.
type Emulator struct {
	numAtoms int
	padded   int
	maxLanes int

	posq   []Real4
	force  []int64
	energy []float64
}

// NewEmulator creates an emulator context for a system of numAtoms atoms.
func NewEmulator(numAtoms int) *Emulator {
	padded := PadAtoms(numAtoms)
	lanes := 4 * runtime.NumCPU()
	return &Emulator{
		numAtoms: numAtoms,
		padded:   padded,
		maxLanes: lanes,
		posq:     make([]Real4, numAtoms),
		force:    make([]int64, 3*padded),
		energy:   make([]float64, lanes),
	}
}

func (e *Emulator) Name() string        { return "emulator" }
func (e *Emulator) Available() bool     { return true }
func (e *Emulator) NumAtoms() int       { return e.numAtoms }
func (e *Emulator) PaddedNumAtoms() int { return e.padded }

func (e *Emulator) NewArray(name string, typ Type, count int) (*Array, error) {
	if count <= 0 {
		return nil, fmt.Errorf("device: array %s: count must be positive, got %d", name, count)
	}
	return newArray(name, typ, count), nil
}

func (e *Emulator) Positions() []Real4 { return e.posq }

func (e *Emulator) SetPositions(pos []Real4) error {
	if len(pos) != e.numAtoms {
		return fmt.Errorf("device: expected %d positions, got %d", e.numAtoms, len(pos))
	}
	copy(e.posq, pos)
	return nil
}

func (e *Emulator) ForceBuffer() []int64    { return e.force }
func (e *Emulator) EnergyBuffer() []float64 { return e.energy }

func (e *Emulator) ClearAccumulators() {
	for i := range e.force {
		e.force[i] = 0
	}
	for i := range e.energy {
		e.energy[i] = 0
	}
}

func (e *Emulator) Forces() []Real3 {
	out := make([]Real3, e.numAtoms)
	for i := 0; i < e.numAtoms; i++ {
		out[i] = Real3{
			X: DecodeForce(e.force[i]),
			Y: DecodeForce(e.force[i+e.padded]),
			Z: DecodeForce(e.force[i+2*e.padded]),
		}
	}
	return out
}

func (e *Emulator) EnergySum() float64 {
	sum := 0.0
	for _, v := range e.energy {
		sum += v
	}
	return sum
}

// CompileModule checks the source is well formed enough to hold the named
// entry points and returns a module that launches their host kernels. The
// textual source is what a GPU backend would compile; the emulator only
// verifies each host entry point is declared in it, which catches
// synthesizer/host drift early.
func (e *Emulator) CompileModule(source string, defines map[string]string, host HostProgram) (Module, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: empty source", ErrCompile)
	}
	if len(host) == 0 {
		return nil, fmt.Errorf("%w: no host program supplied", ErrCompile)
	}
	for name := range host {
		if !strings.Contains(source, name) {
			return nil, fmt.Errorf("%w: host kernel %q not declared in source", ErrCompile, name)
		}
	}
	return &emuModule{ctx: e, host: host}, nil
}

type emuModule struct {
	ctx  *Emulator
	host HostProgram
}

func (m *emuModule) Kernel(name string) (Kernel, error) {
	fn, ok := m.host[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoKernel, name)
	}
	return &emuKernel{ctx: m.ctx, name: name, fn: fn}, nil
}

type emuKernel struct {
	ctx  *Emulator
	name string
	fn   HostKernel
}

func (k *emuKernel) Name() string { return k.name }

// Launch runs the host kernel on up to maxLanes goroutines and blocks
// until all lanes finish, the emulated device-wide barrier.
func (k *emuKernel) Launch(workSize int, args ...any) error {
	if workSize <= 0 {
		return nil
	}
	lanes := k.ctx.maxLanes
	if workSize < lanes {
		lanes = workSize
	}

	var wg sync.WaitGroup
	wg.Add(lanes)
	for lane := 0; lane < lanes; lane++ {
		go func(lane int) {
			defer wg.Done()
			k.fn(lane, lanes, args)
		}(lane)
	}
	wg.Wait()
	return nil
}
