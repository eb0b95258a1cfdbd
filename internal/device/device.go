package device

import (
	"errors"
	"fmt"
	"math"
)

// AtomPadding is the boundary the atom count is rounded up to. Buffer
// strides derived from it stay aligned for vectorized access.
const AtomPadding = 32

// Domain errors for backend operations.
var (
	// ErrCompile indicates kernel module compilation failed.
	ErrCompile = errors.New("device: module compilation failed")

	// ErrNoKernel indicates a module does not contain the requested entry point.
	ErrNoKernel = errors.New("device: no such kernel entry point")

	// ErrUnavailable indicates the backend cannot execute on this machine.
	ErrUnavailable = errors.New("device: backend not available")

	// ErrBadType indicates an element type tag outside the supported set.
	ErrBadType = errors.New("device: unsupported element type")
)

// Type describes the element layout of a device array: its spelling in
// kernel source, its lane width, and whether the lanes are floating point.
type Type struct {
	name    string
	width   int
	isFloat bool
}

var (
	UInt   = Type{"unsigned int", 1, false}
	UInt2  = Type{"unsigned int2", 2, false}
	UInt4  = Type{"unsigned int4", 4, false}
	Int    = Type{"int", 1, false}
	Int2   = Type{"int2", 2, false}
	Int4   = Type{"int4", 4, false}
	Float  = Type{"float", 1, true}
	Float2 = Type{"float2", 2, true}
	Float4 = Type{"float4", 4, true}
)

var typeTags = map[string]Type{
	"int": Int, "int2": Int2, "int4": Int4,
	"float": Float, "float2": Float2, "float4": Float4,
	"unsigned int": UInt, "unsigned int2": UInt2, "unsigned int4": UInt4,
}

// TypeFromTag resolves a textual type tag against the closed set of
// supported element types.
func TypeFromTag(tag string) (Type, error) {
	t, ok := typeTags[tag]
	if !ok {
		return Type{}, fmt.Errorf("%w: %q", ErrBadType, tag)
	}
	return t, nil
}

func (t Type) String() string { return t.name }
func (t Type) Width() int     { return t.width }
func (t Type) IsFloat() bool  { return t.isFloat }

// Real3 is a three-component vector, the shape of one force contribution.
type Real3 struct {
	X, Y, Z float64
}

func (v Real3) Add(o Real3) Real3 { return Real3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Real3) Sub(o Real3) Real3 { return Real3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Real3) Scale(s float64) Real3 {
	return Real3{v.X * s, v.Y * s, v.Z * s}
}

func (v Real3) Dot(o Real3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Real3) Cross(o Real3) Real3 {
	return Real3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Real3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

func (v Real3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Real4 is a position entry: coordinates in X/Y/Z, charge in W. This is
// the posq layout the kernels gather from.
type Real4 struct {
	X, Y, Z, W float64
}

func (v Real4) XYZ() Real3 { return Real3{v.X, v.Y, v.Z} }

// HostKernel is the host-side body of one kernel entry point, executed by
// the emulator backend. It is invoked once per lane and must cover its
// share of the work by striding: lane, lane+lanes, lane+2*lanes, ...
// Args arrive in the same order the compiled kernel declares its parameters.
type HostKernel func(lane, lanes int, args []any)

// HostProgram maps entry-point names to host kernels. It accompanies the
// textual source through CompileModule so the emulator backend has
// something to execute; GPU backends ignore it.
type HostProgram map[string]HostKernel

// Kernel is a compiled entry point ready to launch.
type Kernel interface {
	Name() string

	// Launch executes the kernel over at least workSize work items and
	// returns after the device-wide completion barrier.
	Launch(workSize int, args ...any) error
}

// Module is a compiled unit of kernel source.
type Module interface {
	Kernel(name string) (Kernel, error)
}

// Context owns the simulation buffers for one backend and compiles kernel
// modules against them.
type Context interface {
	Name() string
	Available() bool

	NumAtoms() int
	PaddedNumAtoms() int

	// NewArray allocates a device array of count elements of the given type.
	NewArray(name string, typ Type, count int) (*Array, error)

	// CompileModule compiles kernel source with preprocessor defines. The
	// host program carries the emulator-executable form of the same
	// kernels; compilation fails if an entry point is missing from it on a
	// backend that needs it.
	CompileModule(source string, defines map[string]string, host HostProgram) (Module, error)

	// Shared accumulation state.
	Positions() []Real4
	SetPositions(pos []Real4) error
	ForceBuffer() []int64
	EnergyBuffer() []float64

	// ClearAccumulators zeroes the force and energy buffers before a
	// fresh evaluation.
	ClearAccumulators()

	// Forces decodes the fixed-point force planes into one vector per atom.
	Forces() []Real3

	// EnergySum reduces the per-lane energy buffer.
	EnergySum() float64
}

// PadAtoms rounds an atom count up to the layout boundary.
func PadAtoms(n int) int {
	return (n + AtomPadding - 1) / AtomPadding * AtomPadding
}

// AutoSelect returns the best backend for this machine: CUDA when compiled
// in and a device is present, the emulator otherwise.
func AutoSelect(numAtoms int) Context {
	if cuda := NewCUDA(numAtoms); cuda.Available() {
		return cuda
	}
	return NewEmulator(numAtoms)
}
