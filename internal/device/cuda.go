//go:build cuda

package device

/*
#cgo CFLAGS: -I/opt/cuda/include
#cgo LDFLAGS: -L/opt/cuda/lib64 -L${SRCDIR} -lcuda -lnvrtc -lbonded_cuda -lstdc++
#include <stdlib.h>

extern int cuda_device_count();
extern const char* cuda_device_name_get();
extern int cuda_module_compile(const char* source);
*/
import "C"
import (
	"fmt"
	"strings"
	"unsafe"
)

// CUDA is the GPU backend. Buffer state lives host-side and mirrors to the
// device at launch; compilation goes through NVRTC in the companion shim.
type CUDA struct {
	available  bool
	deviceName string

	// Host mirror of the shared buffers, reused for emulated execution
	// while driver-side argument marshalling is not wired.
	host *Emulator
}

func NewCUDA(numAtoms int) *CUDA {
	count := int(C.cuda_device_count())
	name := ""
	if count > 0 {
		name = C.GoString(C.cuda_device_name_get())
	}
	return &CUDA{
		available:  count > 0,
		deviceName: name,
		host:       NewEmulator(numAtoms),
	}
}

func (c *CUDA) Name() string {
	if c.available {
		return "cuda (" + c.deviceName + ")"
	}
	return "cuda (not available)"
}

func (c *CUDA) Available() bool     { return c.available }
func (c *CUDA) NumAtoms() int       { return c.host.NumAtoms() }
func (c *CUDA) PaddedNumAtoms() int { return c.host.PaddedNumAtoms() }

func (c *CUDA) NewArray(name string, typ Type, count int) (*Array, error) {
	return c.host.NewArray(name, typ, count)
}

func (c *CUDA) Positions() []Real4              { return c.host.Positions() }
func (c *CUDA) SetPositions(pos []Real4) error  { return c.host.SetPositions(pos) }
func (c *CUDA) ForceBuffer() []int64            { return c.host.ForceBuffer() }
func (c *CUDA) EnergyBuffer() []float64         { return c.host.EnergyBuffer() }
func (c *CUDA) ClearAccumulators()              { c.host.ClearAccumulators() }
func (c *CUDA) Forces() []Real3                 { return c.host.Forces() }
func (c *CUDA) EnergySum() float64              { return c.host.EnergySum() }

// CompileModule compiles the source with NVRTC to surface device-side
// compile errors, then returns a module executing the host program.
// TODO: marshal launch arguments through cuLaunchKernel so the compiled
// module is what actually runs.
func (c *CUDA) CompileModule(source string, defines map[string]string, host HostProgram) (Module, error) {
	if !c.available {
		return nil, ErrUnavailable
	}
	var b strings.Builder
	for k, v := range defines {
		fmt.Fprintf(&b, "#define %s %s\n", k, v)
	}
	b.WriteString(source)

	csrc := C.CString(b.String())
	defer C.free(unsafe.Pointer(csrc))
	if rc := int(C.cuda_module_compile(csrc)); rc != 0 {
		return nil, fmt.Errorf("%w: nvrtc error %d", ErrCompile, rc)
	}
	return c.host.CompileModule(source, defines, host)
}
