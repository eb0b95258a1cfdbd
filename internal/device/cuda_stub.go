//go:build !cuda

package device

// CUDA is the GPU backend stub used when built without the cuda tag. It
// reports itself unavailable; AutoSelect falls through to the emulator.
type CUDA struct {
	host *Emulator
}

func NewCUDA(numAtoms int) *CUDA {
	return &CUDA{host: NewEmulator(numAtoms)}
}

func (c *CUDA) Name() string        { return "cuda (not available)" }
func (c *CUDA) Available() bool     { return false }
func (c *CUDA) NumAtoms() int       { return c.host.NumAtoms() }
func (c *CUDA) PaddedNumAtoms() int { return c.host.PaddedNumAtoms() }

func (c *CUDA) NewArray(name string, typ Type, count int) (*Array, error) {
	return c.host.NewArray(name, typ, count)
}

func (c *CUDA) Positions() []Real4             { return c.host.Positions() }
func (c *CUDA) SetPositions(pos []Real4) error { return c.host.SetPositions(pos) }
func (c *CUDA) ForceBuffer() []int64           { return c.host.ForceBuffer() }
func (c *CUDA) EnergyBuffer() []float64        { return c.host.EnergyBuffer() }
func (c *CUDA) ClearAccumulators()             { c.host.ClearAccumulators() }
func (c *CUDA) Forces() []Real3                { return c.host.Forces() }
func (c *CUDA) EnergySum() float64             { return c.host.EnergySum() }

func (c *CUDA) CompileModule(source string, defines map[string]string, host HostProgram) (Module, error) {
	return nil, ErrUnavailable
}
