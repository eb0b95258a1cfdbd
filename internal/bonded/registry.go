package bonded

import (
	"fmt"
	"strconv"

	"github.com/jeff231li/openmm/internal/device"
	"github.com/jeff231li/openmm/internal/molecule"
)

// term is one registered bonded interaction. The atom tuples and snippet
// source are accumulation state, cleared once the kernel is compiled; the
// packed index blocks and host eval stay for the life of the registry.
type term struct {
	atoms    [][]int // cleared by Initialize
	source   string  // cleared by Initialize
	eval     EvalFunc
	group    int
	arity    int
	numBonds int
	blocks   []indexBlock
}

// Registry accumulates bonded interactions, builds them into one fused
// kernel, and dispatches it. Lifecycle: any number of Add* calls, exactly
// one Initialize, then any number of ComputeInteractions. A Registry is
// not safe for concurrent registration.
type Registry struct {
	ctx device.Context

	terms    []*term
	prefix   []string
	args     []*device.Array
	argTypes []device.Type

	maxBonds int
	kernel   device.Kernel
	built    bool
}

// NewRegistry creates an empty registry bound to one device context.
func NewRegistry(ctx device.Context) *Registry {
	return &Registry{ctx: ctx}
}

// AddInteraction registers one term: its atom tuples, the snippet that
// computes energy and forces for one tuple, and a group selector in
// [0, 31]. Registering an empty tuple list is a documented no-op. All
// tuples must share one arity and every atom index must name an atom of
// the bound context's system.
func (r *Registry) AddInteraction(atoms [][]int, snippet Snippet, group int) error {
	if r.built {
		return ErrSealed
	}
	if len(atoms) == 0 {
		return nil
	}
	if group < 0 || group > 31 {
		return fmt.Errorf("%w: %d", ErrBadGroup, group)
	}
	arity := len(atoms[0])
	if arity == 0 {
		return fmt.Errorf("%w: empty tuple", ErrArityMismatch)
	}
	numAtoms := r.ctx.NumAtoms()
	for i, tuple := range atoms {
		if len(tuple) != arity {
			return fmt.Errorf("%w: tuple %d has %d atoms, term arity is %d", ErrArityMismatch, i, len(tuple), arity)
		}
		for _, a := range tuple {
			if a < 0 || a >= numAtoms {
				return fmt.Errorf("%w: %d (system has %d atoms)", ErrAtomIndex, a, numAtoms)
			}
		}
	}
	if err := snippet.validate(arity); err != nil {
		return err
	}

	r.terms = append(r.terms, &term{
		atoms:    atoms,
		source:   snippet.Source,
		eval:     snippet.Eval,
		group:    group,
		arity:    arity,
		numBonds: len(atoms),
	})
	return nil
}

// AddArgument registers an extra device buffer passed to every launch and
// returns the symbolic name snippets reference it by: customArg<N> with N
// the 1-based registration order. The type tag must come from the
// supported set and match the buffer's element layout. The buffer stays
// caller-owned and must outlive every ComputeInteractions call.
func (r *Registry) AddArgument(buf *device.Array, typeTag string) (string, error) {
	if r.built {
		return "", ErrSealed
	}
	typ, err := device.TypeFromTag(typeTag)
	if err != nil {
		return "", err
	}
	if typ != buf.Type() {
		return "", fmt.Errorf("%w: tag %q for a %s buffer", ErrArgumentType, typeTag, buf.Type())
	}
	r.args = append(r.args, buf)
	r.argTypes = append(r.argTypes, typ)
	return "customArg" + strconv.Itoa(len(r.args)), nil
}

// AddPrefixCode injects shared source text verbatim before the kernel
// body. Fragments concatenate in registration order.
func (r *Registry) AddPrefixCode(source string) error {
	if r.built {
		return ErrSealed
	}
	r.prefix = append(r.prefix, source)
	return nil
}

// Initialize packs every term's atom tuples, synthesizes and compiles the
// fused kernel, uploads the system's positions, and seals the registry.
// The per-term tuple and source accumulators are discarded afterwards;
// packed index blocks, the argument list and the kernel handle remain.
// With no registered terms it only seals; ComputeInteractions is then a
// no-op. A second call returns ErrAlreadyBuilt.
func (r *Registry) Initialize(sys *molecule.System) error {
	if r.built {
		return ErrAlreadyBuilt
	}
	if err := sys.Validate(); err != nil {
		return err
	}
	if sys.NumAtoms() != r.ctx.NumAtoms() {
		return fmt.Errorf("bonded: system has %d atoms, context was sized for %d", sys.NumAtoms(), r.ctx.NumAtoms())
	}
	if err := r.ctx.SetPositions(sys.Positions); err != nil {
		return err
	}
	if len(r.terms) == 0 {
		r.built = true
		return nil
	}

	for i, t := range r.terms {
		blocks, err := packIndices(r.ctx, i, t.atoms)
		if err != nil {
			return err
		}
		t.blocks = blocks
		if t.numBonds > r.maxBonds {
			r.maxBonds = t.numBonds
		}
	}

	source := r.createKernelSource()
	defines := map[string]string{
		"PADDED_NUM_ATOMS": strconv.Itoa(r.ctx.PaddedNumAtoms()),
	}
	module, err := r.ctx.CompileModule(source, defines, r.buildHostProgram())
	if err != nil {
		return &BuildError{Err: err, Source: source}
	}
	kernel, err := module.Kernel(kernelName)
	if err != nil {
		return &BuildError{Err: err, Source: source}
	}
	r.kernel = kernel

	for _, t := range r.terms {
		t.atoms = nil
		t.source = ""
	}
	r.ctx.ClearAccumulators()
	r.built = true
	return nil
}

// PreviewSource returns the kernel text the current registrations would
// compile to, without packing index buffers or sealing the registry.
// Only valid before Initialize.
func (r *Registry) PreviewSource() (string, error) {
	if r.built {
		return "", ErrSealed
	}
	saved := make([][]indexBlock, len(r.terms))
	for i, t := range r.terms {
		saved[i] = t.blocks
		widths := blockWidths(t.arity)
		blocks := make([]indexBlock, len(widths))
		for j, w := range widths {
			blocks[j] = indexBlock{width: w}
		}
		t.blocks = blocks
	}
	source := r.createKernelSource()
	for i, t := range r.terms {
		t.blocks = saved[i]
	}
	return source, nil
}

// ComputeInteractions launches the fused kernel once. Only terms whose
// group bit is set in the bitmask contribute; a clear bit means exactly
// zero energy and force side effects for that term. Contributions
// accumulate into the context's force and energy buffers on top of
// whatever they already hold.
func (r *Registry) ComputeInteractions(groups int) error {
	if !r.built {
		return ErrNotBuilt
	}
	if r.kernel == nil {
		return nil
	}

	args := []any{
		r.ctx.ForceBuffer(),
		r.ctx.EnergyBuffer(),
		r.ctx.Positions(),
		groups,
	}
	for _, t := range r.terms {
		for _, blk := range t.blocks {
			args = append(args, blk.array)
		}
	}
	for _, buf := range r.args {
		args = append(args, buf)
	}
	return r.kernel.Launch(r.maxBonds, args...)
}

// MaxBonds reports the largest bond count across registered terms, the
// launch-sizing hint.
func (r *Registry) MaxBonds() int { return r.maxBonds }

// Built reports whether Initialize has run.
func (r *Registry) Built() bool { return r.built }
