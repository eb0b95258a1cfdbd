package bonded

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeff231li/openmm/internal/device"
)

// EvalFunc is the host-side reference implementation of a snippet, executed
// per bond by the emulator backend with the gathered positions of the
// tuple's atoms. It returns the energy increment and one force vector per
// atom, in tuple order.
type EvalFunc func(bond int, pos []device.Real4) (energy float64, forces []device.Real3)

// Snippet carries one term's force computation in both forms: trusted
// device source spliced verbatim into the generated kernel, and the host
// routine the emulator executes.
//
// The source contract: it may read pos1..posA (real4 position gathers) and
// index (the bond index), must accumulate into energy, and must define
// real3 force1..forceA.
type Snippet struct {
	Source string
	Eval   EvalFunc
}

// validate checks the source references every required output symbol for a
// term of the given arity, instead of trusting the text blindly.
func (s Snippet) validate(arity int) error {
	if strings.TrimSpace(s.Source) == "" {
		return fmt.Errorf("%w: empty source", ErrBadSnippet)
	}
	if s.Eval == nil {
		return fmt.Errorf("%w: missing host eval", ErrBadSnippet)
	}
	if !strings.Contains(s.Source, "energy") {
		return fmt.Errorf("%w: source never accumulates energy", ErrBadSnippet)
	}
	for i := 1; i <= arity; i++ {
		sym := "force" + strconv.Itoa(i)
		if !strings.Contains(s.Source, sym) {
			return fmt.Errorf("%w: source never defines %s", ErrBadSnippet, sym)
		}
	}
	return nil
}
