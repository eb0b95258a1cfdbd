package bonded

import (
	"errors"
	"fmt"
)

// Registration and build errors.
var (
	// ErrSealed indicates a registration call after Initialize.
	ErrSealed = errors.New("bonded: registry is sealed, terms cannot be added after Initialize")

	// ErrAlreadyBuilt indicates a second Initialize call.
	ErrAlreadyBuilt = errors.New("bonded: already initialized, rebuilding is not supported")

	// ErrNotBuilt indicates ComputeInteractions before Initialize.
	ErrNotBuilt = errors.New("bonded: not initialized")

	// ErrBadGroup indicates a group selector outside [0, 31].
	ErrBadGroup = errors.New("bonded: force group out of range")

	// ErrArityMismatch indicates atom tuples of unequal length within one term.
	ErrArityMismatch = errors.New("bonded: atom tuples in a term must share one arity")

	// ErrAtomIndex indicates an atom index outside the system.
	ErrAtomIndex = errors.New("bonded: atom index out of range")

	// ErrBadSnippet indicates a snippet violating the source contract.
	ErrBadSnippet = errors.New("bonded: snippet contract violation")

	// ErrArgumentType indicates an extra-argument type tag that does not
	// match the buffer's element layout.
	ErrArgumentType = errors.New("bonded: argument type mismatch")
)

// BuildError reports a kernel compilation failure together with the
// synthesized source, which is otherwise discarded after Initialize.
type BuildError struct {
	Err    error
	Source string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("bonded: kernel build failed: %v", e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
