package forcefield

import (
	"errors"

	"github.com/jeff231li/openmm/internal/bonded"
	"github.com/jeff231li/openmm/internal/device"
)

// Domain errors for force construction.
var (
	// ErrUnknownKind indicates a force kind with no registered builder.
	ErrUnknownKind = errors.New("forcefield: unknown force kind")

	// ErrBadParameters indicates force parameters outside their valid range.
	ErrBadParameters = errors.New("forcefield: invalid parameters")
)

// Force is one bonded force kind, able to contribute its terms to a
// registry: it allocates parameter buffers on the context, registers them
// as extra arguments, and adds one interaction with its snippet.
type Force interface {
	Name() string
	NumTerms() int
	AddTo(ctx device.Context, reg *bonded.Registry) error
}

// degrees to radians, the configuration surface speaks degrees.
const degToRad = 0.017453292519943295
