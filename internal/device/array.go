package device

import (
	"errors"
	"fmt"
)

// ErrUpload indicates data of the wrong length was uploaded to an array.
var ErrUpload = errors.New("device: upload length mismatch")

// Array is a linear device allocation of count elements of one Type.
// Integer-class arrays are backed by uints, float-class arrays by floats;
// multi-lane elements are stored flattened, Width() values per element.
type Array struct {
	name  string
	typ   Type
	count int

	uints  []uint32
	floats []float64
}

func newArray(name string, typ Type, count int) *Array {
	a := &Array{name: name, typ: typ, count: count}
	if typ.IsFloat() {
		a.floats = make([]float64, count*typ.Width())
	} else {
		a.uints = make([]uint32, count*typ.Width())
	}
	return a
}

func (a *Array) Name() string { return a.name }
func (a *Array) Type() Type   { return a.typ }
func (a *Array) Len() int     { return a.count }

// UploadUints copies lane values into an integer-class array. The slice
// length must be count*width.
func (a *Array) UploadUints(data []uint32) error {
	if a.uints == nil {
		return fmt.Errorf("%w: %s is not integer-class", ErrUpload, a.name)
	}
	if len(data) != len(a.uints) {
		return fmt.Errorf("%w: %s holds %d lanes, got %d", ErrUpload, a.name, len(a.uints), len(data))
	}
	copy(a.uints, data)
	return nil
}

// UploadFloats copies lane values into a float-class array.
func (a *Array) UploadFloats(data []float64) error {
	if a.floats == nil {
		return fmt.Errorf("%w: %s is not float-class", ErrUpload, a.name)
	}
	if len(data) != len(a.floats) {
		return fmt.Errorf("%w: %s holds %d lanes, got %d", ErrUpload, a.name, len(a.floats), len(data))
	}
	copy(a.floats, data)
	return nil
}

// Uints exposes the backing lanes of an integer-class array for host
// kernel reads. Callers must not mutate after Initialize.
func (a *Array) Uints() []uint32 { return a.uints }

// Floats exposes the backing lanes of a float-class array.
func (a *Array) Floats() []float64 { return a.floats }
