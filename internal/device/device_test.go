package device

import (
	"math"
	"sync/atomic"
	"testing"
)

func TestPadAtoms(t *testing.T) {
	cases := []struct{ in, want int }{
		{1, 32},
		{32, 32},
		{33, 64},
		{100, 128},
	}
	for _, c := range cases {
		if got := PadAtoms(c.in); got != c.want {
			t.Errorf("PadAtoms(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestTypeFromTag(t *testing.T) {
	typ, err := TypeFromTag("float2")
	if err != nil {
		t.Fatalf("float2: %v", err)
	}
	if typ.Width() != 2 || !typ.IsFloat() {
		t.Errorf("float2 resolved to %v", typ)
	}

	if _, err := TypeFromTag("double3"); err == nil {
		t.Error("expected error for unsupported tag")
	}
}

func TestFixedPointRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.5, 123.456, -9876.5, 1e-6}
	quantum := 1.0 / ForceScale
	for _, f := range values {
		got := DecodeForce(EncodeForce(f))
		if math.Abs(got-f) > quantum {
			t.Errorf("round trip %g -> %g, off by more than one quantum", f, got)
		}
	}
}

func TestFixedPointSum(t *testing.T) {
	const n = 1000
	const f = 0.125
	var acc int64
	for i := 0; i < n; i++ {
		acc += EncodeForce(f)
	}
	got := DecodeForce(acc)
	if math.Abs(got-n*f) > n/ForceScale {
		t.Errorf("sum of %d contributions decoded to %g, want %g", n, got, float64(n*f))
	}
}

func TestArrayUpload(t *testing.T) {
	a := newArray("idx", UInt4, 3)
	if err := a.UploadUints(make([]uint32, 12)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := a.UploadUints(make([]uint32, 5)); err == nil {
		t.Error("expected length mismatch error")
	}
	if err := a.UploadFloats(make([]float64, 12)); err == nil {
		t.Error("expected class mismatch error")
	}
}

func TestEmulatorLaunchCoversAllWork(t *testing.T) {
	ctx := NewEmulator(10)
	var covered int64
	host := HostProgram{
		"countItems": func(lane, lanes int, args []any) {
			n := args[0].(int)
			for i := lane; i < n; i += lanes {
				atomic.AddInt64(&covered, 1)
			}
		},
	}
	mod, err := ctx.CompileModule("extern \"C\" __global__ void countItems() {}", nil, host)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	k, err := mod.Kernel("countItems")
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}

	const work = 1000
	if err := k.Launch(work, work); err != nil {
		t.Fatalf("launch: %v", err)
	}
	if covered != work {
		t.Errorf("covered %d work items, want %d", covered, work)
	}
}

func TestEmulatorCompileErrors(t *testing.T) {
	ctx := NewEmulator(4)
	if _, err := ctx.CompileModule("   ", nil, HostProgram{"k": nil}); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := ctx.CompileModule("void other() {}", nil, HostProgram{"missing": nil}); err == nil {
		t.Error("expected error for undeclared entry point")
	}
	mod, err := ctx.CompileModule("void k() {}", nil, HostProgram{"k": func(int, int, []any) {}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := mod.Kernel("absent"); err == nil {
		t.Error("expected error for unknown kernel name")
	}
}

func TestEmulatorForceDecode(t *testing.T) {
	ctx := NewEmulator(3)
	padded := ctx.PaddedNumAtoms()
	ctx.ForceBuffer()[1] = EncodeForce(2.5)
	ctx.ForceBuffer()[1+padded] = EncodeForce(-1.0)
	ctx.ForceBuffer()[1+2*padded] = EncodeForce(0.25)

	f := ctx.Forces()
	want := Real3{2.5, -1.0, 0.25}
	if f[1] != want {
		t.Errorf("decoded force %v, want %v", f[1], want)
	}

	ctx.ClearAccumulators()
	for i, v := range ctx.Forces() {
		if v != (Real3{}) {
			t.Errorf("atom %d force not cleared: %v", i, v)
		}
	}
}
