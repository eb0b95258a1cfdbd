// Package device provides execution backends for generated force kernels.
//
// A Context owns the shared simulation buffers (positions, the fixed-point
// force accumulator, the per-lane energy accumulator), allocates device
// arrays, and compiles kernel modules:
//
//   - Emulator: pure-Go reference backend that executes host programs on
//     goroutine lanes with atomic accumulation
//   - CUDA: GPU backend, available when built with the cuda tag
//
// Backends share one memory model: forces accumulate as scaled 64-bit
// integers in three planes strided by the padded atom count, so concurrent
// contributions sum exactly regardless of lane ordering.
//
//	ctx := device.AutoSelect(numAtoms)
//	mod, err := ctx.CompileModule(source, defines, host)
package device
