package device

// ForceScale converts a floating-point force component to its fixed-point
// accumulator representation. A power of two keeps encode/decode exact for
// values representable in the accumulator's dynamic range.
const ForceScale = float64(1 << 32)

// EncodeForce converts one force component to a fixed-point increment.
// Truncation toward zero matches the device cast.
func EncodeForce(f float64) int64 {
	return int64(f * ForceScale)
}

// DecodeForce converts an accumulated fixed-point sum back to floating point.
func DecodeForce(i int64) float64 {
	return float64(i) / ForceScale
}
