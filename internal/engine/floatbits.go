package engine

import "math"

// The engine's attribute storage keeps integer-typed attributes in float
// slots by raw bit pattern. These helpers are bit reinterpretations, never
// numeric casts: the same 4 bytes read once as a uint32 and once as an
// IEEE-754 float32.

// Uint32Float reinterprets the bits of v as a float32.
func Uint32Float(v uint32) float32 {
	return math.Float32frombits(v)
}

// FloatUint32 reinterprets the bits of f as a uint32.
func FloatUint32(f float32) uint32 {
	return math.Float32bits(f)
}
