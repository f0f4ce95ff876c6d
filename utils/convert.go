// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp limits x to [lo, hi].
func Clamp[T Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Float32ToInt16 converts a sample in [-1,1] to 16-bit PCM. Out of range
// input is clamped; 32767 is used as the positive maximum to avoid overflow.
func Float32ToInt16(x float32) int16 {
	return int16(Clamp(x, -1, 1) * 32767.0)
}

// Int16ToFloat32 converts 16-bit PCM to a sample in [-1,1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// SampleToByte maps a sample in [-1,1] onto the unsigned 8-bit scale where
// 128 is the zero crossing.
func SampleToByte(x float64) uint8 {
	v := 128 * (1 + x)
	return uint8(Clamp(v, 0, 255))
}

// ScaleToByte maps x linearly from [lo, hi] onto [0,255], clamping outside
// the range.
func ScaleToByte(x, lo, hi float64) uint8 {
	if hi <= lo {
		return 0
	}
	v := 255 / (hi - lo) * (x - lo)
	return uint8(Clamp(v, 0, 255))
}
