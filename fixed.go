package vco

import "math"

const (
	maxSample = math.MaxInt16
	minSample = math.MinInt16
)

// clip16 saturates a 32-bit intermediate to the int16 range.
func clip16(n int32) int32 {
	if int32(int16(n)) != n {
		n = (n >> 31) ^ maxSample
	}
	return n
}

func clamp[T ~int | ~int16 | ~int32 | ~uint16 | ~uint32](n, lo, hi T) T {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// interpolate824 reads a 257-entry table with an 8.24 phase.
func interpolate824[T int16 | uint16](table []T, phase uint32) int32 {
	i := phase >> 24
	a := int32(table[i])
	b := int32(table[i+1])
	return a + int32(int64(b-a)*int64((phase>>8)&0xffff)>>16)
}

// interpolate824u8 reads an 8-bit wavetable and recenters it around zero.
func interpolate824u8(table []uint8, phase uint32) int32 {
	i := phase >> 24
	a := int32(table[i])
	b := int32(table[i+1])
	return a<<8 + ((b - a) * int32((phase>>8)&0xffff) >> 8) - 32768
}

// interpolate88 reads a 257-entry table with an 8.8 index.
func interpolate88[T int16 | uint16](table []T, index uint16) int32 {
	i := index >> 8
	a := int32(table[i])
	b := int32(table[i+1])
	return a + ((b - a) * int32(index&0xff) >> 8)
}

// interpolate1022 reads a 1025-entry delay line with a 10.22 phase.
func interpolate1022(table []int16, phase uint32) int32 {
	i := phase >> 22
	a := int32(table[i])
	b := int32(table[i+1])
	return a + int32(int64(b-a)*int64((phase>>6)&0xffff)>>16)
}

func mix(a, b int16, balance uint16) int16 {
	return int16((int32(a)*(65535-int32(balance)) + int32(b)*int32(balance)) >> 16)
}

func crossfade(a, b []int16, phase uint32, balance uint16) int32 {
	x := interpolate824(a, phase)
	y := interpolate824(b, phase)
	return x + int32(int64(y-x)*int64(balance)>>16)
}

func crossfadeU8(a, b []uint8, phase uint32, balance uint16) int32 {
	x := interpolate824u8(a, phase)
	y := interpolate824u8(b, phase)
	return x + int32(int64(y-x)*int64(balance)>>16)
}

// shape88 runs a sample through a 257-entry waveshaper.
func shape88(table []int16, sample int32) int32 {
	return interpolate88(table, uint16(sample+32768))
}

// thisBlepSample and nextBlepSample are the two halves of a polynomial
// band-limited step, t being the fractional position of the step within the
// sample in 16-bit units.
func thisBlepSample(t uint32) int32 {
	t = min(t, 65535)
	return int32(t * t >> 18)
}

func nextBlepSample(t uint32) int32 {
	t = 65535 - min(t, 65535)
	return -int32(t * t >> 18)
}

// stepTime returns how far, in 16-bit sample fractions, a phase sits past
// an edge.
func stepTime(past, increment uint32) uint32 {
	d := increment >> 16
	if d == 0 {
		d = 1
	}
	return past / d
}
