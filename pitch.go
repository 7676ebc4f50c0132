package vco

import "github.com/arl/vco/internal/lut"

// Pitch is expressed in 1/128 semitone units: 60<<7 is middle C.
const (
	Semitone = 128
	Octave   = 12 * Semitone

	// MaxPitch is the highest pitch the analog oscillators accept.
	MaxPitch = 128*128 - 1

	digitalHighestNote = 140 * 128
)

// computePhaseIncrement converts a pitch into a 32-bit phase increment at
// lut.SampleRate. The table covers the top octave; lower pitches are
// obtained by halving once per octave.
func computePhaseIncrement(pitch int32) uint32 {
	pitch = min(pitch, lut.PitchTableStart-1)
	ref := pitch - lut.PitchTableStart
	shifts := 0
	for ref < 0 {
		ref += Octave
		shifts++
	}
	a := lut.OscillatorIncrements[ref>>4]
	b := lut.OscillatorIncrements[ref>>4+1]
	inc := a + uint32(int32(b-a)*(ref&0xf)>>4)
	return inc >> shifts
}

// computeDelay converts a pitch into a waveguide length in 16.16 samples.
func computeDelay(pitch int32) uint32 {
	pitch = min(pitch, digitalHighestNote-Octave)
	ref := pitch - lut.PitchTableStart
	shifts := 0
	for ref < 0 {
		ref += Octave
		shifts++
	}
	a := lut.OscillatorDelays[ref>>4]
	b := lut.OscillatorDelays[ref>>4+1]
	delay := a + uint32(int32(b-a)*(ref&0xf)>>4)
	if shifts > 12 {
		// Longer than the table can express: saturate rather than wrap.
		if delay > 0xffffffff>>(shifts-12) {
			return 0xffffffff
		}
		return delay << (shifts - 12)
	}
	return delay >> (12 - shifts)
}
