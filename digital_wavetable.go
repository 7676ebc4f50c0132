package vco

import "github.com/arl/vco/internal/lut"

const semi = 128

// paraphonicChords lists the three intervals stacked on the root, in 1/128
// semitones. The first two entries are detuned unisons.
var paraphonicChords = [17][3]int16{
	{2, 4, 6},
	{16, 32, 48},
	{2 * semi, 7 * semi, 12 * semi},
	{3 * semi, 7 * semi, 10 * semi},
	{3 * semi, 7 * semi, 12 * semi},
	{3 * semi, 7 * semi, 14 * semi},
	{3 * semi, 7 * semi, 17 * semi},
	{7 * semi, 12 * semi, 19 * semi},
	{7 * semi, 3 + 12*semi, 5 + 19*semi},
	{4 * semi, 7 * semi, 17 * semi},
	{4 * semi, 7 * semi, 14 * semi},
	{4 * semi, 7 * semi, 12 * semi},
	{4 * semi, 7 * semi, 11 * semi},
	{5 * semi, 7 * semi, 12 * semi},
	{4, 7 * semi, 12 * semi},
	{4, 4 + 12*semi, 12 * semi},
	{4, 4 + 12*semi, 12 * semi},
}

func wave(n uint8) []uint8 { return lut.Waves[n][:] }

// renderWavetables scans one of the wavetables with the first parameter.
// The second parameter selects the table, with some hysteresis so that a
// noisy knob does not flip between neighbours. It runs at double rate to
// limit aliasing from the 8-bit waves.
func (d *DigitalOscillator) renderWavetables(sync []byte, buffer []int16) {
	if abs32(int32(d.parameter[1])-int32(d.previousParameter[1])) > 64 {
		d.previousParameter[1] = d.parameter[1]
	}
	wt := &lut.Wavetables[uint32(d.previousParameter[1])*lut.NumWavetables>>15]

	pointer := uint32(d.parameter[0]) << 1 * uint32(wt.Steps)
	index := pointer >> 16
	balance := uint16(pointer)
	wave0 := wave(wt.Index[index])
	wave1 := wave(wt.Index[index+1])

	increment := d.phaseIncrement >> 1
	for i := range buffer {
		d.phase += increment
		if syncAt(sync, i) != 0 {
			d.phase = 0
		}
		sample := crossfadeU8(wave0, wave1, d.phase>>1, balance) >> 1
		d.phase += increment
		sample += crossfadeU8(wave0, wave1, d.phase>>1, balance) >> 1
		buffer[i] = int16(sample)
	}
}

// renderWaveMap navigates the 16x16 grid of waves, bilinearly
// interpolating between the four closest ones.
func (d *DigitalOscillator) renderWaveMap(sync []byte, buffer []int16) {
	var (
		coordinate [2]int32
		xfade      [2]uint16
	)
	for i := range 2 {
		p := int32(d.parameter[i]) * 15 >> 4
		xfade[i] = uint16(p << 5)
		coordinate[i] = p >> 11
	}

	var waves [2][2][]uint8
	for i := range 2 {
		for j := range 2 {
			n := (coordinate[0]+int32(i))*16 + coordinate[1] + int32(j)
			waves[i][j] = wave(lut.WaveMap[n])
		}
	}

	render := func() int32 {
		phase := d.phase >> 1
		a := crossfadeU8(waves[0][0], waves[0][1], phase, xfade[1])
		b := crossfadeU8(waves[1][0], waves[1][1], phase, xfade[1])
		return int32(mix(int16(a), int16(b), xfade[0])) >> 1
	}

	increment := d.phaseIncrement >> 1
	for i := range buffer {
		d.phase += increment
		if syncAt(sync, i) != 0 {
			d.phase = 0
		}
		sample := render()
		d.phase += increment
		sample += render()
		buffer[i] = int16(sample)
	}
}

// renderWaveLine sweeps along the wave line. The second parameter chooses
// between smooth crossfades and stepped, low resolution transitions.
func (d *DigitalOscillator) renderWaveLine(sync []byte, buffer []int16) {
	d.smoothedParameter = (3*d.smoothedParameter + int32(d.parameter[0])<<1) >> 2

	scan := uint16(d.smoothedParameter)
	wave0 := wave(lut.WaveLine[d.previousParameter[0]>>9])
	wave1 := wave(lut.WaveLine[scan>>10])
	wave2 := wave(lut.WaveLine[min(scan>>10+1, 63)])

	smoothX := scan << 6
	var roughX uint16
	roughXIncrement := uint16(32768 / len(buffer))
	balance := uint16(d.parameter[1]) << 3
	band := d.parameter[1] >> 13

	increment := d.phaseIncrement >> 1
	for i := range buffer {
		if syncAt(sync, i) != 0 {
			d.phase = 0
		}
		var sample int32
		for range 2 {
			d.phase += increment
			phase := d.phase >> 1
			var s int16
			switch band {
			case 0:
				rough := crossfadeU8(wave0, wave1, phase&0xfe000000, roughX)
				smooth := crossfadeU8(wave0, wave1, phase, roughX)
				s = mix(int16(rough), int16(smooth), balance)
			case 1:
				rough := crossfadeU8(wave0, wave1, phase, roughX)
				smooth := crossfadeU8(wave1, wave2, phase, smoothX)
				s = mix(int16(rough), int16(smooth), balance)
			case 2:
				smooth := crossfadeU8(wave1, wave2, phase, smoothX)
				rough := crossfadeU8(wave1, wave2, phase&0xfe000000, smoothX)
				s = mix(int16(smooth), int16(rough), balance)
			default:
				smooth := crossfadeU8(wave1, wave2, phase&0xfe000000, smoothX)
				rough := crossfadeU8(wave1, wave2, phase&0xf8000000, smoothX)
				s = mix(int16(smooth), int16(rough), balance)
			}
			roughX += roughXIncrement
			sample += int32(s)
		}
		buffer[i] = int16(sample >> 1)
	}
	d.previousParameter[0] = int16(d.smoothedParameter >> 1)
}

// renderWaveParaphonic plays a four-note chord from the mini wave line.
func (d *DigitalOscillator) renderWaveParaphonic(sync []byte, buffer []int16) {
	phases := d.state.saw.phase[:4]
	if d.strike {
		for i := range phases {
			phases[i] = d.random.word()
		}
		d.strike = false
	}

	p1 := d.parameter[1]
	integral := p1 >> 11
	fractional := uint32(uint16(p1 << 5))
	switch {
	case fractional < 30720:
		fractional = 0
	case fractional >= 34816:
		fractional = 65535
	default:
		fractional = (fractional - 30720) * 16
	}

	var increments [4]uint32
	increments[0] = d.phaseIncrement
	for i := range 3 {
		a := int32(paraphonicChords[integral][i])
		b := int32(paraphonicChords[integral+1][i])
		detune := a + ((b - a) * int32(fractional) >> 16)
		increments[i+1] = computePhaseIncrement(d.pitch + detune)
	}

	wave0 := wave(lut.MiniWaveLine[d.parameter[0]>>10])
	wave1 := wave(lut.MiniWaveLine[d.parameter[0]>>10+1])
	xfade := uint16(d.parameter[0] << 6)

	for i := range buffer {
		if syncAt(sync, i) != 0 {
			for j := range phases {
				phases[j] = 0
			}
		}
		var sample int32
		for j := range phases {
			phases[j] += increments[j]
			sample += crossfadeU8(wave0, wave1, phases[j]>>1, xfade)
		}
		buffer[i] = int16(sample >> 2)
	}
}
