package vco

import "github.com/arl/vco/internal/lut"

// renderFilteredNoise runs white noise through a state variable filter
// whose response morphs from low-pass to band-pass to high-pass.
func (d *DigitalOscillator) renderFilteredNoise(_ []byte, buffer []int16) {
	f := interpolate824(lut.SVFCutoff[:], uint32(d.pitch)<<17)
	damp := interpolate824(lut.SVFDamp[:], uint32(d.parameter[0])<<17)
	scale := interpolate824(lut.SVFScale[:], uint32(d.parameter[0])<<17)

	var lpGain, bpGain, hpGain int32
	if p1 := int32(d.parameter[1]); p1 < 16384 {
		bpGain = p1
		lpGain = 16384 - bpGain
	} else {
		bpGain = 32767 - p1
		hpGain = p1 - 16384
	}

	gainCorrection := int32(32767)
	if f > scale {
		gainCorrection = scale * 32767 / f
	}

	lp, bp := d.state.svf.lp, d.state.svf.bp
	for i := range buffer {
		in := int32(d.random.sample()) >> 1
		notch := in - (bp * damp >> 15)
		lp = clip16(lp + (f * bp >> 15))
		hp := notch - lp
		bp += f * hp >> 15

		result := lpGain * lp >> 14
		result += bpGain * bp >> 14
		result += hpGain * hp >> 14
		result = clip16(result)
		result = result * gainCorrection >> 15
		buffer[i] = int16(shape88(lut.ModerateOverdrive[:], result))
	}
	d.state.svf.lp, d.state.svf.bp = lp, bp
}

type resonator struct {
	coefficient, scale int32
}

func newResonator(pitch int32) resonator {
	phase := uint32(clamp(pitch, 0, 16383)) << 17
	return resonator{
		coefficient: interpolate824(lut.ResonatorCoefficient[:], phase),
		scale:       interpolate824(lut.ResonatorScale[:], phase),
	}
}

// excite scales the input symmetrically around zero so that rounding does
// not add a DC offset.
func (r resonator) excite(sample int32) int32 {
	if sample > 0 {
		return sample * r.scale >> 16
	}
	return -((-sample) * r.scale >> 16)
}

// renderTwinPeaksNoise excites two resonant peaks with noise. The second
// parameter detunes the second peak from the first. It runs at half rate.
func (d *DigitalOscillator) renderTwinPeaksNoise(_ []byte, buffer []int16) {
	st := &d.state.pno
	p0 := int32(d.parameter[0])
	q := uint32(65240 + p0>>7)
	q2 := int32(q * q >> 17)

	r1 := newResonator(d.pitch)
	r2 := newResonator(d.pitch + (int32(d.parameter[1])-16384)>>1)
	c1 := int32(uint32(r1.coefficient) * q >> 16)
	c2 := int32(uint32(r2.coefficient) * q >> 16)
	makeUpGain := 8191 - p0>>2

	y11, y12 := st.state[0][0], st.state[0][1]
	y21, y22 := st.state[1][0], st.state[1][1]

	for i := 0; i < len(buffer); i += 2 {
		sample := int32(d.random.sample()) >> 1

		y10 := r1.excite(sample)
		y10 = clip16(y10 + (y11 * c1 >> 15) - (y12 * q2 >> 15))
		y12, y11 = y11, y10

		y20 := r2.excite(sample)
		y20 = clip16(y20 + (y21 * c2 >> 15) - (y22 * q2 >> 15))
		y22, y21 = y21, y20

		y10 += y20
		y10 += y10 * makeUpGain >> 13
		y10 = clip16(y10)

		out := int16(shape88(lut.ModerateOverdrive[:], y10))
		buffer[i] = out
		buffer[i+1] = out
	}

	st.state[0] = [2]int32{y11, y12}
	st.state[1] = [2]int32{y21, y22}
}

// renderClockedNoise is sample-and-hold noise clocked at the oscillator
// frequency. The first parameter sets how often the random sequence loops
// back to its seed, the second quantizes the output to a few levels.
func (d *DigitalOscillator) renderClockedNoise(sync []byte, buffer []int16) {
	st := &d.state.clk
	if abs32(int32(d.parameter[1])-int32(d.previousParameter[1])) > 64 {
		d.previousParameter[1] = d.parameter[1]
	}
	if abs32(int32(d.parameter[0])-int32(d.previousParameter[0])) > 16 {
		d.previousParameter[0] = d.parameter[0]
	}
	if d.strike {
		st.seed = int32(d.random.word())
		d.strike = false
	}

	increment := d.phaseIncrement
	for range 3 {
		if increment < 1<<31 {
			increment <<= 1
		}
	}

	cycleIncrement := computePhaseIncrement(int32(d.previousParameter[0])-16384) << 1
	numSteps := 1 + int32(d.previousParameter[1])>>10
	if numSteps == 1 {
		numSteps = 2
	}
	divider := uint16(65536 / numSteps)

	for i := range buffer {
		d.phase += increment
		if syncAt(sync, i) != 0 {
			d.phase = 0
		}
		if d.phase < increment {
			st.rngState = st.rngState*1664525 + 1013904223
			st.cyclePhase += cycleIncrement
			if st.cyclePhase < cycleIncrement {
				st.rngState = uint32(st.seed)
				st.cyclePhase = cycleIncrement
			}
			s := uint16(st.rngState)
			s -= s % divider
			s += divider >> 1
			st.sample = int16(s)
			d.phase = increment
		}
		buffer[i] = st.sample
	}
}

// renderGranularCloud overlaps four sine grains whose onsets and detuning
// are random. The first parameter sets grain density and length, the second
// the amount of pitch scattering.
func (d *DigitalOscillator) renderGranularCloud(_ []byte, buffer []int16) {
	p1 := int32(d.parameter[1])
	for i := range d.state.grains {
		g := &d.state.grains[i]
		if g.envelopePhase <= 1<<24 && g.envelopePhaseIncrement != 0 {
			continue
		}
		g.envelopePhaseIncrement = 0
		if d.random.word()&0xffff >= 0x4000 {
			continue
		}
		g.envelopePhaseIncrement = uint32(lut.GranularEnvelopeRate[d.parameter[0]>>7]) << 3
		g.envelopePhase = 0
		g.phaseIncrement = d.phaseIncrement

		pitchMod := int32(d.random.sample()) * p1 >> 16
		phi := int32(d.phaseIncrement >> 8)
		if pitchMod < 0 {
			g.phaseIncrement += uint32(phi * (pitchMod >> 8))
		} else {
			g.phaseIncrement += uint32(phi * (pitchMod >> 7))
		}
	}

	for i := range buffer {
		var sample int32
		for j := range d.state.grains {
			g := &d.state.grains[j]
			g.phase += g.phaseIncrement
			g.envelopePhase += g.envelopePhaseIncrement
			envelope := int32(lut.GranularEnvelope[min(g.envelopePhase>>16, 512)])
			sample += interpolate824(lut.Sine[:], g.phase) * envelope >> 17
		}
		buffer[i] = int16(clip16(sample))
	}
}

// renderParticleNoise fires random impulses into three resonators whose
// frequencies are redrawn at each impulse. The first parameter sets the
// density, the second the frequency spread. It runs at half rate.
func (d *DigitalOscillator) renderParticleNoise(_ []byte, buffer []int16) {
	const resonanceSquared = 32506

	st := &d.state.pno
	density := 1024 + uint32(d.parameter[0])
	spread := int32(d.parameter[1])
	amplitude := uint32(st.amplitude)

	for i := 0; i < len(buffer); i += 2 {
		noise := d.random.word()
		if noise&0x7fffff < density {
			amplitude = 65535
			na := int32(noise&0xfff) - 0x800
			nb := int32((noise>>15)&0x1fff) - 0x1000
			pitches := [3]int32{
				d.pitch + (3 * na * spread >> 17) + 0x600,
				d.pitch + (na * spread >> 15) + 0x980,
				d.pitch + (nb * spread >> 16) + 0x790,
			}
			for j, p := range pitches {
				r := newResonator(p)
				st.coefficient[j] = r.coefficient * 32636 >> 15
				st.scale[j] = r.scale
			}
		}

		sample := int32(int16(noise)) * int32(amplitude) >> 16
		amplitude = amplitude * 64763 >> 16

		var out int32
		for j := range st.state {
			y := &st.state[j]
			y0 := sample*st.scale[j]>>15 + (y[0] * st.coefficient[j] >> 15) - (y[1] * resonanceSquared >> 15)
			y0 = clip16(y0)
			y[1], y[0] = y[0], y0
			out += y0
		}
		out = clip16(out)
		buffer[i] = int16(out)
		buffer[i+1] = int16(out)
	}
	st.amplitude = uint16(amplitude)
}

var (
	qpskI = [4]int32{23100, 23100, -23100, -23100}
	qpskQ = [4]int32{23100, -23100, -23100, 23100}
)

// renderDigitalModulation transmits a QPSK stream: a preamble of constant
// symbols followed by bytes derived from the second parameter. The first
// parameter sets the symbol rate relative to the carrier.
func (d *DigitalOscillator) renderDigitalModulation(_ []byte, buffer []int16) {
	st := &d.state.dmd
	symbolIncrement := computePhaseIncrement(d.pitch - 1536 + (int32(d.parameter[0])-32767)>>3)
	if d.strike {
		st.symbolCount = 0
		d.strike = false
	}

	for i := range buffer {
		d.phase += d.phaseIncrement
		st.symbolPhase += symbolIncrement
		if st.symbolPhase < symbolIncrement {
			st.symbolCount++
			if st.symbolCount&3 == 0 {
				if st.symbolCount >= 64+1024 {
					st.symbolCount = 0
				}
				switch {
				case st.symbolCount < 32:
					st.dataByte = 0x00
				case st.symbolCount < 48:
					st.dataByte = 0x99
				case st.symbolCount < 64:
					st.dataByte = 0xcc
				default:
					st.filterState = (st.filterState*3 + int32(d.parameter[1])) >> 2
					st.dataByte = uint8(st.filterState >> 7)
				}
			} else {
				st.dataByte >>= 2
			}
		}
		inPhase := interpolate824(lut.Sine[:], d.phase)
		quadrature := interpolate824(lut.Sine[:], d.phase+1<<30)
		symbol := st.dataByte & 3
		buffer[i] = int16(qpskQ[symbol]*quadrature>>15 + qpskI[symbol]*inPhase>>15)
	}
}

// renderQuestionMark keys lut.Message in Morse code over a drifting, noisy
// carrier. The first parameter sets the speed, the second the amount of
// static.
func (d *DigitalOscillator) renderQuestionMark(_ []byte, buffer []int16) {
	st := &d.state.clk
	if d.strike {
		st.rngState = 0
		st.cyclePhase = 0
		st.sample = 10
		st.cyclePhaseIncrement = 0xffffffff
		st.seed = 32767
		d.strike = false
	}

	dit := uint32(3600 + (32767-int32(d.parameter[0]))>>2)
	p1 := int32(d.parameter[1])
	threshold := 1024 + p1>>3

	for i := range buffer {
		d.phase += d.phaseIncrement
		var sample int32
		if st.rngState != 0 {
			sample = interpolate824(lut.Sine[:], d.phase) * 3 >> 2
		}

		st.cyclePhase++
		if st.cyclePhase > dit {
			st.sample--
			if st.sample == 0 {
				st.cyclePhaseIncrement++
				st.rngState ^= 1

				symbol := uint8(3)
				if addr := int(st.cyclePhaseIncrement >> 2); addr < len(lut.Code) {
					shift := (st.cyclePhaseIncrement & 3) << 1
					symbol = (lut.Code[addr] >> shift) & 3
				}
				st.sample = (2 << symbol) - 1
				if st.sample == 15 {
					st.sample = 100
					st.rngState = 0
					st.cyclePhaseIncrement = 0xffffffff
				}
				d.phase = 1 << 30
			}
			st.cyclePhase = 0
		}

		st.seed += int32(d.random.sample()) >> 2
		intensity := clamp(abs32(st.seed>>8), threshold, 16000)
		noise := int32(d.random.sample()) * intensity >> 15
		noise = noise * int32(lut.Sine[(d.phase>>22)&0xff]) >> 15

		sample = clip16(sample + noise)
		sample = clip16(sample + (sample*sample>>14)*p1>>15)
		buffer[i] = int16(sample)
	}
}
