package vco

import "github.com/arl/vco/internal/lut"

var (
	bellPartials          = [numBellPartials]int32{-1284, -1283, -184, -183, 385, 1175, 1536, 2233, 2434, 2934, 3110}
	bellPartialAmplitudes = [numBellPartials]int32{8192, 5488, 8192, 14745, 21872, 13680, 11960, 10895, 10895, 6144, 10895}
	bellDecayLong         = [numBellPartials]int32{65533, 65533, 65533, 65532, 65531, 65531, 65530, 65529, 65527, 65523, 65519}
	bellDecayShort        = [numBellPartials]int32{65308, 65283, 65186, 65123, 64839, 64889, 64632, 64409, 64038, 63302, 62575}

	drumPartials          = [numDrumPartials]int32{0, 0, 1041, 1747, 1846, 3072}
	drumPartialAmplitudes = [numDrumPartials]int32{16986, 2654, 3981, 5308, 3981, 2985}
	drumDecayLong         = [numDrumPartials]int32{65533, 65531, 65531, 65531, 65531, 65516}
	drumDecayShort        = [numDrumPartials]int32{65083, 64715, 64715, 64715, 64715, 62312}
)

// partialDecay blends the long and short decay rates of a partial. Low
// parameter values give short decays.
func partialDecay(long, short int32, parameter int16) int32 {
	balance := int32((32767 - parameter) >> 8)
	balance = balance * balance >> 7
	return long - ((long - short) * balance >> 7)
}

// renderStruckBell is an additive bell. Partial frequencies are refreshed
// three at a time to spread the cost over several blocks. It runs at half
// rate.
func (d *DigitalOscillator) renderStruckBell(_ []byte, buffer []int16) {
	st := &d.state.add
	first := st.currentPartial
	last := min(first+3, numBellPartials)
	st.currentPartial = (first + 3) % numBellPartials

	if d.strike {
		for i := range numBellPartials {
			st.partialAmplitude[i] = bellPartialAmplitudes[i]
			st.partialPhase[i] = 1 << 30
		}
		d.strike = false
		first, last = 0, numBellPartials
	}

	for i := first; i < last; i++ {
		pitch := d.pitch + bellPartials[i]
		if i&1 != 0 {
			pitch += int32(d.parameter[1] >> 7)
		} else {
			pitch -= int32(d.parameter[1] >> 7)
		}
		st.partialPhaseIncrement[i] = computePhaseIncrement(pitch) << 1
	}

	// At the maximum setting the bell drones forever.
	if d.parameter[0] < 32000 {
		for i := range numBellPartials {
			decay := partialDecay(bellDecayLong[i], bellDecayShort[i], d.parameter[0])
			st.partialAmplitude[i] = st.partialAmplitude[i] * decay >> 16
		}
	}

	previous := int32(st.previousSample)
	for i := 0; i < len(buffer); i += 2 {
		var out int32
		for p := range numBellPartials {
			st.partialPhase[p] += st.partialPhaseIncrement[p]
			partial := interpolate824(lut.Sine[:], st.partialPhase[p])
			out += partial * st.partialAmplitude[p] >> 17
		}
		out = clip16(out)
		buffer[i] = int16((out + previous) >> 1)
		buffer[i+1] = int16(out)
		previous = out
	}
	st.previousSample = int16(previous)
}

// renderStruckDrum is an additive membrane. The second parameter crossfades
// from pure partials to partials ring-modulated by filtered noise. It runs at
// half rate.
func (d *DigitalOscillator) renderStruckDrum(_ []byte, buffer []int16) {
	st := &d.state.add
	if d.strike {
		resetPhase := st.partialAmplitude[0] < 1024
		for i := range numDrumPartials {
			st.targetPartialAmplitude[i] = drumPartialAmplitudes[i]
			if resetPhase {
				st.partialPhase[i] = 1 << 30
			}
		}
		d.strike = false
	} else if d.parameter[0] < 32000 {
		for i := range numDrumPartials {
			decay := partialDecay(drumDecayLong[i], drumDecayShort[i], d.parameter[0])
			st.targetPartialAmplitude[i] = st.partialAmplitude[i] * decay >> 16
		}
	}

	for i := range numDrumPartials {
		st.partialPhaseIncrement[i] = computePhaseIncrement(d.pitch+drumPartials[i]) << 1
	}

	previous := int32(st.previousSample)
	p1 := int32(d.parameter[1])
	cutoff := clamp(d.pitch-12*128+p1>>2, 0, 32767)
	f := interpolate824(lut.SVFCutoff[:], uint32(cutoff)<<16)
	lp0, lp1, lp2 := st.lpNoise[0], st.lpNoise[1], st.lpNoise[2]

	harmonicsGain := int32(16384)
	if p1 < 12888 {
		harmonicsGain = p1 + 4096
	}
	noiseModeGain := max(p1-16384, 0) * 12888 >> 14

	fadeIncrement := 65536 / int32(len(buffer))
	var fade int32
	for i := 0; i < len(buffer); i += 2 {
		fade += fadeIncrement
		var harmonics int32

		noise := clamp(int32(d.random.sample()), -16384, 16384)
		lp0 += (noise - lp0) * f >> 15
		lp1 += (lp0 - lp1) * f >> 15
		lp2 += (lp1 - lp2) * f >> 15

		var partials [numDrumPartials]int32
		for p := range numDrumPartials {
			st.partialPhase[p] += st.partialPhaseIncrement[p]
			partial := interpolate824(lut.Sine[:], st.partialPhase[p])
			amplitude := st.partialAmplitude[p] +
				((st.targetPartialAmplitude[p] - st.partialAmplitude[p]) * fade >> 15)
			partial = partial * amplitude >> 16
			harmonics += partial
			partials[p] = partial
		}
		sample := partials[0]
		noise1 := partials[1] * lp2 >> 8
		noise2 := partials[3] * lp2 >> 9
		sample += noise1 * (12288 - noiseModeGain) >> 14
		sample += noise2 * noiseModeGain >> 14
		sample += harmonics * harmonicsGain >> 14
		sample = clip16(sample)

		buffer[i] = int16((sample + previous) >> 1)
		buffer[i+1] = int16(sample)
		previous = sample
	}
	st.previousSample = int16(previous)
	st.lpNoise = [3]int32{lp0, lp1, lp2}
	st.partialAmplitude = st.targetPartialAmplitude
}

// renderKick is an 808-style bass drum: a pulse train exciting a resonant
// band-pass filter whose pitch drops after the attack. It runs at half rate.
func (d *DigitalOscillator) renderKick(_ []byte, buffer []int16) {
	if d.init {
		d.pulse[0].init()
		d.pulse[0].setDelay(0)
		d.pulse[0].setDecay(3340)

		d.pulse[1].init()
		d.pulse[1].setDelay(48) // 1ms at 48kHz
		d.pulse[1].setDecay(3072)

		d.pulse[2].init()
		d.pulse[2].setDelay(192)
		d.pulse[2].setDecay(4093)

		d.svf[0].init()
		d.svf[0].setPunch(32768)
		d.svf[0].setMode(svfBandPass)
		d.init = false
	}

	if d.strike {
		d.strike = false
		d.pulse[0].trigger(275251) // 12 * 32768 * 0.7
		d.pulse[1].trigger(-13763) // -19662 * 0.7
		d.pulse[2].trigger(18000)
		d.svf[0].setPunch(24000)
	}

	decay := uint32(d.parameter[0])
	scaled := 65535 - decay<<1
	squared := scaled * scaled >> 16
	scaled = squared * scaled >> 18
	d.svf[0].setResonance(int16(32768 - 128 - int32(scaled)))

	coefficient := uint32(d.parameter[1])
	coefficient = coefficient * coefficient >> 15
	coefficient = coefficient * coefficient >> 15
	lpCoefficient := 128 + int32(coefficient>>1)*3
	lp := d.state.svf.lp

	for i := 0; i < len(buffer); i += 2 {
		excitation := d.pulse[0].process()
		if !d.pulse[1].done() {
			excitation += 16384
		}
		excitation += d.pulse[1].process()
		d.pulse[2].process()
		frequency := d.pitch
		if !d.pulse[2].done() {
			frequency += 17 << 7
		}
		d.svf[0].setFrequency(int16(frequency))

		for j := range 2 {
			resonator := excitation>>4 + d.svf[0].process(excitation)
			lp = clip16(lp + ((resonator - lp) * lpCoefficient >> 15))
			buffer[i+j] = int16(lp)
		}
	}
	d.state.svf.lp = lp
}

// renderSnare mixes two excited band-pass modes of the drum head with
// filtered noise for the snares. It runs at half rate.
func (d *DigitalOscillator) renderSnare(_ []byte, buffer []int16) {
	if d.init {
		d.pulse[0].init()
		d.pulse[0].setDelay(0)
		d.pulse[0].setDecay(1536)

		d.pulse[1].init()
		d.pulse[1].setDelay(48)
		d.pulse[1].setDecay(3072)

		d.pulse[2].init()
		d.pulse[2].setDelay(48)
		d.pulse[2].setDecay(1200)

		d.pulse[3].init()
		d.pulse[3].setDelay(0)

		d.svf[0].init()
		d.svf[1].init()
		d.svf[2].init()
		d.svf[2].setResonance(2000)
		d.svf[2].setMode(svfBandPass)
		d.init = false
	}

	p1 := int32(d.parameter[1])
	if d.strike {
		decay := 49152 - d.pitch
		if p1 >= 16384 {
			decay += p1 - 16384
		}
		decay = min(decay, 65535)
		d.svf[0].setResonance(int16(29000 + decay>>5))
		d.svf[1].setResonance(int16(26500 + decay>>5))
		d.pulse[3].setDecay(uint16(4092 + decay>>14))

		d.pulse[0].trigger(15 * 32768)
		d.pulse[1].trigger(-1 * 32768)
		d.pulse[2].trigger(13107)
		snappy := min(p1, 14336)
		d.pulse[3].trigger(512 + snappy<<1)
		d.strike = false
	}

	d.svf[0].setFrequency(int16(d.pitch + 12<<7))
	d.svf[1].setFrequency(int16(d.pitch + 24<<7))
	d.svf[2].setFrequency(int16(d.pitch + 60<<7))

	g1 := 22000 - int32(d.parameter[0]>>1)
	g2 := 22000 + int32(d.parameter[0]>>1)

	for i := 0; i < len(buffer); i += 2 {
		excitation1 := d.pulse[0].process()
		excitation1 += d.pulse[1].process()
		if !d.pulse[1].done() {
			excitation1 += 2621
		}

		excitation2 := d.pulse[2].process()
		if !d.pulse[2].done() {
			excitation2 += 13107
		}

		noise := int32(d.random.sample()) * d.pulse[3].process() >> 15

		var sd int32
		sd += (d.svf[0].process(excitation1) + excitation1>>4) * g1 >> 15
		sd += (d.svf[1].process(excitation2) + excitation2>>4) * g2 >> 15
		sd += d.svf[2].process(noise)
		sd = clip16(sd)

		buffer[i] = int16(sd)
		buffer[i+1] = int16(sd)
	}
}

// renderCymbal sums six square waves at inharmonic ratios (the 808 hat
// recipe) and crossfades them with clocked noise.
func (d *DigitalOscillator) renderCymbal(_ []byte, buffer []int16) {
	if d.init {
		d.svf[0].init()
		d.svf[0].setMode(svfBandPass)
		d.svf[0].setResonance(12000)
		d.svf[1].init()
		d.svf[1].setMode(svfHighPass)
		d.svf[1].setResonance(2000)
		d.init = false
	}

	hat := &d.state.hat
	var increments [7]uint32
	note := 40<<7 + d.pitch>>1
	increments[0] = computePhaseIncrement(note)
	root := increments[0] >> 10
	increments[1] = root * 24273 >> 4
	increments[2] = root * 12561 >> 4
	increments[3] = root * 18417 >> 4
	increments[4] = root * 22452 >> 4
	increments[5] = root * 31858 >> 4
	increments[6] = increments[0] * 24

	xfade := int32(d.parameter[1])
	d.svf[0].setFrequency(d.parameter[0] >> 1)
	d.svf[1].setFrequency(d.parameter[0] >> 1)

	for i := range buffer {
		d.phase += increments[6]
		if d.phase < increments[6] {
			hat.rngState = hat.rngState*1664525 + 1013904223
		}
		var hatNoise int32
		for j := range hat.phase {
			hat.phase[j] += increments[j]
			hatNoise += int32(hat.phase[j] >> 31)
		}
		hatNoise -= 3
		hatNoise *= 5461
		hatNoise = clip16(d.svf[0].process(hatNoise))

		noise := int32(hat.rngState>>16) - 32768
		noise = clip16(d.svf[1].process(noise >> 1))

		buffer[i] = int16(hatNoise + ((noise - hatNoise) * xfade >> 15))
	}
}
