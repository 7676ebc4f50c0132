package vco

import "github.com/arl/vco/internal/lut"

var (
	toyFIR           = [4]int32{10530, 14751, 16384, 14751}
	toyDCOffset      = int32(28208)
	filterPhaseReset = [4]uint32{0, 0x80000000, 0x40000000, 0x80000000}
)

func (d *DigitalOscillator) renderTripleRingMod(sync []byte, buffer []int16) {
	phase := d.phase + 1<<30
	increment := d.phaseIncrement
	m1 := d.state.vow.formantPhase[0]
	m2 := d.state.vow.formantPhase[1]
	inc1 := computePhaseIncrement(d.pitch + (int32(d.parameter[0])-16384)>>2)
	inc2 := computePhaseIncrement(d.pitch + (int32(d.parameter[1])-16384)>>2)

	for i := range buffer {
		phase += increment
		if syncAt(sync, i) != 0 {
			phase, m1, m2 = 0, 0, 0
		}
		m1 += inc1
		m2 += inc2
		result := interpolate824(lut.Sine[:], phase)
		result = result * interpolate824(lut.Sine[:], m1) >> 16
		result = result * interpolate824(lut.Sine[:], m2) >> 16
		buffer[i] = int16(shape88(lut.ModerateOverdrive[:], result))
	}
	d.phase = phase - 1<<30
	d.state.vow.formantPhase[0] = m1
	d.state.vow.formantPhase[1] = m2
}

func (d *DigitalOscillator) renderSawSwarm(sync []byte, buffer []int16) {
	detune := int32(d.parameter[0]) + 1024
	detune = detune * detune >> 9

	var increments [7]uint32
	for i := range increments {
		sawDetune := detune * int32(i-3)
		integral := sawDetune >> 16
		fractional := sawDetune & 0xffff
		a := int64(computePhaseIncrement(d.pitch + integral))
		b := int64(computePhaseIncrement(d.pitch + integral + 1))
		increments[i] = uint32(a + ((b - a) * int64(fractional) >> 16))
	}

	st := &d.state.saw
	if d.strike {
		for i := range st.phase {
			st.phase[i] = d.random.word()
		}
		d.strike = false
	}

	hpCutoff := d.pitch
	p1 := int32(d.parameter[1])
	if p1 < 10922 {
		hpCutoff += (p1 - 10922) * 24 >> 5
	} else {
		hpCutoff += (p1 - 10922) * 12 >> 5
	}
	hpCutoff = clamp(hpCutoff, 0, 32767)

	f := interpolate824(lut.SVFCutoff[:], uint32(hpCutoff)<<17)
	damp := int32(lut.SVFDamp[0])
	bp, lp := st.bp, st.lp

	for i := range buffer {
		if syncAt(sync, i) != 0 {
			st.phase = [6]uint32{}
		}
		d.phase += increments[0]
		sample := int32(-28672) + int32(d.phase>>19)
		for j := range st.phase {
			st.phase[j] += increments[j+1]
			sample += int32(st.phase[j] >> 19)
		}
		sample = shape88(lut.ModerateOverdrive[:], sample)

		notch := sample - (bp * damp >> 15)
		lp = clip16(lp + (f * bp >> 15))
		hp := notch - lp
		bp += f * hp >> 15
		buffer[i] = int16(clip16(hp))
	}
	st.lp, st.bp = lp, bp
}

// renderComb runs the incoming buffer through a resonant comb filter tuned
// to the pitch. It expects the buffer to already hold the excitation.
func (d *DigitalOscillator) renderComb(_ []byte, buffer []int16) {
	// Smooth the delay time to avoid clicks.
	pitch := d.pitch + (int32(d.parameter[0])-16384)>>1
	filtered := (15*d.state.combPitch + pitch) >> 4
	d.state.combPitch = filtered

	dl := d.lines.comb[:]
	delay := min(computeDelay(filtered), combDelayLength<<16)
	integral := delay >> 16
	fractional := int32(delay & 0xffff)

	// Warp the resonance curve for finer control near the extremes.
	resonance := int32(int16(int32(d.parameter[1])<<1 - 32768))
	resonance = shape88(lut.ModerateOverdrive[:], resonance)

	ptr := d.phase % combDelayLength
	for i := range buffer {
		in := int32(buffer[i])
		offset := ptr + 2*combDelayLength - integral
		a := int32(dl[offset%combDelayLength])
		b := int32(dl[(offset-1)%combDelayLength])
		delayed := a + ((b - a) * (fractional >> 1) >> 15)
		feedback := clip16((delayed * resonance >> 15) + (in >> 1))
		dl[ptr] = int16(feedback)
		buffer[i] = int16(clip16((in + delayed<<1) >> 1))
		ptr = (ptr + 1) % combDelayLength
	}
	d.phase = ptr
}

func (d *DigitalOscillator) renderToy(sync []byte, buffer []int16) {
	// 4x oversampled.
	d.phaseIncrement >>= 2
	increment := d.phaseIncrement
	phase := d.phase

	counter := d.state.toy.decimationCounter
	count := uint16(512 - (d.parameter[0] >> 6))
	held := d.state.toy.heldSample
	x := uint8(d.parameter[1] >> 8)

	for i := range buffer {
		var filtered int32
		if syncAt(sync, i) != 0 {
			phase = 0
		}
		for tap := range toyFIR {
			phase += increment
			if counter >= count {
				held = ((uint8(phase>>24) ^ x<<1) &^ x) + x>>1
				counter = 0
			}
			filtered += toyFIR[tap] * int32(held)
			counter++
		}
		buffer[i] = int16(filtered>>8 - toyDCOffset)
	}
	d.state.toy.heldSample = held
	d.state.toy.decimationCounter = counter
	d.phase = phase
}

// renderDigitalFilter emulates a resonant filter swept by a sine whose
// phase is reset by the carrier, the way a hard-synced oscillator does.
func (d *DigitalOscillator) renderDigitalFilter(sync []byte, buffer []int16) {
	shifted := min(d.pitch+(int32(d.parameter[0])-2048)>>1, 16383)
	st := &d.state.res
	modulatorPhase := st.modulatorPhase
	squarePhase := st.squareModulatorPhase
	integrator := st.integrator

	filterType := d.shape - DigitalFilterLP
	ramp := newIncrementRamp(st.modulatorPhaseIncrement, computePhaseIncrement(shifted), len(buffer))

	p1 := d.parameter[1]
	var balance uint16
	if p1 < 16384 {
		balance = uint16(p1) << 2
	} else {
		balance = uint16(^p1) << 2
	}

	for i := range buffer {
		d.phase += d.phaseIncrement
		modulatorIncrement := ramp.next()
		modulatorPhase += modulatorIncrement
		integratorGain := int32(uint16(modulatorIncrement >> 14))

		if syncAt(sync, i) != 0 {
			st.polarity = true
			d.phase = 0
			modulatorPhase = 0
			squarePhase = 0
			integrator = 0
		}

		squarePhase += modulatorIncrement
		if d.phase < d.phaseIncrement {
			modulatorPhase = filterPhaseReset[filterType]
		}
		if d.phase<<1 < d.phaseIncrement<<1 {
			st.polarity = !st.polarity
			squarePhase = filterPhaseReset[filterType&1+2]
		}

		carrier := interpolate824(lut.Sine[:], modulatorPhase)
		squareCarrier := interpolate824(lut.Sine[:], squarePhase)

		saw := ^uint16(d.phase >> 16)
		doubleSaw := ^uint16(d.phase >> 15)
		triangle := uint16(d.phase >> 15)
		if d.phase&0x80000000 != 0 {
			triangle ^= 0xffff
		}
		window := saw
		if p1 >= 16384 {
			window = triangle
		}

		pulse := squareCarrier * int32(doubleSaw) >> 16
		if st.polarity {
			pulse = -pulse
		}
		integrator = clip16(integrator + (pulse * integratorGain >> 16))

		var sawTri, square int16
		if filterType&2 != 0 {
			sawTri = int16(carrier * int32(window) >> 16)
			square = int16(pulse)
		} else {
			sawTri = int16(int64(window)*int64(carrier+32768)>>16 - 32768)
			square = int16(integrator)
			if filterType == 1 {
				square = int16((pulse + integrator) >> 1)
			}
		}
		buffer[i] = mix(sawTri, square, balance)
	}
	st.modulatorPhase = modulatorPhase
	st.squareModulatorPhase = squarePhase
	st.integrator = integrator
	st.modulatorPhaseIncrement = ramp.inc
}

func (d *DigitalOscillator) renderVosim(sync []byte, buffer []int16) {
	st := &d.state.vow
	for i := range 2 {
		st.formantIncrement[i] = computePhaseIncrement(int32(d.parameter[i] >> 1))
	}
	for i := range buffer {
		d.phase += d.phaseIncrement
		if syncAt(sync, i) != 0 {
			d.phase = 0
		}
		sample := int32(16384 + 8192)
		st.formantPhase[0] += st.formantIncrement[0]
		sample += interpolate824(lut.Sine[:], st.formantPhase[0]) >> 1
		st.formantPhase[1] += st.formantIncrement[1]
		sample += interpolate824(lut.Sine[:], st.formantPhase[1]) >> 2

		sample = sample * (interpolate824(lut.Bell[:], d.phase) >> 1) >> 15
		if d.phase < d.phaseIncrement {
			st.formantPhase[0] = 0
			st.formantPhase[1] = 0
			sample = 0
		}
		buffer[i] = int16(sample - (16384 + 8192))
	}
}

type phoneme struct {
	frequency [3]uint8
	amplitude [3]uint8
}

var vowels = [9]phoneme{
	{[3]uint8{27, 40, 89}, [3]uint8{15, 13, 1}},
	{[3]uint8{18, 51, 62}, [3]uint8{13, 12, 6}},
	{[3]uint8{15, 69, 93}, [3]uint8{14, 12, 7}},
	{[3]uint8{10, 84, 110}, [3]uint8{13, 10, 8}},
	{[3]uint8{23, 44, 87}, [3]uint8{15, 12, 1}},
	{[3]uint8{13, 29, 80}, [3]uint8{13, 8, 0}},
	{[3]uint8{6, 46, 81}, [3]uint8{12, 3, 0}},
	{[3]uint8{9, 51, 95}, [3]uint8{15, 3, 0}},
	{[3]uint8{6, 73, 99}, [3]uint8{7, 3, 14}},
}

var consonants = [8]phoneme{
	{[3]uint8{6, 54, 121}, [3]uint8{9, 9, 0}},
	{[3]uint8{18, 50, 51}, [3]uint8{12, 10, 5}},
	{[3]uint8{11, 24, 70}, [3]uint8{13, 8, 0}},
	{[3]uint8{15, 69, 74}, [3]uint8{14, 12, 7}},
	{[3]uint8{16, 37, 111}, [3]uint8{14, 8, 1}},
	{[3]uint8{18, 51, 62}, [3]uint8{14, 12, 6}},
	{[3]uint8{6, 26, 81}, [3]uint8{5, 5, 5}},
	{[3]uint8{6, 73, 99}, [3]uint8{7, 10, 14}},
}

// renderVowel is a formant synthesizer. A strike plays a short random
// consonant before settling on the vowel selected by the first parameter.
func (d *DigitalOscillator) renderVowel(_ []byte, buffer []int16) {
	st := &d.state.vow
	vowel := int(d.parameter[0] >> 12)
	balance := uint32(d.parameter[0] & 0x0fff)
	shift := uint32(200 + d.parameter[1]>>6)

	if d.strike {
		d.strike = false
		st.consonantFrames = 160
		index := (d.random.sample() + 1) & 7
		c := &consonants[index]
		for i := range 3 {
			st.formantIncrement[i] = uint32(c.frequency[i]) * 0x1000 * shift
			st.formantAmplitude[i] = uint32(c.amplitude[i])
		}
		st.noise = 0
		if index >= 6 {
			st.noise = 4095
		}
	}

	if st.consonantFrames > 0 {
		st.consonantFrames--
	} else {
		a, b := &vowels[vowel], &vowels[vowel+1]
		for i := range 3 {
			st.formantIncrement[i] = (uint32(a.frequency[i])*(0x1000-balance) +
				uint32(b.frequency[i])*balance) * shift
			st.formantAmplitude[i] = (uint32(a.amplitude[i])*(0x1000-balance) +
				uint32(b.amplitude[i])*balance) >> 12
		}
		st.noise = 0
	}
	noise := int32(st.noise)

	for i := range buffer {
		d.phase += d.phaseIncrement
		var sample int16
		for f := range 3 {
			st.formantPhase[f] += st.formantIncrement[f]
			phaselet := (st.formantPhase[f] >> 24) & 0xf0
			idx := phaselet | st.formantAmplitude[f]
			if f == 2 {
				sample += lut.FormantSquare[idx]
			} else {
				sample += lut.FormantSine[idx]
			}
		}
		sample *= int16(255 - (d.phase >> 24))

		phaseNoise := int32(d.random.sample()) * noise
		if d.phase+uint32(phaseNoise) < d.phaseIncrement {
			st.formantPhase = [3]uint32{}
			sample = 0
		}
		buffer[i] = int16(shape88(lut.ModerateOverdrive[:], int32(sample)))
	}
}

var formantFrequencies = [numFormants][numFormants][numFormants]int16{
	{ // bass
		{9519, 10738, 12448, 12636, 12892},
		{8620, 11720, 12591, 12932, 13158},
		{7579, 11891, 12768, 13122, 13323},
		{8620, 10013, 12591, 12768, 13010},
		{8324, 9519, 12591, 12831, 13048},
	},
	{ // tenor
		{9696, 10821, 12810, 13010, 13263},
		{8620, 11827, 12768, 13228, 13477},
		{7908, 12038, 12932, 13263, 13452},
		{8620, 10156, 12768, 12932, 13085},
		{8324, 9519, 12852, 13010, 13296},
	},
	{ // countertenor
		{9730, 10902, 12892, 13085, 13330},
		{8832, 11953, 12852, 13085, 13296},
		{7749, 12014, 13010, 13330, 13483},
		{8781, 10211, 12852, 13085, 13296},
		{8448, 9627, 12892, 13085, 13363},
	},
	{ // alto
		{10156, 10960, 12932, 13427, 14195},
		{8620, 11692, 12852, 13296, 14195},
		{8324, 11827, 12852, 13550, 14195},
		{8881, 10156, 12956, 13427, 14195},
		{8160, 9860, 12708, 13427, 14195},
	},
	{ // soprano
		{10156, 10960, 13010, 13667, 14195},
		{8324, 12187, 12932, 13489, 14195},
		{7749, 12337, 13048, 13667, 14195},
		{8881, 10156, 12956, 13609, 14195},
		{8160, 9860, 12852, 13609, 14195},
	},
}

var formantAmplitudes = [numFormants][numFormants][numFormants]int16{
	{ // bass
		{16384, 7318, 5813, 5813, 1638},
		{16384, 4115, 5813, 4115, 2062},
		{16384, 518, 2596, 1301, 652},
		{16384, 4617, 1460, 1638, 163},
		{16384, 1638, 411, 652, 259},
	},
	{ // tenor
		{16384, 8211, 7318, 6522, 1301},
		{16384, 3269, 4115, 3269, 1638},
		{16384, 2913, 2062, 1638, 518},
		{16384, 5181, 4115, 4115, 821},
		{16384, 1638, 2314, 3269, 821},
	},
	{ // countertenor
		{16384, 8211, 1159, 1033, 206},
		{16384, 3269, 2062, 1638, 1638},
		{16384, 1033, 1033, 259, 259},
		{16384, 5181, 821, 1301, 326},
		{16384, 1638, 1159, 518, 326},
	},
	{ // alto
		{16384, 10337, 1638, 259, 16},
		{16384, 1033, 518, 291, 16},
		{16384, 1638, 518, 259, 16},
		{16384, 5813, 2596, 652, 29},
		{16384, 4115, 518, 163, 10},
	},
	{ // soprano
		{16384, 8211, 411, 1638, 51},
		{16384, 1638, 2913, 163, 25},
		{16384, 4115, 821, 821, 103},
		{16384, 4617, 1301, 1301, 51},
		{16384, 2596, 291, 163, 16},
	},
}

// formantParameter bilinearly interpolates a voice (x) by vowel (y) grid.
func formantParameter(table *[numFormants][numFormants][numFormants]int16, x, y int16, formant int) int32 {
	xi, xm := int(x>>13), int32(uint16(x<<3))
	yi, ym := int(y>>13), int32(uint16(y<<3))
	a := int32(table[xi][yi][formant])
	b := int32(table[xi+1][yi][formant])
	c := int32(table[xi][yi+1][formant])
	e := int32(table[xi+1][yi+1][formant])
	a = a + ((b - a) * xm >> 16)
	c = c + ((e - c) * xm >> 16)
	return a + ((c - a) * ym >> 16)
}

// renderVowelFof filters a saw through a bank of five band-pass SVFs tuned
// to the formants of a sung vowel. It runs at half rate.
func (d *DigitalOscillator) renderVowelFof(_ []byte, buffer []int16) {
	st := &d.state.fof
	var amplitudes, f [numFormants]int32
	for i := range numFormants {
		frequency := formantParameter(&formantFrequencies, d.parameter[1], d.parameter[0], i) + 12<<7
		f[i] = interpolate824(lut.SVFCutoff[:], uint32(frequency)<<17)
		amplitudes[i] = formantParameter(&formantAmplitudes, d.parameter[1], d.parameter[0], i)
	}
	if d.init {
		st.lp = [numFormants]int32{}
		st.bp = [numFormants]int32{}
		d.init = false
	}

	phase := d.phase
	previous := st.previousSample
	next := st.nextSawSample
	increment := d.phaseIncrement << 1
	for i := 0; i < len(buffer); i += 2 {
		this := next
		next = 0
		phase += increment
		if phase < increment {
			t := stepTime(phase, increment)
			this -= thisBlepSample(t)
			next -= nextBlepSample(t)
		}
		next += int32(phase >> 17)

		var out int32
		for j := range numFormants {
			notch := this - (st.bp[j] >> 6)
			st.lp[j] = clip16(st.lp[j] + (f[j] * st.bp[j] >> 15))
			hp := notch - st.lp[j]
			st.bp[j] = clip16(st.bp[j] + (f[j] * hp >> 15))
			out += st.bp[j] * amplitudes[j] >> 17
		}
		out = clip16(out)
		buffer[i] = int16((out + previous) >> 1)
		buffer[i+1] = int16(out)
		previous = out
	}
	d.phase = phase
	st.nextSawSample = next
	st.previousSample = previous
}

// renderHarmonics is an additive oscillator with two spectral peaks. It
// runs at half rate.
func (d *DigitalOscillator) renderHarmonics(sync []byte, buffer []int16) {
	phase := d.phase
	previous := int32(d.state.add.previousSample)
	increment := d.phaseIncrement << 1

	p0, p1 := int32(d.parameter[0]), int32(d.parameter[1])
	peak := numHarmonics * p0 >> 7
	secondPeak := peak>>1 + numHarmonics*128
	secondPeakAmount := p1 * p1 >> 15

	sqrtsqrtWidth := p1 >> 6
	if p1 >= 16384 {
		sqrtsqrtWidth = 511 - p1>>6
	}
	sqrtWidth := sqrtsqrtWidth * sqrtsqrtWidth >> 10
	width := sqrtWidth*sqrtWidth + 4

	var target [numHarmonics]int32
	var total int32
	for i := range numHarmonics {
		x := int32(i) << 8
		dd := x - peak
		g := 32768 * 128 / (128 + dd*dd/width)
		dd = x - secondPeak
		g += secondPeakAmount * 128 / (128 + dd*dd/width)
		total += g
		target[i] = g
	}

	attenuation := int64(2147483647 / max(total, 1))
	amplitude := &d.state.hrm
	for i := range numHarmonics {
		if (increment>>16)*uint32(i+1) > 0x4000 {
			target[i] = 0
		} else {
			target[i] = int32(int64(target[i]) * attenuation >> 16)
		}
	}

	for i := 0; i < len(buffer); i += 2 {
		phase += increment
		if syncAt(sync, i) != 0 || syncAt(sync, i+1) != 0 {
			phase = 0
		}
		var out int32
		for h := range numHarmonics {
			out += interpolate824(lut.Sine[:], phase*uint32(h+1)) * amplitude[h] >> 15
			amplitude[h] += (target[h] - amplitude[h]) >> 8
		}
		out = clip16(out)
		buffer[i] = int16((out + previous) >> 1)
		buffer[i+1] = int16(out)
		previous = out
	}
	d.state.add.previousSample = int16(previous)
	d.phase = phase
}
