package vco

import "github.com/arl/vco/internal/lut"

// modulatorIncrement tunes the modulator an octave above the carrier, offset
// by the quantized ratio knob, at half rate.
func (d *DigitalOscillator) modulatorIncrement() uint32 {
	return computePhaseIncrement(12<<7+d.pitch+(int32(d.fmParameter)-16384)>>1) >> 1
}

func (d *DigitalOscillator) renderFM(sync []byte, buffer []int16) {
	modulatorPhase := d.state.modulatorPhase
	modulatorIncrement := d.modulatorIncrement()
	amount := newParamRamp(d.previousParameter[0], d.parameter[0], len(buffer))

	for i := range buffer {
		p0 := amount.next()
		d.phase += d.phaseIncrement
		if syncAt(sync, i) != 0 {
			d.phase, modulatorPhase = 0, 0
		}
		modulatorPhase += modulatorIncrement
		pm := uint32(interpolate824(lut.Sine[:], modulatorPhase)*p0) << 2
		buffer[i] = int16(interpolate824(lut.Sine[:], d.phase+pm))
	}
	d.previousParameter[0] = d.parameter[0]
	d.state.modulatorPhase = modulatorPhase
}

func (d *DigitalOscillator) renderFeedbackFM(sync []byte, buffer []int16) {
	st := &d.state.ffm
	previous := st.previousSample
	modulatorPhase := st.modulatorPhase

	attenuation := d.pitch - 72<<7 + (int32(d.fmParameter)-16384)>>1
	attenuation = clamp(32767-attenuation*4, 0, 32767)

	modulatorIncrement := d.modulatorIncrement()
	amount := newParamRamp(d.previousParameter[0], d.parameter[0], len(buffer))

	for i := range buffer {
		p0 := amount.next()
		d.phase += d.phaseIncrement
		if syncAt(sync, i) != 0 {
			d.phase, modulatorPhase = 0, 0
		}
		modulatorPhase += modulatorIncrement

		p := p0 * attenuation >> 15
		pm := int32(previous) << 14
		pm = interpolate824(lut.Sine[:], modulatorPhase+uint32(pm)) * p << 1
		previous = int16(interpolate824(lut.Sine[:], d.phase+uint32(pm)))
		buffer[i] = previous
	}
	d.previousParameter[0] = d.parameter[0]
	st.previousSample = previous
	st.modulatorPhase = modulatorPhase
}

// renderChaoticFeedbackFM lets the output bend the modulator frequency.
func (d *DigitalOscillator) renderChaoticFeedbackFM(sync []byte, buffer []int16) {
	st := &d.state.ffm
	modulatorIncrement := d.modulatorIncrement()
	previous := st.previousSample
	modulatorPhase := st.modulatorPhase
	amount := newParamRamp(d.previousParameter[0], d.parameter[0], len(buffer))

	for i := range buffer {
		p0 := amount.next()
		d.phase += d.phaseIncrement
		if syncAt(sync, i) != 0 {
			d.phase, modulatorPhase = 0, 0
		}
		pm := interpolate824(lut.Sine[:], modulatorPhase) * p0 << 1
		previous = int16(interpolate824(lut.Sine[:], d.phase+uint32(pm)))
		buffer[i] = previous
		modulatorPhase += (modulatorIncrement >> 8) * uint32(129+int32(previous>>9))
	}
	d.previousParameter[0] = d.parameter[0]
	st.previousSample = previous
	st.modulatorPhase = modulatorPhase
}
