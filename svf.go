package vco

import "github.com/arl/vco/internal/lut"

type svfMode uint8

const (
	svfLowPass svfMode = iota
	svfBandPass
	svfHighPass
)

// svf is a Chamberlin state variable filter with an optional "punch" that
// opens the cutoff when the low-pass output gets loud.
type svf struct {
	dirty     bool
	frequency int16
	resonance int16
	punch     int32
	f, damp   int32
	lp, bp    int32
	mode      svfMode
}

func (s *svf) init() {
	*s = svf{
		frequency: 33 << 7,
		resonance: 16384,
		dirty:     true,
		mode:      svfBandPass,
	}
}

func (s *svf) setFrequency(frequency int16) {
	s.dirty = s.dirty || s.frequency != frequency
	s.frequency = frequency
}

func (s *svf) setResonance(resonance int16) {
	s.resonance = resonance
	s.dirty = true
}

func (s *svf) setPunch(punch uint16) {
	s.punch = int32(uint32(punch) * uint32(punch) >> 24)
}

func (s *svf) setMode(mode svfMode) { s.mode = mode }

func (s *svf) process(in int32) int32 {
	if s.dirty {
		s.f = interpolate824(lut.SVFCutoff[:], uint32(max(s.frequency, 0))<<17)
		s.damp = interpolate824(lut.SVFDamp[:], uint32(max(s.resonance, 0))<<17)
		s.dirty = false
	}
	f, damp := s.f, s.damp
	if s.punch != 0 {
		punch := int32(2048)
		if s.lp > 4096 {
			punch = s.lp
		}
		f += (punch >> 4) * s.punch >> 9
		damp += (punch - 2048) >> 3
	}
	notch := in - (s.bp * damp >> 15)
	s.lp = clip16(s.lp + (f * s.bp >> 15))
	hp := notch - s.lp
	s.bp = clip16(s.bp + (f * hp >> 15))

	switch s.mode {
	case svfBandPass:
		return s.bp
	case svfHighPass:
		return hp
	default:
		return s.lp
	}
}
