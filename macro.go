package vco

import (
	"math"

	"github.com/arl/vco/internal/lut"
)

// A MacroOscillator exposes every synthesis model behind a single pitch and
// two timbre parameters. Analog shapes combine up to three AnalogOscillators,
// the others pass through to a DigitalOscillator.
type MacroOscillator struct {
	shape             MacroShape
	pitch             int16
	parameter         [2]int16
	previousParameter [2]int16
	lpState           int32

	analog  [3]AnalogOscillator
	digital DigitalOscillator

	temp    [MaxBlockSize]int16
	syncBuf [MaxBlockSize]byte
}

// NewMacroOscillator returns an initialized oscillator set to CSaw.
func NewMacroOscillator() *MacroOscillator {
	m := &MacroOscillator{}
	m.Init()
	return m
}

// Init resets all state. The shape is kept, pitch goes back to middle C
// and parameters to 0.
func (m *MacroOscillator) Init() {
	m.pitch = 60 << 7
	m.parameter = [2]int16{}
	m.reset()
}

// reset discards the continuity state of the facade and of every
// sub-oscillator.
func (m *MacroOscillator) reset() {
	m.previousParameter = [2]int16{}
	m.lpState = 0
	for i := range m.analog {
		m.analog[i].Init()
	}
	m.digital.reset()
}

// SetShape selects the model. Changing shape strikes the oscillator and
// restarts it from a clean state.
func (m *MacroOscillator) SetShape(shape MacroShape) {
	if shape != m.shape {
		m.reset()
		m.Strike()
	}
	m.shape = shape
}

// Shape returns the selected model.
func (m *MacroOscillator) Shape() MacroShape { return m.shape }

// SetPitch sets the pitch in 1/128 semitones; 60<<7 is middle C.
func (m *MacroOscillator) SetPitch(pitch int16) { m.pitch = pitch }

// SetParameters sets timbre and color; negative values read as 0.
func (m *MacroOscillator) SetParameters(p0, p1 int16) {
	m.parameter[0] = max(p0, 0)
	m.parameter[1] = max(p1, 0)
}

// Strike triggers the percussive and physical models.
func (m *MacroOscillator) Strike() { m.digital.Strike() }

type macroRenderFn func(m *MacroOscillator, sync []byte, buffer []int16)

var macroRenderers = [NumMacroShapes]macroRenderFn{
	CSaw:           (*MacroOscillator).renderCSaw,
	Morph:          (*MacroOscillator).renderMorph,
	SawSquare:      (*MacroOscillator).renderSawSquare,
	SineTriangle:   (*MacroOscillator).renderSineTriangle,
	Buzz:           (*MacroOscillator).renderBuzz,
	SquareSync:     (*MacroOscillator).renderDualSync,
	SawSync:        (*MacroOscillator).renderDualSync,
	TripleSaw:      (*MacroOscillator).renderTriple,
	TripleSquare:   (*MacroOscillator).renderTriple,
	TripleTriangle: (*MacroOscillator).renderTriple,
	TripleSine:     (*MacroOscillator).renderTriple,
	SawComb:        (*MacroOscillator).renderSawComb,
}

func init() {
	for s := TripleRingMod; s < NumMacroShapes; s++ {
		if macroRenderers[s] == nil {
			macroRenderers[s] = (*MacroOscillator).renderDigital
		}
	}
}

// Render fills buffer with len(buffer) samples of the current shape. See
// AnalogOscillator.Render for the sync encoding.
//
// Render panics if buffer is empty or longer than MaxBlockSize, or if a
// sync buffer is shorter than buffer. Digital shapes also panic on odd
// sizes.
func (m *MacroOscillator) Render(sync []byte, buffer []int16) {
	checkBlock(sync, buffer)
	macroRenderers[m.shape](m, sync, buffer)
}

// offsetPitch returns the pitch shifted by offset, saturated to int16.
func (m *MacroOscillator) offsetPitch(offset int32) int16 {
	return int16(clamp(int32(m.pitch)+offset, math.MinInt16, math.MaxInt16))
}

func (m *MacroOscillator) renderCSaw(sync []byte, buffer []int16) {
	a := &m.analog[0]
	a.SetPitch(m.pitch)
	a.SetShape(AnalogCSaw)
	a.SetParameter(m.parameter[0])
	a.SetAuxParameter(m.parameter[1])
	a.Render(sync, buffer, nil)

	shift := -(int32(m.parameter[1]) - 32767) >> 4
	for i, s := range buffer {
		buffer[i] = int16(clip16((int32(s) + shift) * 13 >> 3))
	}
}

// renderMorph sweeps triangle, saw, square and pulse, then runs the result
// through a low-passed fuzz controlled by the second parameter.
func (m *MacroOscillator) renderMorph(sync []byte, buffer []int16) {
	a0, a1 := &m.analog[0], &m.analog[1]
	a0.SetPitch(m.pitch)
	a1.SetPitch(m.pitch)

	p0 := int32(m.parameter[0])
	var balance uint16
	switch {
	case p0 <= 10922:
		a0.SetParameter(0)
		a1.SetParameter(0)
		a0.SetShape(AnalogTriangle)
		a1.SetShape(AnalogSaw)
		balance = uint16(p0 * 6)
	case p0 <= 21845:
		a0.SetParameter(0)
		a1.SetParameter(0)
		a0.SetShape(AnalogSquare)
		a1.SetShape(AnalogSaw)
		balance = uint16(65535 - (p0-10923)*6)
	default:
		a0.SetParameter(int16((p0 - 21846) * 3))
		a1.SetParameter(0)
		a0.SetShape(AnalogSquare)
		a1.SetShape(AnalogSine)
		balance = 0
	}

	temp := m.temp[:len(buffer)]
	a0.Render(sync, buffer, nil)
	a1.Render(sync, temp, nil)

	pitch := int32(m.pitch)
	p1 := int32(m.parameter[1])
	cutoff := clamp(pitch-p1>>1+128*128, 0, 32767)
	f := interpolate824(lut.SVFCutoff[:], uint32(cutoff)<<17)

	fuzzAmount := p1 << 1
	if pitch > 80<<7 {
		fuzzAmount = max(fuzzAmount-(pitch-80<<7)<<4, 0)
	}

	lp := m.lpState
	for i := range buffer {
		sample := mix(buffer[i], temp[i], balance)
		lp = clip16(lp + ((int32(sample) - lp) * f >> 15))
		fuzzed := int16(interpolate88(lut.ViolentOverdrive[:], uint16(lp+32768)))
		buffer[i] = mix(sample, fuzzed, uint16(fuzzAmount))
	}
	m.lpState = lp
}

func (m *MacroOscillator) renderSawSquare(sync []byte, buffer []int16) {
	a0, a1 := &m.analog[0], &m.analog[1]
	a0.SetParameter(m.parameter[0])
	a1.SetParameter(m.parameter[0])
	a0.SetPitch(m.pitch)
	a1.SetPitch(m.pitch)
	a0.SetShape(AnalogVariableSaw)
	a1.SetShape(AnalogSquare)

	square := m.temp[:len(buffer)]
	a0.Render(sync, buffer, nil)
	a1.Render(sync, square, nil)

	ramp := newParamRamp(m.previousParameter[1], m.parameter[1], len(buffer))
	for i := range buffer {
		balance := uint16(ramp.next() << 1)
		attenuated := int16(int32(square[i]) * 148 >> 8)
		buffer[i] = mix(buffer[i], attenuated, balance)
	}
	m.previousParameter[1] = m.parameter[1]
}

// renderSineTriangle crossfades a folded sine and a folded triangle. The
// fold amount is reduced at high pitches to limit aliasing.
func (m *MacroOscillator) renderSineTriangle(sync []byte, buffer []int16) {
	pitch := int32(m.pitch)
	attenuationSine := clamp(32767-6*(pitch-92<<7), 0, 32767)
	attenuationTri := clamp(32767-7*(pitch-80<<7), 0, 32767)
	timbre := int32(m.parameter[0])

	a0, a1 := &m.analog[0], &m.analog[1]
	a0.SetParameter(int16(timbre * attenuationSine >> 15))
	a1.SetParameter(int16(timbre * attenuationTri >> 15))
	a0.SetPitch(m.pitch)
	a1.SetPitch(m.pitch)
	a0.SetShape(AnalogSineFold)
	a1.SetShape(AnalogTriangleFold)

	temp := m.temp[:len(buffer)]
	a0.Render(sync, buffer, nil)
	a1.Render(sync, temp, nil)

	ramp := newParamRamp(m.previousParameter[1], m.parameter[1], len(buffer))
	for i := range buffer {
		balance := uint16(ramp.next() << 1)
		buffer[i] = mix(buffer[i], temp[i], balance)
	}
	m.previousParameter[1] = m.parameter[1]
}

func (m *MacroOscillator) renderBuzz(sync []byte, buffer []int16) {
	a0, a1 := &m.analog[0], &m.analog[1]
	a0.SetParameter(m.parameter[0])
	a0.SetShape(AnalogBuzz)
	a0.SetPitch(m.pitch)
	a1.SetParameter(m.parameter[0])
	a1.SetShape(AnalogBuzz)
	a1.SetPitch(m.offsetPitch(int32(m.parameter[1] >> 8)))

	temp := m.temp[:len(buffer)]
	a0.Render(sync, buffer, nil)
	a1.Render(sync, temp, nil)
	for i := range buffer {
		buffer[i] = buffer[i]>>1 + temp[i]>>1
	}
}

// renderDualSync hard-syncs a second oscillator, detuned upwards by the
// first parameter, to the first one. The second parameter mixes them.
func (m *MacroOscillator) renderDualSync(sync []byte, buffer []int16) {
	shape := AnalogSaw
	if m.shape == SquareSync {
		shape = AnalogSquare
	}
	a0, a1 := &m.analog[0], &m.analog[1]
	a0.SetParameter(0)
	a0.SetShape(shape)
	a0.SetPitch(m.pitch)
	a1.SetParameter(0)
	a1.SetShape(shape)
	a1.SetPitch(m.offsetPitch(int32(m.parameter[0] >> 2)))

	n := len(buffer)
	temp, master := m.temp[:n], m.syncBuf[:n]
	a0.Render(sync, buffer, master)
	a1.Render(master, temp, nil)

	ramp := newParamRamp(m.previousParameter[1], m.parameter[1], n)
	for i := range buffer {
		balance := uint16(ramp.next() << 1)
		buffer[i] = mix(buffer[i], temp[i], balance) >> 2 * 3
	}
	m.previousParameter[1] = m.parameter[1]
}

// intervals maps the detune knobs of the triple shapes, in 1/128
// semitones. Musical intervals get a small plateau, unison a slow chorus.
var intervals = [65]int16{
	-24 * semi, -24 * semi, -24*semi + 4,
	-23 * semi, -22 * semi, -21 * semi, -20 * semi, -19 * semi, -18 * semi,
	-17*semi - 4, -17 * semi,
	-16 * semi, -15 * semi, -14 * semi, -13 * semi,
	-12*semi - 4, -12 * semi,
	-11 * semi, -10 * semi, -9 * semi, -8 * semi,
	-7*semi - 4, -7 * semi,
	-6 * semi, -5 * semi, -4 * semi, -3 * semi, -2 * semi, -1 * semi,
	-24, -8, -4, 0, 4, 8, 24,
	1 * semi, 2 * semi, 3 * semi, 4 * semi, 5 * semi, 6 * semi,
	7 * semi, 7*semi + 4,
	8 * semi, 9 * semi, 10 * semi, 11 * semi,
	12 * semi, 12*semi + 4,
	13 * semi, 14 * semi, 15 * semi, 16 * semi,
	17 * semi, 17*semi + 4,
	18 * semi, 19 * semi, 20 * semi, 21 * semi, 22 * semi, 23 * semi,
	24*semi - 4, 24 * semi, 24 * semi,
}

var tripleShapes = map[MacroShape]AnalogShape{
	TripleSaw:      AnalogSaw,
	TripleSquare:   AnalogSquare,
	TripleTriangle: AnalogTriangle,
	TripleSine:     AnalogSine,
}

// renderTriple stacks three oscillators, the last two detuned by the
// parameters along the intervals table.
func (m *MacroOscillator) renderTriple(sync []byte, buffer []int16) {
	shape := tripleShapes[m.shape]

	m.analog[0].SetPitch(m.pitch)
	for i := range 2 {
		p := m.parameter[i]
		detune1 := int32(intervals[p>>9])
		detune2 := int32(intervals[((p>>8)+1)>>1])
		xfade := int32(uint16(p) << 8)
		detune := detune1 + ((detune2 - detune1) * xfade >> 16)
		m.analog[i+1].SetPitch(m.offsetPitch(detune))
	}

	clear(buffer)
	temp := m.temp[:len(buffer)]
	for i := range m.analog {
		a := &m.analog[i]
		a.SetParameter(0)
		a.SetShape(shape)
		a.Render(sync, temp, nil)
		for j, s := range temp {
			buffer[j] += int16(int32(s) * 21 >> 6)
		}
	}
}

func (m *MacroOscillator) renderDigital(sync []byte, buffer []int16) {
	m.digital.SetParameters(m.parameter[0], m.parameter[1])
	m.digital.SetPitch(m.pitch)
	m.digital.SetShape(m.shape.digital())
	m.digital.Render(sync, buffer)
}

// renderSawComb feeds a saw into the comb filter algorithm.
func (m *MacroOscillator) renderSawComb(sync []byte, buffer []int16) {
	a := &m.analog[0]
	a.SetParameter(0)
	a.SetPitch(m.pitch)
	a.SetShape(AnalogSaw)
	a.Render(sync, buffer, nil)

	m.digital.SetParameters(m.parameter[0], m.parameter[1])
	m.digital.SetPitch(m.pitch)
	m.digital.SetShape(DigitalCombFilter)
	m.digital.Render(sync, buffer)
}
