package vco

import "github.com/arl/vco/internal/lut"

// MaxBlockSize is the largest number of samples a single Render call may
// produce. Hosts typically render 24 samples per control tick.
const MaxBlockSize = 256

const (
	analogHighestNote = 128 * 128
	analogShapeNone   = AnalogShape(NumAnalogShapes)
)

// checkBlock enforces the Render contract shared by all oscillators.
func checkBlock(sync []byte, buffer []int16) {
	if len(buffer) == 0 || len(buffer) > MaxBlockSize {
		panic("vco: invalid block size")
	}
	if sync != nil && len(sync) < len(buffer) {
		panic("vco: sync buffer shorter than block")
	}
}

// syncAt reads a sync byte; a nil sync buffer never resets.
func syncAt(sync []byte, i int) byte {
	if sync == nil {
		return 0
	}
	return sync[i]
}

// blepState is the band-limited step bookkeeping of the discontinuous
// shapes. It survives across Render calls so a correction started at the end
// of a block lands on the first sample of the next one.
type blepState struct {
	next  int32 // partial sample owed to the next output
	high  bool  // phase is past the pulse width
	depth int32 // csaw notch depth
}

// An AnalogOscillator renders one of the band-limited analog waveforms,
// optionally hard-synced to another oscillator.
type AnalogOscillator struct {
	shape         AnalogShape
	previousShape AnalogShape

	phase                  uint32
	phaseIncrement         uint32
	previousPhaseIncrement uint32

	pitch             int32
	parameter         int16
	previousParameter int16
	auxParameter      int16

	blep blepState
}

// NewAnalogOscillator returns an initialized oscillator set to AnalogSaw.
func NewAnalogOscillator() *AnalogOscillator {
	o := &AnalogOscillator{}
	o.Init()
	return o
}

// Init resets all state, parameters and pitch (to middle C). The selected
// shape is kept.
func (o *AnalogOscillator) Init() {
	*o = AnalogOscillator{
		shape:         o.shape,
		previousShape: analogShapeNone,
		pitch:         60 << 7,
	}
	o.reset()
}

// reset discards the continuity state. Pitch and parameters set by the host
// are kept.
func (o *AnalogOscillator) reset() {
	o.phase = 0
	o.phaseIncrement = 1
	o.previousPhaseIncrement = 0
	o.previousParameter = o.parameter
	o.blep = blepState{depth: -16383}
}

// SetShape selects the waveform. The change takes effect, with a fresh
// phase, at the next Render.
func (o *AnalogOscillator) SetShape(shape AnalogShape) { o.shape = shape }

// SetPitch sets the pitch in 1/128 semitones. Out of range values are
// clamped at render time.
func (o *AnalogOscillator) SetPitch(pitch int16) { o.pitch = int32(pitch) }

// SetParameter sets the main timbre parameter, negative values read as 0.
func (o *AnalogOscillator) SetParameter(p int16) { o.parameter = max(p, 0) }

// SetAuxParameter sets the secondary parameter (csaw notch depth).
func (o *AnalogOscillator) SetAuxParameter(p int16) { o.auxParameter = max(p, 0) }

// Shape returns the selected waveform.
func (o *AnalogOscillator) Shape() AnalogShape { return o.shape }

type analogRenderFn func(o *AnalogOscillator, sync []byte, buffer []int16, syncOut []byte)

var analogRenderers = [NumAnalogShapes]analogRenderFn{
	AnalogSaw:          (*AnalogOscillator).renderSaw,
	AnalogVariableSaw:  (*AnalogOscillator).renderVariableSaw,
	AnalogCSaw:         (*AnalogOscillator).renderCSaw,
	AnalogSquare:       (*AnalogOscillator).renderSquare,
	AnalogTriangle:     (*AnalogOscillator).renderTriangle,
	AnalogSine:         (*AnalogOscillator).renderSine,
	AnalogTriangleFold: (*AnalogOscillator).renderTriangleFold,
	AnalogSineFold:     (*AnalogOscillator).renderSineFold,
	AnalogBuzz:         (*AnalogOscillator).renderBuzz,
}

// Render fills buffer with len(buffer) samples. sync, when non-nil, holds
// one byte per sample: 0 for no event, otherwise a reset whose sub-sample
// time is (b-1)<<9 in 16-bit units. syncOut, when non-nil, receives the
// same encoding for every cycle this oscillator completes.
//
// Render panics if buffer is empty or longer than MaxBlockSize, or if a
// sync buffer is shorter than buffer.
func (o *AnalogOscillator) Render(sync []byte, buffer []int16, syncOut []byte) {
	checkBlock(sync, buffer)
	if syncOut != nil && len(syncOut) < len(buffer) {
		panic("vco: sync output shorter than block")
	}

	if o.shape != o.previousShape {
		o.reset()
		o.previousShape = o.shape
	}

	o.phaseIncrement = computePhaseIncrement(o.pitch)
	if o.previousPhaseIncrement == 0 {
		o.previousPhaseIncrement = o.phaseIncrement
	}
	o.pitch = clamp(o.pitch, 0, analogHighestNote)

	analogRenderers[o.shape](o, sync, buffer, syncOut)
}

func emitSync(syncOut []byte, i int, phase, inc uint32) {
	emitWrap(syncOut, i, phase < inc, phase, inc)
}

// emitWrap is emitSync for renderers that advance the phase in several
// steps per sample and detect the wrap themselves.
func emitWrap(syncOut []byte, i int, wrapped bool, phase, inc uint32) {
	if syncOut == nil {
		return
	}
	if wrapped {
		syncOut[i] = byte(phase/max(inc>>7, 1) + 1)
	} else {
		syncOut[i] = 0
	}
}

func (o *AnalogOscillator) renderSaw(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	next := o.blep.next
	for i := range buffer {
		var syncReset, selfReset, transitionDuringReset bool
		var resetTime uint32

		inc := ramp.next()
		this := next
		next = 0

		if s := syncAt(sync, i); s != 0 {
			resetTime = uint32(s-1) << 9
			phaseAtReset := o.phase + (65535-resetTime)*(inc>>16)
			syncReset = true
			transitionDuringReset = phaseAtReset < o.phase
			discontinuity := int32(phaseAtReset >> 17)
			this -= discontinuity * thisBlepSample(resetTime) >> 15
			next -= discontinuity * nextBlepSample(resetTime) >> 15
		}

		o.phase += inc
		selfReset = o.phase < inc
		emitSync(syncOut, i, o.phase, inc)

		if (transitionDuringReset || !syncReset) && selfReset {
			t := stepTime(o.phase, inc)
			this -= thisBlepSample(t)
			next -= nextBlepSample(t)
		}

		if syncReset {
			o.phase = resetTime * (inc >> 16)
			o.blep.high = false
		}

		next += int32(o.phase >> 17)
		buffer[i] = int16((this - 16384) << 1)
	}
	o.blep.next = next
	o.previousPhaseIncrement = ramp.inc
}

func (o *AnalogOscillator) renderVariableSaw(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	next := o.blep.next
	o.parameter = max(o.parameter, 1024)
	pw := uint32(o.parameter) << 16

	for i := range buffer {
		var syncReset, selfReset, transitionDuringReset bool
		var resetTime uint32

		inc := ramp.next()
		this := next
		next = 0

		if s := syncAt(sync, i); s != 0 {
			resetTime = uint32(s-1) << 9
			phaseAtReset := o.phase + (65535-resetTime)*(inc>>16)
			syncReset = true
			transitionDuringReset = phaseAtReset < o.phase || (!o.blep.high && phaseAtReset >= pw)
			before := int32(phaseAtReset>>18) + int32((phaseAtReset-pw)>>18)
			after := int32((0 - pw) >> 18)
			discontinuity := after - before
			this += discontinuity * thisBlepSample(resetTime) >> 15
			next += discontinuity * nextBlepSample(resetTime) >> 15
		}

		o.phase += inc
		selfReset = o.phase < inc
		emitSync(syncOut, i, o.phase, inc)

		for transitionDuringReset || !syncReset {
			if !o.blep.high {
				if o.phase < pw {
					break
				}
				t := stepTime(o.phase-pw, inc)
				this -= thisBlepSample(t) >> 1
				next -= nextBlepSample(t) >> 1
				o.blep.high = true
			}
			if !selfReset {
				break
			}
			selfReset = false
			t := stepTime(o.phase, inc)
			this -= thisBlepSample(t) >> 1
			next -= nextBlepSample(t) >> 1
			o.blep.high = false
		}

		if syncReset {
			o.phase = resetTime * (inc >> 16)
			o.blep.high = false
		}

		next += int32(o.phase >> 18)
		next += int32((o.phase - pw) >> 18)
		buffer[i] = int16((this - 16384) << 1)
	}
	o.blep.next = next
	o.previousPhaseIncrement = ramp.inc
}

func (o *AnalogOscillator) renderCSaw(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	next := o.blep.next
	for i := range buffer {
		var syncReset, selfReset, transitionDuringReset bool
		var resetTime uint32

		inc := ramp.next()
		pw := max(uint32(o.parameter)*49152, 8*inc)

		this := next
		next = 0

		if s := syncAt(sync, i); s != 0 {
			resetTime = uint32(s-1) << 9
			phaseAtReset := o.phase + (65535-resetTime)*(inc>>16)
			syncReset = true
			transitionDuringReset = phaseAtReset < o.phase || (!o.blep.high && phaseAtReset >= pw)
			if o.phase >= pw {
				o.blep.depth = -2048 + int32(o.auxParameter>>2)
				discontinuity := o.blep.depth - int32(phaseAtReset>>18)
				this += discontinuity * thisBlepSample(resetTime) >> 15
				next += discontinuity * nextBlepSample(resetTime) >> 15
			}
		}

		o.phase += inc
		selfReset = o.phase < inc
		emitSync(syncOut, i, o.phase, inc)

		for transitionDuringReset || !syncReset {
			if !o.blep.high {
				if o.phase < pw {
					break
				}
				t := stepTime(o.phase-pw, inc)
				discontinuity := int32(o.phase>>18) - o.blep.depth
				this += discontinuity * thisBlepSample(t) >> 15
				next += discontinuity * nextBlepSample(t) >> 15
				o.blep.high = true
			}
			if !selfReset {
				break
			}
			selfReset = false
			o.blep.depth = -2048 + int32(o.auxParameter>>2)
			t := stepTime(o.phase, inc)
			discontinuity := o.blep.depth - 16383
			this += discontinuity * thisBlepSample(t) >> 15
			next += discontinuity * nextBlepSample(t) >> 15
			o.blep.high = false
		}

		if syncReset {
			o.phase = resetTime * (inc >> 16)
			o.blep.high = false
		}

		if o.phase < pw {
			next += o.blep.depth
		} else {
			next += int32(o.phase >> 18)
		}
		buffer[i] = int16((this - 8192) << 1)
	}
	o.blep.next = next
	o.previousPhaseIncrement = ramp.inc
}

func (o *AnalogOscillator) renderSquare(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	o.parameter = min(o.parameter, 32000)
	pw := uint32(32768-int32(o.parameter)) << 16

	next := o.blep.next
	for i := range buffer {
		var syncReset, selfReset, transitionDuringReset bool
		var resetTime uint32

		inc := ramp.next()
		this := next
		next = 0

		if s := syncAt(sync, i); s != 0 {
			resetTime = uint32(s-1) << 9
			phaseAtReset := o.phase + (65535-resetTime)*(inc>>16)
			syncReset = true
			transitionDuringReset = phaseAtReset < o.phase || (!o.blep.high && phaseAtReset >= pw)
			if phaseAtReset >= pw {
				this -= thisBlepSample(resetTime)
				next -= nextBlepSample(resetTime)
			}
		}

		o.phase += inc
		selfReset = o.phase < inc
		emitSync(syncOut, i, o.phase, inc)

		for transitionDuringReset || !syncReset {
			if !o.blep.high {
				if o.phase < pw {
					break
				}
				t := stepTime(o.phase-pw, inc)
				this += thisBlepSample(t)
				next += nextBlepSample(t)
				o.blep.high = true
			}
			if !selfReset {
				break
			}
			selfReset = false
			t := stepTime(o.phase, inc)
			this -= thisBlepSample(t)
			next -= nextBlepSample(t)
			o.blep.high = false
		}

		if syncReset {
			o.phase = resetTime * (inc >> 16)
			o.blep.high = false
		}

		if o.phase >= pw {
			next += 32767
		}
		buffer[i] = int16((this - 16384) << 1)
	}
	o.blep.next = next
	o.previousPhaseIncrement = ramp.inc
}

// triangleAt folds the top 16 bits of a phase into a triangle.
func triangleAt(phase uint32) int16 {
	p := uint16(phase >> 16)
	var mask uint16
	if p&0x8000 != 0 {
		mask = 0xffff
	}
	return int16((p<<1 ^ mask) + 32768)
}

func (o *AnalogOscillator) renderTriangle(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	phase := o.phase
	for i := range buffer {
		inc := ramp.next()
		if syncAt(sync, i) != 0 {
			phase = 0
		}
		start := phase
		// 2x oversampled.
		phase += inc >> 1
		buffer[i] = triangleAt(phase) >> 1
		phase += inc >> 1
		buffer[i] += triangleAt(phase) >> 1
		emitWrap(syncOut, i, phase < start, phase, inc)
	}
	o.phase = phase
	o.previousPhaseIncrement = ramp.inc
}

func (o *AnalogOscillator) renderSine(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	phase := o.phase
	for i := range buffer {
		inc := ramp.next()
		phase += inc
		emitSync(syncOut, i, phase, inc)
		if syncAt(sync, i) != 0 {
			phase = 0
		}
		buffer[i] = int16(interpolate824(lut.Sine[:], phase))
	}
	o.phase = phase
	o.previousPhaseIncrement = ramp.inc
}

func foldGain(parameter int32) int32 {
	return 2048 + (parameter * 30720 >> 15)
}

func (o *AnalogOscillator) renderTriangleFold(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	param := newParamRamp(o.previousParameter, o.parameter, len(buffer))
	phase := o.phase

	fold := func(phase uint32, gain int32) int16 {
		tri := int16(int32(triangleAt(phase)) * gain >> 15)
		return int16(shape88(lut.TriFold[:], int32(tri)))
	}

	for i := range buffer {
		gain := foldGain(param.next())
		inc := ramp.next()
		if syncAt(sync, i) != 0 {
			phase = 0
		}
		start := phase
		phase += inc >> 1
		buffer[i] = fold(phase, gain) >> 1
		phase += inc >> 1
		buffer[i] += fold(phase, gain) >> 1
		emitWrap(syncOut, i, phase < start, phase, inc)
	}
	o.phase = phase
	o.previousParameter = o.parameter
	o.previousPhaseIncrement = ramp.inc
}

func (o *AnalogOscillator) renderSineFold(sync []byte, buffer []int16, syncOut []byte) {
	ramp := newIncrementRamp(o.previousPhaseIncrement, o.phaseIncrement, len(buffer))
	param := newParamRamp(o.previousParameter, o.parameter, len(buffer))
	phase := o.phase

	fold := func(phase uint32, gain int32) int16 {
		sine := int16(interpolate824(lut.Sine[:], phase) * gain >> 15)
		return int16(shape88(lut.SineFold[:], int32(sine)))
	}

	for i := range buffer {
		gain := foldGain(param.next())
		inc := ramp.next()
		if syncAt(sync, i) != 0 {
			phase = 0
		}
		start := phase
		phase += inc >> 1
		buffer[i] = fold(phase, gain) >> 1
		phase += inc >> 1
		buffer[i] += fold(phase, gain) >> 1
		emitWrap(syncOut, i, phase < start, phase, inc)
	}
	o.phase = phase
	o.previousParameter = o.parameter
	o.previousPhaseIncrement = ramp.inc
}

// renderBuzz crossfades the two comb tables bracketing the pitch zone. The
// timbre parameter lowers the number of harmonics by shifting the zone up.
func (o *AnalogOscillator) renderBuzz(sync []byte, buffer []int16, syncOut []byte) {
	shifted := o.pitch + (32767-int32(o.parameter))>>1
	xfade := uint16(shifted << 6)
	index := min(shifted>>10, lut.NumZones-1)
	wave1 := lut.BandlimitedComb[index][:]
	wave2 := lut.BandlimitedComb[min(index+1, lut.NumZones-1)][:]
	for i := range buffer {
		o.phase += o.phaseIncrement
		emitSync(syncOut, i, o.phase, o.phaseIncrement)
		if syncAt(sync, i) != 0 {
			o.phase = 0
		}
		buffer[i] = int16(crossfade(wave1, wave2, o.phase, xfade))
	}
}
