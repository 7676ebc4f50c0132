// Package lut holds the lookup tables shared by every oscillator.
//
// Tables are computed once in init and never written afterwards, so any
// number of oscillators may read them concurrently. Callers must treat them
// as read-only.
package lut

import "math"

// SampleRate is the rate, in Hz, the tables are computed for.
const SampleRate = 96000

// Pitch table layout: the increment and delay tables cover one octave plus
// one step, starting at note 128, in steps of 16 pitch units (1/8 semitone).
const (
	PitchTableStart = 128 * 128
	PitchTableStep  = 16
	PitchTableSize  = 12*128/PitchTableStep + 1
)

// Sizes of the tables whose length is part of an algorithm's contract.
const (
	BowingEnvelopeSize  = 752
	BlowingEnvelopeSize = 392
	NumZones            = 15
	NumWaves            = 256
	WaveSize            = 129
)

var (
	// OscillatorIncrements maps pitch to a 32-bit phase increment.
	OscillatorIncrements [PitchTableSize]uint32
	// OscillatorDelays maps pitch to a period in samples, in 20.12 units
	// relative to the 16.16 delay used by the waveguides.
	OscillatorDelays [PitchTableSize]uint32

	Sine [257]int16

	ModerateOverdrive [257]int16
	ViolentOverdrive  [257]int16
	TriFold           [257]int16
	SineFold          [257]int16

	// BandlimitedComb holds one single-cycle buzz waveform per pitch zone,
	// each zone spanning 8 semitones.
	BandlimitedComb [NumZones][257]int16

	SVFCutoff [257]uint16
	SVFDamp   [257]uint16
	SVFScale  [257]uint16

	FMFrequencyQuantizer [129]int16

	Bell          [257]uint16
	FormantSine   [256]int16
	FormantSquare [256]int16

	BowingEnvelope  [BowingEnvelopeSize]int16
	BowingFriction  [257]uint16
	BlowingEnvelope [BlowingEnvelopeSize]int16
	BlowingJet      [257]int16
	FluteBodyFilter [128]uint16

	ResonatorCoefficient [257]uint16
	ResonatorScale       [257]uint16

	GranularEnvelope     [513]uint16
	GranularEnvelopeRate [256]uint16
)

func init() {
	initPitch()
	initShapers()
	initCombs()
	initFilters()
	initFM()
	initFormants()
	initPhysical()
	initGranular()
	initWaves()
	initCode()
}

func noteFrequency(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}

func round[T int16 | uint16 | uint32](v, lo, hi float64) T {
	v = math.Round(v)
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return T(v)
}

func s16(v float64) int16 { return round[int16](v, math.MinInt16, math.MaxInt16) }
func u16(v float64) uint16 { return round[uint16](v, 0, math.MaxUint16) }

func initPitch() {
	for i := range PitchTableSize {
		note := float64(PitchTableStart+i*PitchTableStep) / 128
		f := noteFrequency(note)
		OscillatorIncrements[i] = round[uint32](f/SampleRate*(1<<32), 1, math.MaxUint32)
		OscillatorDelays[i] = round[uint32](SampleRate/f*(1<<28), 1, math.MaxUint32)
	}
}

// shaper fills a 257-entry transfer curve sampled over [-1, 1].
func shaper(t *[257]int16, f func(x float64) float64) {
	for i := range t {
		x := float64(i-128) / 128
		t[i] = s16(32767 * f(x))
	}
}

// fold reflects y back into [-1, 1].
func fold(y float64) float64 {
	r := math.Mod(y+1, 4)
	if r < 0 {
		r += 4
	}
	if r < 2 {
		return r - 1
	}
	return 3 - r
}

func initShapers() {
	for i := range Sine {
		Sine[i] = s16(32767 * math.Sin(2*math.Pi*float64(i)/256))
	}
	shaper(&ModerateOverdrive, func(x float64) float64 { return math.Tanh(1.5*x) / math.Tanh(1.5) })
	shaper(&ViolentOverdrive, func(x float64) float64 { return math.Tanh(8 * x) })
	shaper(&TriFold, func(x float64) float64 { return fold(8 * x) })
	shaper(&SineFold, func(x float64) float64 { return math.Sin(math.Pi / 2 * 8 * x) })
}

// initCombs builds the buzz waveforms. The number of harmonics in zone z is
// the largest count that stays below Nyquist at the top of the zone.
func initCombs() {
	for z := range NumZones {
		top := noteFrequency(float64((z + 1) * 8))
		n := int(SampleRate / 2 / top)
		n = max(1, min(n, 127))
		for i := range 257 {
			theta := 2 * math.Pi * float64(i) / 256
			var sum float64
			for k := 1; k <= n; k++ {
				sum += math.Cos(float64(k) * theta)
			}
			BandlimitedComb[z][i] = s16(32767 * sum / float64(n))
		}
	}
}

func initFilters() {
	const maxCutoff = SampleRate / 6
	for i := range 257 {
		fc := min(noteFrequency(float64(i)), maxCutoff)
		SVFCutoff[i] = u16(min(32767, 32768*2*math.Sin(math.Pi*fc/SampleRate)))

		r := float64(i) / 256
		q := 0.5 * math.Exp(4.6*r)
		damp := 1 / q
		SVFDamp[i] = u16(32768 * damp)
		SVFScale[i] = u16(32767 * math.Min(1, damp/2))

		// Two-pole resonators stop at 20 kHz.
		w := 2 * math.Pi * min(noteFrequency(float64(i)), 20000) / SampleRate
		ResonatorCoefficient[i] = u16(32768 * 2 * math.Cos(w))
		ResonatorScale[i] = u16(65535 * 0.125 * math.Sin(w))
	}
}

// fmRatios are the modulator/carrier ratios the FM ratio knob snaps to.
var fmRatios = []float64{
	1.0 / 32, 1.0 / 16, 1.0 / 8, 1.0 / 4, 1.0 / 2, 1, 2, 3, 4, 5, 6, 7, 8,
	9, 10, 11, 12, 14, 16, 20, 24, 32,
}

func initFM() {
	semis := make([]float64, len(fmRatios))
	for i, r := range fmRatios {
		semis[i] = 12 * math.Log2(r)
	}
	for i := range FMFrequencyQuantizer {
		raw := float64(i - 64)
		best := semis[0]
		for _, s := range semis {
			if math.Abs(s-raw) < math.Abs(best-raw) {
				best = s
			}
		}
		FMFrequencyQuantizer[i] = s16(16384 + 256*best)
	}
}

func initFormants() {
	for i := range Bell {
		x := float64(i) / 256
		Bell[i] = u16(65535 * (0.5 - 0.5*math.Cos(2*math.Pi*x)))
	}
	// 16 phase steps by 16 amplitude steps. The largest magnitude keeps the
	// sum of three formants times 255 inside int16.
	for p := range 16 {
		s := math.Sin(2 * math.Pi * (float64(p) + 0.5) / 16)
		for a := range 16 {
			var amp float64
			if a > 0 {
				amp = 40 * math.Pow(2, float64(a-15)/2.5)
			}
			FormantSine[p<<4|a] = s16(s * amp)
			FormantSquare[p<<4|a] = s16(math.Copysign(amp*0.8, s))
		}
	}
}

func initPhysical() {
	for i := range BowingEnvelope {
		t := float64(i) / 150
		BowingEnvelope[i] = s16(9830 * (1 - math.Exp(-t)))
	}
	for i := range BowingFriction {
		x := float64(i) / 64
		f := math.Pow(x+0.75, -4)
		BowingFriction[i] = u16(32767 * math.Min(1, f))
	}
	for i := range BlowingEnvelope {
		t := float64(i) / 60
		BlowingEnvelope[i] = s16(14745 * (1 - math.Exp(-t)))
	}
	for i := range BlowingJet {
		u := float64(i)/128 - 1
		BlowingJet[i] = s16(32767 * u * (u*u - 1) / 0.385)
	}
	for i := range FluteBodyFilter {
		fc := min(4*noteFrequency(float64(i)), SampleRate/4)
		FluteBodyFilter[i] = u16(4096 * (1 - math.Exp(-2*math.Pi*fc/SampleRate)))
	}
}

func initGranular() {
	for i := range 257 {
		x := float64(i) / 256
		GranularEnvelope[i] = u16(65535 * (0.5 - 0.5*math.Cos(2*math.Pi*x)))
	}
	// Grain durations from 200 ms down to 2 ms.
	const longest, shortest = 0.2 * SampleRate, 0.002 * SampleRate
	for i := range GranularEnvelopeRate {
		d := longest * math.Pow(shortest/longest, float64(i)/255)
		GranularEnvelopeRate[i] = u16((1 << 24) / d / 8)
	}
}
