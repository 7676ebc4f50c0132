package lut

import "math"

var (
	// Waves holds 256 single-cycle 8-bit waveforms of 128 samples, the
	// 129th sample repeating the first for interpolation. They come in 16
	// families of 16 progressively brighter (or more distorted) steps.
	Waves [NumWaves][WaveSize]uint8

	// WaveMap lays the waves out on a 16x16 grid, family on one axis and
	// step on the other.
	WaveMap [256]uint8

	// WaveLine is a path through the bank, ordered so that neighbors
	// sound alike.
	WaveLine = [64]uint8{
		187, 179, 154, 155, 135, 134, 137, 19, 24, 3, 8, 66, 79, 25, 180, 174, 64,
		127, 198, 15, 10, 7, 11, 0, 191, 192, 115, 238, 237, 236, 241, 47, 70, 76,
		235, 26, 133, 208, 34, 175, 183, 146, 147, 148, 150, 151, 152, 153, 117,
		138, 32, 33, 35, 125, 199, 201, 30, 31, 193, 27, 29, 21, 18, 182,
	}

	// MiniWaveLine is a shorter path, for chords.
	MiniWaveLine = [33]uint8{
		157, 161, 171, 188, 189, 191, 192, 193, 196, 198, 201, 234, 232,
		229, 226, 224, 1, 2, 3, 4, 5, 8, 12, 32, 36, 42, 47, 252, 254, 141, 139,
		135, 174,
	}

	// Wavetables groups waves into scannable tables.
	Wavetables [NumWavetables]Wavetable
)

// NumWavetables is the number of entries in Wavetables.
const NumWavetables = 20

// A Wavetable lists the waves crossed when scanning it. Index has Steps+1
// meaningful entries, the last one repeating the end of the scan.
type Wavetable struct {
	Steps uint8
	Index [17]uint8
}

const (
	waveLen   = 128
	harmonics = 32
	overLen   = 512
)

type spectrum func(k int) float64

var sinTab, cosTab [overLen]float64

func initTrig() {
	for i := range overLen {
		sinTab[i] = math.Sin(2 * math.Pi * float64(i) / overLen)
		cosTab[i] = math.Cos(2 * math.Pi * float64(i) / overLen)
	}
}

// additive renders a zero-phase sine series.
func additive(amp spectrum) []float64 {
	const step = overLen / waveLen
	w := make([]float64, waveLen)
	for k := 1; k <= harmonics; k++ {
		a := amp(k)
		if a == 0 {
			continue
		}
		for i := range w {
			w[i] += a * sinTab[(k*i*step)%overLen]
		}
	}
	return w
}

// bandlimited samples a time-domain cycle at a high rate and keeps the
// lowest harmonics only.
func bandlimited(f func(x float64) float64) []float64 {
	src := make([]float64, overLen)
	for i := range src {
		src[i] = f(float64(i) / overLen)
	}
	const step = overLen / waveLen
	w := make([]float64, waveLen)
	for k := 1; k <= harmonics; k++ {
		var re, im float64
		for i, v := range src {
			re += v * cosTab[(k*i)%overLen]
			im += v * sinTab[(k*i)%overLen]
		}
		re, im = 2*re/overLen, 2*im/overLen
		for i := range w {
			j := (k * i * step) % overLen
			w[i] += re*cosTab[j] + im*sinTab[j]
		}
	}
	return w
}

func gauss(k, center, width float64) float64 {
	d := (k - center) / width
	return math.Exp(-d * d)
}

// lcg is a tiny deterministic generator for the "random spectrum" families.
type lcg uint32

func (l *lcg) float() float64 {
	*l = *l*1664525 + 1013904223
	return float64(*l>>8) / (1 << 24)
}

func family(f, s int) []float64 {
	x := float64(s) / 15
	switch f {
	case 0: // single formant sweep
		return additive(func(k int) float64 {
			return gauss(float64(k), 1+15*x, 1.5) + 0.3/float64(k)
		})
	case 1: // bright formant over a fundamental
		return additive(func(k int) float64 {
			g := gauss(float64(k), 2+22*x, 3)
			if k == 1 {
				g += 0.8
			}
			return g
		})
	case 2: // two formants moving apart
		return additive(func(k int) float64 {
			return gauss(float64(k), 3+3*x, 1) + 0.7*gauss(float64(k), 8+16*x, 2)
		})
	case 3: // odd harmonics, peak sweep
		return additive(func(k int) float64 {
			if k%2 == 0 {
				return 0
			}
			return gauss(float64(k), 1+20*x, 4)
		})
	case 4: // saw to square
		return additive(func(k int) float64 {
			a := 1 / float64(k)
			if k%2 == 0 {
				a *= 1 - x
			}
			return a
		})
	case 5: // pulse width
		d := 0.5 - 0.45*x
		return additive(func(k int) float64 {
			return math.Sin(math.Pi*float64(k)*d) / float64(k)
		})
	case 6: // hard sync saw
		ratio := 1 + 3*x
		return bandlimited(func(p float64) float64 {
			return 2*math.Mod(p*ratio, 1) - 1
		})
	case 7: // sine fold
		g := 1 + 7*x
		return bandlimited(func(p float64) float64 {
			return math.Sin(g * math.Sin(2*math.Pi*p))
		})
	case 8: // sine overdrive
		g := 1 + 29*x
		return bandlimited(func(p float64) float64 {
			return math.Tanh(g * math.Sin(2*math.Pi*p))
		})
	case 9: // random inharmonic-sounding spectra
		r := lcg(0x9e3779b9 + uint32(s))
		amps := make([]float64, harmonics+1)
		for k := range amps {
			amps[k] = r.float() / math.Sqrt(float64(k+1))
		}
		return additive(func(k int) float64 { return amps[k] })
	case 10: // drawbar registrations
		bars := []int{1, 2, 3, 4, 6, 8, 10, 12, 16}
		return additive(func(k int) float64 {
			for i, b := range bars {
				if b != k {
					continue
				}
				if i == 0 || s>>((i-1)%4)&1 == 1 {
					return 1 / math.Sqrt(float64(i+1))
				}
			}
			return 0
		})
	case 11: // comb with growing harmonic count
		n := 1 + 2*s
		return additive(func(k int) float64 {
			if k > n {
				return 0
			}
			return 1
		})
	case 12: // triangle to saw by moving the breakpoint
		b := 0.5 - 0.49*x
		return bandlimited(func(p float64) float64 {
			if p < b {
				return 2*p/b - 1
			}
			return 1 - 2*(p-b)/(1-b)
		})
	case 13: // bit-reduced sine
		levels := math.Pow(2, 5-4*x)
		return bandlimited(func(p float64) float64 {
			return math.Round(math.Sin(2*math.Pi*p)*levels) / levels
		})
	case 14: // chebyshev harmonics
		return additive(func(k int) float64 {
			if k == 1+s || k == 1 {
				return 1
			}
			if k == 2+2*s {
				return 0.5
			}
			return 0
		})
	default: // tilted noise spectra
		r := lcg(0x7f4a7c15 + uint32(s)*31)
		tilt := 0.3 + 1.7*(1-x)
		amps := make([]float64, harmonics+1)
		for k := range amps {
			amps[k] = r.float() / math.Pow(float64(k+1), tilt)
		}
		return additive(func(k int) float64 { return amps[k] })
	}
}

func initWaves() {
	initTrig()
	for f := range 16 {
		for s := range 16 {
			w := family(f, s)
			peak := 1e-9
			for _, v := range w {
				peak = math.Max(peak, math.Abs(v))
			}
			dst := &Waves[f*16+s]
			for i, v := range w {
				dst[i] = uint8(round[uint16](127.5+127.5*v/peak, 0, 255))
			}
			dst[waveLen] = dst[0]
		}
	}
	for i := range WaveMap {
		WaveMap[i] = uint8(i)
	}

	// One table per family, then four that cross families.
	for f := range 16 {
		wt := &Wavetables[f]
		wt.Steps = 16
		for s := range 16 {
			wt.Index[s] = uint8(f*16 + s)
		}
		wt.Index[16] = wt.Index[15]
	}
	cross := [4][]uint8{
		{0, 16, 32, 48, 64, 80, 96, 112, 128},   // darkest of each family
		{15, 31, 47, 63, 79, 95, 111, 127, 143}, // brightest of each family
		{64, 71, 79, 87, 95},                    // saw, square, pulse
		{7, 39, 71, 103, 135, 167, 199, 231, 247},
	}
	for i, c := range cross {
		wt := &Wavetables[16+i]
		wt.Steps = uint8(len(c) - 1)
		copy(wt.Index[:], c)
	}
}
