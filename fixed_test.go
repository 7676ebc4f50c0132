package vco

import (
	"math"
	"testing"

	"github.com/arl/vco/internal/lut"
)

func TestClip16(t *testing.T) {
	tests := []struct {
		in, want int32
	}{
		{0, 0},
		{32767, 32767},
		{32768, 32767},
		{-32768, -32768},
		{-32769, -32768},
		{1 << 30, 32767},
		{-1 << 30, -32768},
		{math.MaxInt32, 32767},
		{math.MinInt32, -32768},
	}
	for _, tt := range tests {
		assert(t, clip16(tt.in), tt.want)
	}
}

func TestInterpolate824(t *testing.T) {
	assert(t, interpolate824(lut.Sine[:], 0), 0)
	assert(t, interpolate824(lut.Sine[:], 64<<24), int32(lut.Sine[64]))

	// Half way between two entries.
	a, b := int32(lut.Sine[10]), int32(lut.Sine[11])
	got := interpolate824(lut.Sine[:], 10<<24|1<<23)
	if got < min(a, b) || got > max(a, b) {
		t.Errorf("interpolate824 = %d, want between %d and %d", got, a, b)
	}

	// The top of the phase range reads the last segment.
	got = interpolate824(lut.Sine[:], math.MaxUint32)
	if got > 0 || got < int32(lut.Sine[255]) {
		t.Errorf("interpolate824(max) = %d", got)
	}
}

func TestMix(t *testing.T) {
	assert(t, mix(1000, -1000, 0), 999)
	assert(t, mix(1000, -1000, 65535), -1000)
	assert(t, mix(32767, -32768, 32768), -1)
}

func TestCrossfadeU8(t *testing.T) {
	a := make([]uint8, 129)
	b := make([]uint8, 129)
	for i := range a {
		a[i] = 0
		b[i] = 255
	}
	assert(t, crossfadeU8(a, b, 0, 0), -32768)
	if got := crossfadeU8(a, b, 0, 65535); got < 32000 {
		t.Errorf("crossfadeU8 at full balance = %d", got)
	}
}

func TestBlepSamples(t *testing.T) {
	// Both halves vanish at the far ends of the sample.
	assert(t, thisBlepSample(0), 0)
	assert(t, nextBlepSample(65535), 0)
	for tt := uint32(0); tt < 65536; tt += 257 {
		if this := thisBlepSample(tt); this < 0 || this > 16384 {
			t.Fatalf("thisBlepSample(%d) = %d", tt, this)
		}
		if next := nextBlepSample(tt); next > 0 || next < -16384 {
			t.Fatalf("nextBlepSample(%d) = %d", tt, next)
		}
	}
}

func TestComputePhaseIncrement(t *testing.T) {
	t.Run("monotonic", func(t *testing.T) {
		prev := computePhaseIncrement(0)
		for p := int32(1); p <= MaxPitch; p++ {
			inc := computePhaseIncrement(p)
			if inc < prev {
				t.Fatalf("increment decreases at pitch %d: %d < %d", p, inc, prev)
			}
			prev = inc
		}
	})

	t.Run("positive", func(t *testing.T) {
		for p := int32(0); p <= MaxPitch; p += 128 {
			if computePhaseIncrement(p) == 0 {
				t.Fatalf("null increment at pitch %d", p)
			}
		}
	})

	t.Run("octave doubles", func(t *testing.T) {
		for p := int32(24 << 7); p+Octave <= MaxPitch; p += 37 {
			lo := float64(computePhaseIncrement(p))
			hi := float64(computePhaseIncrement(p + Octave))
			if r := hi / lo; math.Abs(r-2) > 0.001 {
				t.Fatalf("pitch %d: octave ratio %.5f", p, r)
			}
		}
	})

	t.Run("middle C", func(t *testing.T) {
		const want = 261.6256 / lut.SampleRate * (1 << 32)
		got := float64(computePhaseIncrement(60 << 7))
		if math.Abs(got-want)/want > 0.001 {
			t.Errorf("increment = %.0f, want %.0f", got, want)
		}
	})
}

func TestComputeDelay(t *testing.T) {
	// 16.16 samples per period.
	got := float64(computeDelay(69<<7)) / 65536
	want := float64(lut.SampleRate) / 440
	if math.Abs(got-want) > 0.5 {
		t.Errorf("delay(A4) = %.2f samples, want %.2f", got, want)
	}

	prev := computeDelay(0)
	for p := int32(16); p < digitalHighestNote; p += 16 {
		d := computeDelay(p)
		if d > prev {
			t.Fatalf("delay increases at pitch %d", p)
		}
		prev = d
	}
}

func TestRandomIsPerInstance(t *testing.T) {
	var a, b random
	a.seed(randomSeed)
	b.seed(randomSeed)
	for range 100 {
		assert(t, a.word(), b.word())
	}
}

func TestParamRamp(t *testing.T) {
	r := newParamRamp(0, 32767, 24)
	prev := int32(-1)
	var last int32
	for range 24 {
		last = r.next()
		if last < prev {
			t.Fatalf("ramp not monotonic: %d after %d", last, prev)
		}
		prev = last
	}
	if last < 32700 {
		t.Errorf("ramp ends at %d", last)
	}
}

func TestIncrementRamp(t *testing.T) {
	for _, tt := range []struct{ from, to uint32 }{
		{1000, 5000},
		{5000, 1000},
		{1 << 31, 1 << 20},
	} {
		r := newIncrementRamp(tt.from, tt.to, 16)
		var inc uint32
		for range 16 {
			inc = r.next()
		}
		d := int64(inc) - int64(tt.to)
		if d < -16 || d > 16 {
			t.Errorf("ramp %d -> %d ends at %d", tt.from, tt.to, inc)
		}
	}
}
