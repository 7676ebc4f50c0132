package resample

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func shouldPanic(t *testing.T, f func()) {
	t.Helper()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	f()
}

func TestShouldPanic(t *testing.T) {
	shouldPanic(t, func() { panic("test") })
}

func assert[T comparable](t *testing.T, got, want T) {
	t.Helper()

	if got != want {
		t.Fatalf("assertion failed: got = %v want %v", got, want)
	}
}

func mustBuffer(t *testing.T, n int) *deltaBuffer {
	t.Helper()

	b, err := newDeltaBuffer(n)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

const oversample = MaxRatio

func TestNewDeltaBuffer(t *testing.T) {
	if _, err := newDeltaBuffer(MaxFrame / 2); err != nil {
		t.Fatal(err)
	}
	if _, err := newDeltaBuffer(0); err == nil {
		t.Fatal("expected error for empty buffer")
	}
}

func TestEndFrame(t *testing.T) {
	const size = MaxFrame / 2

	t.Run("available", func(t *testing.T) {
		b := mustBuffer(t, size)
		b.endFrame(oversample)
		assert(t, b.avail, 1)

		b.endFrame(oversample * 2)
		assert(t, b.avail, 3)
	})
	t.Run("available fractional", func(t *testing.T) {
		b := mustBuffer(t, size)
		b.endFrame(oversample*2 - 1)
		assert(t, b.avail, 1)

		b.endFrame(1)
		assert(t, b.avail, 2)
	})
	t.Run("limits", func(t *testing.T) {
		b := mustBuffer(t, size)
		b.endFrame(0)
		assert(t, b.avail, 0)

		b.endFrame(size*oversample + oversample - 1)
		shouldPanic(t, func() { b.endFrame(1) })
	})
}

func TestClocksNeeded(t *testing.T) {
	const size = MaxFrame / 2

	t.Run("basic", func(t *testing.T) {
		b := mustBuffer(t, size)
		assert(t, b.clocksNeeded(0), 0*oversample)
		assert(t, b.clocksNeeded(2), 2*oversample)

		b.endFrame(1)
		assert(t, b.clocksNeeded(0), 0)
		assert(t, b.clocksNeeded(2), 2*oversample-1)
	})

	t.Run("limits", func(t *testing.T) {
		b := mustBuffer(t, size)

		shouldPanic(t, func() { b.clocksNeeded(-1) })

		b.endFrame(oversample*2 - 1)
		assert(t, b.clocksNeeded(size-1), (size-2)*oversample+1)

		b.endFrame(1)
		shouldPanic(t, func() { b.clocksNeeded(size - 1) })
	})
}

func TestClearBasic(t *testing.T) {
	b := mustBuffer(t, MaxFrame/2)
	b.endFrame(2*oversample - 1)

	b.clear()
	assert(t, b.avail, 0)
	assert(t, b.clocksNeeded(1), oversample)
}

func TestReadSamples(t *testing.T) {
	const size = MaxFrame / 2

	t.Run("silence", func(t *testing.T) {
		b := mustBuffer(t, size)
		buf := []int16{-1, -1}

		b.endFrame(3*oversample + oversample - 1)
		assert(t, b.readSamples(buf, 2), 2)
		assert(t, buf[0], 0)
		assert(t, buf[1], 0)

		assert(t, b.avail, 1)
		assert(t, b.clocksNeeded(1), 1)
	})

	t.Run("limits to available", func(t *testing.T) {
		b := mustBuffer(t, size)
		b.endFrame(oversample * 2)

		buf := []int16{-1, -1}

		assert(t, b.readSamples(buf, 3), 2)
		assert(t, b.avail, 0)
		assert(t, buf[0], 0)
		assert(t, buf[1], 0)
	})

	t.Run("limits", func(t *testing.T) {
		b := mustBuffer(t, size)
		assert(t, b.readSamples(nil, 1), 0)

		shouldPanic(t, func() { b.readSamples(nil, -1) })
	})
}

func TestSetRates(t *testing.T) {
	const size = MaxFrame / 2

	t.Run("basic", func(t *testing.T) {
		b := mustBuffer(t, size)
		b.setRates(2, 2)
		assert(t, b.clocksNeeded(10), 10)

		b.setRates(2, 4)
		assert(t, b.clocksNeeded(10), 5)

		b.setRates(4, 2)
		assert(t, b.clocksNeeded(10), 20)
	})

	t.Run("rounds sample rate up", func(t *testing.T) {
		b := mustBuffer(t, size)
		for r := 1; r < 10000; r++ {
			b.setRates(float64(r), 1)
			assert(t, b.clocksNeeded(1) <= r, true)
		}
	})

	t.Run("accuracy", func(t *testing.T) {
		maxError := 100 // 1%
		b := mustBuffer(t, size)

		for r := size / 2; r < size; r += 7 {
			for c := r / 2; c < 8000000; c += c / 32 {
				b.setRates(float64(c), float64(r))
				e := b.clocksNeeded(r) - c
				if e < 0 {
					e = -e
				}
				assert(t, e < c/maxError, true)
			}
		}
	})

	t.Run("long-term accuracy", func(t *testing.T) {
		// Converting secs seconds must produce exactly secs*outRate
		// samples.
		const (
			inRate  = 96000
			outRate = 44100
			secs    = 100
		)

		b := mustBuffer(t, size)
		b.setRates(inRate, outRate)

		const bufSize = size / 2
		clocks := b.clocksNeeded(bufSize) - 1
		buf := make([]int16, bufSize)

		total := 0.0
		remain := float64(inRate) * secs
		for remain > 0 {
			n := int(math.Min(remain, float64(clocks)))
			b.endFrame(n)
			total += float64(b.readSamples(buf, bufSize))
			remain -= float64(n)
		}

		assert(t, total, float64(outRate)*secs)
	})
}

func TestAddDelta(t *testing.T) {
	const size = MaxFrame / 2

	b := mustBuffer(t, size)
	b.addDelta(0, 1)
	b.addDelta((size+3)*oversample-1, 1)

	shouldPanic(t, func() { b.addDelta((size+3)*oversample, 1) })
	shouldPanic(t, func() { b.addDelta(math.MaxUint, 1) })
}

func makefill[T any](size int, v T) []T {
	s := make([]T, size)
	for i := range s {
		s[i] = v
	}
	return s
}

const frameLen = 20*oversample + oversample/4

func addDeltas(b *deltaBuffer, offset uint64) {
	b.addDelta(frameLen/2+offset, +1000)
	b.addDelta(frameLen+offset+endFrameExtra*oversample, +1000)
}

func TestInvariance(t *testing.T) {
	const size = (frameLen * 2) / oversample

	t.Run("endFrame addDelta", func(t *testing.T) {
		want := []int16{
			0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 1, -3, 7, -5, 21,
			9, 119, 750, 1004, 963, 1001, 983, 993,
			985, 992, 982, 997, 999, 1050, 1649, 1982,
			1932, 1976, 1955, 1966, 1980, 1986, 2534, 2944,
		}

		{
			got := makefill[int16](size, +1)
			b := mustBuffer(t, size)
			addDeltas(b, 0)
			addDeltas(b, frameLen)
			b.endFrame(frameLen * 2)
			assert(t, b.readSamples(got, size), size)

			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("response mismatch (-got +want):\n%s", diff)
			}
		}
		{
			got := makefill[int16](size, -1)
			b := mustBuffer(t, size)
			addDeltas(b, 0)
			b.endFrame(frameLen)
			addDeltas(b, 0)
			b.endFrame(frameLen)
			assert(t, b.readSamples(got, size), size)

			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("response mismatch (-got +want):\n%s", diff)
			}
		}
	})

	t.Run("read in one or three frames", func(t *testing.T) {
		const size = (frameLen * 3) / oversample

		one := makefill[int16](size, +1)
		b := mustBuffer(t, size)
		addDeltas(b, 0*frameLen)
		addDeltas(b, 1*frameLen)
		addDeltas(b, 2*frameLen)
		b.endFrame(3 * frameLen)
		assert(t, b.readSamples(one, size), size)

		three := makefill[int16](size, -1)
		b = mustBuffer(t, size/3)
		count := 0
		for range 3 {
			addDeltas(b, 0)
			b.endFrame(frameLen)
			count += b.readSamples(three[count:], size-count)
		}
		assert(t, count, size)

		if diff := cmp.Diff(one, three); diff != "" {
			t.Errorf("response mismatch (-one +three):\n%s", diff)
		}
	})

	t.Run("MaxFrame", func(t *testing.T) {
		const oversample = 32
		const frameLen = MaxFrame * oversample
		const size = frameLen / oversample * 3

		one := makefill[int16](size, +1)
		two := makefill[int16](size, -1)

		{
			b := mustBuffer(t, size)
			b.setRates(oversample, 1)

			count := 0
			for range 3 {
				b.endFrame(frameLen / 2)
				b.addDelta(frameLen/2+endFrameExtra*oversample, +1000)
				b.endFrame(frameLen / 2)
				count += b.readSamples(one[count:], size-count)
			}
			assert(t, count, size)
		}

		{
			b := mustBuffer(t, size)
			b.setRates(oversample, 1)

			for range 3 {
				b.addDelta(frameLen+endFrameExtra*oversample, +1000)
				b.endFrame(frameLen)
			}
			assert(t, b.readSamples(two, size), size)
		}

		if diff := cmp.Diff(one, two); diff != "" {
			t.Errorf("response mismatch (-one +two):\n%s", diff)
		}
	})
}

func TestSaturation(t *testing.T) {
	test := func(delta int32, want int16) {
		t.Helper()

		const size = 32
		b := mustBuffer(t, size)

		b.addDelta(0, delta)
		b.endFrame(oversample * size)
		var buf [size]int16
		b.readSamples(buf[:], size)
		assert(t, buf[20], want)
	}

	test(+35000, +32767)
	test(-35000, -32768)
}

func TestClearSynthesis(t *testing.T) {
	const size = 32
	b := mustBuffer(t, size)

	// Make first and last internal samples non-zero.
	b.addDelta(0, 32768)
	b.addDelta((size+2)*oversample+oversample/2, 32768)

	b.clear()

	buf := make([]int16, size)
	for range 2 {
		b.endFrame(size * oversample)
		assert(t, b.readSamples(buf, size), size)
		for i := range size {
			assert(t, buf[i], 0)
		}
	}
}
