package resample

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		inRate, outRate float64
		capacity        int
		wantErr         bool
	}{
		{"downsample", 96000, 44100, MaxFrame, false},
		{"upsample", 96000, 192000, MaxFrame, false},
		{"same rate", 96000, 96000, 64, false},
		{"zero input rate", 0, 44100, MaxFrame, true},
		{"negative output rate", 96000, -1, MaxFrame, true},
		{"NaN rate", math.NaN(), 44100, MaxFrame, true},
		{"ratio too large", MaxRatio * 2, 1, MaxFrame, true},
		{"upsampling too much", 1, maxUpRatio * 2, MaxFrame, true},
		{"no capacity", 96000, 44100, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.inRate, tt.outRate, tt.capacity)
			assert(t, err != nil, tt.wantErr)
		})
	}
}

func TestConverterNeeded(t *testing.T) {
	c, err := New(96000, 48000, MaxFrame)
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{1, 12, 100, 1000} {
		c.Write(make([]int16, c.Needed(n)))
		assert(t, c.Available(), n)

		out := make([]int16, n)
		assert(t, c.Read(out), n)
		assert(t, c.Available(), 0)
	}
}

func TestConverterRate(t *testing.T) {
	const block = 24

	c, err := New(96000, 44100, MaxFrame)
	if err != nil {
		t.Fatal(err)
	}

	in := make([]int16, block)
	out := make([]int16, block)
	total := 0
	for range 96000 / block {
		c.Write(in)
		total += c.Read(out)
	}
	if total < 44099 || total > 44100 {
		t.Errorf("got %d samples for 1s of input, want 44100", total)
	}
}

func TestConverterStep(t *testing.T) {
	c, err := New(96000, 48000, MaxFrame)
	if err != nil {
		t.Fatal(err)
	}

	in := makefill[int16](2000, 10000)
	out := make([]int16, MaxFrame)

	var peak, last int16
	for range 10 {
		c.Write(in)
		n := c.Read(out)
		for _, s := range out[:n] {
			peak = max(peak, s)
		}
		last = out[n-1]
	}
	if peak < 9000 || peak > 11000 {
		t.Errorf("step peak = %d, want about 10000", peak)
	}

	// The constant part of the input is blocked.
	if last > 100 || last < -100 {
		t.Errorf("DC not blocked, last sample = %d", last)
	}
}

func TestConverterClear(t *testing.T) {
	c, err := New(96000, 48000, MaxFrame)
	if err != nil {
		t.Fatal(err)
	}

	c.Write(makefill[int16](100, 20000))
	c.Clear()
	assert(t, c.Available(), 0)

	// After Clear the converter starts from silence again, so silence in
	// gives silence out.
	c.Write(make([]int16, 100))
	out := make([]int16, c.Available())
	c.Read(out)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("out[%d] = %d, want 0", i, s)
		}
	}
}

func TestConverterOverflow(t *testing.T) {
	c, err := New(96000, 48000, 16)
	if err != nil {
		t.Fatal(err)
	}
	shouldPanic(t, func() { c.Write(make([]int16, 100)) })
}
