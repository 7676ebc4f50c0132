package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func sine(n int, period float64, amp float64) []int16 {
	x := make([]int16, n)
	for i := range x {
		x[i] = int16(amp * math.Sin(2*math.Pi*float64(i)/period))
	}
	return x
}

func square(n, period int) []int16 {
	x := make([]int16, n)
	for i := range x {
		if i%period < period/2 {
			x[i] = 10000
		} else {
			x[i] = -10000
		}
	}
	return x
}

func TestPeriod(t *testing.T) {
	tests := []struct {
		name string
		x    []int16
		want float64
	}{
		{"sine 100", sine(4096, 100, 20000), 100},
		{"sine 367.5", sine(4096, 367.5, 20000), 367.5},
		{"square 200", square(4096, 200), 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Period(tt.x)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1 {
				t.Errorf("Period() = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestPeriodErrors(t *testing.T) {
	if _, err := Period(make([]int16, 1024)); !errors.Is(err, ErrNotPeriodic) {
		t.Errorf("silence: got err = %v, want ErrNotPeriodic", err)
	}
	if _, err := Period(nil); err == nil {
		t.Error("empty: expected error")
	}
}

func TestFrequency(t *testing.T) {
	got, err := Frequency(sine(8192, 96000.0/440, 16000), 96000)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-440) > 2 {
		t.Errorf("Frequency() = %.2f, want 440", got)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS([]int16{-100, 100, -100, 100}); got != 100 {
		t.Errorf("RMS() = %v, want 100", got)
	}

	// Full scale sine: amplitude/sqrt(2).
	got := RMS(sine(9600, 96, 30000))
	if math.Abs(got-30000/math.Sqrt2) > 20 {
		t.Errorf("RMS(sine) = %v, want %v", got, 30000/math.Sqrt2)
	}
}

func TestEnvelope(t *testing.T) {
	x := []int16{1, 1, 2, 2, 3, 3, 4}
	got := Envelope(x, 2)
	want := []float64{1, 2, 3}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("response mismatch (-got +want):\n%s", diff)
	}

	if got := Envelope(x, 0); got != nil {
		t.Errorf("Envelope(x, 0) = %v, want nil", got)
	}
}
