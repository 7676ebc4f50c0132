// Package analysis measures rendered signals: fundamental period by
// autocorrelation and RMS level.
package analysis

import (
	"errors"
	"math"
	"math/bits"

	"github.com/ktye/fft"
)

// ErrNotPeriodic is returned when a signal has no detectable period.
var ErrNotPeriodic = errors.New("analysis: signal is not periodic")

// Autocorrelation returns the biased autocorrelation of x, with the mean
// removed, for lags 0 to len(x)-1. The result is normalized so that lag 0
// is 1, unless x is constant in which case it is all zeroes.
func Autocorrelation(x []int16) ([]float64, error) {
	if len(x) == 0 {
		return nil, errors.New("analysis: empty signal")
	}

	// Zero-pad to at least twice the length so that the circular
	// correlation computed by the FFT equals the linear one.
	n := 1 << bits.Len(uint(2*len(x)-1))
	f, err := fft.New(n)
	if err != nil {
		return nil, err
	}

	var mean float64
	for _, s := range x {
		mean += float64(s)
	}
	mean /= float64(len(x))

	buf := make([]complex128, n)
	for i, s := range x {
		buf[i] = complex(float64(s)-mean, 0)
	}
	buf = f.Transform(buf)
	for i, c := range buf {
		buf[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	buf = f.Inverse(buf)

	acf := make([]float64, len(x))
	zero := real(buf[0])
	if zero <= 0 {
		return acf, nil
	}
	for i := range acf {
		acf[i] = real(buf[i]) / zero
	}
	return acf, nil
}

// Period estimates the fundamental period of x in samples. x should hold
// at least two periods.
func Period(x []int16) (float64, error) {
	acf, err := Autocorrelation(x)
	if err != nil {
		return 0, err
	}
	if acf[0] == 0 {
		return 0, ErrNotPeriodic
	}

	// Skip the main lobe, then take the highest peak.
	lag := 1
	for lag < len(acf)/2 && acf[lag] > 0 {
		lag++
	}
	best := 0
	for ; lag < len(acf)/2; lag++ {
		if acf[lag] > acf[lag-1] && acf[lag] >= acf[lag+1] && (best == 0 || acf[lag] > acf[best]) {
			best = lag
		}
	}
	if best == 0 || acf[best] < 0.1 {
		return 0, ErrNotPeriodic
	}

	// Parabolic interpolation around the peak.
	a, b, c := acf[best-1], acf[best], acf[best+1]
	period := float64(best)
	if d := a - 2*b + c; d != 0 {
		period += 0.5 * (a - c) / d
	}
	return period, nil
}

// Frequency returns the fundamental frequency of x sampled at rate.
func Frequency(x []int16, rate float64) (float64, error) {
	p, err := Period(x)
	if err != nil {
		return 0, err
	}
	return rate / p, nil
}

// RMS returns the root mean square of x, 0 if x is empty.
func RMS(x []int16) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, s := range x {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(x)))
}

// Envelope returns the RMS of consecutive windows of x. A trailing partial
// window is dropped.
func Envelope(x []int16, window int) []float64 {
	if window <= 0 {
		return nil
	}
	env := make([]float64, 0, len(x)/window)
	for i := 0; i+window <= len(x); i += window {
		env = append(env, RMS(x[i:i+window]))
	}
	return env
}
