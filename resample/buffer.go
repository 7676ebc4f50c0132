package resample

import (
	"errors"
	"math"
)

const (
	preShift        = 32
	timeBits        = preShift + 20
	timeUnit uint64 = 1 << timeBits
)

const (
	bassShift     = 9 // affects high-pass filter breakpoint frequency
	endFrameExtra = 2 // allows deltas slightly after frame length
)

const (
	halfWidth  = 8
	bufExtra   = halfWidth*2 + endFrameExtra
	phaseBits  = 5
	phaseCount = 1 << phaseBits
	deltaBits  = 15
	deltaUnit  = 1 << deltaBits
	fracBits   = timeBits - preShift
)

const maxSample = math.MaxInt16

const (
	// MaxRatio is the maximum input/output rate ratio. For a given output
	// rate, the input rate must not be greater than outRate*MaxRatio.
	MaxRatio = 1 << 20

	// MaxFrame is the maximum number of output samples a single Write can
	// make available.
	MaxFrame = 4000
)

func saturate(n int) int {
	if int(int16(n)) != n {
		n = (n >> 16) ^ maxSample
	}
	return n
}

// deltaBuffer accumulates band-limited steps placed at input clock times
// and integrates them into output samples.
type deltaBuffer struct {
	factor     uint64
	offset     uint64
	avail      int
	size       int
	integrator int

	samples []int32
}

// newDeltaBuffer creates a buffer holding at most n output samples, set to
// MaxRatio input clocks per output sample.
func newDeltaBuffer(n int) (*deltaBuffer, error) {
	if n <= 0 {
		return nil, errors.New("buffer size must be positive")
	}
	b := &deltaBuffer{
		samples: make([]int32, n+bufExtra),
		factor:  timeUnit / MaxRatio,
		size:    n,
	}
	b.clear()
	return b, nil
}

// clear discards buffered samples and the integrator state.
func (b *deltaBuffer) clear() {
	// factor/2 accommodates a factor rounded in either direction.
	b.offset = b.factor / 2
	b.avail = 0
	b.integrator = 0
	clear(b.samples)
}

// setRates sets the input clock rate and the output sample rate. For every
// clockRate input clocks, approximately sampleRate samples are generated.
func (b *deltaBuffer) setRates(clockRate, sampleRate float64) {
	factor := float64(timeUnit) * sampleRate / clockRate
	b.factor = uint64(factor)

	if !(0 <= factor-float64(b.factor) && factor-float64(b.factor) < 1) {
		panic("clock rate exceeds maximum")
	}

	// Round up, it can still have been rounded down by the float division.
	if float64(b.factor) < factor {
		b.factor++
	}
}

// clocksNeeded returns how many input clocks must be written for n more
// output samples to become available.
func (b *deltaBuffer) clocksNeeded(n int) int {
	if n < 0 || b.avail+n > b.size {
		panic("buffer can't hold that many samples")
	}

	needed := uint64(n) * timeUnit
	if needed < b.offset {
		return 0
	}
	return int((needed - b.offset + b.factor - 1) / b.factor)
}

// endFrame makes the input clocks before duration available as output
// samples and starts a new frame at duration.
func (b *deltaBuffer) endFrame(duration int) {
	off := uint64(duration)*b.factor + b.offset
	b.avail += int(off >> timeBits)
	b.offset = off & (timeUnit - 1)

	if b.avail > b.size {
		panic("buffer size exceeded")
	}
}

func (b *deltaBuffer) removeSamples(count int) {
	remain := b.avail + bufExtra - count
	b.avail -= count

	copy(b.samples[:remain], b.samples[count:])
	clear(b.samples[remain : remain+count])
}

// readSamples removes at most count samples, high-pass filtered and
// saturated, into out. It returns the number of samples read.
func (b *deltaBuffer) readSamples(out []int16, count int) int {
	if count < 0 {
		panic("count must be positive")
	}
	count = min(count, b.avail)
	if count == 0 {
		return 0
	}

	sum := b.integrator
	for i := range b.samples[:count] {
		s := sum >> deltaBits
		sum += int(b.samples[i])
		out[i] = int16(saturate(s))

		// High-pass filter
		sum -= s << (deltaBits - bassShift)
	}
	b.integrator = sum
	b.removeSamples(count)
	return count
}

// Sinc_Generator( 0.9, 0.55, 4.5 )
var blStep = [(phaseCount + 1) * halfWidth]int16{
	43, -115, 350, -488, 1136, -914, 5861, 21022,
	44, -118, 348, -473, 1076, -799, 5274, 21001,
	45, -121, 344, -454, 1011, -677, 4706, 20936,
	46, -122, 336, -431, 942, -549, 4156, 20829,
	47, -123, 327, -404, 868, -418, 3629, 20679,
	47, -122, 316, -375, 792, -285, 3124, 20488,
	47, -120, 303, -344, 714, -151, 2644, 20256,
	46, -117, 289, -310, 634, -17, 2188, 19985,
	46, -114, 273, -275, 553, 117, 1758, 19675,
	44, -108, 255, -237, 471, 247, 1356, 19327,
	43, -103, 237, -199, 390, 373, 981, 18944,
	42, -98, 218, -160, 310, 495, 633, 18527,
	40, -91, 198, -121, 231, 611, 314, 18078,
	38, -84, 178, -81, 153, 722, 22, 17599,
	36, -76, 157, -43, 80, 824, -241, 17092,
	34, -68, 135, -3, 8, 919, -476, 16558,
	32, -61, 115, 34, -60, 1006, -683, 16001,
	29, -52, 94, 70, -123, 1083, -862, 15422,
	27, -44, 73, 106, -184, 1152, -1015, 14824,
	25, -36, 53, 139, -239, 1211, -1142, 14210,
	22, -27, 34, 170, -290, 1261, -1244, 13582,
	20, -20, 16, 199, -335, 1301, -1322, 12942,
	18, -12, -3, 226, -375, 1331, -1376, 12293,
	15, -4, -19, 250, -410, 1351, -1408, 11638,
	13, 3, -35, 272, -439, 1361, -1419, 10979,
	11, 9, -49, 292, -464, 1362, -1410, 10319,
	9, 16, -63, 309, -483, 1354, -1383, 9660,
	7, 22, -75, 322, -496, 1337, -1339, 9005,
	6, 26, -85, 333, -504, 1312, -1280, 8355,
	4, 31, -94, 341, -507, 1278, -1205, 7713,
	3, 35, -102, 347, -506, 1238, -1119, 7082,
	1, 40, -110, 350, -499, 1190, -1021, 6464,
	0, 43, -115, 350, -488, 1136, -914, 5861,
}

// addDelta adds a band-limited step of height delta at clock time t of the
// current frame.
func (b *deltaBuffer) addDelta(t uint64, delta int32) {
	fixed := (t*b.factor + b.offset) >> preShift

	const phaseShift = fracBits - phaseBits
	phase := fixed >> phaseShift & (phaseCount - 1)

	interp := fixed >> (phaseShift - deltaBits) & (deltaUnit - 1)
	delta2 := (delta * int32(interp)) >> deltaBits
	delta -= delta2

	if uint64(b.avail)+(fixed>>fracBits) > uint64(b.size)+endFrameExtra {
		panic("buffer exceeded")
	}

	out := b.samples[uint64(b.avail)+(fixed>>fracBits):]
	fwd := phase * halfWidth
	rev := (phaseCount - phase) * halfWidth
	for i := range uint64(halfWidth) {
		out[i] += int32(blStep[fwd+i])*delta + int32(blStep[fwd+halfWidth+i])*delta2
		out[halfWidth+i] += int32(blStep[rev+halfWidth-1-i])*delta + int32(blStep[rev-1-i])*delta2
	}
}
