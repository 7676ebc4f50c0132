// Package resample converts int16 sample streams between rates with
// band-limited steps.
//
// Every change between two consecutive input samples is turned into a
// band-limited step placed at the input sample time. The steps are
// integrated at the output rate, which gives an alias-free conversion for
// the piecewise-constant signals the oscillators produce. Output is DC
// blocked and saturated to int16.
package resample

import "fmt"

// maxUpRatio bounds outRate/inRate, past which the clock factor no longer
// fits the fixed-point time representation.
const maxUpRatio = 1 << 10

// A Converter resamples one channel from an input rate to an output rate.
// It is not safe for concurrent use.
type Converter struct {
	buf  *deltaBuffer
	last int16
}

// New returns a Converter from inRate to outRate able to hold capacity
// output samples between reads.
func New(inRate, outRate float64, capacity int) (*Converter, error) {
	if !(inRate > 0) || !(outRate > 0) {
		return nil, fmt.Errorf("resample: invalid rates %v -> %v", inRate, outRate)
	}
	if inRate/outRate > MaxRatio || outRate/inRate > maxUpRatio {
		return nil, fmt.Errorf("resample: ratio %v -> %v out of range", inRate, outRate)
	}
	buf, err := newDeltaBuffer(capacity)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	buf.setRates(inRate, outRate)
	buf.clear()
	return &Converter{buf: buf}, nil
}

// Write converts in, one input clock per sample, and makes the resulting
// output samples available to Read.
//
// Write panics if the converter cannot hold the output, use Needed to size
// writes.
func (c *Converter) Write(in []int16) {
	last := c.last
	for i, s := range in {
		if s != last {
			c.buf.addDelta(uint64(i), int32(s)-int32(last))
			last = s
		}
	}
	c.last = last
	c.buf.endFrame(len(in))
}

// Available returns the number of output samples ready to be read.
func (c *Converter) Available() int { return c.buf.avail }

// Needed returns the number of input samples to write for n more output
// samples to become available.
func (c *Converter) Needed(n int) int { return c.buf.clocksNeeded(n) }

// Read moves at most len(out) available samples into out and returns how
// many were read.
func (c *Converter) Read(out []int16) int {
	return c.buf.readSamples(out, len(out))
}

// Clear discards buffered output and restarts from silence.
func (c *Converter) Clear() {
	c.buf.clear()
	c.last = 0
}
