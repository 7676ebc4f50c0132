// Package voice drives a MacroOscillator from host-friendly controls and
// streams its output at the host sample rate.
package voice

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/arl/vco"
	"github.com/arl/vco/resample"
)

const (
	// CoreRate is the rate the oscillators are designed for.
	CoreRate = 96000

	// BlockSize is the number of core samples rendered at once. Controls
	// are applied on block boundaries.
	BlockSize = 24
)

// Controls is the state of the knobs and gate of a voice.
type Controls struct {
	Shape   vco.MacroShape
	Note    float64 // MIDI note number, 60 is middle C, fractions allowed
	Timbre  float64 // [0, 1]
	Color   float64 // [0, 1]
	Trigger bool    // a rising edge strikes the oscillator
}

// A Voice renders a MacroOscillator at a given sample rate. Set may be
// called from another goroutine than the one reading samples; the read
// methods and readers themselves must not be used concurrently.
type Voice struct {
	mu   sync.Mutex
	ctl  Controls
	osc  *vco.MacroOscillator
	conv *resample.Converter // nil when rendering at CoreRate

	block [BlockSize]int16
	pos   int // read position in block, when bypassing the converter

	scratch []int16
}

// New returns a voice rendering at sampleRate, with middle C on the first
// shape.
func New(sampleRate float64) (*Voice, error) {
	v := &Voice{
		osc: vco.NewMacroOscillator(),
		pos: BlockSize,
	}
	if sampleRate != CoreRate {
		capacity := int(math.Ceil(BlockSize*sampleRate/CoreRate)) + 16
		conv, err := resample.New(CoreRate, sampleRate, capacity)
		if err != nil {
			return nil, fmt.Errorf("voice: %w", err)
		}
		v.conv = conv
	}
	v.set(Controls{Note: 60})
	return v, nil
}

// Set updates the controls. A Trigger going from false to true strikes the
// oscillator.
func (v *Voice) Set(c Controls) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.set(c)
}

func (v *Voice) set(c Controls) {
	if c.Trigger && !v.ctl.Trigger {
		v.osc.Strike()
	}
	v.osc.SetShape(c.Shape)
	v.osc.SetPitch(pitch(c.Note))
	v.osc.SetParameters(parameter(c.Timbre), parameter(c.Color))
	v.ctl = c
}

// Controls returns the current controls.
func (v *Voice) Controls() Controls {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ctl
}

// pitch converts a MIDI note to 1/128 semitones.
func pitch(note float64) int16 {
	p := math.Round(note * vco.Semitone)
	if math.IsNaN(p) {
		return 0
	}
	return int16(min(max(p, math.MinInt16), math.MaxInt16))
}

// parameter maps [0, 1] onto the parameter range.
func parameter(x float64) int16 {
	if !(x > 0) {
		return 0
	}
	return int16(min(x, 1) * 32767)
}

// render produces the next block of core samples.
func (v *Voice) render() {
	v.osc.Render(nil, v.block[:])
}

// Read fills p with samples and returns len(p). It never fails.
func (v *Voice) Read(p []int16) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.conv == nil {
		for n := 0; n < len(p); {
			if v.pos == BlockSize {
				v.render()
				v.pos = 0
			}
			c := copy(p[n:], v.block[v.pos:])
			v.pos += c
			n += c
		}
		return len(p)
	}

	for n := 0; n < len(p); {
		if v.conv.Available() == 0 {
			v.render()
			v.conv.Write(v.block[:])
		}
		n += v.conv.Read(p[n:])
	}
	return len(p)
}

func (v *Voice) samples(n int) []int16 {
	if cap(v.scratch) < n {
		v.scratch = make([]int16, n)
	}
	return v.scratch[:n]
}

// ReadFloat32 fills p with samples scaled to [-1, 1) and returns len(p).
func (v *Voice) ReadFloat32(p []float32) int {
	buf := v.samples(len(p))
	v.Read(buf)
	for i, s := range buf {
		p[i] = float32(s) / 32768
	}
	return len(p)
}

// Reader returns an endless stream of little-endian int16 frames of ch
// identical channels. It is meant to feed stream-based audio players.
func (v *Voice) Reader(ch int) io.Reader {
	return &reader{v: v, ch: max(ch, 1)}
}

type reader struct {
	v  *Voice
	ch int
}

func (r *reader) Read(b []byte) (int, error) {
	frameSize := 2 * r.ch
	frames := len(b) / frameSize
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	buf := r.v.samples(frames)
	r.v.Read(buf)
	for i, s := range buf {
		for c := range r.ch {
			binary.LittleEndian.PutUint16(b[i*frameSize+2*c:], uint16(s))
		}
	}
	return frames * frameSize, nil
}
