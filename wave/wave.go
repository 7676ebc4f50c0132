// Package wave writes 16-bit PCM wave files.
package wave

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// A Writer writes samples to a wave file. Samples are buffered in memory
// until Close, when the header sizes are known.
type Writer struct {
	w           io.WriteCloser
	sampleRate  int
	sampleCount int
	chanCount   uint8
	bb          bytes.Buffer
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newWriter(w io.WriteCloser, sampleRate int) *Writer {
	return &Writer{
		w:          w,
		sampleRate: sampleRate,
		chanCount:  1,
	}
}

// NewWriter creates a new Writer with the given sample rate, onto which samples
// can be written with Write. Close must be called when done writing samples to
// finalize the wave file.
func NewWriter(w io.Writer, sampleRate int) *Writer {
	return newWriter(nopCloser{Writer: w}, sampleRate)
}

// NewFile creates a new wave file at the given path with the given sample rate.
// Close must be called when done writing samples to finalize the wave file.
func NewFile(path string, sampleRate int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wave: %w", err)
	}
	return newWriter(f, sampleRate), nil
}

const (
	sampleSize = 2
	headerSize = 0x2C
)

func (w *Writer) header() [headerSize]byte {
	dataSize := sampleSize * w.sampleCount
	frameSize := sampleSize * w.chanCount
	h := [headerSize]byte{
		'R', 'I', 'F', 'F',
		0, 0, 0, 0, //        length of rest of file
		'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ',
		16, 0, 0, 0, //       size of fmt chunk
		1, 0, //              uncompressed format
		0, 0, //              channel count
		0, 0, 0, 0, //        sample rate
		0, 0, 0, 0, //        bytes per second
		0, 0, //              bytes per sample frame
		sampleSize * 8, 0, // bits per sample
		'd', 'a', 't', 'a',
		0, 0, 0, 0, //        size of sample data
		// ...                sample data
	}

	binary.LittleEndian.PutUint32(h[0x04:], uint32(len(h)-8+dataSize))

	h[0x16] = w.chanCount
	binary.LittleEndian.PutUint32(h[0x18:], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(h[0x1C:], uint32(w.sampleRate)*uint32(frameSize))
	h[0x20] = frameSize
	binary.LittleEndian.PutUint32(h[0x28:], uint32(dataSize))
	return h
}

// EnableStereo marks the file as 2 channels. Samples must then be written
// interleaved, left first.
func (w *Writer) EnableStereo() {
	w.chanCount = 2
}

// SampleCount returns the number of samples written since the last Close,
// counting each channel.
func (w *Writer) SampleCount() int {
	return w.sampleCount
}

// Write appends p to the sample data. It never fails.
func (w *Writer) Write(p []int16) (n int, err error) {
	var buf [4096]byte
	for rest := p; len(rest) != 0; {
		n := min(len(rest), len(buf)/sampleSize)
		for i, s := range rest[:n] {
			binary.LittleEndian.PutUint16(buf[i*sampleSize:], uint16(s))
		}
		w.bb.Write(buf[:n*sampleSize])
		rest = rest[n:]
	}
	w.sampleCount += len(p)
	return len(p), nil
}

// Close finalizes the wave file. It must be called when done writing samples.
func (w *Writer) Close() error {
	hdr := w.header()
	if _, err := w.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wave: writing header: %w", err)
	}
	if _, err := w.w.Write(w.bb.Bytes()); err != nil {
		return fmt.Errorf("wave: writing samples: %w", err)
	}

	w.bb.Reset()
	w.sampleCount = 0
	w.chanCount = 1

	return w.w.Close()
}
