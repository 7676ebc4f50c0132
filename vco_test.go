package vco

import (
	"encoding/binary"
	"hash/crc32"
	"math/rand/v2"
	"testing"
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

// checksum hashes rendered samples, to compare long renders cheaply.
func checksum(buf []int16) uint32 {
	b := make([]byte, 2*len(buf))
	for i, s := range buf {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return crc32.ChecksumIEEE(b)
}

// renderer is the common shape of the oscillators' Render methods.
type renderer func(sync []byte, buffer []int16)

// renderBlocks renders n samples by blocks of size.
func renderBlocks(render renderer, n, size int) []int16 {
	out := make([]int16, n)
	for i := 0; i < n; i += size {
		end := min(i+size, n)
		render(nil, out[i:end])
	}
	return out
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// randomPitch returns a pitch anywhere in int16 range half of the time,
// inside the musical range otherwise.
func randomPitch(r *rand.Rand) int16 {
	if r.IntN(2) == 0 {
		return int16(r.IntN(1 << 16))
	}
	return int16(r.IntN(MaxPitch + 1))
}

func randomParameter(r *rand.Rand) int16 {
	switch r.IntN(4) {
	case 0:
		return 0
	case 1:
		return 32767
	default:
		return int16(r.IntN(1 << 15))
	}
}

// randomSync returns nil or a sync buffer with a few random events.
func randomSync(r *rand.Rand, n int) []byte {
	if r.IntN(2) == 0 {
		return nil
	}
	sync := make([]byte, n)
	for range r.IntN(3) {
		sync[r.IntN(n)] = byte(1 + r.IntN(128))
	}
	return sync
}
