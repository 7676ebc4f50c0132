package lut

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func assert[T comparable](t *testing.T, got, want T) {
	t.Helper()

	if got != want {
		t.Fatalf("assertion failed: got = %v want %v", got, want)
	}
}

func TestPitchTables(t *testing.T) {
	for i := 1; i < PitchTableSize; i++ {
		if OscillatorIncrements[i] <= OscillatorIncrements[i-1] {
			t.Fatalf("increments not increasing at %d", i)
		}
		if OscillatorDelays[i] >= OscillatorDelays[i-1] {
			t.Fatalf("delays not decreasing at %d", i)
		}
	}

	// One octave up doubles the increment.
	first, last := OscillatorIncrements[0], OscillatorIncrements[PitchTableSize-1]
	assert(t, last/2-first < 2 || first-last/2 < 2, true)
}

func TestSine(t *testing.T) {
	assert(t, Sine[0], 0)
	assert(t, Sine[64], 32767)
	assert(t, Sine[192], -32767)
	assert(t, Sine[256], Sine[0])
}

func TestShapersAreOdd(t *testing.T) {
	for name, tbl := range map[string]*[257]int16{
		"moderate": &ModerateOverdrive,
		"violent":  &ViolentOverdrive,
		"trifold":  &TriFold,
		"sinefold": &SineFold,
	} {
		t.Run(name, func(t *testing.T) {
			assert(t, tbl[128], 0)
			for i := 1; i < 128; i++ {
				assert(t, tbl[128+i], -tbl[128-i])
			}
		})
	}
}

func TestWaveLinesVisitDistinctWaves(t *testing.T) {
	for name, line := range map[string][]uint8{
		"wave line":      WaveLine[:],
		"mini wave line": MiniWaveLine[:],
	} {
		seen := make(map[uint8]bool)
		for i, w := range line {
			if seen[w] {
				t.Errorf("%s: wave %d visited twice, at %d", name, w, i)
			}
			seen[w] = true
		}
	}
	assert(t, WaveLine[0], 187)
	assert(t, MiniWaveLine[len(MiniWaveLine)-1], 174)
}

func TestWavesWrap(t *testing.T) {
	for i := range Waves {
		assert(t, Waves[i][WaveSize-1], Waves[i][0])
	}
}

func TestGranularEnvelopeTail(t *testing.T) {
	for i := 257; i < len(GranularEnvelope); i++ {
		assert(t, GranularEnvelope[i], 0)
	}
	for i := 1; i < len(GranularEnvelopeRate); i++ {
		assert(t, GranularEnvelopeRate[i] >= GranularEnvelopeRate[i-1], true)
	}
}

func TestFMQuantizerPlateaus(t *testing.T) {
	// Unison sits in the middle of the knob.
	assert(t, FMFrequencyQuantizer[64], 16384)
	for i := 1; i < len(FMFrequencyQuantizer); i++ {
		assert(t, FMFrequencyQuantizer[i] >= FMFrequencyQuantizer[i-1], true)
	}
}

// decodeMorse plays the symbol stream back into text.
func decodeMorse(code []uint8) string {
	reverse := make(map[string]rune)
	for r, s := range morse {
		reverse[s] = r
	}

	var sb strings.Builder
	var letter string
	on := true
	for i := 0; ; i++ {
		v := code[i>>2] >> ((i & 3) << 1) & 3
		if v == symEnd {
			break
		}
		if on {
			if v == symDah {
				letter += "-"
			} else {
				letter += "."
			}
		} else if v != symDit {
			sb.WriteRune(reverse[letter])
			letter = ""
			if v == symWord {
				sb.WriteByte(' ')
			}
		}
		on = !on
	}
	return strings.TrimSpace(sb.String())
}

func TestCode(t *testing.T) {
	got := decodeMorse(Code)
	if diff := cmp.Diff(got, Message); diff != "" {
		t.Errorf("response mismatch (-got +want):\n%s", diff)
	}

	got = decodeMorse(encodeMorse("sos 42"))
	assert(t, got, "SOS 42")
}
