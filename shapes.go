package vco

import (
	"fmt"
	"strings"
)

// AnalogShape selects one of the band-limited analog waveforms.
type AnalogShape uint8

const (
	AnalogSaw AnalogShape = iota
	AnalogVariableSaw
	AnalogCSaw
	AnalogSquare
	AnalogTriangle
	AnalogSine
	AnalogTriangleFold
	AnalogSineFold
	AnalogBuzz

	NumAnalogShapes = iota
)

var analogNames = [NumAnalogShapes]string{
	"saw", "variable_saw", "csaw", "square", "triangle", "sine",
	"triangle_fold", "sine_fold", "buzz",
}

func (s AnalogShape) String() string {
	if int(s) < len(analogNames) {
		return analogNames[s]
	}
	return fmt.Sprintf("AnalogShape(%d)", s)
}

// DigitalShape selects one of the digital synthesis algorithms.
type DigitalShape uint8

const (
	DigitalTripleRingMod DigitalShape = iota
	DigitalSawSwarm
	DigitalCombFilter
	DigitalToy
	DigitalFilterLP
	DigitalFilterPK
	DigitalFilterBP
	DigitalFilterHP
	DigitalVosim
	DigitalVowel
	DigitalVowelFof
	DigitalHarmonics
	DigitalFM
	DigitalFeedbackFM
	DigitalChaoticFeedbackFM
	DigitalPlucked
	DigitalBowed
	DigitalBlown
	DigitalFluted
	DigitalStruckBell
	DigitalStruckDrum
	DigitalKick
	DigitalCymbal
	DigitalSnare
	DigitalWavetables
	DigitalWaveMap
	DigitalWaveLine
	DigitalWaveParaphonic
	DigitalFilteredNoise
	DigitalTwinPeaksNoise
	DigitalClockedNoise
	DigitalGranularCloud
	DigitalParticleNoise
	DigitalDataModulation
	DigitalQuestionMark

	NumDigitalShapes = iota
)

var digitalNames = [NumDigitalShapes]string{
	"triple_ring_mod", "saw_swarm", "comb_filter", "toy",
	"filter_lp", "filter_pk", "filter_bp", "filter_hp",
	"vosim", "vowel", "vowel_fof", "harmonics",
	"fm", "feedback_fm", "chaotic_feedback_fm",
	"plucked", "bowed", "blown", "fluted",
	"struck_bell", "struck_drum", "kick", "cymbal", "snare",
	"wavetables", "wave_map", "wave_line", "wave_paraphonic",
	"filtered_noise", "twin_peaks_noise", "clocked_noise",
	"granular_cloud", "particle_noise", "digital_modulation",
	"question_mark",
}

func (s DigitalShape) String() string {
	if int(s) < len(digitalNames) {
		return digitalNames[s]
	}
	return fmt.Sprintf("DigitalShape(%d)", s)
}

// MacroShape selects one of the composite shapes of a MacroOscillator.
type MacroShape uint8

const (
	CSaw MacroShape = iota
	Morph
	SawSquare
	SineTriangle
	Buzz
	SquareSync
	SawSync
	TripleSaw
	TripleSquare
	TripleTriangle
	TripleSine
	TripleRingMod
	SawSwarm
	SawComb
	Toy
	FilterLP
	FilterPK
	FilterBP
	FilterHP
	Vosim
	Vowel
	VowelFof
	Harmonics
	FM
	FeedbackFM
	ChaoticFeedbackFM
	Plucked
	Bowed
	Blown
	Fluted
	StruckBell
	StruckDrum
	Kick
	Cymbal
	Snare
	Wavetables
	WaveMap
	WaveLine
	WaveParaphonic
	FilteredNoise
	TwinPeaksNoise
	ClockedNoise
	GranularCloud
	ParticleNoise
	DigitalModulation
	QuestionMark

	NumMacroShapes = iota
)

var macroNames = [NumMacroShapes]string{
	"csaw", "morph", "saw_square", "sine_triangle", "buzz",
	"square_sync", "saw_sync",
	"triple_saw", "triple_square", "triple_triangle", "triple_sine",
	"triple_ring_mod", "saw_swarm", "saw_comb",
}

func init() {
	// Past saw_comb, macro shapes mirror the digital ones.
	for s := Toy; s < NumMacroShapes; s++ {
		macroNames[s] = s.digital().String()
	}
}

func (s MacroShape) String() string {
	if int(s) < len(macroNames) {
		return macroNames[s]
	}
	return fmt.Sprintf("MacroShape(%d)", s)
}

// digital returns the digital algorithm a macro shape passes through to.
func (s MacroShape) digital() DigitalShape {
	return DigitalShape(s - TripleRingMod)
}

// ParseMacroShape returns the shape whose String() matches name, ignoring
// case and accepting '-' for '_'.
func ParseMacroShape(name string) (MacroShape, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, s := range macroNames {
		if s == n {
			return MacroShape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}
