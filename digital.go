package vco

import "github.com/arl/vco/internal/lut"

const (
	numFormants       = 5
	numPluckVoices    = 3
	numBellPartials   = 11
	numDrumPartials   = 6
	numHarmonics      = 12
	numGrains         = 4
	digitalShapeNone  = DigitalShape(NumDigitalShapes)
	combDelayLength   = 8192
	bridgeLength      = 1024
	neckLength        = 4096
	boreLength        = 2048
	jetLength         = 1024
	fluteBoreLength   = 4096
	pluckStringLength = 1025
)

type resoSquareState struct {
	modulatorPhaseIncrement uint32
	modulatorPhase          uint32
	squareModulatorPhase    uint32
	integrator              int32
	polarity                bool
}

type vowelState struct {
	formantIncrement [3]uint32
	formantPhase     [3]uint32
	formantAmplitude [3]uint32
	consonantFrames  uint16
	noise            uint16
}

type sawSwarmState struct {
	phase  [6]uint32
	lp, bp int32
}

type additiveState struct {
	partialPhase           [numBellPartials]uint32
	partialPhaseIncrement  [numBellPartials]uint32
	partialAmplitude       [numBellPartials]int32
	targetPartialAmplitude [numBellPartials]int32
	previousSample         int16
	currentPartial         int
	lpNoise                [3]int32
}

type pluckState struct {
	size              int
	writePtr          int
	shift             uint
	mask              int
	initializationPtr int
	phase             uint32
	phaseIncrement    uint32
	maxPhaseIncrement uint32
}

type feedbackFMState struct {
	modulatorPhase uint32
	previousSample int16
}

type particleNoiseState struct {
	amplitude   uint16
	state       [3][2]int32
	scale       [3]int32
	coefficient [3]int32
}

type physicalState struct {
	delayPtr       uint16
	excitationPtr  uint16
	lpState        int32
	filterState    [2]int32
	previousSample int16
}

type grain struct {
	phase, phaseIncrement                 uint32
	envelopePhase, envelopePhaseIncrement uint32
}

type fofState struct {
	nextSawSample  int32
	previousSample int32
	lp, bp         [numFormants]int32
}

type toyState struct {
	heldSample        uint8
	decimationCounter uint16
}

type modulationState struct {
	symbolPhase uint32
	symbolCount uint16
	filterState int32
	dataByte    uint8
}

type clockedNoiseState struct {
	cyclePhase          uint32
	cyclePhaseIncrement uint32
	rngState            uint32
	seed                int32
	sample              int16
}

type svfState struct {
	lp, bp int32
}

type hatState struct {
	phase    [6]uint32
	rngState uint32
}

// digitalState holds what each algorithm carries from one block to the
// next. Only the fields of the active algorithm are meaningful; all of them
// are cleared when the algorithm changes.
type digitalState struct {
	res            resoSquareState
	vow            vowelState
	saw            sawSwarmState
	add            additiveState
	hrm            [numHarmonics]int32
	plk            [numPluckVoices]pluckState
	pluckPrevious  int16
	activeVoice    int
	ffm            feedbackFMState
	combPitch      int32
	pno            particleNoiseState
	phy            physicalState
	grains         [numGrains]grain
	fof            fofState
	toy            toyState
	svf            svfState
	dmd            modulationState
	clk            clockedNoiseState
	hat            hatState
	modulatorPhase uint32
}

type delayLines struct {
	comb   [combDelayLength]int16
	ks     [pluckStringLength * numPluckVoices]int16
	bridge [bridgeLength]int8
	neck   [neckLength]int8
	bore   [boreLength]int16
	jet    [jetLength]int8
	fbore  [fluteBoreLength]int8
}

// A DigitalOscillator renders one of the digital synthesis algorithms:
// formant, additive, FM, physical models, percussion, wavetables and noise.
type DigitalOscillator struct {
	shape         DigitalShape
	previousShape DigitalShape

	phase          uint32
	phaseIncrement uint32
	delay          uint32

	pitch             int32
	parameter         [2]int16
	previousParameter [2]int16
	smoothedParameter int32
	fmParameter       int16

	init   bool
	strike bool

	state  digitalState
	pulse  [4]excitation
	svf    [3]svf
	lines  delayLines
	random random
}

// NewDigitalOscillator returns an initialized oscillator.
func NewDigitalOscillator() *DigitalOscillator {
	d := &DigitalOscillator{}
	d.reset()
	return d
}

// reset brings d back to its freshly constructed state, shape and
// parameters excepted.
func (d *DigitalOscillator) reset() {
	d.previousShape = digitalShapeNone
	d.pitch = 60 << 7
	d.Init()
}

// Init clears the algorithm state and delay lines and arms the next strike.
// Shape, pitch and parameters are kept.
func (d *DigitalOscillator) Init() {
	d.state = digitalState{}
	d.lines = delayLines{}
	for i := range d.pulse {
		d.pulse[i].init()
	}
	for i := range d.svf {
		d.svf[i].init()
	}
	d.phase = 0
	d.previousParameter = [2]int16{}
	d.smoothedParameter = 0
	d.random.seed(randomSeed)
	d.strike = true
	d.init = true
}

// SetShape selects the algorithm. Render resets the algorithm state when
// the shape differs from the previous block.
func (d *DigitalOscillator) SetShape(shape DigitalShape) { d.shape = shape }

// Shape returns the selected algorithm.
func (d *DigitalOscillator) Shape() DigitalShape { return d.shape }

// SetPitch sets the pitch in 1/128 semitones. Above note 90 successive
// values are averaged to tame noisy control voltages.
func (d *DigitalOscillator) SetPitch(pitch int16) {
	p := int32(pitch)
	if d.pitch > 90<<7 && p > 90<<7 {
		d.pitch = (d.pitch + p) >> 1
	} else {
		d.pitch = p
	}
}

// SetParameters sets both timbre parameters; negative values read as 0.
func (d *DigitalOscillator) SetParameters(p0, p1 int16) {
	d.parameter[0] = max(p0, 0)
	d.parameter[1] = max(p1, 0)
}

// Strike re-excites the percussive and physical algorithms on the next
// Render.
func (d *DigitalOscillator) Strike() { d.strike = true }

// PhaseIncrement is the carrier increment computed by the last Render.
func (d *DigitalOscillator) PhaseIncrement() uint32 { return d.phaseIncrement }

type digitalRenderFn func(d *DigitalOscillator, sync []byte, buffer []int16)

var digitalRenderers = [NumDigitalShapes]digitalRenderFn{
	DigitalTripleRingMod:     (*DigitalOscillator).renderTripleRingMod,
	DigitalSawSwarm:          (*DigitalOscillator).renderSawSwarm,
	DigitalCombFilter:        (*DigitalOscillator).renderComb,
	DigitalToy:               (*DigitalOscillator).renderToy,
	DigitalFilterLP:          (*DigitalOscillator).renderDigitalFilter,
	DigitalFilterPK:          (*DigitalOscillator).renderDigitalFilter,
	DigitalFilterBP:          (*DigitalOscillator).renderDigitalFilter,
	DigitalFilterHP:          (*DigitalOscillator).renderDigitalFilter,
	DigitalVosim:             (*DigitalOscillator).renderVosim,
	DigitalVowel:             (*DigitalOscillator).renderVowel,
	DigitalVowelFof:          (*DigitalOscillator).renderVowelFof,
	DigitalHarmonics:         (*DigitalOscillator).renderHarmonics,
	DigitalFM:                (*DigitalOscillator).renderFM,
	DigitalFeedbackFM:        (*DigitalOscillator).renderFeedbackFM,
	DigitalChaoticFeedbackFM: (*DigitalOscillator).renderChaoticFeedbackFM,
	DigitalPlucked:           (*DigitalOscillator).renderPlucked,
	DigitalBowed:             (*DigitalOscillator).renderBowed,
	DigitalBlown:             (*DigitalOscillator).renderBlown,
	DigitalFluted:            (*DigitalOscillator).renderFluted,
	DigitalStruckBell:        (*DigitalOscillator).renderStruckBell,
	DigitalStruckDrum:        (*DigitalOscillator).renderStruckDrum,
	DigitalKick:              (*DigitalOscillator).renderKick,
	DigitalCymbal:            (*DigitalOscillator).renderCymbal,
	DigitalSnare:             (*DigitalOscillator).renderSnare,
	DigitalWavetables:        (*DigitalOscillator).renderWavetables,
	DigitalWaveMap:           (*DigitalOscillator).renderWaveMap,
	DigitalWaveLine:          (*DigitalOscillator).renderWaveLine,
	DigitalWaveParaphonic:    (*DigitalOscillator).renderWaveParaphonic,
	DigitalFilteredNoise:     (*DigitalOscillator).renderFilteredNoise,
	DigitalTwinPeaksNoise:    (*DigitalOscillator).renderTwinPeaksNoise,
	DigitalClockedNoise:      (*DigitalOscillator).renderClockedNoise,
	DigitalGranularCloud:     (*DigitalOscillator).renderGranularCloud,
	DigitalParticleNoise:     (*DigitalOscillator).renderParticleNoise,
	DigitalDataModulation:    (*DigitalOscillator).renderDigitalModulation,
	DigitalQuestionMark:      (*DigitalOscillator).renderQuestionMark,
}

// Render fills buffer with len(buffer) samples. See
// AnalogOscillator.Render for the sync encoding; algorithms without a
// natural reset point ignore it.
//
// Render panics if buffer is empty, odd-sized or longer than MaxBlockSize,
// or if a sync buffer is shorter than buffer.
func (d *DigitalOscillator) Render(sync []byte, buffer []int16) {
	checkBlock(sync, buffer)
	if len(buffer)%2 != 0 {
		panic("vco: digital block size must be even")
	}

	if d.shape >= DigitalFM && d.shape <= DigitalChaoticFeedbackFM {
		d.fmParameter = quantizeRatio(d.parameter[1])
	}

	if d.shape != d.previousShape {
		d.Init()
		d.previousShape = d.shape
	}

	d.pitch = clamp(d.pitch, 0, digitalHighestNote)
	d.phaseIncrement = computePhaseIncrement(d.pitch)
	d.delay = computeDelay(d.pitch)

	digitalRenderers[d.shape](d, sync, buffer)
}

// quantizeRatio snaps the modulator knob onto musically useful ratios.
func quantizeRatio(p int16) int16 {
	integral := p >> 8
	fractional := int32(p & 255)
	a := int32(lut.FMFrequencyQuantizer[integral])
	b := int32(lut.FMFrequencyQuantizer[integral+1])
	return int16(a + ((b - a) * fractional >> 8))
}
