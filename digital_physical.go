package vco

import "github.com/arl/vco/internal/lut"

// renderPlucked is a Karplus-Strong string with three voices allocated
// round-robin on each strike. It runs at half rate.
func (d *DigitalOscillator) renderPlucked(_ []byte, buffer []int16) {
	d.phaseIncrement <<= 1
	st := &d.state
	if d.strike {
		st.activeVoice = (st.activeVoice + 1) % numPluckVoices
		p := &st.plk[st.activeVoice]

		// Lowest oversampling that keeps the string within its delay line.
		increment := d.phaseIncrement
		p.shift = 0
		for increment > 2<<22 {
			increment >>= 1
			p.shift++
		}
		p.size = 1024 >> p.shift
		p.mask = p.size - 1
		p.writePtr = 0
		p.maxPhaseIncrement = d.phaseIncrement << 1
		p.phaseIncrement = d.phaseIncrement
		width := 3 * int(d.parameter[1]) >> 1
		p.initializationPtr = p.size * (8192 + width) >> 16
		d.strike = false
	}

	// Follow the pitch of the latest note, but never bend it far upward.
	current := &st.plk[st.activeVoice]
	current.phaseIncrement = min(d.phaseIncrement, current.maxPhaseIncrement)

	// Loss and stretching.
	p0 := int32(d.parameter[0])
	updateProbability := uint32(65535)
	if p0 >= 16384 {
		updateProbability = uint32(131072 - (p0>>3)*31)
	}
	loss := max(4096-int32(d.phaseIncrement>>14), 256)
	if p0 < 16384 {
		loss = loss * (16384 - p0) >> 14
	} else {
		loss = 0
	}

	previous := int32(st.pluckPrevious)
	for i := 0; i < len(buffer); i += 2 {
		var sample int32
		for v := range numPluckVoices {
			p := &st.plk[v]
			dl := d.lines.ks[v*pluckStringLength : (v+1)*pluckStringLength]

			// Fill the delay line with noise before the string speaks.
			if p.initializationPtr > 0 {
				p.initializationPtr--
				excitation := (int32(dl[p.initializationPtr]) + 3*int32(d.random.sample())) >> 2
				dl[p.initializationPtr] = int16(excitation)
				sample += excitation
				continue
			}

			p.phase += p.phaseIncrement
			readPtr := int((p.phase>>(22+p.shift))+2) & p.mask
			writePtr := p.writePtr
			for writePtr != readPtr {
				next := (writePtr + 1) & p.mask
				a, b := int32(dl[writePtr]), int32(dl[next])
				if d.random.word()&0xffff <= updateProbability {
					sum := a + b
					if sum < 0 {
						sum = -(-sum >> 1)
					} else {
						sum >>= 1
					}
					if loss != 0 {
						sum = sum * (32768 - loss) >> 15
					}
					dl[writePtr] = int16(sum)
				}
				if writePtr == 0 {
					dl[p.size] = dl[0]
				}
				writePtr = next
			}
			p.writePtr = writePtr
			sample += interpolate1022(dl, p.phase>>p.shift)
		}
		sample = clip16(sample)
		buffer[i] = int16((previous + sample) >> 1)
		buffer[i+1] = int16(sample)
		previous = sample
	}
	st.pluckPrevious = int16(previous)
}

const (
	bridgeLPGain  = 14008
	bridgeLPPole1 = 18022
	biquadGain    = 6553
	biquadPole1   = 6948
	biquadPole2   = -2959
)

// renderBowed is a bowed string waveguide: bridge and neck delay lines
// meeting at a bow with a nonlinear friction curve. It runs at half rate.
func (d *DigitalOscillator) renderBowed(_ []byte, buffer []int16) {
	bridge, neck := d.lines.bridge[:], d.lines.neck[:]
	if d.strike {
		d.lines.bridge = [bridgeLength]int8{}
		d.lines.neck = [neckLength]int8{}
		d.state = digitalState{}
		d.strike = false
	}
	p0 := int32(172 - d.parameter[0]>>8)
	p1 := uint32(6 + d.parameter[1]>>9)

	st := &d.state.phy
	delayPtr := st.delayPtr
	excitationPtr := st.excitationPtr
	lpState := st.lpState
	y0, y1 := st.filterState[0], st.filterState[1]

	// The delay is shortened by two samples to compensate for the one-pole
	// filter. Notes too low for the lines are transposed up.
	delay := d.delay>>1 - 2<<16
	bridgeDelay := (delay >> 8) * p1
	for delay-bridgeDelay > (neckLength-1)<<16 || bridgeDelay > (bridgeLength-1)<<16 {
		delay >>= 1
		bridgeDelay >>= 1
	}
	bridgeIntegral := uint16(bridgeDelay >> 16)
	bridgeFractional := uint16(bridgeDelay)
	neckDelay := delay - bridgeDelay
	neckIntegral := uint16(neckDelay >> 16)
	neckFractional := uint16(neckDelay)
	previous := int32(st.previousSample)

	envelope := func(i uint16) int32 {
		return int32(lut.BowingEnvelope[min(int(i), lut.BowingEnvelopeSize-1)])
	}

	for i := 0; i < len(buffer); i += 2 {
		d.phase += d.phaseIncrement

		bridgePtr := delayPtr + 2*bridgeLength - bridgeIntegral
		neckPtr := delayPtr + 2*neckLength - neckIntegral
		bridgeA := int16(bridge[bridgePtr%bridgeLength])
		bridgeB := int16(bridge[(bridgePtr-1)%bridgeLength])
		nutA := int16(neck[neckPtr%neckLength])
		nutB := int16(neck[(neckPtr-1)%neckLength])
		bridgeValue := int32(mix(bridgeA, bridgeB, bridgeFractional)) << 8
		nutValue := int32(mix(nutA, nutB, neckFractional)) << 8

		lpState = (bridgeValue*bridgeLPGain + lpState*bridgeLPPole1) >> 15
		bridgeReflection := -lpState
		nutReflection := -nutValue
		stringVelocity := bridgeReflection + nutReflection
		bowVelocity := (envelope(excitationPtr>>1) + envelope((excitationPtr+1)>>1)) >> 1
		velocityDelta := bowVelocity - stringVelocity

		friction := min(abs32(velocityDelta*p0>>5), 1<<17-1)
		friction = int32(lut.BowingFriction[friction>>9])
		newVelocity := friction * velocityDelta >> 15
		neck[delayPtr%neckLength] = int8((bridgeReflection + newVelocity) >> 8)
		bridge[delayPtr%bridgeLength] = int8((nutReflection + newVelocity) >> 8)
		delayPtr++

		temp := bridgeValue * biquadGain >> 15
		temp += y0 * biquadPole1 >> 12
		temp += y1 * biquadPole2 >> 12
		out := clip16(temp - y1)
		y1 = y0
		y0 = temp

		buffer[i] = int16((out + previous) >> 1)
		buffer[i+1] = int16(out)
		previous = out
		excitationPtr++
	}
	if excitationPtr>>1 >= lut.BowingEnvelopeSize-32 {
		excitationPtr = (lut.BowingEnvelopeSize - 32) << 1
	}
	st.delayPtr = delayPtr % neckLength
	st.excitationPtr = excitationPtr
	st.lpState = lpState
	st.filterState = [2]int32{y0, y1}
	st.previousSample = int16(previous)
}

const (
	breathPressure        = 26214
	reflectionCoefficient = -3891
	reedSlope             = -1229
	reedOffset            = 22938
)

// renderBlown is a reed instrument: a noisy breath pressure drives a bore
// delay line through a reed table.
func (d *DigitalOscillator) renderBlown(_ []byte, buffer []int16) {
	st := &d.state.phy
	delayPtr := st.delayPtr
	lpState := st.lpState

	dl := d.lines.bore[:]
	if d.strike {
		d.lines.bore = [boreLength]int16{}
		d.strike = false
	}

	delay := d.delay>>1 - 1<<16
	for delay > (boreLength-1)<<16 {
		delay >>= 1
	}
	boreIntegral := uint16(delay >> 16)
	boreFractional := uint16(delay)
	parameter := int32(28000 - d.parameter[0]>>1)
	filterState := int16(st.filterState[0])

	normalizedPitch := clamp((d.pitch-8192+int32(d.parameter[1]>>1))>>7, 0, 127)
	coefficient := int32(lut.FluteBodyFilter[normalizedPitch])

	for i := range buffer {
		d.phase += d.phaseIncrement

		pressure := int32(d.random.sample()) * parameter >> 15
		pressure = pressure*breathPressure>>15 + breathPressure

		borePtr := delayPtr + 2*boreLength - boreIntegral
		a := dl[borePtr%boreLength]
		b := dl[(borePtr-1)%boreLength]
		value := int32(mix(a, b, boreFractional))

		delta := value>>1 + lpState
		lpState = value >> 1

		delta = reflectionCoefficient * delta >> 12
		delta -= pressure
		reed := clip16(delta*reedSlope>>12 + reedOffset)
		out := clip16(delta*reed>>15 + pressure)
		dl[delayPtr%boreLength] = int16(out)
		delayPtr++
		filterState = int16((coefficient*out + (4096-coefficient)*int32(filterState)) >> 12)
		buffer[i] = filterState
	}
	st.filterState[0] = int32(filterState)
	st.delayPtr = delayPtr % boreLength
	st.lpState = lpState
}

const dcBlockingPole = 4055 // 0.99 in 4.12

// renderFluted models a flute: a jet delay line feeding a bore through a
// cubic jet table, with a DC blocker in the reflection path.
func (d *DigitalOscillator) renderFluted(_ []byte, buffer []int16) {
	st := &d.state.phy
	delayPtr := st.delayPtr
	excitationPtr := st.excitationPtr
	lpState := st.lpState
	x0, y0 := st.filterState[0], st.filterState[1]

	bore, jet := d.lines.fbore[:], d.lines.jet[:]
	if d.strike {
		excitationPtr = 0
		d.lines.fbore = [fluteBoreLength]int8{}
		d.lines.jet = [jetLength]int8{}
		lpState = 0
		d.strike = false
	}

	boreDelay := d.delay<<1 - 2<<16
	jetDelay := (boreDelay >> 8) * uint32(48+d.parameter[1]>>10)
	boreDelay -= jetDelay
	for boreDelay > (fluteBoreLength-1)<<16 || jetDelay > (jetLength-1)<<16 {
		boreDelay >>= 1
		jetDelay >>= 1
	}
	boreIntegral := uint16(boreDelay >> 16)
	boreFractional := uint16(boreDelay)
	jetIntegral := uint16(jetDelay >> 16)
	jetFractional := uint16(jetDelay)

	breathIntensity := int32(2100 - d.parameter[0]>>4)
	coefficient := int32(lut.FluteBodyFilter[min(d.pitch>>7, int32(len(lut.FluteBodyFilter)-1))])

	for i := range buffer {
		d.phase += d.phaseIncrement

		borePtr := delayPtr + 2*fluteBoreLength - boreIntegral
		jetPtr := delayPtr + 2*jetLength - jetIntegral
		boreA := int16(bore[borePtr%fluteBoreLength])
		boreB := int16(bore[(borePtr-1)%fluteBoreLength])
		jetA := int16(jet[jetPtr%jetLength])
		jetB := int16(jet[(jetPtr-1)%jetLength])
		boreValue := int32(mix(boreA, boreB, boreFractional)) << 9
		jetValue := int32(mix(jetA, jetB, jetFractional)) << 9

		pressure := int32(lut.BlowingEnvelope[min(int(excitationPtr), lut.BlowingEnvelopeSize-1)]) << 1
		turbulence := int32(d.random.sample()) * breathIntensity >> 12
		turbulence = turbulence * pressure >> 15
		pressure += turbulence

		lpState = (-coefficient*boreValue + (4096-coefficient)*lpState) >> 12
		reflection := lpState
		y0 = dcBlockingPole * y0 >> 12
		y0 += reflection - x0
		x0 = reflection
		reflection = y0

		delta := pressure - reflection>>1
		jet[delayPtr%jetLength] = int8(delta >> 9)

		index := clamp(jetValue, 0, 65535)
		delta = int32(lut.BlowingJet[index>>8]) + reflection>>1
		bore[delayPtr%fluteBoreLength] = int8(delta >> 9)
		delayPtr++

		buffer[i] = int16(clip16(boreValue >> 1))
		if (len(buffer)-1-i)&3 != 0 {
			excitationPtr++
		}
	}
	if excitationPtr >= lut.BlowingEnvelopeSize-32 {
		excitationPtr = lut.BlowingEnvelopeSize - 32
	}
	st.delayPtr = delayPtr
	st.excitationPtr = excitationPtr
	st.lpState = lpState
	st.filterState = [2]int32{x0, y0}
}
