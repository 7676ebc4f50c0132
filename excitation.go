package vco

// excitation is a delayed, exponentially decaying impulse used to strike
// the physical and percussive models.
type excitation struct {
	delay   uint32
	decay   uint32
	counter int32
	state   int32
	level   int32
}

func (e *excitation) init() {
	*e = excitation{decay: 4093}
}

func (e *excitation) setDelay(delay uint16) { e.delay = uint32(delay) }
func (e *excitation) setDecay(decay uint16) { e.decay = uint32(decay) }

// trigger schedules an impulse of the given level after the configured
// delay. The sign of level sets the polarity of the output.
func (e *excitation) trigger(level int32) {
	e.level = level
	e.counter = int32(e.delay) + 1
}

func (e *excitation) done() bool { return e.counter == 0 }

func (e *excitation) process() int32 {
	e.state = int32(int64(e.state) * int64(e.decay) >> 12)
	if e.counter > 0 {
		e.counter--
		if e.counter == 0 {
			e.state += abs32(e.level)
		}
	}
	if e.level < 0 {
		return -e.state
	}
	return e.state
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
