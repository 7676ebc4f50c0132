package vco

const randomSeed = 0x21

// random is a linear congruential generator. Each voice owns one so that
// renders are reproducible and voices never share state.
type random struct {
	state uint32
}

func (r *random) seed(s uint32) { r.state = s }

func (r *random) word() uint32 {
	r.state = r.state*1664525 + 1013904223
	return r.state
}

func (r *random) sample() int16 {
	return int16(r.word() >> 16)
}
