package vco

// paramRamp spreads a parameter change linearly over one block, so that
// control-rate updates do not step audibly.
type paramRamp struct {
	start, delta int32
	step, xfade  int32
}

func newParamRamp(previous, current int16, size int) paramRamp {
	return paramRamp{
		start: int32(previous),
		delta: int32(current) - int32(previous),
		step:  32767 / int32(size),
	}
}

func (r *paramRamp) next() int32 {
	r.xfade += r.step
	return r.start + (r.delta * r.xfade >> 15)
}

// incrementRamp does the same for phase increments.
type incrementRamp struct {
	inc, step uint32
}

func newIncrementRamp(previous, current uint32, size int) incrementRamp {
	n := uint32(size)
	step := (current - previous) / n
	if previous > current {
		step = -((previous - current) / n)
	}
	return incrementRamp{inc: previous, step: step}
}

func (r *incrementRamp) next() uint32 {
	r.inc += r.step
	return r.inc
}
