package vco

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newMacro(shape MacroShape, pitch, p0, p1 int16) *MacroOscillator {
	m := NewMacroOscillator()
	m.SetShape(shape)
	m.SetPitch(pitch)
	m.SetParameters(p0, p1)
	return m
}

func macroRender(m *MacroOscillator) renderer {
	return m.Render
}

func TestMacroRenderersComplete(t *testing.T) {
	for s, fn := range macroRenderers {
		if fn == nil {
			t.Errorf("no renderer for %v", MacroShape(s))
		}
	}
}

func TestMacroNilSyncIsZeroSync(t *testing.T) {
	for s := range MacroShape(NumMacroShapes) {
		t.Run(s.String(), func(t *testing.T) {
			a := newMacro(s, 55<<7, 9000, 20000)
			b := newMacro(s, 55<<7, 9000, 20000)
			zero := make([]byte, 24)

			got := make([]int16, 24)
			want := make([]int16, 24)
			for range 100 {
				a.Render(nil, got)
				b.Render(zero, want)
				if diff := cmp.Diff(got, want); diff != "" {
					t.Fatalf("response mismatch (-got +want):\n%s", diff)
				}
			}
		})
	}
}

func TestMacroShapeNames(t *testing.T) {
	seen := make(map[string]MacroShape)
	for s := range MacroShape(NumMacroShapes) {
		name := s.String()
		if prev, ok := seen[name]; ok {
			t.Fatalf("%v and %d share name %q", prev, s, name)
		}
		seen[name] = s

		got, err := ParseMacroShape(name)
		if err != nil {
			t.Fatalf("ParseMacroShape(%q): %v", name, err)
		}
		assert(t, got, s)
	}

	tests := []struct {
		name string
		want MacroShape
	}{
		{"SAW-SWARM", SawSwarm},
		{" csaw ", CSaw},
		{"Question_Mark", QuestionMark},
		{"vowel_fof", VowelFof},
	}
	for _, tt := range tests {
		got, err := ParseMacroShape(tt.name)
		if err != nil {
			t.Fatalf("ParseMacroShape(%q): %v", tt.name, err)
		}
		assert(t, got, tt.want)
	}

	if _, err := ParseMacroShape("theremin"); err == nil {
		t.Error("ParseMacroShape(theremin): expected error")
	}
}

func TestShapeStringOutOfRange(t *testing.T) {
	assert(t, MacroShape(200).String(), "MacroShape(200)")
	assert(t, AnalogShape(NumAnalogShapes).String(), "AnalogShape(9)")
	assert(t, DigitalShape(NumDigitalShapes).String(), "DigitalShape(35)")
}

func TestMacroDigitalMirror(t *testing.T) {
	assert(t, Toy.digital(), DigitalToy)
	assert(t, QuestionMark.digital(), DigitalQuestionMark)
	for s := TripleRingMod; s < NumMacroShapes; s++ {
		if s == SawComb {
			continue
		}
		assert(t, s.String(), s.digital().String())
	}
}

// abs16diff returns the largest absolute difference between a and b.
func abs16diff(a, b []int16) int32 {
	var worst int32
	for i := range a {
		worst = max(worst, abs32(int32(a[i])-int32(b[i])))
	}
	return worst
}

func TestMacroMorphEndpoints(t *testing.T) {
	tests := []struct {
		name      string
		p0        int16
		shape     AnalogShape
		parameter int16
	}{
		{"triangle", 0, AnalogTriangle, 0},
		{"pulse", 32767, AnalogSquare, (32767 - 21846) * 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMacro(Morph, 60<<7, tt.p0, 0)
			a := newAnalog(tt.shape, 60<<7, tt.parameter)

			got := renderBlocks(macroRender(m), 4800, 24)
			want := renderBlocks(analogRender(a), 4800, 24)
			if d := abs16diff(got, want); d > 2 {
				t.Errorf("morph differs from a plain %v by %d", tt.shape, d)
			}
		})
	}
}

func TestMacroTripleUnison(t *testing.T) {
	// Centered knobs leave the three oscillators in unison.
	m := newMacro(TripleSine, 57<<7, 16384, 16384)
	a := newAnalog(AnalogSine, 57<<7, 0)

	got := renderBlocks(macroRender(m), 2400, 24)
	want := renderBlocks(analogRender(a), 2400, 24)
	for i := range want {
		want[i] = 3 * int16(int32(want[i])*21>>6)
	}
	assert(t, checksum(got), checksum(want))
}

func TestMacroDigitalPassthrough(t *testing.T) {
	for s := TripleRingMod; s < NumMacroShapes; s++ {
		if s == SawComb {
			continue
		}
		t.Run(s.String(), func(t *testing.T) {
			m := newMacro(s, 62<<7, 7000, 21000)
			d := newDigital(s.digital(), 62<<7, 7000, 21000)

			got := renderBlocks(macroRender(m), 2400, 24)
			want := renderBlocks(digitalRender(d), 2400, 24)
			assert(t, checksum(got), checksum(want))
		})
	}
}

func TestMacroShapeSwitchResets(t *testing.T) {
	for s := range MacroShape(NumMacroShapes) {
		t.Run(s.String(), func(t *testing.T) {
			switched := newMacro((s+1)%NumMacroShapes, 45<<7, 3000, 31000)
			renderBlocks(macroRender(switched), 2400, 24)
			switched.SetShape((s + 20) % NumMacroShapes)
			renderBlocks(macroRender(switched), 480, 24)
			switched.SetShape(s)
			switched.SetPitch(48 << 7)
			switched.SetParameters(20000, 9000)

			fresh := newMacro(s, 48<<7, 20000, 9000)

			got := renderBlocks(macroRender(switched), 4800, 24)
			want := renderBlocks(macroRender(fresh), 4800, 24)
			assert(t, checksum(got), checksum(want))
		})
	}
}

func TestMacroRandomControls(t *testing.T) {
	r := newRand()
	m := NewMacroOscillator()
	buf := make([]int16, MaxBlockSize)

	for range 10000 {
		if r.IntN(16) == 0 {
			m.SetShape(MacroShape(r.IntN(NumMacroShapes)))
		}
		n := 2 * (1 + r.IntN(MaxBlockSize/2))
		m.SetPitch(randomPitch(r))
		m.SetParameters(randomParameter(r), randomParameter(r))
		if r.IntN(8) == 0 {
			m.Strike()
		}
		m.Render(randomSync(r, n), buf[:n])
	}
}

func TestMacroAnalogOddBlocks(t *testing.T) {
	for s := CSaw; s <= TripleSine; s++ {
		m := newMacro(s, 60<<7, 10000, 10000)
		m.Render(nil, make([]int16, 23))
	}
	shouldPanic(t, func() { newMacro(Vowel, 60<<7, 0, 0).Render(nil, make([]int16, 23)) })
}

func TestMacroContract(t *testing.T) {
	m := NewMacroOscillator()
	shouldPanic(t, func() { m.Render(nil, nil) })
	shouldPanic(t, func() { m.Render(nil, make([]int16, MaxBlockSize+1)) })
	shouldPanic(t, func() { m.Render(make([]byte, 3), make([]int16, 8)) })
}

func TestMacroOffsetPitchSaturates(t *testing.T) {
	m := NewMacroOscillator()
	m.SetPitch(32000)
	assert(t, m.offsetPitch(24*128), 32767)
	m.SetPitch(-32000)
	assert(t, m.offsetPitch(-24*128), -32768)
	m.SetPitch(60 << 7)
	assert(t, m.offsetPitch(7*128), 67<<7)
}

func TestMacroInit(t *testing.T) {
	m := newMacro(Plucked, 30<<7, 100, 200)
	renderBlocks(macroRender(m), 480, 24)
	m.Init()
	assert(t, m.Shape(), Plucked)
	assert(t, m.pitch, 60<<7)
	assert(t, m.parameter, [2]int16{})
}
