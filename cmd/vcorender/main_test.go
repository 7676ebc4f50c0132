package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arl/vco"
	"github.com/arl/vco/voice"
)

func assert[T comparable](t *testing.T, got, want T) {
	t.Helper()

	if got != want {
		t.Fatalf("assertion failed: got = %v want %v", got, want)
	}
}

func TestParseShapes(t *testing.T) {
	all, err := parseShapes("all")
	if err != nil {
		t.Fatal(err)
	}
	assert(t, len(all), vco.NumMacroShapes)
	assert(t, all[len(all)-1], vco.QuestionMark)

	got, err := parseShapes("csaw, Morph,struck-bell")
	if err != nil {
		t.Fatal(err)
	}
	want := []vco.MacroShape{vco.CSaw, vco.Morph, vco.StruckBell}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("response mismatch (-got +want):\n%s", diff)
	}

	if _, err := parseShapes("csaw,theremin"); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	assert(t, len(cfg.shapes), 1)
	assert(t, cfg.rate, 48000)
	assert(t, cfg.out, ".")

	cfg, err = parseFlags([]string{"-shape", "kick", "-note", "36.5", "-j", "3", "-analyze"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	assert(t, cfg.shapes[0], vco.Kick)
	assert(t, cfg.note, 36.5)
	assert(t, cfg.jobs, 3)
	assert(t, cfg.analyze, true)

	if _, err := parseFlags([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("-h: err = %v, want flag.ErrHelp", err)
	}

	for _, args := range [][]string{
		{"-duration", "0"},
		{"-rate", "-1"},
		{"-j", "0"},
		{"-trigger", "-2"},
		{"-timbre", "1.5"},
		{"-color", "-0.1"},
		{"-shape", "nope"},
		{"extra"},
	} {
		if _, err := parseFlags(args, io.Discard); err == nil {
			t.Errorf("parseFlags(%q): expected error", args)
		}
	}
}

func testConfig(t *testing.T) *config {
	return &config{
		shapes:   []vco.MacroShape{vco.Morph, vco.Kick, vco.FilteredNoise},
		note:     57,
		timbre:   0,
		color:    0,
		duration: 0.25,
		rate:     48000,
		out:      t.TempDir(),
		jobs:     2,
		analyze:  true,
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	var stdout, logs bytes.Buffer
	cfg.verbose = true

	if err := run(context.Background(), cfg, log.New(&logs, "", 0), &stdout); err != nil {
		t.Fatal(err)
	}

	for _, s := range cfg.shapes {
		b, err := os.ReadFile(filepath.Join(cfg.out, s.String()+".wav"))
		if err != nil {
			t.Fatal(err)
		}
		assert(t, len(b), 44+2*12000)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	assert(t, len(lines), 3)
	if !strings.HasPrefix(lines[0], "morph") || !strings.Contains(lines[0], " Hz") {
		t.Errorf("unexpected analysis line %q", lines[0])
	}
	assert(t, strings.Count(logs.String(), "rendered"), 3)
}

func TestRenderTrigger(t *testing.T) {
	cfg := testConfig(t)
	cfg.duration = 1
	cfg.trigger = 0.5

	once, err := render(&config{
		note: cfg.note, duration: cfg.duration, rate: cfg.rate, out: t.TempDir(), analyze: true,
	}, vco.Kick)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := render(cfg, vco.Kick)
	if err != nil {
		t.Fatal(err)
	}
	if twice.rms <= once.rms {
		t.Errorf("retriggered kick rms %.1f, want more than %.1f", twice.rms, once.rms)
	}
}

func TestScript(t *testing.T) {
	src := `
function step(t)
	if t >= 1 then
		shape("kick")
		note(36)
		strike()
	end
	timbre(t / 2)
	color(0.25)
end
`
	sc, err := newScript(src, voice.Controls{Shape: vco.CSaw, Note: 60})
	if err != nil {
		t.Fatal(err)
	}
	defer sc.close()

	if err := sc.step(0.5); err != nil {
		t.Fatal(err)
	}
	want := voice.Controls{Shape: vco.CSaw, Note: 60, Timbre: 0.25, Color: 0.25}
	assert(t, sc.controls(), want)
	assert(t, sc.takeStrike(), false)

	if err := sc.step(1); err != nil {
		t.Fatal(err)
	}
	want = voice.Controls{Shape: vco.Kick, Note: 36, Timbre: 0.5, Color: 0.25}
	assert(t, sc.controls(), want)
	assert(t, sc.takeStrike(), true)
	assert(t, sc.takeStrike(), false)
}

func TestScriptErrors(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":  "function step(t",
		"no step": "x = 1",
	} {
		if _, err := newScript(src, voice.Controls{}); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	sc, err := newScript(`function step(t) shape("theremin") end`, voice.Controls{})
	if err != nil {
		t.Fatal(err)
	}
	defer sc.close()
	if err := sc.step(0); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestRunScript(t *testing.T) {
	cfg := testConfig(t)
	cfg.shapes = cfg.shapes[:1]
	cfg.analyze = false
	cfg.script = filepath.Join(t.TempDir(), "sweep.lua")
	err := os.WriteFile(cfg.script, []byte(`function step(t) note(48 + t * 24) end`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	if err := run(context.Background(), cfg, log.New(io.Discard, "", 0), &stdout); err != nil {
		t.Fatal(err)
	}
	assert(t, stdout.Len(), 0)

	cfg.script = filepath.Join(t.TempDir(), "missing.lua")
	if err := run(context.Background(), cfg, log.New(io.Discard, "", 0), &stdout); err == nil {
		t.Error("expected error for a missing script")
	}
}

func TestRunScriptShape(t *testing.T) {
	cfg := testConfig(t)
	cfg.analyze = false
	cfg.script = filepath.Join(t.TempDir(), "kick.lua")
	err := os.WriteFile(cfg.script, []byte(`function step(t) shape("kick") end`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	// Several renders would all play, and be named, kick.
	err = run(context.Background(), cfg, log.New(io.Discard, "", 0), io.Discard)
	if !errors.Is(err, errScriptShape) {
		t.Fatalf("run() = %v, want %v", err, errScriptShape)
	}

	cfg.shapes = []vco.MacroShape{vco.Morph}
	cfg.out = t.TempDir()
	if err := run(context.Background(), cfg, log.New(io.Discard, "", 0), io.Discard); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.out, "kick.wav")); err != nil {
		t.Error(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.out, "morph.wav")); err == nil {
		t.Error("morph.wav written, but the script rendered kick")
	}
}
