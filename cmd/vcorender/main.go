// Command vcorender renders macro oscillator shapes to wave files.
//
// Usage:
//
//	vcorender [flags]
//
// Each selected shape is rendered to <out>/<shape>.wav. Shapes render in
// parallel, each with its own oscillator. A Lua script may drive the
// controls over time: its global function step(t) is called before every
// block with the time in seconds, and can call shape(name), note(n),
// timbre(x), color(x) and strike(). A script calling shape() renders a
// single -shape, and the file is named after the shape it starts with.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/arl/vco"
)

type config struct {
	shapes   []vco.MacroShape
	note     float64
	timbre   float64
	color    float64
	duration float64
	rate     int
	out      string
	trigger  float64
	script   string
	jobs     int
	analyze  bool
	verbose  bool
}

func main() {
	logger := log.New(os.Stderr, "vcorender: ", 0)

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logger.Fatal(err)
	}
	if err := run(context.Background(), cfg, logger, os.Stdout); err != nil {
		logger.Fatal(err)
	}
}

func parseFlags(args []string, output io.Writer) (*config, error) {
	var (
		cfg    config
		shapes string
	)

	fs := flag.NewFlagSet("vcorender", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&shapes, "shape", "csaw", "comma separated shape names, or \"all\"")
	fs.Float64Var(&cfg.note, "note", 48, "MIDI note, fractions allowed")
	fs.Float64Var(&cfg.timbre, "timbre", 0.5, "timbre `amount` in [0, 1]")
	fs.Float64Var(&cfg.color, "color", 0.5, "color `amount` in [0, 1]")
	fs.Float64Var(&cfg.duration, "duration", 2, "rendered `seconds` per shape")
	fs.IntVar(&cfg.rate, "rate", 48000, "output sample rate")
	fs.StringVar(&cfg.out, "out", ".", "output `directory`")
	fs.Float64Var(&cfg.trigger, "trigger", 0, "strike every `seconds`, 0 strikes once")
	fs.StringVar(&cfg.script, "script", "", "Lua control script")
	fs.IntVar(&cfg.jobs, "j", runtime.NumCPU(), "shapes rendered in parallel")
	fs.BoolVar(&cfg.analyze, "analyze", false, "print fundamental frequency and RMS of each render")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var err error
	if cfg.shapes, err = parseShapes(shapes); err != nil {
		return nil, err
	}
	switch {
	case !(cfg.duration > 0):
		return nil, fmt.Errorf("invalid duration %v", cfg.duration)
	case cfg.rate <= 0:
		return nil, fmt.Errorf("invalid rate %d", cfg.rate)
	case cfg.jobs < 1:
		return nil, fmt.Errorf("invalid job count %d", cfg.jobs)
	case cfg.trigger < 0:
		return nil, fmt.Errorf("invalid trigger interval %v", cfg.trigger)
	case cfg.timbre < 0 || cfg.timbre > 1:
		return nil, fmt.Errorf("timbre %v out of [0, 1]", cfg.timbre)
	case cfg.color < 0 || cfg.color > 1:
		return nil, fmt.Errorf("color %v out of [0, 1]", cfg.color)
	}
	return &cfg, nil
}

// parseShapes parses a comma separated list of shape names. "all" selects
// every shape.
func parseShapes(list string) ([]vco.MacroShape, error) {
	if strings.TrimSpace(list) == "all" {
		shapes := make([]vco.MacroShape, vco.NumMacroShapes)
		for i := range shapes {
			shapes[i] = vco.MacroShape(i)
		}
		return shapes, nil
	}

	var shapes []vco.MacroShape
	for name := range strings.SplitSeq(list, ",") {
		s, err := vco.ParseMacroShape(name)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	return shapes, nil
}
