package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/arl/vco"
	"github.com/arl/vco/internal/analysis"
	"github.com/arl/vco/voice"
	"github.com/arl/vco/wave"
)

// errScriptShape reports a script switching shapes while several shapes are
// rendered, which would leave the output files misnamed.
var errScriptShape = errors.New("script changes the shape, select a single -shape")

// result describes a finished render.
type result struct {
	shape   vco.MacroShape
	path    string
	samples int

	frequency float64 // 0 if not periodic
	rms       float64
}

func run(ctx context.Context, cfg *config, logger *log.Logger, stdout io.Writer) error {
	if err := os.MkdirAll(cfg.out, 0o755); err != nil {
		return err
	}

	results := make([]result, len(cfg.shapes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.jobs)
	for i, shape := range cfg.shapes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := render(cfg, shape)
			if err != nil {
				return fmt.Errorf("%v: %w", shape, err)
			}
			if cfg.verbose {
				logger.Printf("rendered %s, %d samples", res.path, res.samples)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.analyze {
		for _, res := range results {
			freq := "-"
			if res.frequency > 0 {
				freq = fmt.Sprintf("%.2f Hz", res.frequency)
			}
			fmt.Fprintf(stdout, "%-20s %12s  rms %7.1f\n", res.shape, freq, res.rms)
		}
	}
	return nil
}

// render renders one shape to its wave file. A script may switch the
// shape only when a single shape is rendered.
func render(cfg *config, shape vco.MacroShape) (res result, err error) {
	v, err := voice.New(float64(cfg.rate))
	if err != nil {
		return res, err
	}

	ctl := voice.Controls{
		Shape:  shape,
		Note:   cfg.note,
		Timbre: cfg.timbre,
		Color:  cfg.color,
	}

	var sc *script
	if cfg.script != "" {
		if sc, err = loadScript(cfg.script, ctl); err != nil {
			return res, err
		}
		defer sc.close()
	}

	res.shape = shape
	total := int(cfg.duration * float64(cfg.rate))
	out := make([]int16, total)
	nextStrike := cfg.trigger
	const step = float64(voice.BlockSize) / voice.CoreRate

	for block := 0; res.samples < total; block++ {
		t := float64(block) * step

		strike := false
		if cfg.trigger > 0 && t >= nextStrike {
			strike = true
			nextStrike += cfg.trigger
		}
		if sc != nil {
			if err := sc.step(t); err != nil {
				return res, err
			}
			ctl = sc.controls()
			strike = strike || sc.takeStrike()
		}
		if ctl.Shape != shape && len(cfg.shapes) > 1 {
			return res, errScriptShape
		}
		if block == 0 {
			res.shape = ctl.Shape
		}

		// Strikes are rising edges of the trigger.
		if strike && ctl.Trigger {
			ctl.Trigger = false
			v.Set(ctl)
		}
		ctl.Trigger = strike
		v.Set(ctl)

		end := min(int(math.Round((t+step)*float64(cfg.rate))), total)
		v.Read(out[res.samples:end])
		res.samples = end
	}

	// The file is named after the shape the render starts with.
	res.path = filepath.Join(cfg.out, res.shape.String()+".wav")
	w, err := wave.NewFile(res.path, cfg.rate)
	if err != nil {
		return res, err
	}
	w.Write(out)
	if err := w.Close(); err != nil {
		return res, err
	}

	if cfg.analyze && total > 0 {
		res.rms = analysis.RMS(out)
		tail := out[max(0, total-16384):]
		switch freq, err := analysis.Frequency(tail, float64(cfg.rate)); {
		case err == nil:
			res.frequency = freq
		case !errors.Is(err, analysis.ErrNotPeriodic):
			return res, err
		}
	}
	return res, nil
}
