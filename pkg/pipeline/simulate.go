package pipeline

import (
	"context"

	"github.com/matzehuels/mosaic/pkg/engine"
	"github.com/matzehuels/mosaic/pkg/errors"
)

// Simulate runs an engine over opts.Catalog for opts.Ticks ticks on a manual
// scheduler and returns the last published frame. Ticks that were abandoned
// are logged and skipped; the run fails only if none succeeded.
func Simulate(ctx context.Context, opts Options) (engine.Frame, error) {
	if err := opts.ValidateForSimulate(); err != nil {
		return engine.Frame{}, err
	}
	logger := opts.Logger

	sched := engine.NewManualScheduler()
	e, err := engine.New(opts.Config,
		engine.WithScheduler(sched),
		engine.WithSeed(opts.Seed),
		engine.WithLogger(logger),
	)
	if err != nil {
		return engine.Frame{}, err
	}

	e.SetQuery(opts.Query)
	if err := e.Start(opts.Catalog); err != nil {
		return engine.Frame{}, err
	}
	defer e.Stop()

	for i := 0; i < opts.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return engine.Frame{}, err
		}
		if !sched.Advance() {
			break
		}
		if opts.Progress != nil {
			opts.Progress(i+1, opts.Ticks)
		}
	}

	frame := e.Latest()
	if frame.Seq == 0 && opts.Ticks > 0 {
		return engine.Frame{}, errors.New(errors.ErrCodeInternal, "no tick completed out of %d", opts.Ticks)
	}
	if skipped := uint64(sched.Fired()) - frame.Seq; skipped > 0 {
		logger.Warn("ticks abandoned", "skipped", skipped, "completed", frame.Seq)
	}
	logger.Debug("simulation finished", "ticks", frame.Seq, "cells", len(frame.Cells), "dropped", len(frame.Dropped))
	return frame, nil
}
