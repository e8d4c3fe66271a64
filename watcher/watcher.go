// Package watcher reports elapsed time since the configured start on a cron schedule.
package watcher

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gwos/tdt/sdk/tdt"
	"github.com/gwos/tdt/tracing"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Watcher writes the pretty breakdown from engine start to now on every tick
type Watcher struct {
	engine   *tdt.Engine
	schedule string
	out      io.Writer

	mu    sync.Mutex
	sch   *cron.Cron
	ticks int
}

// New returns watcher, schedule accepts cron spec with seconds field
func New(engine *tdt.Engine, schedule string, out io.Writer) (*Watcher, error) {
	if _, err := cron.NewParser(parseOptions).Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return &Watcher{engine: engine, schedule: schedule, out: out}, nil
}

const parseOptions = cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// Start runs the scheduler in background
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sch != nil {
		log.Warn().Msg("watcher already started")
		return nil
	}

	logger := cronLogger{}
	sch := cron.New(
		cron.WithParser(cron.NewParser(parseOptions)),
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	if _, err := sch.AddFunc(w.schedule, func() { _ = w.Tick() }); err != nil {
		return err
	}
	sch.Start()
	w.sch = sch
	log.Info().Str("schedule", w.schedule).Msg("watcher: started")
	return nil
}

// Stop stops the scheduler, the returned context is done when running tick completes
func (w *Watcher) Stop() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sch == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	ctx := w.sch.Stop()
	w.sch = nil
	log.Info().Msg("watcher: stopped")
	return ctx
}

// Tick computes and writes the line once
func (w *Watcher) Tick() (err error) {
	_, ts := tracing.StartTraceSpan(context.Background(), "watcher: tick")
	span := w.engine.Since(time.Time{})
	pretty := span.Pretty(w.engine.MaxUnits)

	w.mu.Lock()
	w.ticks++
	n := w.ticks
	w.mu.Unlock()
	defer func() {
		tracing.EndTraceSpan(ts,
			tracing.TraceAttrInt("tick", n),
			tracing.TraceAttrStr("elapsed", pretty),
			tracing.TraceAttrError(err),
		)
	}()

	log.Info().
		Int("tick", n).
		Time("start", span.Start).
		Time("end", span.End).
		Str("elapsed", pretty).
		Msg("watcher: tick")
	if w.out == nil {
		return nil
	}
	_, err = fmt.Fprintf(w.out, "%s\t%s\n", span.End.Format(time.RFC3339), pretty)
	return err
}

// cronLogger implements cron.Logger over the global zerolog logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields(log.Debug(), keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields(log.Err(err), keysAndValues).Msg("cron: " + msg)
}

func fields(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			e = e.Interface(k, keysAndValues[i+1])
		}
	}
	return e
}
