package main

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gwos/tdt/config"
	"github.com/gwos/tdt/controller"
	"github.com/gwos/tdt/report"
	"github.com/gwos/tdt/watcher"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	chk, _ := cfg.Hashsum()
	log.Debug().Str("hashsum", hex.EncodeToString(chk)).Msgf("config:\n%s", cfg)

	engine, err := cfg.NewEngine()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	if !cfg.Controller.Enabled && !cfg.Watch.Enabled {
		span := engine.Span(cfg.Engine.Start.Time, cfg.Engine.End.Time)
		r, err := report.Build(span, engine.Unit, engine.MaxUnits, cfg.Report.Sections...)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build report")
		}
		if err := r.Write(os.Stdout, cfg.Report.Format); err != nil {
			log.Fatal().Err(err).Msg("could not write report")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	if tp, err := cfg.InitTracerProvider(ctx); err == nil {
		otel.SetTracerProvider(tp)
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	if cfg.Controller.Enabled {
		ctrl := controller.New(cfg, engine)
		if err := ctrl.Start(); err != nil {
			log.Fatal().Err(err).Msg("could not start controller")
		}
		defer func() { _ = ctrl.Stop(context.Background()) }()
	}
	if cfg.Watch.Enabled {
		w, err := watcher.New(engine, cfg.Watch.Schedule, os.Stdout)
		if err != nil {
			log.Fatal().Err(err).Msg("could not start watcher")
		}
		if err := w.Start(); err != nil {
			log.Fatal().Err(err).Msg("could not start watcher")
		}
		defer func() { <-w.Stop().Done() }()
	}

	<-ctx.Done()
	log.Info().Msg("signal received, exiting")
}
