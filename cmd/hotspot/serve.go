package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/geo-hotspot/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/geo-hotspot/internal/adapter/kafka"
	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/pipeline"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest analysis over HTTP, re-running on SIGHUP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			params, err := flags.apply(cmd, a.cfg.Params)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), a, params)
		},
	}
	flags.register(cmd)
	return cmd
}

func serve(parent context.Context, a *app, params domain.Params) error {
	logger := a.logger

	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if a.cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(a.cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", a.cfg.KafkaTopic, "brokers", a.cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(a.source, a.store, publisher, logger, a.metrics)
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, p, a.cfg.ExportDelim, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	run := func() {
		if _, err := p.Run(ctx, params); err != nil && !errors.Is(err, pipeline.ErrSuperseded) {
			logger.Error("analysis run error", "error", err)
		}
	}
	go run()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-hup:
			logger.Info("reloading dataset")
			a.store.Invalidate(a.source.Key())
			go run()
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
