// README: Command-line estimator; prints one trip's footprint as plain text.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ecotravel/internal/ai"
	"ecotravel/internal/config"
	"ecotravel/internal/modules/estimate"
)

func main() {
	from := pflag.StringP("from", "f", "", "origin city")
	to := pflag.StringP("to", "t", "", "destination city")
	travelers := pflag.IntP("travelers", "n", 1, "number of travelers")
	verbose := pflag.BoolP("verbose", "v", false, "log model attempts to stderr")
	pflag.Parse()

	os.Exit(run(os.Stdout, os.Stderr, estimate.TripRequest{
		Origin:      *from,
		Destination: *to,
		Travelers:   *travelers,
	}, *verbose))
}

func run(stdout, stderr io.Writer, req estimate.TripRequest, verbose bool) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := newLogger(verbose)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.AI.Timeout)
	defer cancel()

	var acquirer *ai.Acquirer
	if cfg.AI.APIKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.APIKey)
		if err != nil {
			fmt.Fprintln(stderr, errorMessage(err))
			return 1
		}
		defer provider.Close()
		acquirer = ai.NewAcquirer(provider, logger, ai.WithMaxCandidates(cfg.AI.MaxCandidates))
	}

	svc := estimate.NewService(acquirer, logger)
	res, err := svc.Estimate(ctx, "cli", req)
	if err != nil {
		fmt.Fprintln(stderr, errorMessage(err))
		logger.Debug("estimate failed", zap.Error(err))
		return 1
	}

	render(stdout, res)
	return 0
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
