package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/marketclient/internal/buildinfo"
	"github.com/dmitrijs2005/marketclient/internal/client/app"
	"github.com/dmitrijs2005/marketclient/internal/client/cli"
	"github.com/dmitrijs2005/marketclient/internal/client/config"
	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/dmitrijs2005/marketclient/internal/metrics"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)
	metrics.Register()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error(ctx, "metrics endpoint stopped", "error", err)
			}
		}()
	}

	core, err := app.New(ctx, cfg, logger, app.Deps{})
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer core.Close()

	cli.NewApp(core).Run(ctx)
}
