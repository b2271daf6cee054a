package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/gridiron-sync/internal/app"
	"github.com/riskibarqy/gridiron-sync/internal/config"
	"github.com/riskibarqy/gridiron-sync/internal/interfaces/cli"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Options{Load: loadServices, Out: os.Stdout})
	stop()
	os.Exit(code)
}

func loadServices(ctx context.Context) (*cli.Services, func(context.Context) error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewConsole(cfg.LogLevel)
	logging.SetDefault(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	services := &cli.Services{
		Config:  cfg,
		Logger:  logger,
		Runner:  container.Coordinator,
		Reports: container.Reports,
		Links:   container.Links,
	}
	if container.Backup != nil {
		services.Backup = container.Backup
	}

	return services, func(ctx context.Context) error {
		err := container.Close(ctx)
		_ = logger.Sync()
		return err
	}, nil
}
