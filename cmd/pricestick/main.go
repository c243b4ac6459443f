package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"pricestick/internal/domain"
	"pricestick/internal/infrastructure/config"
	"pricestick/internal/infrastructure/container"
	"pricestick/internal/infrastructure/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	logger.Setup("info", "console")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init failed")
	}

	log.Info().
		Str("config", *configPath).
		Int("assets", c.Table().Len()).
		Int("storage_backends", c.StorageBackends()).
		Dur("poll_interval", cfg.App.PollInterval).
		Dur("display_duration", cfg.App.DisplayDuration).
		Msg("pricestick started")

	err = c.Monitor().Run(ctx)
	if cerr := c.Close(); cerr != nil {
		log.Error().Err(cerr).Msg("shutdown incomplete")
	}
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info().Msg("pricestick stopped")
	case errors.Is(err, domain.ErrIrrecoverable):
		log.Error().Err(err).Msg("restart required")
		os.Exit(2)
	default:
		log.Error().Err(err).Msg("monitor service exited")
		os.Exit(1)
	}
}
